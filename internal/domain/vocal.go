package domain

import "strings"

type Vocal string

const (
	VocalFemale       Vocal = "Kadın"
	VocalMale         Vocal = "Erkek"
	VocalNoPreference Vocal = "Fark etmez"
)

// Checked in this order: "female" contains "male" and "fark etmez" must win
// over a stray gender word.
var vocalSynonyms = []struct {
	vocal Vocal
	words []string
}{
	{VocalNoPreference, []string{"fark etmez", "farketmez", "farketmiyor", "fark etmiyor", "ikisi de", "no preference", "doesn't matter"}},
	{VocalFemale, []string{"kadın", "kadin", "bayan", "kız sesi", "female"}},
	{VocalMale, []string{"erkek", "bay sesi", "male"}},
}

// ParseVocal maps a Turkish or English vocal answer to the closed vocabulary.
func ParseVocal(s string) (Vocal, bool) {
	folded := Fold(s)
	if folded == "" {
		return "", false
	}
	for _, group := range vocalSynonyms {
		for _, w := range group.words {
			if folded == w {
				return group.vocal, true
			}
		}
	}
	for _, group := range vocalSynonyms {
		for _, w := range group.words {
			if len(w) > 3 && strings.Contains(folded, w) {
				return group.vocal, true
			}
		}
	}
	return "", false
}

// MentionsVocal reports whether text names v using any of its synonyms.
func MentionsVocal(text string, v Vocal) bool {
	folded := Fold(text)
	for _, group := range vocalSynonyms {
		if group.vocal != v {
			continue
		}
		for _, w := range group.words {
			if !strings.Contains(folded, w) {
				continue
			}
			// "female" also contains "male"
			if w == "male" && strings.Count(folded, "male") == strings.Count(folded, "female") {
				continue
			}
			return true
		}
	}
	return false
}
