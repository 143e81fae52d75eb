package slotfill

import (
	"strings"
	"unicode"

	"github.com/seu-repo/songorder/internal/domain"
)

// DefaultKnownArtists seeds the artist-name check when no list is configured.
var DefaultKnownArtists = []string{
	"Sezen Aksu", "Tarkan", "Ajda Pekkan", "Müslüm Gürses", "Barış Manço",
	"Cem Karaca", "Zeki Müren", "Sertab Erener", "Mabel Matiz", "Orhan Gencebay",
	"Ferdi Tayfur", "Bergen", "Ezhel", "Ceza", "Sagopa Kajmer", "Teoman",
	"Duman", "Manga", "Hadise", "Kenan Doğulu", "Gökhan Türkmen", "Sıla",
	"Adele", "Ed Sheeran", "Frank Sinatra", "Taylor Swift", "Metallica",
}

var vocalGenderTermsEN = []string{"female vocal", "male vocal"}

var vocalGenderTermsTR = []string{"kadın vokal", "erkek vokal", "kadın sesi", "erkek sesi", "kadin vokal", "kadin sesi"}

// Deidentifier rejects style descriptions that leak an artist name or restate
// the vocal slot.
type Deidentifier struct {
	artists map[string]struct{}
}

func NewDeidentifier(knownArtists []string) *Deidentifier {
	if len(knownArtists) == 0 {
		knownArtists = DefaultKnownArtists
	}
	d := &Deidentifier{artists: make(map[string]struct{}, len(knownArtists))}
	for _, a := range knownArtists {
		d.artists[domain.Fold(a)] = struct{}{}
	}
	return d
}

// Check returns a *domain.ContractViolationError when description breaks
// the de-identification rules.
func (d *Deidentifier) Check(contract, description string, state domain.PartialOrderState) error {
	if description == "" {
		return nil
	}
	if name, ok := d.findArtist(description); ok {
		return &domain.ContractViolationError{
			Contract: contract,
			Slot:     domain.SlotArtistStyle,
			Reason:   "names artist " + name,
		}
	}
	folded := domain.Fold(description)
	for _, term := range vocalGenderTermsEN {
		if strings.Contains(folded, term) {
			return &domain.ContractViolationError{
				Contract: contract,
				Slot:     domain.SlotArtistStyle,
				Reason:   "mentions " + term,
			}
		}
	}
	if state.Has(domain.SlotVocal) {
		for _, term := range vocalGenderTermsTR {
			if strings.Contains(folded, term) {
				return &domain.ContractViolationError{
					Contract: contract,
					Slot:     domain.SlotArtistStyle,
					Reason:   "restates vocal as " + term,
				}
			}
		}
	}
	return nil
}

// commonWords are single-word artist names that are also ordinary Turkish
// words. At the start of a sentence they only count with an apostrophe
// suffix ("Duman'ın"), which Turkish reserves for proper nouns.
var commonWords = map[string]struct{}{
	"duman": {}, "ceza": {}, "sıla": {}, "manga": {}, "hadise": {},
}

// findArtist scans capitalized tokens and capitalized two-word pairs against
// the known-artist list.
func (d *Deidentifier) findArtist(text string) (string, bool) {
	fields := strings.Fields(text)
	sentenceStart := true
	for i, f := range fields {
		w, proper := token(f)
		atStart := sentenceStart
		sentenceStart = strings.ContainsAny(f[len(f)-1:], ".!?")
		if !capitalized(w) {
			continue
		}
		if i+1 < len(fields) && !strings.ContainsAny(f[len(f)-1:], ",;:.!?") {
			if next, _ := token(fields[i+1]); capitalized(next) {
				pair := w + " " + next
				if _, ok := d.artists[domain.Fold(pair)]; ok {
					return pair, true
				}
			}
		}
		folded := domain.Fold(w)
		if _, ok := d.artists[folded]; !ok {
			continue
		}
		if _, common := commonWords[folded]; common && atStart && !proper {
			continue
		}
		return w, true
	}
	return "", false
}

// token trims punctuation around a field and drops a suffix after an
// apostrophe ("Tarkan'ın" -> "Tarkan"). proper reports that a suffix was cut.
func token(field string) (word string, proper bool) {
	w := strings.TrimFunc(field, func(r rune) bool {
		return unicode.IsPunct(r) && r != '\'' && r != '’'
	})
	stripped := stripSuffix(w)
	return stripped, stripped != w
}

// stripSuffix drops a Turkish possessive or case suffix after an apostrophe.
func stripSuffix(w string) string {
	if i := strings.IndexAny(w, "'’"); i > 0 {
		return w[:i]
	}
	return w
}

func capitalized(w string) bool {
	for _, r := range w {
		return unicode.IsUpper(r)
	}
	return false
}
