package domain

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type SlotName string

const (
	SlotSongType          SlotName = "song_type"
	SlotArtistStyle       SlotName = "artist_style_description"
	SlotSongStyle         SlotName = "song_style"
	SlotVocal             SlotName = "vocal"
	SlotRecipientRelation SlotName = "recipient_relation"
	SlotRecipientName     SlotName = "recipient_name"
	SlotIncludeName       SlotName = "include_name"
	SlotStory             SlotName = "story"
	SlotNotes             SlotName = "notes"
	SlotConfirmation      SlotName = "confirmation"
	SlotLyricsReview      SlotName = "lyrics_review"
	SlotRevisionRequest   SlotName = "revision_request"
)

var AllSlots = []SlotName{
	SlotSongType,
	SlotArtistStyle,
	SlotSongStyle,
	SlotVocal,
	SlotRecipientRelation,
	SlotRecipientName,
	SlotIncludeName,
	SlotStory,
	SlotNotes,
	SlotConfirmation,
	SlotLyricsReview,
	SlotRevisionRequest,
}

func (s SlotName) Valid() bool {
	for _, n := range AllSlots {
		if n == s {
			return true
		}
	}
	return false
}

// Closed vocabularies. Values are stored in these canonical spellings.
var (
	SongTypes  = []string{"Pop", "Rap", "Jazz", "Arabesk", "Klasik", "Rock", "Metal", "Nostaljik"}
	SongStyles = []string{"Romantik", "Duygusal", "Eğlenceli", "Sakin"}
	Vocals     = []string{string(VocalFemale), string(VocalMale), string(VocalNoPreference)}
)

// Length limits, counted in characters after trimming.
const (
	StoryMinLength    = 20
	StoryMaxLength    = 900
	NotesMaxLength    = 300
	CombinedMaxLength = 1200
)

// Fold lower-cases with Turkish rules (İ -> i, I -> ı) and trims.
func Fold(s string) string {
	return strings.TrimSpace(cases.Lower(language.Turkish).String(s))
}

// Canonical returns the vocabulary spelling of value, matched case-insensitively.
func Canonical(vocabulary []string, value string) (string, bool) {
	folded := Fold(value)
	for _, v := range vocabulary {
		if Fold(v) == folded {
			return v, true
		}
	}
	return "", false
}

// ClosedVocabulary returns the allowed values for a slot, or nil for free text.
func ClosedVocabulary(slot SlotName) []string {
	switch slot {
	case SlotSongType:
		return SongTypes
	case SlotSongStyle:
		return SongStyles
	case SlotVocal:
		return Vocals
	}
	return nil
}
