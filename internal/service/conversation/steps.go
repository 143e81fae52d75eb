package conversation

import (
	"fmt"
	"strings"

	"github.com/seu-repo/songorder/internal/domain"
	"github.com/seu-repo/songorder/internal/service/slotfill"
)

const greeting = "Merhaba! Size özel bir şarkı hazırlayalım. Şarkı kimin için, nasıl bir şarkı hayal ediyorsunuz?"

// NextStep returns the first question whose slot is still unset.
func NextStep(s domain.PartialOrderState) domain.Step {
	switch {
	case !s.Has(domain.SlotSongType):
		return domain.StepGenre
	case !s.Has(domain.SlotSongStyle):
		return domain.StepMood
	case !s.Has(domain.SlotVocal):
		return domain.StepVocal
	case !s.Has(domain.SlotRecipientRelation):
		return domain.StepRecipient
	case s.Value(domain.SlotRecipientName) != "" && !s.Has(domain.SlotIncludeName):
		return domain.StepIncludeName
	case !s.Has(domain.SlotStory):
		return domain.StepStory
	case !s.Has(domain.SlotNotes):
		return domain.StepNotes
	}
	return domain.StepConfirmation
}

// Prompt is the question asked when entering step.
func Prompt(step domain.Step, s domain.PartialOrderState) string {
	switch step {
	case domain.StepIncludeName:
		return fmt.Sprintf("%s adı şarkı sözlerinde geçsin mi? (Evet / Hayır)", s.Value(domain.SlotRecipientName))
	case domain.StepConfirmation:
		return Summary(s) + "\n\n" + slotfill.Reask(slotfill.QuestionConfirmation)
	}
	return slotfill.StepQuestion(step)
}

// Summary renders the collected order for confirmation.
func Summary(s domain.PartialOrderState) string {
	var b strings.Builder
	b.WriteString("Sipariş özetiniz:\n")

	genre := s.Value(domain.SlotSongType)
	if style := s.Value(domain.SlotArtistStyle); style != "" {
		genre += " (" + style + ")"
	}
	fmt.Fprintf(&b, "- Tür: %s\n", genre)
	fmt.Fprintf(&b, "- Hava: %s\n", s.Value(domain.SlotSongStyle))
	fmt.Fprintf(&b, "- Vokal: %s\n", s.Value(domain.SlotVocal))

	recipient := s.Value(domain.SlotRecipientRelation)
	if name := s.Value(domain.SlotRecipientName); name != "" {
		recipient += " (" + name + ")"
		include, _ := s.Bool(domain.SlotIncludeName)
		fmt.Fprintf(&b, "- Kime: %s\n", recipient)
		fmt.Fprintf(&b, "- İsim sözlerde geçsin: %s\n", yesNo(include))
	} else {
		fmt.Fprintf(&b, "- Kime: %s\n", recipient)
	}

	fmt.Fprintf(&b, "- Hikaye: %s\n", s.Value(domain.SlotStory))
	notes := s.Value(domain.SlotNotes)
	if notes == "" {
		notes = "-"
	}
	fmt.Fprintf(&b, "- Not: %s", notes)
	return b.String()
}

func yesNo(b bool) string {
	if b {
		return "Evet"
	}
	return "Hayır"
}
