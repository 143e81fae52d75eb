package slotfill

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/seu-repo/songorder/internal/domain"
)

const genericReask = "Kusura bakmayın, sizi tam anlayamadım. Son cevabınızı biraz daha açık yazabilir misiniz?"

// Fallback produces deterministic replies when the oracle or a classifier
// cannot be used. It never changes the state.
type Fallback struct {
	logger *zap.Logger
}

func NewFallback(logger *zap.Logger) *Fallback {
	return &Fallback{logger: logger}
}

// Respond returns state unchanged with a reply for step. Validation and
// classification errors carry their own message.
func (f *Fallback) Respond(state domain.PartialOrderState, step domain.Step, cause error) (out TurnOutcome) {
	out = TurnOutcome{State: state, Outcome: OutcomeFallback, Err: cause}
	defer func() {
		if r := recover(); r != nil {
			f.logger.Error("fallback panicked", zap.Any("panic", r), zap.String("step", string(step)))
			out = TurnOutcome{State: state, Outcome: OutcomeFallback, Reply: genericReask, Err: cause}
		}
	}()

	var validationErr *domain.ValidationError
	var undetermined *domain.UndeterminedClassificationError
	switch {
	case errors.As(cause, &validationErr):
		out.Outcome = OutcomeRejected
		out.Reply = validationErr.Message
	case errors.As(cause, &undetermined) && undetermined.Reask != "":
		out.Reply = undetermined.Reask
	default:
		out.Reply = StepQuestion(step)
	}
	if out.Reply == "" {
		out.Reply = genericReask
	}
	return out
}

// StepQuestion is the deterministic prompt for a step. Closed vocabularies are
// spelled out in full.
func StepQuestion(step domain.Step) string {
	switch step {
	case domain.StepIntake, domain.StepGenre:
		return fmt.Sprintf("Şarkınız hangi türde olsun? Seçenekler: %s.", strings.Join(domain.SongTypes, ", "))
	case domain.StepMood:
		return fmt.Sprintf("Şarkının havası nasıl olsun? Seçenekler: %s.", strings.Join(domain.SongStyles, ", "))
	case domain.StepVocal:
		return fmt.Sprintf("Şarkıyı kim seslendirsin? Seçenekler: %s.", strings.Join(domain.Vocals, ", "))
	case domain.StepRecipient:
		return "Bu şarkı kime ya da neye özel? Örneğin annem, sevgilim Elif, ekibimiz ya da sevdiğiniz bir şehir olabilir."
	case domain.StepIncludeName:
		return Reask(QuestionIncludeName)
	case domain.StepStory:
		return fmt.Sprintf("Şarkıya işlemek istediğiniz hikayeyi anlatır mısınız? Anılarınızı, duygularınızı paylaşabilirsiniz (%d-%d karakter).", domain.StoryMinLength, domain.StoryMaxLength)
	case domain.StepNotes:
		return fmt.Sprintf("Eklemek istediğiniz bir not var mı? En fazla %d karakter yazabilirsiniz, yoksa \"yok\" yazmanız yeterli.", domain.NotesMaxLength)
	case domain.StepConfirmation:
		return Reask(QuestionConfirmation)
	case domain.StepLyricsReview:
		return Reask(QuestionLyricsReview)
	}
	return genericReask
}
