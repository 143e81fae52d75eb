package slotfill

import (
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/seu-repo/songorder/internal/domain"
)

func TestFallback_StateUnchanged(t *testing.T) {
	f := NewFallback(zap.NewNop())
	state := domain.NewPartialOrderState().
		With(domain.SlotSongType, "Pop").
		With(domain.SlotVocal, "Kadın")
	before := state.Clone()

	causes := []error{
		&domain.MalformedOracleOutputError{Reason: "trailing data"},
		&domain.OracleTransportError{Provider: "openai", Err: errors.New("timeout")},
		nil,
	}
	for _, cause := range causes {
		out := f.Respond(state, domain.StepMood, cause)
		if !out.State.Equal(before) {
			t.Errorf("expected state unchanged for cause %v", cause)
		}
		if out.Reply == "" {
			t.Errorf("expected a reply for cause %v", cause)
		}
	}
}

func TestFallback_SpellsOutVocabulary(t *testing.T) {
	tests := []struct {
		step  domain.Step
		vocab []string
	}{
		{domain.StepGenre, []string{"Pop", "Rap", "Jazz", "Arabesk", "Klasik", "Rock", "Metal", "Nostaljik"}},
		{domain.StepIntake, domain.SongTypes},
		{domain.StepMood, []string{"Romantik", "Duygusal", "Eğlenceli", "Sakin"}},
		{domain.StepVocal, []string{"Kadın", "Erkek", "Fark etmez"}},
	}

	f := NewFallback(zap.NewNop())
	for _, tt := range tests {
		out := f.Respond(domain.NewPartialOrderState(), tt.step, errors.New("boom"))
		for _, v := range tt.vocab {
			if !strings.Contains(out.Reply, v) {
				t.Errorf("step %s: expected reply to contain %q, got %q", tt.step, v, out.Reply)
			}
		}
	}
}

func TestFallback_ValidationMessageForwarded(t *testing.T) {
	f := NewFallback(zap.NewNop())
	verr := &domain.ValidationError{Rule: domain.RuleNotesTooLong, Length: 301, Limit: 300, Message: "Notunuz 301 karakter"}

	out := f.Respond(domain.NewPartialOrderState(), domain.StepNotes, verr)

	if out.Outcome != OutcomeRejected {
		t.Errorf("expected rejected outcome, got %s", out.Outcome)
	}
	if out.Reply != verr.Message {
		t.Errorf("expected %q, got %q", verr.Message, out.Reply)
	}
}

func TestFallback_UndeterminedReask(t *testing.T) {
	f := NewFallback(zap.NewNop())
	cause := &domain.UndeterminedClassificationError{Question: "confirmation", Reask: Reask(QuestionConfirmation)}

	out := f.Respond(domain.NewPartialOrderState(), domain.StepConfirmation, cause)

	if out.Reply != Reask(QuestionConfirmation) {
		t.Errorf("expected confirmation re-ask, got %q", out.Reply)
	}
}
