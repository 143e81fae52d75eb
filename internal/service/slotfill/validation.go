package slotfill

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/seu-repo/songorder/internal/domain"
)

// GateInput holds the free-text slots the gate measures. A nil field is not
// part of this turn and not yet stored.
type GateInput struct {
	Story *string
	Notes *string
}

type lengthRule struct {
	rule    domain.ValidationRule
	tag     string
	limit   int
	measure func(in GateInput) (int, bool)
	message string
}

// Rules run in order; the first violation wins.
var gateRules = []lengthRule{
	{
		rule:    domain.RuleStoryTooLong,
		tag:     fmt.Sprintf("max=%d", domain.StoryMaxLength),
		limit:   domain.StoryMaxLength,
		measure: storyLength,
		message: "Hikayeniz %d karakter, en fazla %d karakter olabilir. Lütfen biraz kısaltır mısınız?",
	},
	{
		rule:    domain.RuleStoryTooShort,
		tag:     fmt.Sprintf("min=%d", domain.StoryMinLength),
		limit:   domain.StoryMinLength,
		measure: storyLength,
		message: "Hikayeniz %d karakter, şarkıyı size özel yazabilmemiz için en az %d karakter gerekiyor. Biraz daha detay paylaşır mısınız?",
	},
	{
		rule:  domain.RuleCombinedTooLong,
		tag:   fmt.Sprintf("max=%d", domain.CombinedMaxLength),
		limit: domain.CombinedMaxLength,
		measure: func(in GateInput) (int, bool) {
			if in.Story == nil || in.Notes == nil {
				return 0, false
			}
			return runes(*in.Story) + runes(*in.Notes), true
		},
		message: "Hikaye ve notlarınız toplam %d karakter, toplam sınır %d karakter. Lütfen notlarınızı kısaltır mısınız?",
	},
	{
		rule:  domain.RuleNotesTooLong,
		tag:   fmt.Sprintf("max=%d", domain.NotesMaxLength),
		limit: domain.NotesMaxLength,
		measure: func(in GateInput) (int, bool) {
			if in.Notes == nil {
				return 0, false
			}
			return runes(*in.Notes), true
		},
		message: "Notunuz %d karakter, en fazla %d karakter olabilir. Lütfen kısaltır mısınız?",
	},
}

// Gate enforces the story and notes length limits.
type Gate struct {
	validate *validator.Validate
}

func NewGate() *Gate {
	return &Gate{validate: validator.New()}
}

// Check returns a *domain.ValidationError for the first failing rule.
func (g *Gate) Check(in GateInput) error {
	for _, r := range gateRules {
		n, ok := r.measure(in)
		if !ok {
			continue
		}
		if err := g.validate.Var(n, r.tag); err != nil {
			return &domain.ValidationError{
				Rule:    r.rule,
				Length:  n,
				Limit:   r.limit,
				Message: fmt.Sprintf(r.message, n, r.limit),
			}
		}
	}
	return nil
}

func storyLength(in GateInput) (int, bool) {
	if in.Story == nil {
		return 0, false
	}
	return runes(*in.Story), true
}

func runes(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}
