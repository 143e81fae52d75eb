package slotfill

import (
	"errors"
	"strings"
	"testing"

	"github.com/seu-repo/songorder/internal/domain"
)

func text(n int) *string {
	s := strings.Repeat("ş", n)
	return &s
}

func TestGate_Boundaries(t *testing.T) {
	gate := NewGate()
	tests := []struct {
		name     string
		in       GateInput
		wantRule domain.ValidationRule
	}{
		{"story 19", GateInput{Story: text(19)}, domain.RuleStoryTooShort},
		{"story 20", GateInput{Story: text(20)}, ""},
		{"story 900", GateInput{Story: text(900)}, ""},
		{"story 901", GateInput{Story: text(901)}, domain.RuleStoryTooLong},
		{"notes 300", GateInput{Notes: text(300)}, ""},
		{"notes 301", GateInput{Notes: text(301)}, domain.RuleNotesTooLong},
		{"notes 301 with story", GateInput{Story: text(100), Notes: text(301)}, domain.RuleNotesTooLong},
		{"combined 1200", GateInput{Story: text(900), Notes: text(300)}, ""},
		{"combined 1201", GateInput{Story: text(900), Notes: text(301)}, domain.RuleCombinedTooLong},
		{"long story wins over combined", GateInput{Story: text(950), Notes: text(300)}, domain.RuleStoryTooLong},
		{"empty notes", GateInput{Notes: text(0)}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := gate.Check(tt.in)
			if tt.wantRule == "" {
				if err != nil {
					t.Fatalf("expected pass, got %v", err)
				}
				return
			}
			var verr *domain.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Rule != tt.wantRule {
				t.Errorf("expected rule %s, got %s", tt.wantRule, verr.Rule)
			}
		})
	}
}

func TestGate_MessageCarriesCount(t *testing.T) {
	err := NewGate().Check(GateInput{Story: text(901)})

	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Length != 901 || verr.Limit != 900 {
		t.Errorf("expected 901/900, got %d/%d", verr.Length, verr.Limit)
	}
	if !strings.Contains(verr.Message, "901") || !strings.Contains(verr.Message, "900") {
		t.Errorf("expected message to contain count and limit, got %q", verr.Message)
	}
}

func TestGate_TrimsBeforeCounting(t *testing.T) {
	s := "   " + strings.Repeat("a", 19) + "\n\t"
	if err := NewGate().Check(GateInput{Story: &s}); err == nil {
		t.Error("expected surrounding whitespace not to count")
	}
}
