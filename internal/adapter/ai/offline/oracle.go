// Package offline is a keyword-matching oracle for the simulator. It reads
// the rendered prompt, finds vocabulary values in the user message and answers
// in the same JSON shape a model would.
package offline

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/seu-repo/songorder/internal/domain"
)

var (
	taskPattern  = regexp.MustCompile(`TASK \(([a-z_]+)\)`)
	shapePattern = regexp.MustCompile(`OUTPUT SHAPE:\n\{(.*)\}`)
	keyPattern   = regexp.MustCompile(`"([a-z_]+)": string`)
)

const (
	userMarker = "USER MESSAGE:\n\"\"\""
	ack        = "Tamam, not aldım."
)

type Oracle struct{}

func NewOracle() *Oracle {
	return &Oracle{}
}

func (o *Oracle) Extract(ctx context.Context, prompt string, temperature float64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	task := ""
	if m := taskPattern.FindStringSubmatch(prompt); m != nil {
		task = m[1]
	}
	message := userMessage(prompt)

	out := map[string]*string{}
	if m := shapePattern.FindStringSubmatch(prompt); m != nil {
		for _, k := range keyPattern.FindAllStringSubmatch(m[1], -1) {
			out[k[1]] = fill(task, domain.SlotName(k[1]), message)
		}
	}
	response := ack
	out["response"] = &response

	data, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func userMessage(prompt string) string {
	i := strings.LastIndex(prompt, userMarker)
	if i < 0 {
		return ""
	}
	return strings.TrimSuffix(prompt[i+len(userMarker):], `"""`)
}

func fill(task string, key domain.SlotName, message string) *string {
	switch {
	case key == domain.SlotVocal:
		if v, ok := domain.ParseVocal(message); ok {
			return ptr(string(v))
		}
	case domain.ClosedVocabulary(key) != nil:
		folded := domain.Fold(message)
		for _, v := range domain.ClosedVocabulary(key) {
			if strings.Contains(folded, domain.Fold(v)) {
				return ptr(v)
			}
		}
	case key == domain.SlotRecipientRelation && task == "recipient":
		if m := strings.TrimSpace(message); m != "" {
			return ptr(m)
		}
	case string(key) == "verdict":
		return ptr("ok")
	}
	return nil
}

func ptr(s string) *string { return &s }
