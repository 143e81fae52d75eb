package slotfill

import (
	"errors"
	"testing"

	"github.com/seu-repo/songorder/internal/domain"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"no fence", `{"a": "b"}`, `{"a": "b"}`},
		{"plain fence", "```\n{\"a\": \"b\"}\n```", `{"a": "b"}`},
		{"json fence", "```json\n{\"a\": \"b\"}\n```", `{"a": "b"}`},
		{"single line fence", "```json{\"a\": \"b\"}```", `{"a": "b"}`},
		{"surrounding whitespace", "  \n```json\n{\"a\": \"b\"}\n```  \n", `{"a": "b"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripFences(tt.raw); got != tt.want {
				t.Errorf("StripFences() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeObject_Valid(t *testing.T) {
	raw := "```json\n{\"song_type\": \"Pop\", \"vocal\": null, \"response\": \"Harika!\"}\n```"

	p, err := DecodeObject(raw, []string{"song_type", "vocal"})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if p.Response != "Harika!" {
		t.Errorf("expected response 'Harika!', got %q", p.Response)
	}
	if v := p.Fields["song_type"]; v == nil || *v != "Pop" {
		t.Errorf("expected song_type Pop, got %v", v)
	}
	v, ok := p.Fields["vocal"]
	if !ok || v != nil {
		t.Errorf("expected vocal present and null, got %v (present=%v)", v, ok)
	}
}

func TestDecodeObject_AbsentKeyIsNotNull(t *testing.T) {
	p, err := DecodeObject(`{"response": "ok"}`, []string{"song_type"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := p.Fields["song_type"]; ok {
		t.Error("expected song_type to be absent")
	}
}

func TestDecodeObject_Malformed(t *testing.T) {
	keys := []string{"song_type"}
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"only fence", "```json\n```"},
		{"prose before", `Sure! {"song_type": "Pop", "response": "ok"}`},
		{"trailing prose", `{"song_type": "Pop", "response": "ok"} hope this helps`},
		{"two objects", `{"response": "a"}{"response": "b"}`},
		{"array", `[{"response": "ok"}]`},
		{"unknown key", `{"song_type": "Pop", "mood": "Sakin", "response": "ok"}`},
		{"number value", `{"song_type": 3, "response": "ok"}`},
		{"bool value", `{"song_type": true, "response": "ok"}`},
		{"object value", `{"song_type": {"name": "Pop"}, "response": "ok"}`},
		{"missing response", `{"song_type": "Pop"}`},
		{"null response", `{"song_type": "Pop", "response": null}`},
		{"truncated", `{"song_type": "Pop", "resp`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeObject(tt.raw, keys)
			var malformed *domain.MalformedOracleOutputError
			if !errors.As(err, &malformed) {
				t.Fatalf("expected MalformedOracleOutputError, got %v", err)
			}
			if malformed.Raw != tt.raw {
				t.Errorf("expected raw payload to be kept")
			}
		})
	}
}
