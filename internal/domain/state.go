package domain

import (
	"encoding/json"
	"fmt"
	"sort"
)

// PartialOrderState is the accumulated slot set of one conversation. A slot
// is set when it is present, even with an empty value ("no notes"). Values are
// copied on write; a state handed out is never mutated afterwards.
type PartialOrderState struct {
	slots map[SlotName]string
}

func NewPartialOrderState() PartialOrderState {
	return PartialOrderState{slots: map[SlotName]string{}}
}

// StateFrom builds a state from a plain map, skipping unknown slot names.
func StateFrom(values map[SlotName]string) PartialOrderState {
	s := NewPartialOrderState()
	for k, v := range values {
		if k.Valid() {
			s.slots[k] = v
		}
	}
	return s
}

func (s PartialOrderState) Get(name SlotName) (string, bool) {
	v, ok := s.slots[name]
	return v, ok
}

func (s PartialOrderState) Has(name SlotName) bool {
	_, ok := s.slots[name]
	return ok
}

// Value returns the slot value or "" when unset.
func (s PartialOrderState) Value(name SlotName) string {
	return s.slots[name]
}

// With returns a copy with name set to value.
func (s PartialOrderState) With(name SlotName, value string) PartialOrderState {
	c := s.Clone()
	c.slots[name] = value
	return c
}

// Without returns a copy with name unset. Only the conversation flow uses it,
// to re-ask a closed question; extractions never clear slots.
func (s PartialOrderState) Without(name SlotName) PartialOrderState {
	c := s.Clone()
	delete(c.slots, name)
	return c
}

// WithBool stores a tri-state flag as "true" or "false".
func (s PartialOrderState) WithBool(name SlotName, value bool) PartialOrderState {
	return s.With(name, fmt.Sprintf("%t", value))
}

// Bool reads a flag slot. set is false when the slot was never answered.
func (s PartialOrderState) Bool(name SlotName) (value bool, set bool) {
	v, ok := s.slots[name]
	if !ok {
		return false, false
	}
	return v == "true", true
}

func (s PartialOrderState) Vocal() (Vocal, bool) {
	v, ok := s.slots[SlotVocal]
	if !ok {
		return "", false
	}
	return ParseVocal(v)
}

func (s PartialOrderState) Clone() PartialOrderState {
	c := PartialOrderState{slots: make(map[SlotName]string, len(s.slots))}
	for k, v := range s.slots {
		c.slots[k] = v
	}
	return c
}

func (s PartialOrderState) Equal(o PartialOrderState) bool {
	if len(s.slots) != len(o.slots) {
		return false
	}
	for k, v := range s.slots {
		ov, ok := o.slots[k]
		if !ok || ov != v {
			return false
		}
	}
	return true
}

func (s PartialOrderState) Len() int {
	return len(s.slots)
}

// Map returns a copy of the underlying values.
func (s PartialOrderState) Map() map[SlotName]string {
	return s.Clone().slots
}

// Filled lists set slots in a stable order.
func (s PartialOrderState) Filled() []SlotName {
	names := make([]SlotName, 0, len(s.slots))
	for k := range s.slots {
		names = append(names, k)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

func (s PartialOrderState) MarshalJSON() ([]byte, error) {
	if s.slots == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s.slots)
}

func (s *PartialOrderState) UnmarshalJSON(data []byte) error {
	var raw map[SlotName]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = StateFrom(raw)
	return nil
}
