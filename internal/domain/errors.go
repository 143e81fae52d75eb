package domain

import (
	"errors"
	"fmt"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrConversationClosed   = errors.New("conversation already finished")
)

// MalformedOracleOutputError is returned when an oracle payload cannot be
// decoded into the expected shape.
type MalformedOracleOutputError struct {
	Reason string
	Raw    string
}

func (e *MalformedOracleOutputError) Error() string {
	return fmt.Sprintf("malformed oracle output: %s", e.Reason)
}

// OracleTransportError covers timeouts, network failures and an open breaker.
type OracleTransportError struct {
	Provider string
	Err      error
}

func (e *OracleTransportError) Error() string {
	return fmt.Sprintf("oracle %s unavailable: %v", e.Provider, e.Err)
}

func (e *OracleTransportError) Unwrap() error {
	return e.Err
}

type ValidationRule string

const (
	RuleStoryTooLong    ValidationRule = "story_too_long"
	RuleStoryTooShort   ValidationRule = "story_too_short"
	RuleCombinedTooLong ValidationRule = "combined_too_long"
	RuleNotesTooLong    ValidationRule = "notes_too_long"
)

// ValidationError carries the user-facing message with the measured length.
type ValidationError struct {
	Rule    ValidationRule
	Length  int
	Limit   int
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed (%s): length %d, limit %d", e.Rule, e.Length, e.Limit)
}

// UndeterminedClassificationError means no keyword matched a closed question.
type UndeterminedClassificationError struct {
	Question string
	Reask    string
}

func (e *UndeterminedClassificationError) Error() string {
	return fmt.Sprintf("could not classify answer to %s", e.Question)
}

// ContractViolationError flags oracle output that breaks a prompt rule, such
// as naming an artist in the style description.
type ContractViolationError struct {
	Contract string
	Slot     SlotName
	Reason   string
}

func (e *ContractViolationError) Error() string {
	return fmt.Sprintf("contract %s violated on %s: %s", e.Contract, e.Slot, e.Reason)
}
