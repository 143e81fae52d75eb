package domain

// ExtractionResult is one decoded oracle answer. A nil value means the oracle
// answered null for that slot; a missing key means it was not asked.
type ExtractionResult struct {
	Values   map[SlotName]*string `json:"values"`
	Response string               `json:"response"`
}

type UpdateKind int

const (
	UpdateUnset UpdateKind = iota
	UpdateValue
	UpdateCorrection
)

func (k UpdateKind) String() string {
	switch k {
	case UpdateValue:
		return "value"
	case UpdateCorrection:
		return "correction"
	default:
		return "unset"
	}
}

// SlotUpdate is a single proposed change produced from an extraction.
type SlotUpdate struct {
	Slot  SlotName
	Kind  UpdateKind
	Value string
}

type ReviewAction string

const (
	ReviewApprove ReviewAction = "approve"
	ReviewRevise  ReviewAction = "revise"
)

// Outcome of a keyword classification.
type Classification int

const (
	Undetermined Classification = iota
	Affirmative
	Negative
)

func (c Classification) String() string {
	switch c {
	case Affirmative:
		return "affirmative"
	case Negative:
		return "negative"
	default:
		return "undetermined"
	}
}
