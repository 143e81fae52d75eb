package slotfill

import (
	"sort"
	"strings"

	"github.com/seu-repo/songorder/internal/domain"
)

// correctionMarkers signal that the user is replacing an earlier answer.
var correctionMarkers = []string{
	"değil", "degil", "demedim", "yanlış", "yanlis", "aslında", "aslinda",
	"yerine", "değiştir", "degistir", "vazgeçtim", "vazgectim",
}

// MergeReport records what a merge did to each slot it touched.
type MergeReport struct {
	Filled    []domain.SlotName
	Corrected []domain.SlotName
	Kept      []domain.SlotName
}

func (r MergeReport) Changed() bool {
	return len(r.Filled) > 0 || len(r.Corrected) > 0
}

// Merger folds extraction results into the partial order state.
type Merger struct{}

func NewMerger() *Merger {
	return &Merger{}
}

// Plan decides the update for each slot in result. Null values are always
// UpdateUnset: an extraction can never clear a slot.
func (m *Merger) Plan(state domain.PartialOrderState, result *domain.ExtractionResult, turn string) []domain.SlotUpdate {
	if result == nil {
		return nil
	}
	slots := make([]domain.SlotName, 0, len(result.Values))
	for s := range result.Values {
		slots = append(slots, s)
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i] < slots[j] })

	updates := make([]domain.SlotUpdate, 0, len(slots))
	for _, slot := range slots {
		v := result.Values[slot]
		if v == nil {
			updates = append(updates, domain.SlotUpdate{Slot: slot, Kind: domain.UpdateUnset})
			continue
		}
		current, set := state.Get(slot)
		switch {
		case !set:
			updates = append(updates, domain.SlotUpdate{Slot: slot, Kind: domain.UpdateValue, Value: *v})
		case sameValue(current, *v):
			updates = append(updates, domain.SlotUpdate{Slot: slot, Kind: domain.UpdateUnset})
		case m.isCorrection(slot, current, *v, turn):
			updates = append(updates, domain.SlotUpdate{Slot: slot, Kind: domain.UpdateCorrection, Value: *v})
		default:
			// set, different and not a correction: the old value stays
			updates = append(updates, domain.SlotUpdate{Slot: slot, Kind: domain.UpdateUnset, Value: *v})
		}
	}
	return updates
}

// Merge applies Plan to state and returns the new state. The input state is
// not modified.
func (m *Merger) Merge(state domain.PartialOrderState, result *domain.ExtractionResult, turn string) (domain.PartialOrderState, MergeReport) {
	var report MergeReport
	next := state
	for _, u := range m.Plan(state, result, turn) {
		switch u.Kind {
		case domain.UpdateValue:
			next = next.With(u.Slot, u.Value)
			report.Filled = append(report.Filled, u.Slot)
		case domain.UpdateCorrection:
			next = next.With(u.Slot, u.Value)
			report.Corrected = append(report.Corrected, u.Slot)
		default:
			if u.Value != "" {
				report.Kept = append(report.Kept, u.Slot)
			}
		}
	}
	return next, report
}

// isCorrection: an explicit marker in the turn, or for closed-vocabulary
// slots the turn naming the new value and not the old one.
func (m *Merger) isCorrection(slot domain.SlotName, current, proposed, turn string) bool {
	text := domain.Fold(turn)
	if containsAny(text, correctionMarkers) {
		return true
	}
	switch slot {
	case domain.SlotVocal:
		newVocal, okNew := domain.ParseVocal(proposed)
		oldVocal, okOld := domain.ParseVocal(current)
		if !okNew {
			return false
		}
		return domain.MentionsVocal(turn, newVocal) && (!okOld || !domain.MentionsVocal(turn, oldVocal))
	case domain.SlotSongType, domain.SlotSongStyle:
		return strings.Contains(text, domain.Fold(proposed)) && !strings.Contains(text, domain.Fold(current))
	}
	return false
}

func sameValue(a, b string) bool {
	return domain.Fold(a) == domain.Fold(b)
}
