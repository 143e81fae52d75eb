package slotfill

import (
	"slices"
	"testing"

	"github.com/seu-repo/songorder/internal/domain"
)

func str(s string) *string { return &s }

func result(values map[domain.SlotName]*string) *domain.ExtractionResult {
	return &domain.ExtractionResult{Values: values, Response: "tamamdır"}
}

func TestMerge_FillsUnsetSlots(t *testing.T) {
	// Arrange
	m := NewMerger()
	state := domain.NewPartialOrderState()

	// Act
	next, report := m.Merge(state, result(map[domain.SlotName]*string{
		domain.SlotSongType:  str("Pop"),
		domain.SlotSongStyle: nil,
	}), "pop olsun")

	// Assert
	if got := next.Value(domain.SlotSongType); got != "Pop" {
		t.Errorf("expected song_type Pop, got %q", got)
	}
	if next.Has(domain.SlotSongStyle) {
		t.Error("null must not set a slot")
	}
	if !slices.Equal(report.Filled, []domain.SlotName{domain.SlotSongType}) {
		t.Errorf("expected filled [song_type], got %v", report.Filled)
	}
	if state.Len() != 0 {
		t.Error("input state must not be mutated")
	}
}

func TestMerge_Idempotent(t *testing.T) {
	// Arrange
	m := NewMerger()
	r := result(map[domain.SlotName]*string{
		domain.SlotSongType: str("Rock"),
		domain.SlotVocal:    str("Erkek"),
	})

	// Act
	once, _ := m.Merge(domain.NewPartialOrderState(), r, "rock, erkek sesi")
	twice, report := m.Merge(once, r, "rock, erkek sesi")

	// Assert
	if !once.Equal(twice) {
		t.Errorf("expected second merge to be a no-op, got %v then %v", once.Map(), twice.Map())
	}
	if report.Changed() {
		t.Errorf("expected no changes, got %+v", report)
	}
}

func TestMerge_NoSilentClobber(t *testing.T) {
	// Arrange
	m := NewMerger()
	state := domain.NewPartialOrderState().With(domain.SlotVocal, string(domain.VocalFemale))

	// Act
	next, report := m.Merge(state, result(map[domain.SlotName]*string{
		domain.SlotVocal: str("Erkek"),
	}), "annem için olsun")

	// Assert
	if got := next.Value(domain.SlotVocal); got != string(domain.VocalFemale) {
		t.Errorf("expected vocal to stay Kadın, got %q", got)
	}
	if !slices.Equal(report.Kept, []domain.SlotName{domain.SlotVocal}) {
		t.Errorf("expected kept [vocal], got %v", report.Kept)
	}
	if len(report.Corrected) != 0 {
		t.Errorf("expected no corrections, got %v", report.Corrected)
	}
}

func TestMerge_NullNeverClears(t *testing.T) {
	state := domain.NewPartialOrderState().With(domain.SlotSongType, "Jazz")

	next, _ := NewMerger().Merge(state, result(map[domain.SlotName]*string{
		domain.SlotSongType: nil,
	}), "bilmiyorum")

	if got := next.Value(domain.SlotSongType); got != "Jazz" {
		t.Errorf("expected Jazz, got %q", got)
	}
}

func TestMerge_CorrectionPrecedence(t *testing.T) {
	tests := []struct {
		name    string
		slot    domain.SlotName
		current string
		value   string
		turn    string
		want    string
	}{
		{"marker değil", domain.SlotVocal, "Kadın", "Erkek", "kadın değil erkek olsun", "Erkek"},
		{"marker demedim", domain.SlotSongType, "Rap", "Rock", "rap demedim, rock dedim", "Rock"},
		{"marker yanlış", domain.SlotRecipientName, "Ayşe", "Ayşegül", "isim yanlış, Ayşegül", "Ayşegül"},
		{"explicit new vocal", domain.SlotVocal, "Kadın", "Erkek", "erkek sesi olsun", "Erkek"},
		{"explicit new genre", domain.SlotSongType, "Pop", "Metal", "metal olsun", "Metal"},
		{"turn names both genres", domain.SlotSongType, "Pop", "Metal", "pop mu metal mi bilemedim", "Pop"},
		{"free text without marker", domain.SlotRecipientRelation, "Anne", "Baba", "babam da dinleyecek", "Anne"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := domain.NewPartialOrderState().With(tt.slot, tt.current)

			next, _ := NewMerger().Merge(state, result(map[domain.SlotName]*string{tt.slot: str(tt.value)}), tt.turn)

			if got := next.Value(tt.slot); got != tt.want {
				t.Errorf("expected %s=%q, got %q", tt.slot, tt.want, got)
			}
		})
	}
}

func TestMerge_DisjointFillsCommute(t *testing.T) {
	m := NewMerger()
	a := result(map[domain.SlotName]*string{domain.SlotSongType: str("Pop")})
	b := result(map[domain.SlotName]*string{domain.SlotSongStyle: str("Sakin")})
	empty := domain.NewPartialOrderState()

	ab, _ := m.Merge(empty, a, "")
	ab, _ = m.Merge(ab, b, "")
	ba, _ := m.Merge(empty, b, "")
	ba, _ = m.Merge(ba, a, "")

	if !ab.Equal(ba) {
		t.Errorf("expected merge order not to matter, got %v and %v", ab.Map(), ba.Map())
	}
}

func TestMerge_EmptyNotesIsAValue(t *testing.T) {
	next, report := NewMerger().Merge(domain.NewPartialOrderState(), result(map[domain.SlotName]*string{
		domain.SlotNotes: str(""),
	}), "yok")

	if !next.Has(domain.SlotNotes) {
		t.Error("expected empty notes to count as answered")
	}
	if !slices.Equal(report.Filled, []domain.SlotName{domain.SlotNotes}) {
		t.Errorf("expected filled [notes], got %v", report.Filled)
	}
}

func TestPlan_Kinds(t *testing.T) {
	state := domain.NewPartialOrderState().With(domain.SlotVocal, "Kadın")
	updates := NewMerger().Plan(state, result(map[domain.SlotName]*string{
		domain.SlotVocal:    str("Erkek"),
		domain.SlotSongType: str("Pop"),
		domain.SlotStory:    nil,
	}), "kadın değil erkek olsun")

	kinds := map[domain.SlotName]domain.UpdateKind{}
	for _, u := range updates {
		kinds[u.Slot] = u.Kind
	}
	want := map[domain.SlotName]domain.UpdateKind{
		domain.SlotVocal:    domain.UpdateCorrection,
		domain.SlotSongType: domain.UpdateValue,
		domain.SlotStory:    domain.UpdateUnset,
	}
	for slot, kind := range want {
		if kinds[slot] != kind {
			t.Errorf("%s: expected %s, got %s", slot, kind, kinds[slot])
		}
	}
}
