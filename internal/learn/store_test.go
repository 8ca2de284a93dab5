package learn

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func TestStore_FreshInteractionBonus(t *testing.T) {
	// Given: one interaction of each type, recorded just now
	s := NewStore(7)
	s.Record("f1", TypeViewed, baseTime)
	s.Record("f2", TypeDownloaded, baseTime)
	s.Record("f3", TypeSelected, baseTime)

	// Then: the bonus is weight x 3 at zero age
	assert.InDelta(t, 6, s.BonusFor("f1", baseTime), 0.001)
	assert.InDelta(t, 15, s.BonusFor("f2", baseTime), 0.001)
	assert.InDelta(t, 30, s.BonusFor("f3", baseTime), 0.001)
}

func TestStore_BonusDecaysLinearly(t *testing.T) {
	s := NewStore(7)
	s.Record("f1", TypeSelected, baseTime)

	// Halfway through the window the bonus is half the fresh value.
	half := baseTime.Add(3*24*time.Hour + 12*time.Hour)
	assert.InDelta(t, 15, s.BonusFor("f1", half), 0.001)
}

func TestStore_ExpiredRecordContributesNothing(t *testing.T) {
	s := NewStore(7)
	s.Record("f1", TypeSelected, baseTime)

	after := baseTime.Add(8 * 24 * time.Hour)
	assert.Zero(t, s.BonusFor("f1", after))
}

func TestStore_BonusSumsAcrossRecords(t *testing.T) {
	// Two fresh downloads must score strictly higher than one.
	s := NewStore(7)
	s.Record("f1", TypeDownloaded, baseTime)

	one := s.BonusFor("f1", baseTime)
	s.Record("f1", TypeDownloaded, baseTime)
	two := s.BonusFor("f1", baseTime)

	assert.Greater(t, two, one)
	assert.InDelta(t, 30, two, 0.001)
}

func TestStore_UnknownFileHasZeroBonus(t *testing.T) {
	s := NewStore(7)
	assert.Zero(t, s.BonusFor("nope", baseTime))
}

func TestStore_CompactDropsOnlyExpired(t *testing.T) {
	// Given: one expired and one live record for the same file, plus a
	// fully expired file
	s := NewStore(7)
	s.Record("f1", TypeViewed, baseTime.Add(-10*24*time.Hour))
	s.Record("f1", TypeViewed, baseTime)
	s.Record("f2", TypeSelected, baseTime.Add(-30*24*time.Hour))

	// When: compacting
	dropped := s.Compact(baseTime)

	// Then: exactly the expired records are gone
	assert.Equal(t, 2, dropped)
	assert.Equal(t, 1, s.CountFor("f1"))
	assert.Zero(t, s.CountFor("f2"))
	assert.Equal(t, 1, s.TotalCount())
}

func TestStore_LazyCompactionOnStaleRead(t *testing.T) {
	s := NewStore(7)
	s.Record("f1", TypeViewed, baseTime)

	// A read far past the compaction interval triggers cleanup of the now
	// expired record.
	later := baseTime.Add(9 * 24 * time.Hour)
	assert.Zero(t, s.BonusFor("f1", later))
	assert.Zero(t, s.TotalCount())
}

func TestStore_Forget(t *testing.T) {
	s := NewStore(7)
	s.Record("f1", TypeViewed, baseTime)
	s.Record("f1", TypeSelected, baseTime)
	s.Record("f2", TypeViewed, baseTime)

	s.Forget("f1")

	assert.Zero(t, s.CountFor("f1"))
	assert.Equal(t, 1, s.TotalCount())
}

func TestStore_Reset(t *testing.T) {
	s := NewStore(7)
	s.Record("f1", TypeSelected, baseTime)

	s.Reset()

	assert.Zero(t, s.TotalCount())
	assert.Zero(t, s.BonusFor("f1", baseTime))
}

func TestStore_ExportImportRoundTrip(t *testing.T) {
	// Given: records across two files in non-sorted insert order
	s := NewStore(7)
	s.Record("f2", TypeViewed, baseTime.Add(time.Minute))
	s.Record("f1", TypeDownloaded, baseTime)
	s.Record("f1", TypeViewed, baseTime.Add(2*time.Minute))

	// When: exporting and importing into a fresh store
	exported := s.Export()
	restored := NewStore(7)
	restored.Import(exported)

	// Then: bonuses are identical and export order is deterministic
	require.Len(t, exported, 3)
	assert.Equal(t, "f1", exported[0].FileID)
	assert.Equal(t, exported, restored.Export())
	assert.InDelta(t, s.BonusFor("f1", baseTime), restored.BonusFor("f1", baseTime), 0.0001)
}

func TestParseType(t *testing.T) {
	tests := []struct {
		input  string
		expect Type
		ok     bool
	}{
		{"viewed", TypeViewed, true},
		{"view", TypeViewed, true},
		{"DOWNLOAD", TypeDownloaded, true},
		{"downloaded", TypeDownloaded, true},
		{"select", TypeSelected, true},
		{"selected", TypeSelected, true},
		{"clicked", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseType(tt.input)
		assert.Equal(t, tt.ok, ok, "input %q", tt.input)
		assert.Equal(t, tt.expect, got, "input %q", tt.input)
	}
}

func TestTypeWeight(t *testing.T) {
	assert.Equal(t, float64(2), TypeViewed.Weight())
	assert.Equal(t, float64(5), TypeDownloaded.Weight())
	assert.Equal(t, float64(10), TypeSelected.Weight())
	assert.Zero(t, Type("bogus").Weight())
}
