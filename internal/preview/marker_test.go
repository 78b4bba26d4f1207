// filepath: internal/preview/marker_test.go
package preview

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shapehub/internal/models"
)

func TestLoadState_AbsentMarker(t *testing.T) {
	st, err := LoadState(filepath.Join(t.TempDir(), ".preview_repair_done"))
	require.NoError(t, err)
	assert.Nil(t, st)
}

func TestSaveLoadState_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".preview_repair_done")
	done := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	require.NoError(t, SaveState(path, models.RepairState{
		CompletedAt: done,
		Repairs:     3,
		Duplicates:  1,
	}))

	st, err := LoadState(path)
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.True(t, st.CompletedAt.Equal(done))
	assert.Equal(t, 3, st.Repairs)
	assert.Equal(t, 1, st.Duplicates)
	assert.Equal(t, StateVersion, st.Version)
}

func TestLoadState_LegacyTimestamp(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".preview_repair_done")
	require.NoError(t, os.WriteFile(path, []byte("2024-11-05T08:15:00Z\n"), 0644))

	st, err := LoadState(path)
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, 2024, st.CompletedAt.Year())
	assert.Equal(t, 0, st.Repairs)
	assert.Equal(t, 0, st.Version)
}

func TestLoadState_JunkContentStillCountsAsMarker(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".preview_repair_done")
	require.NoError(t, os.WriteFile(path, []byte("done-ish"), 0644))

	st, err := LoadState(path)
	require.NoError(t, err)
	require.NotNil(t, st, "a marker with junk content still suppresses re-runs")
	assert.True(t, st.CompletedAt.IsZero())
}
