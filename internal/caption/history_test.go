package caption

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHistoryRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "history.json")
	h := NewHistory(path)
	require.NoError(t, h.Load())
	require.Zero(t, h.Size())

	h.Bump("stunning sunset vista")
	h.Bump("stunning sunset vista")
	h.Bump("epic moment captured")
	require.NoError(t, h.Persist())

	reloaded := NewHistory(path)
	require.NoError(t, reloaded.Load())
	require.Equal(t, 2, reloaded.Count("stunning sunset vista"))
	require.Equal(t, 1, reloaded.Count("epic moment captured"))
	require.Equal(t, 2, reloaded.Size())
}

func TestHistoryTop(t *testing.T) {
	t.Parallel()

	h := NewHistory(filepath.Join(t.TempDir(), "history.json"))
	for i := 0; i < 3; i++ {
		h.Bump("alpha")
	}
	h.Bump("beta")

	top := h.Top(10)
	require.Equal(t, []string{"alpha", "beta"}, top)
	require.Equal(t, []string{"alpha"}, h.Top(1))
}

func TestHistoryReset(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "history.json")
	h := NewHistory(path)
	h.Bump("alpha")
	require.NoError(t, h.Persist())

	require.NoError(t, h.Reset())
	require.Zero(t, h.Size())

	reloaded := NewHistory(path)
	require.NoError(t, reloaded.Load())
	require.Zero(t, reloaded.Size())
}

func TestPattern(t *testing.T) {
	t.Parallel()

	tests := []struct {
		caption string
		want    string
	}{
		{"🎮 This stunning Elden Ring moment! The detail is incredible ✨", "stunning elden ring"},
		{"The mood in this shot hits different...", "mood shot hits"},
		{"", ""},
		{"a an the", ""},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, Pattern(tc.caption), tc.caption)
	}
}
