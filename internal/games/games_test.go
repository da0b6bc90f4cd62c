package games

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashtags(t *testing.T) {
	t.Parallel()

	require.Contains(t, Hashtags("Elden Ring: Shadow of the Erdtree"), "#eldenring")
	require.Contains(t, Hashtags("Grand Theft Auto GTA V"), "#gtav")
	require.Equal(t, DefaultTags, Hashtags("Some Unknown Indie Gem"))
}

func TestHashtagsDeterministicOnMultipleKeywords(t *testing.T) {
	t.Parallel()

	// Two known keywords in one name; the lexically first must win on
	// every call.
	const name = "Dark Souls vs Elden Ring comparison"
	first := Hashtags(name)
	require.Contains(t, first, "#darksouls")
	for i := 0; i < 50; i++ {
		require.Equal(t, first, Hashtags(name))
	}
}

func TestIsPopular(t *testing.T) {
	t.Parallel()

	require.True(t, IsPopular("CYBERPUNK 2077"))
	require.True(t, IsPopular("God of War Ragnarok"))
	require.False(t, IsPopular("Stardew Valley"))
	require.False(t, IsPopular(""))
}
