package web

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-assignments/internal/assignmentlist"
	"github.com/noah-isme/gema-assignments/pkg/apiclient"
)

func TestRegistryReusesAndEvictsViews(t *testing.T) {
	client, err := apiclient.New("http://api.invalid")
	require.NoError(t, err)

	created := 0
	registry := NewRegistry(client, func(fetcher assignmentlist.Fetcher, unsubmitter assignmentlist.Unsubmitter, notifier assignmentlist.Notifier) *assignmentlist.View {
		created++
		return assignmentlist.New(fetcher, unsubmitter, notifier)
	}, 10*time.Minute, zerolog.Nop())

	now := time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)
	registry.now = func() time.Time { return now }

	first := registry.Acquire("a", "t1")
	again := registry.Acquire("a", "t2")
	require.Same(t, first, again)
	require.Equal(t, 1, created)
	require.Equal(t, "t2", first.token)

	registry.Acquire("b", "t3")
	require.Equal(t, 2, registry.Len())

	now = now.Add(6 * time.Minute)
	_, ok := registry.Lookup("b", "t3")
	require.True(t, ok)

	now = now.Add(6 * time.Minute)
	require.Equal(t, 1, registry.Sweep())
	require.Equal(t, 1, registry.Len())

	_, ok = registry.Lookup("a", "t1")
	require.False(t, ok)
	require.ErrorIs(t, first.View.Reload(t.Context()), assignmentlist.ErrClosed)

	registry.Close()
	require.Zero(t, registry.Len())
}
