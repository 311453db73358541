package timefmt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConvertUTC(t *testing.T) {
	f, err := New("")
	require.NoError(t, err)

	display, err := f.Convert("2024-01-10T23:59:00Z")
	require.NoError(t, err)
	require.Equal(t, Display{Date: "10 Jan 2024", Time: "11:59 PM"}, display)

	display, err = f.Convert("2024-03-02T08:05:00.123Z")
	require.NoError(t, err)
	require.Equal(t, Display{Date: "02 Mar 2024", Time: "08:05 AM"}, display)
}

func TestConvertInZone(t *testing.T) {
	f, err := New("Asia/Jakarta")
	require.NoError(t, err)

	display, err := f.Convert("2024-01-10T20:00:00Z")
	require.NoError(t, err)
	require.Equal(t, Display{Date: "11 Jan 2024", Time: "03:00 AM"}, display)
}

func TestConvertRejectsGarbage(t *testing.T) {
	var f Formatter
	_, err := f.Convert("yesterday")
	require.Error(t, err)

	_, err = New("Not/AZone")
	require.Error(t, err)
}

func TestElapsed(t *testing.T) {
	var f Formatter
	now := time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)

	past, err := f.Elapsed("2024-01-02T12:00:00Z", now)
	require.NoError(t, err)
	require.Equal(t, "3 days ago", past)

	future, err := f.Elapsed("2024-01-05T14:00:00Z", now)
	require.NoError(t, err)
	require.Equal(t, "2 hours from now", future)
}
