package timezone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemResolverKnownZone(t *testing.T) {
	loc, err := NewSystemResolver().Resolve("America/New_York")
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", loc.String())
}

func TestSystemResolverUnknownZone(t *testing.T) {
	_, err := NewSystemResolver().Resolve("Not/AZone")
	assert.Error(t, err)
}

func TestToUTCHonorsDST(t *testing.T) {
	loc, err := NewSystemResolver().Resolve("America/New_York")
	require.NoError(t, err)

	// June 1st is EDT, offset -4.
	local := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	got := ToUTC(local, loc)
	assert.Equal(t, time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC), got)

	// January 15th is EST, offset -5.
	winter := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)
	got = ToUTC(winter, loc)
	assert.Equal(t, time.Date(2025, 1, 15, 14, 0, 0, 0, time.UTC), got)
}

func TestToUTCWithUTC(t *testing.T) {
	local := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, local, ToUTC(local, time.UTC))
}
