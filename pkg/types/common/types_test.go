package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseID(t *testing.T) {
	id := NewID()
	parsed, err := ParseID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = ParseID("not-a-uuid")
	require.Error(t, err)

	_, err = ParseID("")
	require.Error(t, err)
}

func TestParseIDNormalizesCase(t *testing.T) {
	parsed, err := ParseID("6BA7B810-9DAD-11D1-80B4-00C04FD430C8")
	require.NoError(t, err)
	assert.Equal(t, ID("6ba7b810-9dad-11d1-80b4-00c04fd430c8"), parsed)
}

func TestIsValidID(t *testing.T) {
	assert.True(t, IsValidID(NewID().String()))
	assert.False(t, IsValidID("zzz"))
	assert.False(t, IsValidID(""))
}

func TestDateRangeContains(t *testing.T) {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	r := DateRange{From: &from, To: &to}
	assert.True(t, r.Contains(from))
	assert.True(t, r.Contains(from.Add(time.Hour)))
	assert.False(t, r.Contains(to), "To bound is exclusive")
	assert.False(t, r.Contains(from.Add(-time.Second)))

	unbounded := DateRange{}
	assert.True(t, unbounded.Contains(time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)))

	openEnd := DateRange{From: &from}
	assert.True(t, openEnd.Contains(to.AddDate(10, 0, 0)))
	assert.False(t, openEnd.Contains(from.Add(-time.Hour)))
}
