package http

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTokens_RoundTrip(t *testing.T) {
	tokens := NewSessionTokens("secret", time.Hour)

	signed, err := tokens.Issue("5b9d6a3e-0000-4000-8000-000000000001")
	require.NoError(t, err)

	sid, err := tokens.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, "5b9d6a3e-0000-4000-8000-000000000001", sid)
}

func TestSessionTokens_Rejects(t *testing.T) {
	tokens := NewSessionTokens("secret", time.Hour)
	signed, err := tokens.Issue("sid")
	require.NoError(t, err)

	_, err = NewSessionTokens("other", time.Hour).Parse(signed)
	assert.Error(t, err, "wrong secret")

	expired := NewSessionTokens("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = expired.Parse(signed)
	assert.Error(t, err, "expired")

	_, err = tokens.Parse("garbage")
	assert.Error(t, err)
}
