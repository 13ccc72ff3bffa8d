package devauth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider_RequiresSubjectAndEmail(t *testing.T) {
	_, err := NewProvider(Config{Email: "dev@example.com"})
	assert.Error(t, err)

	_, err = NewProvider(Config{Subject: "dev-1"})
	assert.Error(t, err)
}

func TestAuthCodeURL_PointsAtLocalCallback(t *testing.T) {
	p, err := NewProvider(Config{Subject: "dev-1", Email: "dev@example.com"})
	require.NoError(t, err)

	u := p.AuthCodeURL("some state")
	assert.Equal(t, "/oauth/code?code=dev&state=some+state", u)
}

func TestExchange_ReturnsConfiguredIdentity(t *testing.T) {
	p, err := NewProvider(Config{Subject: "dev-1", Email: "dev@example.com"})
	require.NoError(t, err)

	id, err := p.Exchange(context.Background(), "dev")
	require.NoError(t, err)
	assert.Equal(t, "dev-1", id.Subject)
	assert.Equal(t, "dev@example.com", id.Email)
	assert.False(t, id.ExpiresAt.IsZero())
}
