package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_SanitizedStripsSecrets(t *testing.T) {
	token := "refresh"
	u := &User{ID: "1", Username: "alice", PasswordHash: "$2a$hash", RefreshToken: &token}

	s := u.Sanitized()

	assert.Empty(t, s.PasswordHash)
	assert.Nil(t, s.RefreshToken)
	assert.Equal(t, "alice", s.Username)
	assert.Equal(t, "$2a$hash", u.PasswordHash, "original must be untouched")
	assert.Nil(t, (*User)(nil).Sanitized())
}

func TestUser_JSONNeverCarriesSecrets(t *testing.T) {
	token := "refresh"
	b, err := json.Marshal(&User{ID: "1", PasswordHash: "$2a$hash", RefreshToken: &token})
	require.NoError(t, err)

	assert.NotContains(t, string(b), "hash")
	assert.NotContains(t, string(b), "refresh")
	assert.Contains(t, string(b), `"_id":"1"`)
}
