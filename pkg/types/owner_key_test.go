package types

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOwnerKeyValidate(t *testing.T) {
	userID := uuid.New()
	sessionID := "abc123"

	require.NoError(t, UserOwner(userID).Validate())
	require.NoError(t, SessionOwner(sessionID).Validate())

	both := OwnerKey{UserID: &userID, SessionID: &sessionID}
	assert.Error(t, both.Validate())
	assert.Error(t, OwnerKey{}.Validate())

	empty := ""
	assert.Error(t, OwnerKey{SessionID: &empty}.Validate())
}

func TestOwnerKeyString(t *testing.T) {
	userID := uuid.New()
	assert.Equal(t, "user:"+userID.String(), UserOwner(userID).String())
	assert.Equal(t, "session:s1", SessionOwner("s1").String())
	assert.Equal(t, "anonymous", OwnerKey{}.String())
}
