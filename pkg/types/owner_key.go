package types

import (
	"fmt"

	"github.com/google/uuid"
)

// OwnerKey identifies a cart's owner: either an authenticated user or an
// anonymous browser session, never both.
type OwnerKey struct {
	UserID    *uuid.UUID
	SessionID *string
}

// UserOwner builds an owner key for an authenticated user.
func UserOwner(userID uuid.UUID) OwnerKey {
	return OwnerKey{UserID: &userID}
}

// SessionOwner builds an owner key for an anonymous browser session.
func SessionOwner(sessionID string) OwnerKey {
	return OwnerKey{SessionID: &sessionID}
}

// IsUser reports whether the key refers to an authenticated user.
func (k OwnerKey) IsUser() bool {
	return k.UserID != nil
}

// IsZero reports whether neither identity is present.
func (k OwnerKey) IsZero() bool {
	return k.UserID == nil && (k.SessionID == nil || *k.SessionID == "")
}

// Validate enforces the exactly-one-owner invariant.
func (k OwnerKey) Validate() error {
	if k.UserID != nil && k.SessionID != nil {
		return fmt.Errorf("owner key cannot carry both user and session")
	}
	if k.IsZero() {
		return fmt.Errorf("owner key requires a user or session identity")
	}
	return nil
}

// String renders a stable key usable for logging and keyed locks.
func (k OwnerKey) String() string {
	if k.UserID != nil {
		return "user:" + k.UserID.String()
	}
	if k.SessionID != nil {
		return "session:" + *k.SessionID
	}
	return "anonymous"
}
