package ledger

import "strings"

// Owned is implemented by every user-scoped record.
type Owned interface {
	OwnerID() string
}

// Authorize is the ownership gate. It returns rec when it exists and belongs
// to userID, and ErrNotFound otherwise, so a foreign record cannot be told
// apart from a missing one.
func Authorize[T Owned](rec T, found bool, userID string) (T, error) {
	var zero T
	if !found || strings.TrimSpace(userID) == "" || rec.OwnerID() != userID {
		return zero, ErrNotFound
	}
	return rec, nil
}
