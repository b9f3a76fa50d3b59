package strata

import (
	"strings"

	"github.com/google/uuid"
)

// idLength matches the short random ids used by the remote note store.
const idLength = 12

// newEntityID generates a local placeholder id. It is replaced by the
// server-assigned id once the entity's CREATE is committed.
func newEntityID() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return id[:idLength]
}
