package tool

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateUUIDV7 returns a time-ordered UUID suitable for primary keys.
func GenerateUUIDV7() string {
	return uuid.Must(uuid.NewV7()).String()
}

// CompactUUID returns a random UUID with the dashes stripped, used for
// client keys and salts where the wire format wants a bare hex token.
func CompactUUID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
