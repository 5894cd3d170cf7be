package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// Canonical normalizes resource identifiers. 128-bit identifiers are accepted
// with or without dashes and returned in the dashed lowercase form; any other
// value is treated as opaque and only trimmed.
func Canonical(id string) string {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return ""
	}
	if parsed, err := uuid.Parse(trimmed); err == nil {
		return parsed.String()
	}
	return trimmed
}

// Equal compares two identifiers after canonicalization.
func Equal(a, b string) bool {
	ca := Canonical(a)
	return ca != "" && ca == Canonical(b)
}

// Parse returns the UUID form of a canonical 128-bit identifier.
func Parse(id string) (uuid.UUID, bool) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil || parsed == uuid.Nil {
		return uuid.Nil, false
	}
	return parsed, true
}

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// ResourceUUID maps an opaque resource identifier to a row key. 128-bit ids
// are used as-is so rows stay addressable by their natural identity.
func ResourceUUID(id string) uuid.UUID {
	if parsed, ok := Parse(id); ok {
		return parsed
	}
	return UUID("go-publish:resource:" + Canonical(id))
}

func RenderEntryUUID(resourceID, kind string) uuid.UUID {
	return UUID("go-publish:render:" + Canonical(resourceID) + ":" + strings.ToLower(strings.TrimSpace(kind)))
}

func ContentObjectUUID(objectID string) uuid.UUID {
	if parsed, ok := Parse(objectID); ok {
		return parsed
	}
	return UUID("go-publish:object:" + Canonical(objectID))
}
