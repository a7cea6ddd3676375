package todo

import (
	"math/rand"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// NewID returns a random UUID. If the system's secure random source is
// unavailable it falls back to FallbackID.
func NewID() string {
	id, err := uuid.NewRandom()
	if err != nil {
		return FallbackID(time.Now())
	}
	return id.String()
}

// FallbackID builds an id from the timestamp in base 36 and a 64-bit random
// suffix.
func FallbackID(now time.Time) string {
	return strconv.FormatInt(now.UnixMilli(), 36) + "-" + strconv.FormatUint(rand.Uint64(), 36)
}
