package random

import (
	"strconv"
	"time"
)

// Base36Alphabet is the digit set used for generated identifiers
const Base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// idSuffixLength is the number of random characters appended to an ID
const idSuffixLength = 11

// NewID builds an identifier from the base36 millisecond timestamp followed
// by a random base36 suffix. IDs are practically unique; collisions are not
// checked.
func NewID(now time.Time, r Random) string {
	return strconv.FormatInt(now.UnixMilli(), 36) + r.String(idSuffixLength, Base36Alphabet)
}
