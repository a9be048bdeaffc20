package puzzle

import (
	"strconv"
	"strings"
)

// Sentinel replaces the secret offset in the store once a challenge is solved.
const Sentinel = "verified"

// State is the decoded form of a stored challenge value: either pending with
// its secret offset, or verified.
type State struct {
	verified bool
	offset   int
}

func Pending(offset int) State { return State{offset: offset} }

func Verified() State { return State{verified: true} }

func (s State) IsVerified() bool { return s.verified }

// Offset returns the secret offset of a pending challenge.
func (s State) Offset() (int, bool) {
	if s.verified {
		return 0, false
	}
	return s.offset, true
}

// String encodes the state the way stores persist it.
func (s State) String() string {
	if s.verified {
		return Sentinel
	}
	return strconv.Itoa(s.offset)
}

// ParseState decodes a stored value. Anything other than the sentinel or a
// decimal integer is rejected with ErrInvalidPosition.
func ParseState(stored string) (State, error) {
	if stored == Sentinel {
		return Verified(), nil
	}
	offset, err := parsePosition(stored)
	if err != nil {
		return State{}, err
	}
	return Pending(offset), nil
}

// IsVerified reports whether a raw stored value marks a solved challenge.
func IsVerified(stored string) bool {
	return stored == Sentinel
}

// parsePosition accepts decimal offsets that fit in 32 bits, so differences
// of two positions never overflow an int64.
func parsePosition(s string) (int, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, newError("parsePosition", ErrInvalidPosition, s)
	}
	return int(n), nil
}
