package models

import "strings"

// maxNSIDLength is the longest namespaced identifier accepted, in bytes.
const maxNSIDLength = 317

// NSID is a namespaced identifier in reverse-DNS form, e.g.
// "app.bsky.feed.post". It names a collection of records of one logical
// type. An NSID is validated on construction and immutable afterwards.
type NSID struct {
	raw string
}

// isASCIILetter checks if a rune is an ASCII letter (a-z, A-Z)
func isASCIILetter(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

// isASCIIDigit checks if a rune is an ASCII digit (0-9)
func isASCIIDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

// ParseNSID validates s and returns it as an NSID. An NSID has at least
// three dot-separated segments; each segment starts with a letter and
// continues with letters, digits, or hyphens. The whole identifier is
// capped at 317 bytes.
func ParseNSID(s string) (NSID, error) {
	if len(s) > maxNSIDLength {
		return NSID{}, invalidInput(s, "an NSID must be at most 317 characters")
	}

	segments := strings.Split(s, ".")
	if len(segments) < 3 {
		return NSID{}, invalidInput(s, "an NSID must have at least three dot-separated segments")
	}

	for _, segment := range segments {
		if segment == "" {
			return NSID{}, invalidInput(s, "NSID segments must not be empty")
		}
		for i, ch := range segment {
			if i == 0 {
				if !isASCIILetter(ch) {
					return NSID{}, invalidInput(s, "NSID segments must start with a letter")
				}
				continue
			}
			if !isASCIILetter(ch) && !isASCIIDigit(ch) && ch != '-' {
				return NSID{}, invalidInput(s, "NSID segments may only contain letters, digits, and hyphens")
			}
		}
	}

	return NSID{raw: s}, nil
}

func (n NSID) String() string {
	return n.raw
}

// MarshalText renders the NSID in its canonical string form.
func (n NSID) MarshalText() ([]byte, error) {
	return []byte(n.raw), nil
}

// UnmarshalText parses and validates an NSID from its string form.
func (n *NSID) UnmarshalText(text []byte) error {
	parsed, err := ParseNSID(string(text))
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}
