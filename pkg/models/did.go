package models

import "strings"

// DID is a decentralized identifier of the form "did:<method>:<identifier>".
// It names the owner of a repository. A DID is validated on construction and
// immutable afterwards; the zero value is not a valid DID.
type DID struct {
	raw string
}

// isLowerASCIILetter checks if a rune is a lowercase ASCII letter (a-z)
func isLowerASCIILetter(ch rune) bool {
	return ch >= 'a' && ch <= 'z'
}

// ParseDID validates s and returns it as a DID. The method segment must be
// non-empty lowercase ASCII letters and the identifier segment must be
// non-empty.
func ParseDID(s string) (DID, error) {
	rest, ok := strings.CutPrefix(s, "did:")
	if !ok {
		return DID{}, invalidInput(s, `a DID must start with "did:"`)
	}

	method, id, ok := strings.Cut(rest, ":")
	if !ok {
		return DID{}, invalidInput(s, "a DID must have a method and an identifier")
	}
	if method == "" {
		return DID{}, invalidInput(s, "the DID method must not be empty")
	}
	for _, ch := range method {
		if !isLowerASCIILetter(ch) {
			return DID{}, invalidInput(s, "the DID method must be lowercase ASCII letters")
		}
	}
	if id == "" {
		return DID{}, invalidInput(s, "the DID identifier must not be empty")
	}

	return DID{raw: s}, nil
}

// Method returns the method segment, e.g. "plc" for "did:plc:abc".
func (d DID) Method() string {
	rest, _ := strings.CutPrefix(d.raw, "did:")
	method, _, _ := strings.Cut(rest, ":")
	return method
}

// Identifier returns the method-specific identifier segment.
func (d DID) Identifier() string {
	rest, _ := strings.CutPrefix(d.raw, "did:")
	_, id, _ := strings.Cut(rest, ":")
	return id
}

func (d DID) String() string {
	return d.raw
}

// MarshalText renders the DID in its canonical string form.
func (d DID) MarshalText() ([]byte, error) {
	return []byte(d.raw), nil
}

// UnmarshalText parses and validates a DID from its string form.
func (d *DID) UnmarshalText(text []byte) error {
	parsed, err := ParseDID(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
