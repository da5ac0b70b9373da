package models

// maxRecordKeyLength is the longest record key accepted, in bytes.
const maxRecordKeyLength = 512

// RecordKey names one record within a collection. Keys are 1 to 512
// characters from [A-Za-z0-9._~-] and never exactly "." or "..".
type RecordKey struct {
	raw string
}

// isRecordKeyChar checks if a rune is valid inside a record key
func isRecordKeyChar(ch rune) bool {
	return isASCIILetter(ch) || isASCIIDigit(ch) || ch == '.' || ch == '_' || ch == '~' || ch == '-'
}

// ParseRecordKey validates s and returns it as a RecordKey.
func ParseRecordKey(s string) (RecordKey, error) {
	if s == "" {
		return RecordKey{}, invalidInput(s, "a record key must not be empty")
	}
	if len(s) > maxRecordKeyLength {
		return RecordKey{}, invalidInput(s, "a record key must be at most 512 characters")
	}
	if s == "." || s == ".." {
		return RecordKey{}, invalidInput(s, `a record key must not be "." or ".."`)
	}
	for _, ch := range s {
		if !isRecordKeyChar(ch) {
			return RecordKey{}, invalidInput(s, "a record key may only contain letters, digits, and ._~-")
		}
	}

	return RecordKey{raw: s}, nil
}

func (k RecordKey) String() string {
	return k.raw
}

// MarshalText renders the record key in its canonical string form.
func (k RecordKey) MarshalText() ([]byte, error) {
	return []byte(k.raw), nil
}

// UnmarshalText parses and validates a record key from its string form.
func (k *RecordKey) UnmarshalText(text []byte) error {
	parsed, err := ParseRecordKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
