package models

import "strings"

// ATURI addresses one record as "at://<did>/<collection>/<rkey>". It is
// composed of three already-validated parts, so building one from parts
// never fails; parsing from a string re-validates each part.
type ATURI struct {
	repo       DID
	collection NSID
	rkey       RecordKey
}

// NewATURI composes a URI from validated parts.
func NewATURI(repo DID, collection NSID, rkey RecordKey) ATURI {
	return ATURI{repo: repo, collection: collection, rkey: rkey}
}

// ParseATURI validates s and returns it as an ATURI.
func ParseATURI(s string) (ATURI, error) {
	rest, ok := strings.CutPrefix(s, "at://")
	if !ok {
		return ATURI{}, invalidInput(s, `an AT URI must start with "at://"`)
	}

	parts := strings.SplitN(rest, "/", 3)
	if len(parts) != 3 {
		return ATURI{}, invalidInput(s, "an AT URI must have a repository, a collection, and a record key")
	}

	repo, err := ParseDID(parts[0])
	if err != nil {
		return ATURI{}, err
	}
	collection, err := ParseNSID(parts[1])
	if err != nil {
		return ATURI{}, err
	}
	rkey, err := ParseRecordKey(parts[2])
	if err != nil {
		return ATURI{}, err
	}

	return ATURI{repo: repo, collection: collection, rkey: rkey}, nil
}

// Repo returns the DID owning the record.
func (u ATURI) Repo() DID {
	return u.repo
}

// Collection returns the collection holding the record.
func (u ATURI) Collection() NSID {
	return u.collection
}

// RecordKey returns the record's key within its collection.
func (u ATURI) RecordKey() RecordKey {
	return u.rkey
}

func (u ATURI) String() string {
	return "at://" + u.repo.String() + "/" + u.collection.String() + "/" + u.rkey.String()
}

// MarshalText renders the URI in its canonical string form.
func (u ATURI) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// UnmarshalText parses and validates an AT URI from its string form.
func (u *ATURI) UnmarshalText(text []byte) error {
	parsed, err := ParseATURI(string(text))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}
