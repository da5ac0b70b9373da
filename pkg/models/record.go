package models

import "encoding/json"

// typeTag is the field every record value carries to name its schema.
const typeTag = "$type"

// RecordValue is the body of a repository record: a JSON object whose
// $type field names the schema it claims to follow. The zero value is
// not valid; build one with NewRecordValue, RecordValueWithType, or
// ParseRecordValue.
type RecordValue struct {
	fields map[string]any
}

func validateRecordFields(fields map[string]any) error {
	tag, ok := fields[typeTag]
	if !ok {
		return invalidInput("record value", "missing "+typeTag+" field")
	}
	if _, ok := tag.(string); !ok {
		return invalidInput("record value", typeTag+" must be a string")
	}
	return nil
}

// NewRecordValue builds a record value from fields, which must carry a
// string $type entry. The map is copied shallowly.
func NewRecordValue(fields map[string]any) (RecordValue, error) {
	if err := validateRecordFields(fields); err != nil {
		return RecordValue{}, err
	}
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return RecordValue{fields: copied}, nil
}

// RecordValueWithType builds a record value from fields with the $type
// entry set to collection, overriding any existing tag.
func RecordValueWithType(collection NSID, fields map[string]any) RecordValue {
	copied := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		copied[k] = v
	}
	copied[typeTag] = collection.String()
	return RecordValue{fields: copied}
}

// ParseRecordValue decodes data as a JSON object and validates its
// $type field.
func ParseRecordValue(data []byte) (RecordValue, error) {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return RecordValue{}, invalidInput("record value", "not a JSON object: "+err.Error())
	}
	return NewRecordValue(fields)
}

// Type returns the value of the $type field.
func (v RecordValue) Type() string {
	tag, _ := v.fields[typeTag].(string)
	return tag
}

// Get looks up a field by name.
func (v RecordValue) Get(key string) (any, bool) {
	val, ok := v.fields[key]
	return val, ok
}

// Value returns a shallow copy of the underlying fields.
func (v RecordValue) Value() map[string]any {
	copied := make(map[string]any, len(v.fields))
	for k, val := range v.fields {
		copied[k] = val
	}
	return copied
}

// MarshalJSON re-validates the fields before rendering them, so a zero
// RecordValue cannot slip onto the wire.
func (v RecordValue) MarshalJSON() ([]byte, error) {
	if err := validateRecordFields(v.fields); err != nil {
		return nil, err
	}
	return json.Marshal(v.fields)
}

// UnmarshalJSON decodes and validates a record value in place.
func (v *RecordValue) UnmarshalJSON(data []byte) error {
	parsed, err := ParseRecordValue(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Record is a stored record together with its address and content
// identifier.
type Record struct {
	URI   ATURI       `json:"uri"`
	CID   string      `json:"cid"`
	Value RecordValue `json:"value"`
}
