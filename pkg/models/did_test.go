package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDID(t *testing.T) {
	testcases := []struct {
		name       string
		input      string
		method     string
		identifier string
	}{
		{
			name:       "plc method",
			input:      "did:plc:ewvi7nxzyoun6zhxrhs64oiz",
			method:     "plc",
			identifier: "ewvi7nxzyoun6zhxrhs64oiz",
		},
		{
			name:       "web method",
			input:      "did:web:example.com",
			method:     "web",
			identifier: "example.com",
		},
		{
			name:       "identifier with colons",
			input:      "did:web:example.com:user:alice",
			method:     "web",
			identifier: "example.com:user:alice",
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			did, err := ParseDID(tc.input)
			require.NoError(t, err, "failed to parse DID")
			assert.Equal(t, tc.method, did.Method(), "parsed method does not match")
			assert.Equal(t, tc.identifier, did.Identifier(), "parsed identifier does not match")
			assert.Equal(t, tc.input, did.String(), "DID does not round-trip")
		})
	}
}

func TestParseDID_invalid(t *testing.T) {
	testcases := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "missing prefix", input: "plc:ewvi7nxzyoun6zhxrhs64oiz"},
		{name: "missing identifier", input: "did:plc"},
		{name: "empty method", input: "did::abc"},
		{name: "empty identifier", input: "did:plc:"},
		{name: "uppercase method", input: "did:PLC:abc"},
		{name: "digit in method", input: "did:plc2:abc"},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseDID(tc.input)
			require.Error(t, err, "expected DID %q to be rejected", tc.input)

			var invalid *InvalidInputError
			assert.ErrorAs(t, err, &invalid, "expected an InvalidInputError")
		})
	}
}

func TestDID_json_roundtrip(t *testing.T) {
	did, err := ParseDID("did:plc:ewvi7nxzyoun6zhxrhs64oiz")
	require.NoError(t, err)

	data, err := json.Marshal(did)
	require.NoError(t, err, "failed to marshal DID")
	assert.Equal(t, `"did:plc:ewvi7nxzyoun6zhxrhs64oiz"`, string(data))

	var decoded DID
	require.NoError(t, json.Unmarshal(data, &decoded), "failed to unmarshal DID")
	assert.Equal(t, did, decoded, "unmarshaled DID does not match original")

	var bad DID
	assert.Error(t, json.Unmarshal([]byte(`"not-a-did"`), &bad), "expected invalid DID to be rejected")
}
