package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseATURI(t *testing.T) {
	uri, err := ParseATURI("at://did:plc:ewvi7nxzyoun6zhxrhs64oiz/app.bsky.feed.post/3jzfcijpj2z2a")
	require.NoError(t, err, "failed to parse at URI")

	assert.Equal(t, "did:plc:ewvi7nxzyoun6zhxrhs64oiz", uri.Repo().String())
	assert.Equal(t, "app.bsky.feed.post", uri.Collection().String())
	assert.Equal(t, "3jzfcijpj2z2a", uri.RecordKey().String())
	assert.Equal(t, "at://did:plc:ewvi7nxzyoun6zhxrhs64oiz/app.bsky.feed.post/3jzfcijpj2z2a", uri.String(),
		"at URI does not round-trip")
}

func TestParseATURI_invalid(t *testing.T) {
	testcases := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "missing scheme", input: "did:plc:abc/app.bsky.feed.post/3jzfcijpj2z2a"},
		{name: "missing rkey", input: "at://did:plc:abc/app.bsky.feed.post"},
		{name: "missing collection", input: "at://did:plc:abc"},
		{name: "bad did", input: "at://plc:abc/app.bsky.feed.post/3jzfcijpj2z2a"},
		{name: "bad collection", input: "at://did:plc:abc/post/3jzfcijpj2z2a"},
		{name: "bad rkey", input: "at://did:plc:abc/app.bsky.feed.post/.."},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseATURI(tc.input)
			require.Error(t, err, "expected at URI %q to be rejected", tc.input)

			var invalid *InvalidInputError
			assert.ErrorAs(t, err, &invalid, "expected an InvalidInputError")
		})
	}
}

func TestNewATURI(t *testing.T) {
	did, err := ParseDID("did:plc:abc123")
	require.NoError(t, err)
	collection, err := ParseNSID("app.bsky.feed.post")
	require.NoError(t, err)
	rkey, err := ParseRecordKey("3jzfcijpj2z2a")
	require.NoError(t, err)

	uri := NewATURI(did, collection, rkey)
	assert.Equal(t, "at://did:plc:abc123/app.bsky.feed.post/3jzfcijpj2z2a", uri.String())

	parsed, err := ParseATURI(uri.String())
	require.NoError(t, err, "composed at URI should parse back")
	assert.Equal(t, uri, parsed)
}
