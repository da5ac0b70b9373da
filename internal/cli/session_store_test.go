package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	atdock "github.com/atdock/atdock.go"
	"github.com/atdock/atdock.go/internal/fakepds"
	"github.com/atdock/atdock.go/pkg/logger"
	"github.com/atdock/atdock.go/pkg/models"
)

func mustPDSURL(t *testing.T, raw string) models.PDSURL {
	t.Helper()
	url, err := models.ParsePDSURL(raw)
	require.NoError(t, err)
	return url
}

func mustDID(t *testing.T, raw string) models.DID {
	t.Helper()
	did, err := models.ParseDID(raw)
	require.NoError(t, err)
	return did
}

func TestSessionStore_roundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")
	url := mustPDSURL(t, "https://pds.example.com")
	did := mustDID(t, "did:plc:ewvi7nxzyoun6zhxrhs64oiz")

	// No refresh token, so loading performs no network traffic.
	session := atdock.RestoreSession(url, did, "at-access", "")
	require.NoError(t, saveSession(path, session))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm(), "the session file holds tokens and must be owner-only")

	var stored storedSession
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &stored))
	assert.Equal(t, did.String(), stored.DID)
	assert.Equal(t, url.String(), stored.PDS)
	assert.Equal(t, "at-access", stored.AccessToken)
	assert.Empty(t, stored.RefreshToken)

	loaded, err := loadSession(ctx, path, logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, did, loaded.DID())
	assert.Equal(t, url.String(), loaded.PDS().String())
	assert.Equal(t, "at-access", loaded.ExportAccessToken())
}

func TestLoadSession_missingFile(t *testing.T) {
	_, err := loadSession(context.Background(), filepath.Join(t.TempDir(), "session.json"), logger.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no active session")
}

func TestLoadSession_malformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := loadSession(context.Background(), path, logger.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid session file")
}

func TestLoadSession_refreshRotatesAndPersists(t *testing.T) {
	ctx := context.Background()
	server := fakepds.NewServer()
	t.Cleanup(server.Close)
	account := server.AddAccount("alice.test", "hunter2")
	access, refresh := server.MintTokens(account.DID)

	path := filepath.Join(t.TempDir(), "session.json")
	session := atdock.RestoreSession(mustPDSURL(t, server.URL()), mustDID(t, account.DID), access, refresh)
	require.NoError(t, saveSession(path, session))

	loaded, err := loadSession(ctx, path, logger.Nop())
	require.NoError(t, err)
	assert.NotEqual(t, access, loaded.ExportAccessToken(), "loading should rotate the pair")

	// The rotated pair is written back so the stored refresh token
	// stays usable.
	var stored storedSession
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &stored))
	assert.Equal(t, loaded.ExportAccessToken(), stored.AccessToken)
	assert.Equal(t, loaded.ExportRefreshToken(), stored.RefreshToken)
}

func TestLoadSession_refreshFailureKeepsTokens(t *testing.T) {
	ctx := context.Background()
	server := fakepds.NewServer()
	t.Cleanup(server.Close)
	account := server.AddAccount("alice.test", "hunter2")

	// The refresh token is not known to the server, so the refresh
	// fails; the stored tokens must survive.
	path := filepath.Join(t.TempDir(), "session.json")
	session := atdock.RestoreSession(mustPDSURL(t, server.URL()), mustDID(t, account.DID), "at-stale", "rt-unknown")
	require.NoError(t, saveSession(path, session))

	loaded, err := loadSession(ctx, path, logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, "at-stale", loaded.ExportAccessToken())
	assert.Equal(t, "rt-unknown", loaded.ExportRefreshToken())
}
