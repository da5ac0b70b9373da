package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	atdock "github.com/atdock/atdock.go"
	"github.com/atdock/atdock.go/internal/fakepds"
	"github.com/atdock/atdock.go/pkg/models"
)

func runCLI(t *testing.T, ctx context.Context, stdin io.Reader, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	if stdin != nil {
		root.SetIn(stdin)
	}
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return out.String(), errOut.String(), err
}

// fieldValue extracts the value of a "Label: value" output line.
func fieldValue(t *testing.T, output, label string) string {
	t.Helper()
	for _, line := range strings.Split(output, "\n") {
		if value, ok := strings.CutPrefix(line, label+": "); ok {
			return value
		}
	}
	t.Fatalf("no %q field in output:\n%s", label, output)
	return ""
}

func isolateXDG(t *testing.T) string {
	t.Helper()
	dataDir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dataDir)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(envPDS, "")
	return dataDir
}

func TestCommands_fileFlow(t *testing.T) {
	ctx := context.Background()
	dataDir := isolateXDG(t)
	pdsURL := "file://" + t.TempDir()

	stdout, _, err := runCLI(t, ctx, nil,
		"pds", "create-account", "alice.test", "--password", "hunter2", "--pds", pdsURL)
	require.NoError(t, err, "create-account failed")
	assert.Contains(t, stdout, "Account created.")
	did := fieldValue(t, stdout, "DID")
	assert.True(t, strings.HasPrefix(did, "did:plc:"), "unexpected DID: %s", did)

	stdout, _, err = runCLI(t, ctx, nil,
		"pds", "login", "--identifier", "alice.test", "--password", "hunter2", "--pds", pdsURL)
	require.NoError(t, err, "login failed")
	assert.Contains(t, stdout, "Logged in.")
	assert.Equal(t, did, fieldValue(t, stdout, "DID"))

	info, err := os.Stat(filepath.Join(dataDir, "atdock", "session.json"))
	require.NoError(t, err, "login should persist a session file")
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	stdout, _, err = runCLI(t, ctx, nil, "pds", "whoami")
	require.NoError(t, err, "whoami failed")
	assert.Equal(t, did, fieldValue(t, stdout, "DID"))
	assert.Equal(t, pdsURL, fieldValue(t, stdout, "PDS"))
	assert.NotContains(t, stdout, "Access token expires", "file sessions have no token to inspect")

	stdout, _, err = runCLI(t, ctx, strings.NewReader(`{"text": "hello"}`),
		"pds", "create-record", "app.bsky.feed.post", "--json", "-")
	require.NoError(t, err, "create-record failed")
	uri := strings.TrimSpace(stdout)
	assert.True(t, strings.HasPrefix(uri, "at://"+did+"/app.bsky.feed.post/"), "unexpected URI: %s", uri)

	stdout, _, err = runCLI(t, ctx, nil, "pds", "get-record", uri)
	require.NoError(t, err, "get-record failed")
	assert.Contains(t, stdout, `"text": "hello"`)
	assert.Contains(t, stdout, `"$type": "app.bsky.feed.post"`)

	stdout, _, err = runCLI(t, ctx, nil, "pds", "list-records", "--collection", "app.bsky.feed.post")
	require.NoError(t, err, "list-records failed")
	assert.Contains(t, stdout, uri)

	stdout, _, err = runCLI(t, ctx, nil, "pds", "delete-record", uri)
	require.NoError(t, err, "delete-record failed")
	assert.Contains(t, stdout, "Deleted "+uri)

	_, stderr, err := runCLI(t, ctx, nil, "pds", "list-records", "--collection", "app.bsky.feed.post")
	require.NoError(t, err)
	assert.Contains(t, stderr, "No records found.")

	stdout, _, err = runCLI(t, ctx, nil,
		"pds", "remove-account", did, "--delete-records", "--force", "--pds", pdsURL)
	require.NoError(t, err, "remove-account failed")
	assert.Contains(t, stdout, "removed")
}

func TestCommands_remoteFlow(t *testing.T) {
	ctx := context.Background()
	dataDir := isolateXDG(t)
	server := fakepds.NewServer()
	t.Cleanup(server.Close)
	account := server.AddAccount("alice.test", "hunter2")

	stdout, _, err := runCLI(t, ctx, nil,
		"pds", "login", "--identifier", "alice.test", "--password", "hunter2", "--pds", server.URL())
	require.NoError(t, err, "login failed")
	assert.Equal(t, account.DID, fieldValue(t, stdout, "DID"))

	sessionFile := filepath.Join(dataDir, "atdock", "session.json")
	before, err := os.ReadFile(sessionFile)
	require.NoError(t, err)

	stdout, _, err = runCLI(t, ctx, nil, "pds", "refresh-token")
	require.NoError(t, err, "refresh-token failed")
	assert.Contains(t, stdout, "Session refreshed.")

	after, err := os.ReadFile(sessionFile)
	require.NoError(t, err)
	assert.NotEqual(t, string(before), string(after), "refresh should persist rotated tokens")

	stdout, _, err = runCLI(t, ctx, strings.NewReader(`{"text": "wired"}`),
		"pds", "create-record", "app.bsky.feed.post", "--json", "-")
	require.NoError(t, err, "create-record failed")
	assert.True(t, strings.HasPrefix(strings.TrimSpace(stdout), "at://"+account.DID+"/"))

	_, _, err = runCLI(t, ctx, nil,
		"pds", "remove-account", account.DID, "--force", "--pds", server.URL())
	require.Error(t, err, "remote account removal is refused")
	assert.Contains(t, err.Error(), "not supported")
}

func TestCommands_envPDS(t *testing.T) {
	ctx := context.Background()
	isolateXDG(t)
	pdsURL := "file://" + t.TempDir()
	t.Setenv(envPDS, pdsURL)

	stdout, _, err := runCLI(t, ctx, nil,
		"pds", "create-account", "bob.test", "--password", "hunter2")
	require.NoError(t, err, "create-account should pick the PDS up from the environment")
	assert.Equal(t, pdsURL, fieldValue(t, stdout, "PDS"))
}

func TestCommands_removeAccountPrompt(t *testing.T) {
	ctx := context.Background()
	isolateXDG(t)
	pdsURL := "file://" + t.TempDir()

	stdout, _, err := runCLI(t, ctx, nil,
		"pds", "create-account", "carol.test", "--password", "hunter2", "--pds", pdsURL)
	require.NoError(t, err)
	did := fieldValue(t, stdout, "DID")

	// Declining the prompt leaves the account in place.
	_, stderr, err := runCLI(t, ctx, strings.NewReader("n\n"),
		"pds", "remove-account", did, "--pds", pdsURL)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Aborted.")

	stdout, _, err = runCLI(t, ctx, strings.NewReader("y\n"),
		"pds", "remove-account", did, "--pds", pdsURL)
	require.NoError(t, err)
	assert.Contains(t, stdout, "removed")
}

func TestSubscribe_streamsFileEvents(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dataDir)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(envPDS, "")
	pdsDir := t.TempDir()
	pdsURL := "file://" + pdsDir

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, _, err := runCLI(t, ctx, nil,
		"pds", "create-account", "alice.test", "--password", "hunter2", "--pds", pdsURL)
	require.NoError(t, err)
	_, _, err = runCLI(t, ctx, nil,
		"pds", "login", "--identifier", "alice.test", "--password", "hunter2", "--pds", pdsURL)
	require.NoError(t, err)

	type result struct {
		stdout string
		err    error
	}
	done := make(chan result, 1)
	go func() {
		stdout, _, err := runCLI(t, ctx, nil, "pds", "subscribe", "--json")
		done <- result{stdout: stdout, err: err}
	}()

	// Give the subscription time to attach, then produce an event
	// through the library against the same directory.
	time.Sleep(300 * time.Millisecond)
	client, err := atdock.Open(pdsURL)
	require.NoError(t, err)
	session, err := client.Login(ctx, atdock.Credentials{Identifier: "alice.test", Password: "hunter2"})
	require.NoError(t, err)
	collection, err := models.ParseNSID("app.bsky.feed.post")
	require.NoError(t, err)
	_, err = session.CreateRecord(ctx, collection, models.RecordValueWithType(collection, map[string]any{"text": "live"}))
	require.NoError(t, err)

	time.Sleep(1200 * time.Millisecond)
	cancel()

	select {
	case res := <-done:
		require.NoError(t, res.err)
		assert.Contains(t, res.stdout, `"action":"create"`, "the commit should stream out as JSON")
	case <-time.After(5 * time.Second):
		t.Fatal("subscribe did not stop after cancellation")
	}
}
