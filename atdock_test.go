package atdock_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	atdock "github.com/atdock/atdock.go"
	"github.com/atdock/atdock.go/internal/fakepds"
	"github.com/atdock/atdock.go/pkg/models"
	"github.com/atdock/atdock.go/pkg/pds"
)

func mustNSID(t *testing.T, s string) models.NSID {
	t.Helper()
	nsid, err := models.ParseNSID(s)
	require.NoError(t, err)
	return nsid
}

func TestOpen(t *testing.T) {
	client, err := atdock.Open("file:///srv/pds")
	require.NoError(t, err)
	_, ok := client.Backend().(*pds.FileBackend)
	assert.True(t, ok, "file URLs should get the file engine")

	client, err = atdock.Open("https://pds.example.com")
	require.NoError(t, err)
	_, ok = client.Backend().(*pds.XRPCBackend)
	assert.True(t, ok, "network URLs should get the XRPC engine")
	assert.Equal(t, "https://pds.example.com", client.URL().String())

	_, err = atdock.Open("ftp://pds.example.com")
	require.Error(t, err, "unsupported schemes should be rejected up front")
}

func TestPds_fileFlow(t *testing.T) {
	ctx := context.Background()
	client, err := atdock.Open("file://" + t.TempDir())
	require.NoError(t, err)

	out, err := client.CreateAccount(ctx, pds.CreateAccountInput{Handle: "alice.test", Password: "hunter2"})
	require.NoError(t, err, "failed to create account")

	session, err := client.Login(ctx, atdock.Credentials{Identifier: "alice.test", Password: "hunter2"})
	require.NoError(t, err, "failed to log in")
	assert.Equal(t, out.DID, session.DID())
	assert.Empty(t, session.ExportAccessToken(), "file sessions carry no tokens")
	assert.Empty(t, session.ExportRefreshToken())

	collection := mustNSID(t, "app.bsky.feed.post")
	value := models.RecordValueWithType(collection, map[string]any{"text": "from the facade"})
	uri, err := session.CreateRecord(ctx, collection, value)
	require.NoError(t, err)
	assert.Equal(t, out.DID, uri.Repo(), "records land in the session's own repo")

	record, err := session.GetRecord(ctx, uri)
	require.NoError(t, err)
	assert.Equal(t, uri, record.URI)

	page, err := session.ListRecords(ctx, session.DID(), collection, 0, "")
	require.NoError(t, err)
	assert.Len(t, page.Records, 1)

	require.NoError(t, session.DeleteRecord(ctx, uri))

	// Tokenless sessions have nothing to rotate.
	assert.NoError(t, session.Refresh(ctx))
}

func TestPds_xrpcFlow(t *testing.T) {
	ctx := context.Background()
	server := fakepds.NewServer()
	t.Cleanup(server.Close)

	client, err := atdock.Open(server.URL())
	require.NoError(t, err)

	_, err = client.CreateAccount(ctx, pds.CreateAccountInput{Handle: "alice.test", Password: "hunter2"})
	require.NoError(t, err)

	session, err := client.Login(ctx, atdock.Credentials{Identifier: "alice.test", Password: "hunter2"})
	require.NoError(t, err, "failed to log in")
	assert.NotEmpty(t, session.ExportAccessToken(), "network sessions carry a token pair")
	assert.NotEmpty(t, session.ExportRefreshToken())

	collection := mustNSID(t, "app.bsky.feed.post")
	value := models.RecordValueWithType(collection, map[string]any{"text": "hello"})
	uri, err := session.CreateRecord(ctx, collection, value)
	require.NoError(t, err)

	record, err := session.GetRecord(ctx, uri)
	require.NoError(t, err)
	assert.Equal(t, "hello", mustGet(t, record.Value, "text"))
}

func TestPds_loginRejected(t *testing.T) {
	ctx := context.Background()

	t.Run("file engine", func(t *testing.T) {
		client, err := atdock.Open("file://" + t.TempDir())
		require.NoError(t, err)
		_, err = client.CreateAccount(ctx, pds.CreateAccountInput{Handle: "alice.test", Password: "hunter2"})
		require.NoError(t, err)

		_, err = client.Login(ctx, atdock.Credentials{Identifier: "alice.test", Password: "wrong"})
		require.Error(t, err)
		assert.True(t, pds.IsAuthError(err), "got %v", err)
	})

	t.Run("network engine", func(t *testing.T) {
		server := fakepds.NewServer()
		t.Cleanup(server.Close)
		server.AddAccount("alice.test", "hunter2")

		client, err := atdock.Open(server.URL())
		require.NoError(t, err)

		_, err = client.Login(ctx, atdock.Credentials{Identifier: "alice.test", Password: "wrong"})
		require.Error(t, err)
		assert.True(t, pds.IsAuthError(err), "got %v", err)
	})
}

func TestPds_firehoseFrom(t *testing.T) {
	ctx := context.Background()
	server := fakepds.NewServer()
	t.Cleanup(server.Close)

	client, err := atdock.Open(server.URL())
	require.NoError(t, err)

	sub, err := client.FirehoseFrom(ctx, 7)
	require.NoError(t, err)
	defer sub.Close()
	assert.Equal(t, int64(7), server.LastCursor(), "the cursor should reach the server")
}

func TestPds_fileFirehose(t *testing.T) {
	ctx := context.Background()
	client, err := atdock.Open("file://" + t.TempDir())
	require.NoError(t, err)

	sub, err := client.Firehose(ctx)
	require.NoError(t, err)
	defer sub.Close()

	out, err := client.CreateAccount(ctx, pds.CreateAccountInput{Handle: "alice.test", Password: "hunter2"})
	require.NoError(t, err)
	session, err := client.Login(ctx, atdock.Credentials{Identifier: "alice.test", Password: "hunter2"})
	require.NoError(t, err)

	collection := mustNSID(t, "app.bsky.feed.post")
	value := models.RecordValueWithType(collection, map[string]any{"text": "live"})
	_, err = session.CreateRecord(ctx, collection, value)
	require.NoError(t, err)

	select {
	case ev, ok := <-sub.Events():
		require.True(t, ok, "subscription ended early: %v", sub.Err())
		commit, ok := ev.(models.CommitEvent)
		require.True(t, ok, "expected a commit event, got %T", ev)
		assert.Equal(t, out.DID.String(), commit.Repo)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a firehose event")
	}
}

func mustGet(t *testing.T, value models.RecordValue, key string) any {
	t.Helper()
	v, ok := value.Get(key)
	require.True(t, ok, "record value is missing %q", key)
	return v
}
