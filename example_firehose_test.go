package atdock_test

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atdock/atdock.go/contrib/testenv"
	"github.com/atdock/atdock.go/pkg/models"
)

func ExamplePds_Firehose() {
	p, session := testenv.MustNewSession("example_firehose", "alice.example.test")

	ctx := context.Background()
	sub, err := p.Firehose(ctx)
	if err != nil {
		panic(err)
	}
	defer sub.Close()

	collection, err := models.ParseNSID("app.bsky.feed.post")
	if err != nil {
		panic(err)
	}
	value, err := models.NewRecordValue(map[string]any{
		"$type": "app.bsky.feed.post",
		"text":  "ping",
	})
	if err != nil {
		panic(err)
	}
	if _, err := session.CreateRecord(ctx, collection, value); err != nil {
		panic(err)
	}

	select {
	case ev := <-sub.Events():
		commit, ok := ev.(models.CommitEvent)
		if !ok {
			panic(fmt.Sprintf("unexpected event type %T", ev))
		}
		op := commit.Ops[0]
		fmt.Println("action:", op.Action)
		fmt.Println("collection:", strings.SplitN(op.Path, "/", 2)[0])
	case <-time.After(10 * time.Second):
		panic("timed out waiting for the commit event")
	}

	// Output:
	// action: create
	// collection: app.bsky.feed.post
}

// ExamplePds_FirehoseFrom shows cursor handling on the file engine: the
// cursor is accepted for contract symmetry but the operation log has no
// positional replay, so tailing still starts at the current end.
func ExamplePds_FirehoseFrom() {
	p := testenv.MustNew("example_firehosefrom")

	sub, err := p.WithLogger(testenv.NewTestLogger()).FirehoseFrom(context.Background(), 42)
	if err != nil {
		panic(err)
	}
	defer sub.Close()

	// Output:
	// [0] DEBUG: file firehose has no positional replay, ignoring cursor cursor=42
}
