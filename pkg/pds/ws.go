package pds

import (
	"context"
	"encoding/hex"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/websocket"

	"github.com/atdock/atdock.go/pkg/constants"
	"github.com/atdock/atdock.go/pkg/models"
)

// defaultDialer mirrors gorilla's DefaultDialer without its handshake
// timeout. Deadlines come from caller contexts.
var defaultDialer = &websocket.Dialer{
	Proxy: http.ProxyFromEnvironment,
}

// buildWSURL derives the subscription URL from the base URL: scheme
// swapped to its websocket counterpart, subscribeRepos path, and the
// cursor as a query parameter when set.
func buildWSURL(base models.PDSURL, cursor int64) (string, error) {
	u, err := url.Parse(base.XRPCURL(methodSubscribeRepos))
	if err != nil {
		return "", &models.InvalidInputError{Value: base.String(), Reason: err.Error()}
	}

	switch u.Scheme {
	case constants.HTTPSecureScheme:
		u.Scheme = constants.WebsocketSecureScheme
	case constants.HTTPScheme:
		u.Scheme = constants.WebsocketScheme
	default:
		return "", &models.InvalidInputError{Value: base.String(), Reason: "not a network URL"}
	}

	if cursor != 0 {
		q := u.Query()
		q.Set("cursor", strconv.FormatInt(cursor, 10))
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// Firehose opens the subscribeRepos stream. A cursor other than zero is
// forwarded so the server can replay from that sequence.
func (b *XRPCBackend) Firehose(ctx context.Context, cursor int64) (*Subscription, error) {
	wsURL, err := buildWSURL(b.url, cursor)
	if err != nil {
		return nil, err
	}

	b.logger.Debug("dialing firehose", "url", wsURL)
	conn, resp, err := defaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		if errors.Is(err, websocket.ErrBadHandshake) && resp != nil {
			defer resp.Body.Close()
			return nil, parseErrorResponse(resp)
		}
		return nil, classifyRequestError(err)
	}
	resp.Body.Close()

	ctx, cancel := context.WithCancel(ctx)
	sub := newSubscription(cancel)
	go b.readFirehose(ctx, sub, conn)
	return sub, nil
}

// readFirehose pumps frames from conn into the subscription until the
// peer closes, the context ends, or a read fails.
func (b *XRPCBackend) readFirehose(ctx context.Context, sub *Subscription, conn *websocket.Conn) {
	defer conn.Close()

	// ReadMessage has no context support, so cancellation closes the
	// connection out from under it.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			switch {
			case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived):
				sub.finish(nil)
			case ctx.Err() != nil:
				sub.finish(ctx.Err())
			default:
				sub.finish(classifyRequestError(err))
			}
			return
		}

		switch msgType {
		case websocket.BinaryMessage:
			if !sub.deliver(ctx, decodeFrame(data)) {
				sub.finish(ctx.Err())
				return
			}
		case websocket.TextMessage:
			b.logger.Debug("ignoring text frame on firehose", "size", len(data))
		}
	}
}

// decodeFrame summarizes a binary stream frame. Native frames are
// DAG-CBOR with a header and body; this client does not unpack them and
// reports a hex preview of the first 32 bytes instead.
func decodeFrame(data []byte) models.RepoEvent {
	preview := data
	if len(preview) > 32 {
		preview = preview[:32]
	}
	return models.UnknownEvent{Kind: "binary:" + hex.EncodeToString(preview)}
}
