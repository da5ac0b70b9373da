package constants

import "time"

// Version is the client library version.
const Version = "0.1.0"

// UserAgent is sent on every XRPC request.
const UserAgent = "atdock/" + Version

const (
	// DefaultListLimit is the page size used when a list call passes no limit.
	DefaultListLimit = 50

	// FirehoseBufferSize is the capacity of a subscription's event channel.
	FirehoseBufferSize = 100

	// FirehosePollInterval is how often the file tailer re-checks the log
	// when no filesystem notification arrives.
	FirehosePollInterval = 500 * time.Millisecond
)

var (
	WebsocketScheme       = "ws"
	WebsocketSecureScheme = "wss"
	HTTPScheme            = "http"
	HTTPSecureScheme      = "https"
)
