package models

// Actions recorded on commit operations.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// RepoEvent is one event from a repository subscription stream. The
// set of implementations is closed: CommitEvent, IdentityEvent,
// HandleEvent, InfoEvent, and UnknownEvent.
type RepoEvent interface {
	repoEvent()
}

// CommitEvent describes changes committed to a repository.
type CommitEvent struct {
	// Repo is the repository DID.
	Repo string `json:"repo"`

	// Rev is the commit revision.
	Rev string `json:"rev"`

	// Seq is the sequence number within the stream.
	Seq int64 `json:"seq"`

	// Time is the commit timestamp.
	Time string `json:"time"`

	// Ops are the operations in this commit.
	Ops []CommitOperation `json:"ops"`
}

// CommitOperation is one operation within a commit.
type CommitOperation struct {
	// Path is the record path, collection/rkey.
	Path string `json:"path"`

	// Action is one of create, update, or delete.
	Action string `json:"action"`

	// CID identifies the record content for creates and updates.
	CID string `json:"cid,omitempty"`
}

// IdentityEvent announces an identity update.
type IdentityEvent struct {
	DID  string `json:"did"`
	Seq  int64  `json:"seq"`
	Time string `json:"time"`
}

// HandleEvent announces a handle change.
type HandleEvent struct {
	DID    string `json:"did"`
	Handle string `json:"handle"`
	Seq    int64  `json:"seq"`
	Time   string `json:"time"`
}

// InfoEvent is sent by the server at connection start.
type InfoEvent struct {
	Name    string `json:"name"`
	Message string `json:"message,omitempty"`
}

// UnknownEvent stands in for a frame the client does not decode.
type UnknownEvent struct {
	Kind string `json:"kind"`
}

func (CommitEvent) repoEvent()   {}
func (IdentityEvent) repoEvent() {}
func (HandleEvent) repoEvent()   {}
func (InfoEvent) repoEvent()     {}
func (UnknownEvent) repoEvent()  {}
