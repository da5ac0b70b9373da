package pds

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/atdock/atdock.go/pkg/models"
)

// firehoseEntry is one line of the append-only operation log.
type firehoseEntry struct {
	URI  string `json:"uri"`
	Time string `json:"time"`
	Op   string `json:"op"`
}

func (b *FileBackend) firehosePath() string {
	return filepath.Join(b.pdsDir(), "firehose.jsonl")
}

func (b *FileBackend) firehoseLockPath() string {
	return filepath.Join(b.pdsDir(), "firehose.lock")
}

// appendFirehose writes one log line for op on uri. The write happens
// under an exclusive file lock so concurrent processes cannot
// interleave partial lines, and the file is synced before the lock
// drops.
func (b *FileBackend) appendFirehose(uri models.ATURI, op string) error {
	if err := os.MkdirAll(b.pdsDir(), 0o755); err != nil {
		return transportIO("creating pds directory", err)
	}

	entry := firehoseEntry{
		URI:  uri.String(),
		Time: time.Now().UTC().Format(time.RFC3339Nano),
		Op:   op,
	}
	line, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	line = append(line, '\n')

	lock := flock.New(b.firehoseLockPath())
	if err := lock.Lock(); err != nil {
		return transportIO("locking firehose log", err)
	}
	defer lock.Unlock()

	f, err := os.OpenFile(b.firehosePath(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return transportIO("opening firehose log", err)
	}
	defer f.Close()

	if _, err := f.Write(line); err != nil {
		return transportIO("appending to firehose log", err)
	}
	if err := f.Sync(); err != nil {
		return transportIO("syncing firehose log", err)
	}
	return nil
}
