package pds

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/atdock/atdock.go/pkg/constants"
	"github.com/atdock/atdock.go/pkg/models"
)

// Firehose tails the operation log, starting at its current end. New
// log lines become CommitEvents on the returned subscription. The
// cursor is accepted for contract symmetry but ignored: the log has no
// positional replay.
func (b *FileBackend) Firehose(ctx context.Context, cursor int64) (*Subscription, error) {
	if err := os.MkdirAll(b.pdsDir(), 0o755); err != nil {
		return nil, transportIO("creating pds directory", err)
	}
	if cursor != 0 {
		b.logger.Debug("file firehose has no positional replay, ignoring cursor", "cursor", cursor)
	}

	var offset int64
	if info, err := os.Stat(b.firehosePath()); err == nil {
		offset = info.Size()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, transportIO("creating filesystem watcher", err)
	}
	if err := watcher.Add(b.pdsDir()); err != nil {
		watcher.Close()
		return nil, transportIO("watching pds directory", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	sub := newSubscription(cancel)
	go b.tailFirehose(ctx, sub, watcher, offset)
	return sub, nil
}

// tailFirehose wakes on filesystem notifications for the log file and
// on a steady tick, then drains whatever appeared since the last
// offset. Re-opening and re-seeking per wake keeps the loop independent
// of writer file handles.
func (b *FileBackend) tailFirehose(ctx context.Context, sub *Subscription, watcher *fsnotify.Watcher, offset int64) {
	defer watcher.Close()

	ticker := time.NewTicker(constants.FirehosePollInterval)
	defer ticker.Stop()

	logName := filepath.Base(b.firehosePath())
	watchEvents := watcher.Events
	watchErrors := watcher.Errors

	for {
		select {
		case <-ctx.Done():
			sub.finish(ctx.Err())
			return
		case ev, ok := <-watchEvents:
			if !ok {
				watchEvents = nil
				continue
			}
			if filepath.Base(ev.Name) != logName || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
		case err, ok := <-watchErrors:
			if !ok {
				watchErrors = nil
				continue
			}
			b.logger.Warn("firehose watcher error", "error", err)
			continue
		case <-ticker.C:
		}

		events, next, err := b.readFirehoseFrom(offset)
		if err != nil {
			sub.finish(err)
			return
		}
		offset = next
		for _, ev := range events {
			if !sub.deliver(ctx, ev) {
				sub.finish(ctx.Err())
				return
			}
		}
	}
}

// readFirehoseFrom reads complete log lines starting at offset and
// returns the events they describe plus the new offset. A trailing
// partial line is left for the next wake.
func (b *FileBackend) readFirehoseFrom(offset int64) ([]models.RepoEvent, int64, error) {
	f, err := os.Open(b.firehosePath())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, offset, nil
	}
	if err != nil {
		return nil, offset, transportIO("opening firehose log", err)
	}
	defer f.Close()

	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, offset, transportIO("seeking firehose log", err)
	}

	reader := bufio.NewReader(f)
	var events []models.RepoEvent
	for {
		line, err := reader.ReadString('\n')
		if err == io.EOF {
			return events, offset, nil
		}
		if err != nil {
			return events, offset, transportIO("reading firehose log", err)
		}
		offset += int64(len(line))

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var entry firehoseEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			b.logger.Warn("skipping malformed firehose line", "error", err)
			continue
		}
		events = append(events, commitEventFromEntry(entry))
	}
}

// commitEventFromEntry translates one log line into the event shape the
// network firehose uses. The sequence number is the entry time in Unix
// microseconds, with zero standing in for unparseable times.
func commitEventFromEntry(entry firehoseEntry) models.CommitEvent {
	repo := "unknown"
	path := "unknown"
	if rest, ok := strings.CutPrefix(entry.URI, "at://"); ok {
		if r, p, ok := strings.Cut(rest, "/"); ok {
			repo, path = r, p
		} else if rest != "" {
			repo = rest
		}
	}

	var seq int64
	if t, err := time.Parse(time.RFC3339Nano, entry.Time); err == nil {
		seq = t.UnixMicro()
	}

	return models.CommitEvent{
		Repo: repo,
		Rev:  "rev-" + strconv.FormatInt(seq, 10),
		Seq:  seq,
		Time: entry.Time,
		Ops: []models.CommitOperation{
			{Path: path, Action: entry.Op},
		},
	}
}
