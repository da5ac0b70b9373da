package pds

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/atdock/atdock.go/pkg/constants"
	"github.com/atdock/atdock.go/pkg/logger"
	"github.com/atdock/atdock.go/pkg/models"
)

// FileBackend serves the contract from a local directory. Records are
// one JSON file each, accounts one JSON file per DID, and every record
// mutation is appended to a shared log that subscriptions tail.
type FileBackend struct {
	url    models.PDSURL
	root   string
	logger logger.Logger
}

// NewFileBackend builds the filesystem engine rooted at url's path.
// Nothing is created on disk until the first write.
func NewFileBackend(url models.PDSURL) *FileBackend {
	return &FileBackend{
		url:    url,
		root:   url.FilePath(),
		logger: logger.Nop(),
	}
}

// WithLogger installs l and returns the backend for chaining.
func (b *FileBackend) WithLogger(l logger.Logger) *FileBackend {
	b.logger = l
	return b
}

// URL returns the file URL this backend was built from.
func (b *FileBackend) URL() models.PDSURL {
	return b.url
}

func (b *FileBackend) backendKind() Kind {
	return KindFile
}

func (b *FileBackend) pdsDir() string {
	return filepath.Join(b.root, "pds")
}

func (b *FileBackend) accountDir(did models.DID) string {
	return filepath.Join(b.pdsDir(), "accounts", did.String())
}

func (b *FileBackend) repoDir(did models.DID) string {
	return filepath.Join(b.pdsDir(), "repos", did.String())
}

func (b *FileBackend) collectionDir(repo models.DID, collection models.NSID) string {
	return filepath.Join(b.repoDir(repo), "collections", collection.String())
}

func (b *FileBackend) recordPath(repo models.DID, collection models.NSID, rkey models.RecordKey) string {
	return filepath.Join(b.collectionDir(repo, collection), rkey.String()+".json")
}

// localCID derives a stable content identifier from the serialized
// record bytes. It is not a real IPLD CID, just a local fingerprint.
func localCID(data []byte) string {
	return fmt.Sprintf("bafylocal%016x", xxhash.Sum64(data))
}

// generateRKey mints a record key from the current time. Keys minted in
// the same microsecond collide, and the later write wins.
func generateRKey() string {
	return fmt.Sprintf("%x", time.Now().UnixMicro())
}

// CreateRecord writes value as pretty-printed JSON under
// pds/repos/<did>/collections/<collection>/<rkey>.json, creating
// directories as needed. The write goes to a temp file first and is
// renamed into place. The token is ignored.
func (b *FileBackend) CreateRecord(ctx context.Context, repo models.DID, collection models.NSID, value models.RecordValue, rkey, token string) (models.ATURI, error) {
	if err := ctx.Err(); err != nil {
		return models.ATURI{}, err
	}
	if rkey == "" {
		rkey = generateRKey()
	}
	key, err := models.ParseRecordKey(rkey)
	if err != nil {
		return models.ATURI{}, err
	}

	data, err := marshalRecordValue(value)
	if err != nil {
		return models.ATURI{}, err
	}

	dir := b.collectionDir(repo, collection)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return models.ATURI{}, transportIO("creating collection directory", err)
	}

	path := b.recordPath(repo, collection, key)
	if err := writeFileAtomic(path, data); err != nil {
		return models.ATURI{}, err
	}

	uri := models.NewATURI(repo, collection, key)
	if err := b.appendFirehose(uri, models.ActionCreate); err != nil {
		return models.ATURI{}, err
	}
	b.logger.Debug("record created", "uri", uri.String())
	return uri, nil
}

// GetRecord reads and parses the record at uri. A missing file is a 404
// so both engines report absence the same way. The token is ignored.
func (b *FileBackend) GetRecord(ctx context.Context, uri models.ATURI, token string) (models.Record, error) {
	if err := ctx.Err(); err != nil {
		return models.Record{}, err
	}
	path := b.recordPath(uri.Repo(), uri.Collection(), uri.RecordKey())
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return models.Record{}, &ProtocolError{
			Status:  404,
			Code:    "RecordNotFound",
			Message: fmt.Sprintf("record not found: %s", uri),
		}
	}
	if err != nil {
		return models.Record{}, transportIO("reading record", err)
	}

	value, err := models.ParseRecordValue(data)
	if err != nil {
		return models.Record{}, err
	}
	return models.Record{URI: uri, CID: localCID(data), Value: value}, nil
}

// ListRecords returns one page of records in ascending record-key
// order. Paging resumes at the first key strictly greater than the
// cursor; a cursor past the end yields an empty page. Entries that fail
// key validation or do not load are skipped. The token is ignored.
func (b *FileBackend) ListRecords(ctx context.Context, repo models.DID, collection models.NSID, limit int, cursor, token string) (ListRecordsOutput, error) {
	if err := ctx.Err(); err != nil {
		return ListRecordsOutput{}, err
	}
	if limit <= 0 {
		limit = constants.DefaultListLimit
	}

	dir := b.collectionDir(repo, collection)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return ListRecordsOutput{}, nil
	}
	if err != nil {
		return ListRecordsOutput{}, transportIO("reading collection directory", err)
	}

	// ReadDir sorts by filename, which is ascending rkey order here.
	records := make([]models.Record, 0, limit)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".json")
		if cursor != "" && name <= cursor {
			continue
		}

		key, err := models.ParseRecordKey(name)
		if err != nil {
			b.logger.Debug("skipping entry with invalid record key", "name", entry.Name())
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			b.logger.Warn("skipping unreadable record", "name", entry.Name(), "error", err)
			continue
		}
		value, err := models.ParseRecordValue(data)
		if err != nil {
			b.logger.Warn("skipping malformed record", "name", entry.Name(), "error", err)
			continue
		}

		records = append(records, models.Record{
			URI:   models.NewATURI(repo, collection, key),
			CID:   localCID(data),
			Value: value,
		})
		if len(records) == limit {
			break
		}
	}

	out := ListRecordsOutput{Records: records}
	// A full page may have another behind it; a final exactly-full page
	// costs the caller one empty fetch.
	if len(records) == limit {
		out.Cursor = records[len(records)-1].URI.RecordKey().String()
	}
	return out, nil
}

// DeleteRecord removes the record file at uri. Deleting a record that
// is already gone succeeds without logging. The token is ignored.
func (b *FileBackend) DeleteRecord(ctx context.Context, uri models.ATURI, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := b.recordPath(uri.Repo(), uri.Collection(), uri.RecordKey())
	err := os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return transportIO("removing record", err)
	}
	if err := b.appendFirehose(uri, models.ActionDelete); err != nil {
		return err
	}
	b.logger.Debug("record deleted", "uri", uri.String())
	return nil
}

// marshalRecordValue renders a record value the way it is stored on
// disk.
func marshalRecordValue(value models.RecordValue) ([]byte, error) {
	return json.MarshalIndent(value, "", "  ")
}

// writeFileAtomic writes data next to path and renames it into place so
// readers never observe a partial record.
func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return transportIO("writing record", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return transportIO("renaming record into place", err)
	}
	return nil
}
