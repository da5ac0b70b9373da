package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atdock/atdock.go/pkg/logger"
)

func TestLog(t *testing.T) {
	buff := bytes.NewBuffer([]byte{})
	log := logger.New(buff)
	require.NotNil(t, log)
	require.Equal(t, 0, buff.Len())

	log.Info("record created", "uri", "at://did:plc:abc/app.bsky.feed.post/1")

	var line struct {
		Level string `json:"level"`
		Msg   string `json:"message"`
		URI   string `json:"uri"`
	}
	require.NoError(t, json.Unmarshal(buff.Bytes(), &line), "log output should be one JSON line")
	assert.Equal(t, "info", line.Level)
	assert.Equal(t, "record created", line.Msg)
	assert.Equal(t, "at://did:plc:abc/app.bsky.feed.post/1", line.URI)
}

func TestLog_oddArgs(t *testing.T) {
	buff := bytes.NewBuffer([]byte{})
	logger.New(buff).Warn("dangling", "only-a-key")
	assert.Contains(t, buff.String(), "only-a-key", "unpaired argument should still be recorded")
}

func TestNop(t *testing.T) {
	// Nop must be safe to use and write nothing.
	log := logger.Nop()
	log.Error("boom", "key", "value")
	log.Debug("quiet")
}
