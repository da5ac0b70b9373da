package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"

	atdock "github.com/atdock/atdock.go"
	"github.com/atdock/atdock.go/pkg/logger"
	"github.com/atdock/atdock.go/pkg/models"
)

// storedSession is the on-disk login state.
type storedSession struct {
	DID          string `json:"did"`
	PDS          string `json:"pds"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

func sessionPath() string {
	xdg.Reload()
	return filepath.Join(xdg.DataHome, "atdock", "session.json")
}

// saveSession persists the session at path with owner-only permissions.
func saveSession(path string, session *atdock.Session) error {
	stored := storedSession{
		DID:          session.DID().String(),
		PDS:          session.PDS().String(),
		AccessToken:  session.ExportAccessToken(),
		RefreshToken: session.ExportRefreshToken(),
	}
	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}
	return nil
}

// loadSession restores the persisted session. Sessions holding a
// refresh token get a best-effort refresh; on success the rotated pair
// is written back so a single-use refresh token is not burned, and on
// failure the existing tokens stay in play with a warning.
func loadSession(ctx context.Context, path string, log logger.Logger) (*atdock.Session, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errors.New("no active session; run 'atdock pds login' first")
	}
	if err != nil {
		return nil, fmt.Errorf("reading session file: %w", err)
	}

	var stored storedSession
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("invalid session file %s: %w", path, err)
	}
	url, err := models.ParsePDSURL(stored.PDS)
	if err != nil {
		return nil, fmt.Errorf("invalid PDS URL in session file: %w", err)
	}
	did, err := models.ParseDID(stored.DID)
	if err != nil {
		return nil, fmt.Errorf("invalid DID in session file: %w", err)
	}

	session := atdock.RestoreSession(url, did, stored.AccessToken, stored.RefreshToken).WithLogger(log)
	if session.ExportRefreshToken() != "" {
		if err := session.Refresh(ctx); err != nil {
			log.Warn("session refresh failed, keeping existing tokens", "error", err)
		} else if err := saveSession(path, session); err != nil {
			log.Warn("could not persist refreshed session", "error", err)
		}
	}
	return session, nil
}
