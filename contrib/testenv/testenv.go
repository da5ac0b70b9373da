// Package testenv provisions throwaway file-backed repositories for the
// runnable examples and integration-style tests.
//
// Repositories are rooted under os.TempDir() so examples run without any
// configuration; set ATDOCK_EXAMPLES_DIR to relocate them.
package testenv

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	atdock "github.com/atdock/atdock.go"
	"github.com/atdock/atdock.go/pkg/pds"
)

// EnvExamplesDir is the environment variable that overrides where
// example repositories are rooted. If not set, they live under
// os.TempDir().
const EnvExamplesDir = "ATDOCK_EXAMPLES_DIR"

// Accounts registered by MustNewSession all share this password.
const sessionPassword = "testenv-password"

var overrideDir = os.Getenv(EnvExamplesDir)

func exampleRoot() string {
	if overrideDir == "" {
		return filepath.Join(os.TempDir(), "atdock-examples")
	}
	return overrideDir
}

// New creates a file-backed PDS rooted at a fresh directory named after
// name. State left over from a previous run is removed first so every
// run starts from a clean slate.
func New(name string) (*atdock.Pds, error) {
	if name == "" {
		return nil, fmt.Errorf("environment name must be specified")
	}

	dir := filepath.Join(exampleRoot(), name)
	if err := os.RemoveAll(dir); err != nil {
		return nil, fmt.Errorf("failed to reset %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}

	return atdock.Open("file://" + dir)
}

// MustNew is New, panicking on failure.
func MustNew(name string) *atdock.Pds {
	p, err := New(name)
	if err != nil {
		panic(fmt.Sprintf("Failed to create example repository: %v", err))
	}
	return p
}

// MustNewSession creates a PDS via MustNew, registers an account under
// handle, and logs in.
func MustNewSession(name, handle string) (*atdock.Pds, *atdock.Session) {
	p := MustNew(name)

	ctx := context.Background()
	if _, err := p.CreateAccount(ctx, pds.CreateAccountInput{
		Handle:   handle,
		Password: sessionPassword,
	}); err != nil {
		panic(fmt.Sprintf("Failed to create account %q: %v", handle, err))
	}

	session, err := p.Login(ctx, atdock.Credentials{
		Identifier: handle,
		Password:   sessionPassword,
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to log in as %q: %v", handle, err))
	}
	return p, session
}
