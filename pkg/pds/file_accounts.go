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

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/atdock/atdock.go/pkg/models"
)

// LocalAccount is the stored form of a file-engine account, one JSON
// file per DID under pds/accounts.
type LocalAccount struct {
	DID          models.DID `json:"did"`
	Handle       string     `json:"handle"`
	CreatedAt    time.Time  `json:"created_at"`
	PasswordHash string     `json:"password_hash"`
}

// generateDID mints a local placeholder DID. It is not registered
// anywhere; it only has to be unique within this directory tree.
func generateDID() (models.DID, error) {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return models.ParseDID("did:plc:" + id[:24])
}

// CreateAccount registers an account under a freshly minted DID. A
// password is required; Email and InviteCode have no meaning on the
// file engine and are ignored.
func (b *FileBackend) CreateAccount(ctx context.Context, input CreateAccountInput) (CreateAccountOutput, error) {
	if err := ctx.Err(); err != nil {
		return CreateAccountOutput{}, err
	}
	if input.Password == "" {
		return CreateAccountOutput{}, &models.InvalidInputError{
			Value:  "password",
			Reason: "a password is required to create an account",
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return CreateAccountOutput{}, &models.InvalidInputError{Value: "password", Reason: err.Error()}
	}

	did, err := generateDID()
	if err != nil {
		return CreateAccountOutput{}, err
	}

	account := LocalAccount{
		DID:          did,
		Handle:       input.Handle,
		CreatedAt:    time.Now().UTC(),
		PasswordHash: string(hash),
	}
	data, err := json.MarshalIndent(account, "", "  ")
	if err != nil {
		return CreateAccountOutput{}, err
	}

	dir := b.accountDir(did)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return CreateAccountOutput{}, transportIO("creating account directory", err)
	}
	if err := writeFileAtomic(filepath.Join(dir, "account.json"), data); err != nil {
		return CreateAccountOutput{}, err
	}

	b.logger.Info("account created", "did", did.String(), "handle", input.Handle)
	return CreateAccountOutput{DID: did, Handle: input.Handle}, nil
}

// Account loads the stored account for did.
func (b *FileBackend) Account(ctx context.Context, did models.DID) (LocalAccount, error) {
	if err := ctx.Err(); err != nil {
		return LocalAccount{}, err
	}
	data, err := os.ReadFile(filepath.Join(b.accountDir(did), "account.json"))
	if errors.Is(err, fs.ErrNotExist) {
		return LocalAccount{}, &ProtocolError{
			Status:  404,
			Code:    "AccountNotFound",
			Message: fmt.Sprintf("account not found: %s", did),
		}
	}
	if err != nil {
		return LocalAccount{}, transportIO("reading account", err)
	}

	var account LocalAccount
	if err := json.Unmarshal(data, &account); err != nil {
		return LocalAccount{}, transportIO("parsing account", err)
	}
	return account, nil
}

// ListAccounts scans the accounts directory. Entries that do not parse
// as accounts are skipped.
func (b *FileBackend) ListAccounts(ctx context.Context) ([]LocalAccount, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(filepath.Join(b.pdsDir(), "accounts"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, transportIO("reading accounts directory", err)
	}

	var accounts []LocalAccount
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		did, err := models.ParseDID(entry.Name())
		if err != nil {
			b.logger.Debug("skipping accounts entry that is not a DID", "name", entry.Name())
			continue
		}
		account, err := b.Account(ctx, did)
		if err != nil {
			b.logger.Warn("skipping unreadable account", "did", entry.Name(), "error", err)
			continue
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}

// FindAccountByHandle scans accounts for a handle match.
func (b *FileBackend) FindAccountByHandle(ctx context.Context, handle string) (LocalAccount, error) {
	accounts, err := b.ListAccounts(ctx)
	if err != nil {
		return LocalAccount{}, err
	}
	for _, account := range accounts {
		if account.Handle == handle {
			return account, nil
		}
	}
	return LocalAccount{}, &ProtocolError{
		Status:  404,
		Code:    "AccountNotFound",
		Message: fmt.Sprintf("account not found: %s", handle),
	}
}

// RemoveAccount deletes the stored account. With deleteRecords it also
// removes the account's entire repo tree.
func (b *FileBackend) RemoveAccount(ctx context.Context, did models.DID, deleteRecords bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := b.accountDir(did)
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return &ProtocolError{
			Status:  404,
			Code:    "AccountNotFound",
			Message: fmt.Sprintf("account not found: %s", did),
		}
	}
	if err := os.RemoveAll(dir); err != nil {
		return transportIO("removing account", err)
	}
	if deleteRecords {
		if err := os.RemoveAll(b.repoDir(did)); err != nil {
			return transportIO("removing account records", err)
		}
	}
	b.logger.Info("account removed", "did", did.String(), "records_removed", deleteRecords)
	return nil
}

// DeleteAccount removes the account and all of its records. There is no
// server to check credentials against, so token and password are
// ignored.
func (b *FileBackend) DeleteAccount(ctx context.Context, did models.DID, token, password string) error {
	return b.RemoveAccount(ctx, did, true)
}

// Login verifies password against the stored account. Identifiers
// starting with "did:" look up by DID, anything else by handle. Unknown
// accounts and wrong passwords both come back as invalid credentials.
func (b *FileBackend) Login(ctx context.Context, identifier, password string) (LocalAccount, error) {
	var (
		account LocalAccount
		err     error
	)
	if strings.HasPrefix(identifier, "did:") {
		var did models.DID
		did, err = models.ParseDID(identifier)
		if err != nil {
			return LocalAccount{}, err
		}
		account, err = b.Account(ctx, did)
	} else {
		account, err = b.FindAccountByHandle(ctx, identifier)
	}
	if IsNotFound(err) {
		return LocalAccount{}, &AuthError{Kind: AuthInvalidCredentials, Message: "account not found"}
	}
	if err != nil {
		return LocalAccount{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return LocalAccount{}, &AuthError{Kind: AuthInvalidCredentials, Message: "invalid password"}
	}
	return account, nil
}
