// Package fakepds provides a fake AT Protocol personal data server for
// testing. It serves the XRPC endpoints the client speaks, backed by
// in-memory accounts, records, and tokens, plus a websocket firehose
// that replays pre-queued binary frames.
//
// Failure injection works per endpoint: a stubbed response replaces the
// normal handler for one method, either as a structured {error,message}
// body or as plain text to exercise the bare-status fallback.
package fakepds

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/atdock/atdock.go/internal/rand"
)

// Account is one registered test account.
type Account struct {
	DID      string
	Handle   string
	Password string
}

// stub replaces the normal handler for one method.
type stub struct {
	status      int
	contentType string
	body        []byte
}

// Server is a fake PDS bound to a loopback httptest server.
type Server struct {
	httpServer *httptest.Server
	upgrader   websocket.Upgrader

	mu       sync.RWMutex
	accounts map[string]*Account        // by DID
	tokens   map[string]string          // access token -> DID
	refresh  map[string]string          // refresh token -> DID
	records  map[string]json.RawMessage // repo|collection|rkey -> value
	stubs    map[string]stub            // method -> stubbed response
	nextSeq  int

	subMu       sync.Mutex
	subscribers []*websocket.Conn
	queued      [][]byte
	pongCount   int
	lastCursor  int64
}

// NewServer starts a fake PDS on a random loopback port. Call Close
// when done.
func NewServer() *Server {
	s := &Server{
		accounts: make(map[string]*Account),
		tokens:   make(map[string]string),
		refresh:  make(map[string]string),
		records:  make(map[string]json.RawMessage),
		stubs:    make(map[string]stub),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/xrpc/", s.handleXRPC)
	s.httpServer = httptest.NewServer(mux)
	return s
}

// URL returns the server's base URL, always plain HTTP on loopback.
func (s *Server) URL() string {
	return s.httpServer.URL
}

// Close shuts the server down and drops all live subscriptions.
func (s *Server) Close() {
	s.CloseSubscribers(websocket.CloseGoingAway, "server shutting down")
	s.httpServer.Close()
}

// AddAccount registers an account without going through createAccount.
func (s *Server) AddAccount(handle, password string) Account {
	account := Account{
		DID:      "did:plc:" + strings.ToLower(rand.Token(24)),
		Handle:   handle,
		Password: password,
	}
	s.mu.Lock()
	s.accounts[account.DID] = &account
	s.mu.Unlock()
	return account
}

// MintTokens registers and returns a fresh token pair for did, as if a
// session had been created.
func (s *Server) MintTokens(did string) (access, refreshToken string) {
	access = "at-" + rand.Token(24)
	refreshToken = "rt-" + rand.Token(24)
	s.mu.Lock()
	s.tokens[access] = did
	s.refresh[refreshToken] = did
	s.mu.Unlock()
	return access, refreshToken
}

// Stub makes the named method answer with a structured error body.
func (s *Server) Stub(method string, status int, code, message string) {
	body, _ := json.Marshal(map[string]string{"error": code, "message": message})
	s.mu.Lock()
	s.stubs[method] = stub{status: status, contentType: "application/json", body: body}
	s.mu.Unlock()
}

// StubPlainText makes the named method answer with a non-JSON body, to
// exercise the bare-status error fallback.
func (s *Server) StubPlainText(method string, status int, body string) {
	s.mu.Lock()
	s.stubs[method] = stub{status: status, contentType: "text/plain", body: []byte(body)}
	s.mu.Unlock()
}

// ClearStub restores the normal handler for the named method.
func (s *Server) ClearStub(method string) {
	s.mu.Lock()
	delete(s.stubs, method)
	s.mu.Unlock()
}

// QueueFrame adds a binary frame that will be replayed to every new
// firehose subscriber.
func (s *Server) QueueFrame(data []byte) {
	s.subMu.Lock()
	s.queued = append(s.queued, data)
	s.subMu.Unlock()
}

// Broadcast sends a binary frame to all live subscribers.
func (s *Server) Broadcast(data []byte) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, conn := range s.subscribers {
		conn.WriteMessage(websocket.BinaryMessage, data) //nolint:errcheck
	}
}

// PingSubscribers sends a ping control frame to all live subscribers.
func (s *Server) PingSubscribers() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, conn := range s.subscribers {
		conn.WriteMessage(websocket.PingMessage, nil) //nolint:errcheck
	}
}

// PongCount reports how many pongs subscribers have answered with.
func (s *Server) PongCount() int {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	return s.pongCount
}

// LastCursor reports the cursor query parameter of the most recent
// subscription.
func (s *Server) LastCursor() int64 {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	return s.lastCursor
}

// CloseSubscribers sends a close frame to all live subscribers and
// forgets them.
func (s *Server) CloseSubscribers(code int, reason string) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	msg := websocket.FormatCloseMessage(code, reason)
	for _, conn := range s.subscribers {
		conn.WriteMessage(websocket.CloseMessage, msg) //nolint:errcheck
		conn.Close()
	}
	s.subscribers = nil
}

func (s *Server) handleXRPC(w http.ResponseWriter, r *http.Request) {
	method := strings.TrimPrefix(r.URL.Path, "/xrpc/")

	s.mu.RLock()
	st, stubbed := s.stubs[method]
	s.mu.RUnlock()
	if stubbed {
		w.Header().Set("Content-Type", st.contentType)
		w.WriteHeader(st.status)
		w.Write(st.body) //nolint:errcheck
		return
	}

	switch method {
	case "com.atproto.server.createSession":
		s.handleCreateSession(w, r)
	case "com.atproto.server.refreshSession":
		s.handleRefreshSession(w, r)
	case "com.atproto.server.createAccount":
		s.handleCreateAccount(w, r)
	case "com.atproto.server.deleteAccount":
		s.handleDeleteAccount(w, r)
	case "com.atproto.repo.createRecord":
		s.handleCreateRecord(w, r)
	case "com.atproto.repo.getRecord":
		s.handleGetRecord(w, r)
	case "com.atproto.repo.listRecords":
		s.handleListRecords(w, r)
	case "com.atproto.repo.deleteRecord":
		s.handleDeleteRecord(w, r)
	case "com.atproto.sync.subscribeRepos":
		s.handleSubscribeRepos(w, r)
	default:
		writeError(w, http.StatusNotFound, "MethodNotImplemented", fmt.Sprintf("unknown method: %s", method))
	}
}

// bearerDID resolves the Authorization header to a DID, consulting the
// lookup map: access tokens normally, refresh tokens for
// refreshSession.
func (s *Server) bearerDID(r *http.Request, lookup map[string]string) (string, bool) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", false
	}
	s.mu.RLock()
	did, ok := lookup[token]
	s.mu.RUnlock()
	return did, ok
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Identifier string `json:"identifier"`
		Password   string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "malformed request body")
		return
	}

	s.mu.RLock()
	var found *Account
	for _, account := range s.accounts {
		if account.DID == req.Identifier || account.Handle == req.Identifier {
			found = account
			break
		}
	}
	s.mu.RUnlock()

	if found == nil || found.Password != req.Password {
		writeError(w, http.StatusUnauthorized, "AuthenticationRequired", "invalid identifier or password")
		return
	}

	access, refreshToken := s.MintTokens(found.DID)
	writeJSON(w, http.StatusOK, map[string]string{
		"did":        found.DID,
		"handle":     found.Handle,
		"accessJwt":  access,
		"refreshJwt": refreshToken,
	})
}

func (s *Server) handleRefreshSession(w http.ResponseWriter, r *http.Request) {
	did, ok := s.bearerDID(r, s.refresh)
	if !ok {
		writeError(w, http.StatusBadRequest, "ExpiredToken", "refresh token is not known here")
		return
	}

	s.mu.RLock()
	account := s.accounts[did]
	s.mu.RUnlock()
	if account == nil {
		writeError(w, http.StatusBadRequest, "ExpiredToken", "account is gone")
		return
	}

	access, refreshToken := s.MintTokens(did)
	writeJSON(w, http.StatusOK, map[string]string{
		"did":        did,
		"handle":     account.Handle,
		"accessJwt":  access,
		"refreshJwt": refreshToken,
	})
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Handle   string `json:"handle"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "malformed request body")
		return
	}

	s.mu.RLock()
	for _, account := range s.accounts {
		if account.Handle == req.Handle {
			s.mu.RUnlock()
			writeError(w, http.StatusBadRequest, "HandleNotAvailable", "handle already taken")
			return
		}
	}
	s.mu.RUnlock()

	account := s.AddAccount(req.Handle, req.Password)
	access, refreshToken := s.MintTokens(account.DID)
	writeJSON(w, http.StatusOK, map[string]string{
		"did":        account.DID,
		"handle":     account.Handle,
		"accessJwt":  access,
		"refreshJwt": refreshToken,
	})
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	did, ok := s.bearerDID(r, s.tokens)
	if !ok {
		writeError(w, http.StatusUnauthorized, "AuthenticationRequired", "missing or unknown access token")
		return
	}

	var req struct {
		DID      string `json:"did"`
		Password string `json:"password"`
		Token    string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "malformed request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	account := s.accounts[req.DID]
	if account == nil || did != req.DID {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "account mismatch")
		return
	}
	if account.Password != req.Password {
		writeError(w, http.StatusUnauthorized, "AuthenticationRequired", "invalid password")
		return
	}

	delete(s.accounts, req.DID)
	for key := range s.records {
		if strings.HasPrefix(key, req.DID+"|") {
			delete(s.records, key)
		}
	}
	for token, owner := range s.tokens {
		if owner == req.DID {
			delete(s.tokens, token)
		}
	}
	for token, owner := range s.refresh {
		if owner == req.DID {
			delete(s.refresh, token)
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{})
}

func recordKey(repo, collection, rkey string) string {
	return repo + "|" + collection + "|" + rkey
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.bearerDID(r, s.tokens); !ok {
		writeError(w, http.StatusUnauthorized, "AuthenticationRequired", "missing or unknown access token")
		return
	}

	var req struct {
		Repo       string          `json:"repo"`
		Collection string          `json:"collection"`
		Record     json.RawMessage `json:"record"`
		RKey       string          `json:"rkey"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "malformed request body")
		return
	}

	s.mu.Lock()
	if req.RKey == "" {
		s.nextSeq++
		req.RKey = fmt.Sprintf("fake%06d", s.nextSeq)
	}
	s.records[recordKey(req.Repo, req.Collection, req.RKey)] = req.Record
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{
		"uri": fmt.Sprintf("at://%s/%s/%s", req.Repo, req.Collection, req.RKey),
		"cid": "bafyfake" + rand.Token(16),
	})
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.bearerDID(r, s.tokens); !ok {
		writeError(w, http.StatusUnauthorized, "AuthenticationRequired", "missing or unknown access token")
		return
	}

	q := r.URL.Query()
	repo, collection, rkey := q.Get("repo"), q.Get("collection"), q.Get("rkey")

	s.mu.RLock()
	value, ok := s.records[recordKey(repo, collection, rkey)]
	s.mu.RUnlock()
	if !ok {
		writeError(w, http.StatusBadRequest, "RecordNotFound", "could not locate record")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"uri":   fmt.Sprintf("at://%s/%s/%s", repo, collection, rkey),
		"cid":   "bafyfake" + rand.Token(16),
		"value": value,
	})
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.bearerDID(r, s.tokens); !ok {
		writeError(w, http.StatusUnauthorized, "AuthenticationRequired", "missing or unknown access token")
		return
	}

	q := r.URL.Query()
	repo, collection := q.Get("repo"), q.Get("collection")
	limit := 50
	if raw := q.Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	cursor := q.Get("cursor")

	prefix := repo + "|" + collection + "|"
	s.mu.RLock()
	var rkeys []string
	for key := range s.records {
		if strings.HasPrefix(key, prefix) {
			rkeys = append(rkeys, strings.TrimPrefix(key, prefix))
		}
	}
	sort.Strings(rkeys)

	type item struct {
		URI   string          `json:"uri"`
		CID   string          `json:"cid"`
		Value json.RawMessage `json:"value"`
	}
	items := make([]item, 0, limit)
	var lastRKey string
	var more bool
	for _, rkey := range rkeys {
		if cursor != "" && rkey <= cursor {
			continue
		}
		if len(items) == limit {
			more = true
			break
		}
		items = append(items, item{
			URI:   fmt.Sprintf("at://%s/%s/%s", repo, collection, rkey),
			CID:   "bafyfake" + rand.Token(16),
			Value: s.records[recordKey(repo, collection, rkey)],
		})
		lastRKey = rkey
	}
	s.mu.RUnlock()

	resp := map[string]any{"records": items}
	if more {
		resp["cursor"] = lastRKey
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.bearerDID(r, s.tokens); !ok {
		writeError(w, http.StatusUnauthorized, "AuthenticationRequired", "missing or unknown access token")
		return
	}

	var req struct {
		Repo       string `json:"repo"`
		Collection string `json:"collection"`
		RKey       string `json:"rkey"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "malformed request body")
		return
	}

	s.mu.Lock()
	delete(s.records, recordKey(req.Repo, req.Collection, req.RKey))
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{})
}

func (s *Server) handleSubscribeRepos(w http.ResponseWriter, r *http.Request) {
	var cursor int64
	if raw := r.URL.Query().Get("cursor"); raw != "" {
		cursor, _ = strconv.ParseInt(raw, 10, 64)
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	s.subMu.Lock()
	s.lastCursor = cursor
	s.subscribers = append(s.subscribers, conn)
	queued := make([][]byte, len(s.queued))
	copy(queued, s.queued)
	s.subMu.Unlock()

	for _, frame := range queued {
		if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
			return
		}
	}

	conn.SetPongHandler(func(string) error {
		s.subMu.Lock()
		s.pongCount++
		s.subMu.Unlock()
		return nil
	})

	// Read pump: control frames only; the client never sends data.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"error": code, "message": message})
}
