package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/opencircle/socialgraph/internal/auth"
	"github.com/opencircle/socialgraph/internal/friends"
	"github.com/opencircle/socialgraph/internal/identity"
	"github.com/opencircle/socialgraph/internal/models"
	"github.com/opencircle/socialgraph/internal/store"
)

type testEnv struct {
	friendSvc   *friends.Service
	identitySvc *identity.Service
	limits      *store.MemoryRequestLimitStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	auth.Init()
	users := store.NewMemoryUserStore()
	limits := store.NewMemoryRequestLimitStore()
	clock := store.SystemClock{}
	limiter := friends.NewLimiter(limits, clock)
	return &testEnv{
		friendSvc: friends.NewService(
			users,
			store.NewMemoryFriendRequestStore(),
			store.NewMemoryFriendshipStore(),
			limiter, clock, nil, nil,
		),
		identitySvc: identity.NewService(users),
		limits:      limits,
	}
}

// registerTestUser creates a user and returns it with a valid session token.
func (e *testEnv) registerTestUser(t *testing.T, name, email string) (*models.User, string) {
	t.Helper()
	u, err := e.identitySvc.Register(context.Background(), name, email, "password")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	token, err := auth.CreateJWT(u.ID.String())
	if err != nil {
		t.Fatalf("CreateJWT failed: %v", err)
	}
	return u, token
}

// TestFriendRequestFlow walks the full lifecycle: send, list pending, accept,
// list friends from both sides.
func TestFriendRequestFlow(t *testing.T) {
	env := newTestEnv(t)
	_, aliceToken := env.registerTestUser(t, "Alice", "alice@example.com")
	_, bobToken := env.registerTestUser(t, "Bob", "bob@example.com")

	// alice sends a friend request to bob
	req := httptest.NewRequest("POST", "/friends/send",
		bytes.NewBufferString(`{"receiver_email":"bob@example.com"}`))
	req.Header.Set("Cookie", "auth_token="+aliceToken)
	w := httptest.NewRecorder()
	SendFriendRequestHandler(env.friendSvc)(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 created, got %d, body=%s", w.Code, w.Body.String())
	}

	// bob sees the pending request
	req2 := httptest.NewRequest("GET", "/friends/pending", nil)
	req2.Header.Set("Cookie", "auth_token="+bobToken)
	w2 := httptest.NewRecorder()
	ListPendingHandler(env.friendSvc)(w2, req2)
	if w2.Code != http.StatusOK {
		t.Fatalf("expected 200 ok, got %d, body=%s", w2.Code, w2.Body.String())
	}
	var pending []string
	if err := json.Unmarshal(w2.Body.Bytes(), &pending); err != nil {
		t.Fatalf("failed to decode pending list: %v", err)
	}
	if len(pending) != 1 || pending[0] != "alice@example.com" {
		t.Fatalf("expected pending [alice@example.com], got %v", pending)
	}

	// bob accepts
	req3 := httptest.NewRequest("POST", "/friends/manage",
		bytes.NewBufferString(`{"sender_email":"alice@example.com","accept":true}`))
	req3.Header.Set("Cookie", "auth_token="+bobToken)
	w3 := httptest.NewRecorder()
	ManageFriendRequestHandler(env.friendSvc)(w3, req3)
	if w3.Code != http.StatusOK {
		t.Fatalf("expected 200 ok, got %d, body=%s", w3.Code, w3.Body.String())
	}

	// both sides list each other
	for _, tc := range []struct {
		token string
		want  string
	}{
		{bobToken, "alice@example.com"},
		{aliceToken, "bob@example.com"},
	} {
		req4 := httptest.NewRequest("GET", "/friends/list?page=1", nil)
		req4.Header.Set("Cookie", "auth_token="+tc.token)
		w4 := httptest.NewRecorder()
		ListFriendsHandler(env.friendSvc)(w4, req4)
		if w4.Code != http.StatusOK {
			t.Fatalf("expected 200 ok, got %d, body=%s", w4.Code, w4.Body.String())
		}
		var listed []string
		if err := json.Unmarshal(w4.Body.Bytes(), &listed); err != nil {
			t.Fatalf("failed to decode friend list: %v", err)
		}
		if len(listed) != 1 || listed[0] != tc.want {
			t.Fatalf("expected friend list [%s], got %v", tc.want, listed)
		}
	}
}

func TestSendRequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest("POST", "/friends/send",
		bytes.NewBufferString(`{"receiver_email":"bob@example.com"}`))
	w := httptest.NewRecorder()
	SendFriendRequestHandler(env.friendSvc)(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestSendRateLimited(t *testing.T) {
	env := newTestEnv(t)
	alice, aliceToken := env.registerTestUser(t, "Alice", "alice@example.com")
	env.registerTestUser(t, "Bob", "bob@example.com")

	if err := env.limits.Put(context.Background(), &models.RequestLimit{
		UserID:    alice.ID,
		Remaining: 0,
		UpdatedAt: time.Now(),
	}); err != nil {
		t.Fatalf("failed to seed limit state: %v", err)
	}

	req := httptest.NewRequest("POST", "/friends/send",
		bytes.NewBufferString(`{"receiver_email":"bob@example.com"}`))
	req.Header.Set("Cookie", "auth_token="+aliceToken)
	w := httptest.NewRecorder()
	SendFriendRequestHandler(env.friendSvc)(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d, body=%s", w.Code, w.Body.String())
	}
}

func TestManageUnknownRequestReturns404(t *testing.T) {
	env := newTestEnv(t)
	_, bobToken := env.registerTestUser(t, "Bob", "bob@example.com")
	env.registerTestUser(t, "Alice", "alice@example.com")

	req := httptest.NewRequest("POST", "/friends/manage",
		bytes.NewBufferString(`{"sender_email":"alice@example.com","accept":true}`))
	req.Header.Set("Cookie", "auth_token="+bobToken)
	w := httptest.NewRecorder()
	ManageFriendRequestHandler(env.friendSvc)(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d, body=%s", w.Code, w.Body.String())
	}
}

func TestSearchUsers(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.registerTestUser(t, "Abel Obrien", "abel@example.com")
	env.registerTestUser(t, "Cara", "cara@example.com")

	req := httptest.NewRequest("GET", "/users/search?q=bo", nil)
	req.Header.Set("Cookie", "auth_token="+token)
	w := httptest.NewRecorder()
	SearchUsersHandler(env.friendSvc)(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 ok, got %d, body=%s", w.Code, w.Body.String())
	}
	var results []string
	if err := json.Unmarshal(w.Body.Bytes(), &results); err != nil {
		t.Fatalf("failed to decode search results: %v", err)
	}
	if len(results) != 1 || results[0] != "abel@example.com" {
		t.Fatalf("expected [abel@example.com], got %v", results)
	}
}
