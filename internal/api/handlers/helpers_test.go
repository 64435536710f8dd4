package handlers_test

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/hugh/go-gatekeeper/internal/api"
	"github.com/hugh/go-gatekeeper/internal/auth"
	"github.com/hugh/go-gatekeeper/internal/graph"
	"github.com/hugh/go-gatekeeper/internal/store"
	"github.com/hugh/go-gatekeeper/internal/testutil"
)

type recordingNotifier struct {
	mu     sync.Mutex
	tokens map[string]string
}

func (n *recordingNotifier) SendPasswordReset(_ context.Context, email, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.tokens == nil {
		n.tokens = make(map[string]string)
	}
	n.tokens[email] = token
	return nil
}

func (n *recordingNotifier) tokenFor(email string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.tokens[email]
}

type testEnv struct {
	*testutil.TestSetup
	router   *api.Router
	notifier *recordingNotifier
}

func setupTestRouter(t *testing.T, publicRegistration bool) *testEnv {
	tc := testutil.NewTestContext(t)

	st := store.New(tc.DB)
	notifier := &recordingNotifier{}
	log := testutil.DiscardLogger()

	router := api.NewRouter(api.RouterConfig{
		DB:                 tc.DB,
		Logger:             log,
		JWTService:         tc.JWTService,
		AuthService:        auth.NewService(st, testutil.TestHasher(), tc.JWTService, notifier, log),
		GraphService:       graph.NewService(st, log),
		PublicRegistration: publicRegistration,
	})

	t.Cleanup(func() {
		router.Close()
		tc.Cleanup()
	})

	return &testEnv{TestSetup: tc, router: router, notifier: notifier}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.AuthenticatedRequest(t, method, "/api/v1"+path, body, token)
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) admin(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	return e.do(t, method, path, body, e.AdminToken)
}

func (e *testEnv) expect(t *testing.T, rr *httptest.ResponseRecorder, status int) {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, rr.Code, rr.Body.String())
	}
}
