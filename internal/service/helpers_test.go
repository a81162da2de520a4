package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/splitmoney/internal/auth"
	"github.com/mmynk/splitmoney/internal/metrics"
	"github.com/mmynk/splitmoney/internal/middleware"
	"github.com/mmynk/splitmoney/internal/storage/sqlite"
	"github.com/mmynk/splitmoney/pkg/api"
	"github.com/mmynk/splitmoney/pkg/api/apiconnect"
)

const testSecret = "thisisasecretkeythatis32charslong!!"

// testEnv is a running server backed by a temporary database.
type testEnv struct {
	t       *testing.T
	server  *httptest.Server
	store   *sqlite.SQLiteStore
	groups  *GroupService
	metrics *metrics.Metrics
	auth    apiconnect.AuthServiceClient
}

// testUser is a registered account with clients carrying its session token.
type testUser struct {
	ID       string
	Email    string
	Name     string
	Token    string
	Groups   apiconnect.GroupServiceClient
	Expenses apiconnect.ExpenseServiceClient
}

// setupTestServer creates a test server with all three services behind the
// auth and logging interceptors.
func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	// Create temp database
	tmpFile, err := os.CreateTemp("", "test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()

	store, err := sqlite.New(tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to create store: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New()
	jwtManager := auth.NewJWTManager(testSecret, time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store).WithCost(bcrypt.MinCost)

	opts := DefaultGroupOptions()
	opts.InviteBaseURL = "https://splitmoney.test"
	opts.Metrics = m
	groupSvc := NewGroupService(store, opts)

	interceptors := connect.WithInterceptors(
		m.Interceptor(),
		middleware.RequireAuth(jwtManager, apiconnect.PublicProcedures...),
		middleware.LoggingInterceptor(),
	)

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewAuthServiceHandler(NewAuthService(authenticator, jwtManager, store, logger), interceptors))
	mux.Handle(apiconnect.NewGroupServiceHandler(groupSvc, interceptors))
	mux.Handle(apiconnect.NewExpenseServiceHandler(NewExpenseService(store), interceptors))
	mux.Handle("/metrics", m.Handler())

	server := httptest.NewServer(mux)

	t.Cleanup(func() {
		server.Close()
		store.Close()
		os.Remove(tmpFile.Name())
	})

	return &testEnv{
		t:       t,
		server:  server,
		store:   store,
		groups:  groupSvc,
		metrics: m,
		auth:    apiconnect.NewAuthServiceClient(http.DefaultClient, server.URL),
	}
}

// bearer adds the session token to outgoing requests.
func bearer(token string) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			req.Header().Set("Authorization", "Bearer "+token)
			return next(ctx, req)
		}
	}
}

// register creates an account named name and returns authenticated clients.
func (e *testEnv) register(name string) *testUser {
	e.t.Helper()

	email := strings.ToLower(name) + "@example.com"
	resp, err := e.auth.Register(context.Background(), connect.NewRequest(&api.RegisterRequest{
		Email:       email,
		DisplayName: name,
		Password:    "password-" + name,
	}))
	if err != nil {
		e.t.Fatalf("Register(%s) failed: %v", name, err)
	}

	return e.client(resp.Msg.User, resp.Msg.Token)
}

func (e *testEnv) client(user *api.User, token string) *testUser {
	opt := connect.WithInterceptors(bearer(token))
	return &testUser{
		ID:       user.ID,
		Email:    user.Email,
		Name:     user.DisplayName,
		Token:    token,
		Groups:   apiconnect.NewGroupServiceClient(http.DefaultClient, e.server.URL, opt),
		Expenses: apiconnect.NewExpenseServiceClient(http.DefaultClient, e.server.URL, opt),
	}
}

// newGroup creates a group owned by owner and adds the others directly.
func (e *testEnv) newGroup(owner *testUser, name string, others ...*testUser) string {
	e.t.Helper()

	resp, err := owner.Groups.CreateGroup(context.Background(), connect.NewRequest(&api.CreateGroupRequest{Name: name}))
	if err != nil {
		e.t.Fatalf("CreateGroup failed: %v", err)
	}
	for _, u := range others {
		if err := e.store.AddGroupMember(context.Background(), resp.Msg.Group.ID, u.ID); err != nil {
			e.t.Fatalf("AddGroupMember failed: %v", err)
		}
	}
	return resp.Msg.Group.ID
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// expectCode fails the test unless err carries the wanted Connect code.
func expectCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	var connectErr *connect.Error
	if !errors.As(err, &connectErr) {
		t.Fatalf("expected connect error, got %T: %v", err, err)
	}
	if connectErr.Code() != want {
		t.Fatalf("expected code %v, got %v (%s)", want, connectErr.Code(), connectErr.Message())
	}
}
