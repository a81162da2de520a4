package service

import (
	"context"
	"net/http"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/splitmoney/pkg/api"
	"github.com/mmynk/splitmoney/pkg/api/apiconnect"
)

func TestRegisterAndLogin(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	alice := env.register("Alice")
	if alice.ID == "" || alice.Token == "" {
		t.Fatalf("expected ID and token, got %+v", alice)
	}

	t.Run("duplicate email", func(t *testing.T) {
		_, err := env.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
			Email:       "ALICE@example.com",
			DisplayName: "Alice Again",
			Password:    "another-password",
		}))
		expectCode(t, err, connect.CodeAlreadyExists)
	})

	t.Run("weak password", func(t *testing.T) {
		_, err := env.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
			Email:       "weak@example.com",
			DisplayName: "Weak",
			Password:    "short",
		}))
		expectCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("invalid email", func(t *testing.T) {
		_, err := env.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
			Email:       "not-an-email",
			DisplayName: "Nobody",
			Password:    "long-enough",
		}))
		expectCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("login", func(t *testing.T) {
		resp, err := env.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{
			Email:    "alice@example.com",
			Password: "password-Alice",
		}))
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		if resp.Msg.User.ID != alice.ID {
			t.Errorf("expected user %s, got %s", alice.ID, resp.Msg.User.ID)
		}
		if resp.Msg.Token == "" {
			t.Error("expected token")
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := env.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{
			Email:    "alice@example.com",
			Password: "wrong-password",
		}))
		expectCode(t, err, connect.CodeUnauthenticated)
	})
}

func TestGetCurrentUser(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	bob := env.register("Bob")

	client := apiconnect.NewAuthServiceClient(http.DefaultClient, env.server.URL,
		connect.WithInterceptors(bearer(bob.Token)))

	resp, err := client.GetCurrentUser(ctx, connect.NewRequest(&api.GetCurrentUserRequest{}))
	if err != nil {
		t.Fatalf("GetCurrentUser failed: %v", err)
	}
	if resp.Msg.User.DisplayName != "Bob" || resp.Msg.User.Email != "bob@example.com" {
		t.Errorf("unexpected user: %+v", resp.Msg.User)
	}
	if resp.Msg.User.CreatedAt == 0 {
		t.Error("expected non-zero CreatedAt")
	}

	t.Run("without token", func(t *testing.T) {
		_, err := env.auth.GetCurrentUser(ctx, connect.NewRequest(&api.GetCurrentUserRequest{}))
		expectCode(t, err, connect.CodeUnauthenticated)
	})

	t.Run("bad token", func(t *testing.T) {
		bad := apiconnect.NewAuthServiceClient(http.DefaultClient, env.server.URL,
			connect.WithInterceptors(bearer("not-a-jwt")))
		_, err := bad.GetCurrentUser(ctx, connect.NewRequest(&api.GetCurrentUserRequest{}))
		expectCode(t, err, connect.CodeUnauthenticated)
	})
}

func TestGetUser(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	alice := env.register("Alice")
	bob := env.register("Bob")
	carol := env.register("Carol")
	env.newGroup(alice, "Trip", bob)

	client := apiconnect.NewAuthServiceClient(http.DefaultClient, env.server.URL,
		connect.WithInterceptors(bearer(alice.Token)))

	t.Run("group member", func(t *testing.T) {
		resp, err := client.GetUser(ctx, connect.NewRequest(&api.GetUserRequest{UserID: bob.ID}))
		if err != nil {
			t.Fatalf("GetUser failed: %v", err)
		}
		if resp.Msg.User.ID != bob.ID || resp.Msg.User.DisplayName != "Bob" {
			t.Errorf("unexpected user: %+v", resp.Msg.User)
		}
	})

	t.Run("self", func(t *testing.T) {
		resp, err := client.GetUser(ctx, connect.NewRequest(&api.GetUserRequest{UserID: alice.ID}))
		if err != nil {
			t.Fatalf("GetUser failed: %v", err)
		}
		if resp.Msg.User.Email != "alice@example.com" {
			t.Errorf("unexpected user: %+v", resp.Msg.User)
		}
	})

	t.Run("no shared group", func(t *testing.T) {
		_, err := client.GetUser(ctx, connect.NewRequest(&api.GetUserRequest{UserID: carol.ID}))
		expectCode(t, err, connect.CodeNotFound)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := client.GetUser(ctx, connect.NewRequest(&api.GetUserRequest{UserID: "missing"}))
		expectCode(t, err, connect.CodeNotFound)
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := client.GetUser(ctx, connect.NewRequest(&api.GetUserRequest{}))
		expectCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("without token", func(t *testing.T) {
		_, err := env.auth.GetUser(ctx, connect.NewRequest(&api.GetUserRequest{UserID: bob.ID}))
		expectCode(t, err, connect.CodeUnauthenticated)
	})
}
