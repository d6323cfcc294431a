package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"authgate/internal/entity"
)

func TestCredentialVerifier(t *testing.T) {
	users := newMemUserRepo()
	verifier := NewCredentialVerifier(users, plainHasher{})
	ctx := context.Background()

	verifiedAt := time.Now()
	if err := users.Create(ctx, &entity.User{
		Name:            "Alice",
		Email:           "alice@x.com",
		PasswordHash:    "hashed:secret1",
		EmailVerifiedAt: &verifiedAt,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := users.Create(ctx, &entity.User{
		Name:         "Bob",
		Email:        "bob@x.com",
		PasswordHash: "hashed:secret2",
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	t.Run("unknown email", func(t *testing.T) {
		_, err := verifier.Verify(ctx, "none@x.com", "secret1")
		if !errors.Is(err, ErrUserNotFound) {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := verifier.Verify(ctx, "alice@x.com", "wrong")
		if !errors.Is(err, ErrInvalidPassword) {
			t.Fatalf("expected ErrInvalidPassword, got %v", err)
		}
	})

	t.Run("unverified email is soft", func(t *testing.T) {
		user, err := verifier.Verify(ctx, "bob@x.com", "secret2")
		if !errors.Is(err, ErrEmailNotVerified) {
			t.Fatalf("expected ErrEmailNotVerified, got %v", err)
		}
		if user == nil {
			t.Fatal("expected the user alongside ErrEmailNotVerified")
		}
	})

	t.Run("verified credentials", func(t *testing.T) {
		user, err := verifier.Verify(ctx, "ALICE@x.com ", "secret1")
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if user.Email != "alice@x.com" {
			t.Fatalf("unexpected user %q", user.Email)
		}
	})
}
