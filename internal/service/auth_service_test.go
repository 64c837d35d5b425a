package service

import (
	"errors"
	"testing"

	"thermostat_triggers/internal/models"

	"golang.org/x/crypto/bcrypt"
)

type fakeAuthRepo struct {
	users  map[string]*models.User
	nextID int
}

func newFakeAuthRepo() *fakeAuthRepo {
	return &fakeAuthRepo{users: make(map[string]*models.User)}
}

func (f *fakeAuthRepo) Create(username, hash string) (int, error) {
	if _, exists := f.users[username]; exists {
		return 0, errors.New("username taken")
	}
	f.nextID++
	f.users[username] = &models.User{ID: f.nextID, Username: username, PasswordHash: hash}
	return f.nextID, nil
}

func (f *fakeAuthRepo) GetByUsername(username string) (*models.User, error) {
	return f.users[username], nil
}

func TestSignUpAndTokenRoundTrip(t *testing.T) {
	svc := NewAuthService(newFakeAuthRepo(), "test-signing-key")

	id, err := svc.SignUp("alice", "s3cret")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	token, err := svc.GenerateToken("alice", "s3cret")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	gotID, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if gotID != id {
		t.Fatalf("expected user id %d, got %d", id, gotID)
	}
}

func TestSignUpRejectsEmptyPassword(t *testing.T) {
	svc := NewAuthService(newFakeAuthRepo(), "test-signing-key")

	if _, err := svc.SignUp("alice", "   "); err == nil {
		t.Fatalf("expected an error for a blank password")
	}
}

func TestSignUpHashesPassword(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := NewAuthService(repo, "test-signing-key")

	if _, err := svc.SignUp("alice", "s3cret"); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	stored := repo.users["alice"].PasswordHash
	if stored == "s3cret" {
		t.Fatalf("password stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored), []byte("s3cret")); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
}

func TestGenerateTokenErrors(t *testing.T) {
	svc := NewAuthService(newFakeAuthRepo(), "test-signing-key")

	if _, err := svc.GenerateToken("ghost", "whatever"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	if _, err := svc.SignUp("alice", "s3cret"); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if _, err := svc.GenerateToken("alice", "wrong"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
}

func TestParseTokenRejectsForeignSignature(t *testing.T) {
	issuer := NewAuthService(newFakeAuthRepo(), "key-one")
	verifier := NewAuthService(newFakeAuthRepo(), "key-two")

	if _, err := issuer.SignUp("alice", "s3cret"); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	token, err := issuer.GenerateToken("alice", "s3cret")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := verifier.ParseToken(token); err == nil {
		t.Fatalf("expected signature verification to fail")
	}
}
