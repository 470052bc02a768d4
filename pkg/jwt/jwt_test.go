package jwt

import (
	"errors"
	"testing"
	"time"
)

func TestIssueAndValidate(t *testing.T) {
	m := NewManager("secret", "textroleplay", time.Hour)

	token, err := m.IssueToken("user-1", "aria")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != "user-1" || claims.Username != "aria" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	issuer := NewManager("secret-a", "textroleplay", time.Hour)
	validator := NewManager("secret-b", "textroleplay", time.Hour)

	token, err := issuer.IssueToken("user-1", "aria")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := validator.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	m := NewManager("secret", "textroleplay", -time.Minute)

	token, err := m.IssueToken("user-1", "aria")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := m.ValidateToken(token); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	m := NewManager("secret", "textroleplay", time.Hour)
	if _, err := m.ValidateToken("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
