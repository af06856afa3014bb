package utils

import (
	"testing"

	"github.com/google/uuid"
)

func TestGenerateAndExtract(t *testing.T) {
	svc := NewJWTService("test-secret")
	userID := uuid.New().String()

	token, err := svc.GenerateToken(userID)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	got, err := svc.ExtractUserID(token)
	if err != nil {
		t.Fatalf("ExtractUserID: %v", err)
	}
	if got != userID {
		t.Errorf("extracted user id = %q, want %q", got, userID)
	}
}

func TestExtractRejectsWrongSecret(t *testing.T) {
	token, err := NewJWTService("secret-a").GenerateToken(uuid.New().String())
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := NewJWTService("secret-b").ExtractUserID(token); err == nil {
		t.Error("expected error for token signed with a different secret")
	}
}

func TestExtractRejectsGarbage(t *testing.T) {
	svc := NewJWTService("test-secret")

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := svc.ExtractUserID(token); err == nil {
			t.Errorf("expected error for token %q", token)
		}
	}
}
