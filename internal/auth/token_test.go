package auth

import (
	"errors"
	"testing"
	"time"
)

func tokenTestUser() *User {
	return &User{
		ID:    "usr-token1",
		Email: "admin@example.com",
		Role:  RoleAdmin,
	}
}

func TestTokenCodec_IssueAndVerify(t *testing.T) {
	codec := testCodec(t)
	user := tokenTestUser()

	token, expiresAt, err := codec.Issue(user)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if token == "" {
		t.Fatal("Issue() returned empty token")
	}
	if remaining := time.Until(expiresAt); remaining < 59*time.Minute || remaining > time.Hour {
		t.Errorf("expiry %v from now, want ~1h", remaining)
	}

	claims, err := codec.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims.Subject != user.ID {
		t.Errorf("Subject = %q, want %q", claims.Subject, user.ID)
	}
	if claims.Email != user.Email {
		t.Errorf("Email = %q, want %q", claims.Email, user.Email)
	}
	if claims.Role != RoleAdmin {
		t.Errorf("Role = %q, want %q", claims.Role, RoleAdmin)
	}
}

func TestTokenCodec_Expired(t *testing.T) {
	codec := NewTokenCodec(testSigningKey, -time.Minute)

	token, _, err := codec.Issue(tokenTestUser())
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	_, err = codec.Verify(token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Verify() error = %v, want ErrTokenExpired", err)
	}
}

func TestTokenCodec_WrongKey(t *testing.T) {
	issuer := NewTokenCodec([]byte("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"), time.Hour)
	verifier := NewTokenCodec([]byte("bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"), time.Hour)

	token, _, err := issuer.Issue(tokenTestUser())
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	_, err = verifier.Verify(token)
	if !errors.Is(err, ErrTokenSignature) {
		t.Errorf("Verify() error = %v, want ErrTokenSignature", err)
	}
}

func TestTokenCodec_Malformed(t *testing.T) {
	codec := testCodec(t)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"no dots", "notatoken"},
		{"one dot", "half.token"},
		{"too many dots", "a.b.c.d"},
		{"garbage segments", "!!!.!!!.!!!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Verify(tt.token)
			if !errors.Is(err, ErrTokenMalformed) {
				t.Errorf("Verify(%q) error = %v, want ErrTokenMalformed", tt.token, err)
			}
		})
	}
}

func TestTokenCodec_IsExpired(t *testing.T) {
	codec := testCodec(t)

	live, _, err := codec.Issue(tokenTestUser())
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if codec.IsExpired(live) {
		t.Error("IsExpired(fresh token) = true, want false")
	}

	stale, _, err := NewTokenCodec(testSigningKey, -time.Minute).Issue(tokenTestUser())
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if !codec.IsExpired(stale) {
		t.Error("IsExpired(past expiry) = false, want true")
	}

	// Fails closed: anything unverifiable counts as expired.
	foreign, _, err := NewTokenCodec([]byte("bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"), time.Hour).Issue(tokenTestUser())
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	for _, token := range []string{"", "garbage", "a.b.c", foreign} {
		if !codec.IsExpired(token) {
			t.Errorf("IsExpired(%q) = false, want true", token)
		}
	}
}

func TestTokenCodec_TamperedPayload(t *testing.T) {
	codec := testCodec(t)

	token, _, err := codec.Issue(tokenTestUser())
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	// Flip a character in the payload segment; the signature no longer matches.
	tampered := []byte(token)
	mid := len(tampered) / 2
	if tampered[mid] == 'A' {
		tampered[mid] = 'B'
	} else {
		tampered[mid] = 'A'
	}

	if _, err := codec.Verify(string(tampered)); err == nil {
		t.Error("Verify() accepted a tampered token")
	}
}
