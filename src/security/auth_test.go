package security

import (
	"testing"
	"time"

	"github.com/username/duitdash/src/config"
)

func testConfig() {
	config.Cfg = &config.AppConfig{
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
	}
}

func TestPasswordHashing(t *testing.T) {
	a := NewAuthService("0123456789abcdef0123456789abcdef")

	hash, err := a.HashPassword("s3cret-password")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "s3cret-password" {
		t.Fatal("password stored in the clear")
	}
	if err := a.CompareHashAndPassword(hash, "s3cret-password"); err != nil {
		t.Errorf("correct password rejected: %v", err)
	}
	if err := a.CompareHashAndPassword(hash, "wrong"); err == nil {
		t.Error("wrong password accepted")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	testConfig()
	a := NewAuthService("0123456789abcdef0123456789abcdef")

	token, err := a.GenerateToken("42")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	sub, err := a.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if sub != "42" {
		t.Errorf("sub = %q, want %q", sub, "42")
	}
}

func TestValidateRejectsForeignSecret(t *testing.T) {
	testConfig()
	a := NewAuthService("0123456789abcdef0123456789abcdef")
	b := NewAuthService("fedcba9876543210fedcba9876543210")

	token, err := a.GenerateToken("42")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := b.ValidateToken(token); err == nil {
		t.Error("token signed with a different secret accepted")
	}
	if _, err := a.ValidateToken("not.a.jwt"); err == nil {
		t.Error("garbage token accepted")
	}
}

func TestRefreshTokensAreUnique(t *testing.T) {
	a := NewAuthService("0123456789abcdef0123456789abcdef")

	t1, err := a.GenerateRefreshToken()
	if err != nil {
		t.Fatalf("GenerateRefreshToken: %v", err)
	}
	t2, err := a.GenerateRefreshToken()
	if err != nil {
		t.Fatalf("GenerateRefreshToken: %v", err)
	}
	if t1 == t2 {
		t.Error("two refresh tokens collided")
	}
}
