package services

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Dhiren507/skillsync/internal/domain/models"
)

func TestJWTRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)

	token, err := svc.Issue(&models.User{ID: 42, Plan: models.PlanPremium, Email: "a@b.com"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Plan != models.PlanPremium {
		t.Errorf("Plan = %q, want premium", claims.Plan)
	}
	if claims.Email != "a@b.com" {
		t.Errorf("Email = %q", claims.Email)
	}
}

func TestJWTSubjectCarriesUserID(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)

	token, err := svc.Issue(&models.User{ID: 7, Plan: models.PlanFree})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(token, &accessClaims{})
	if err != nil {
		t.Fatalf("ParseUnverified: %v", err)
	}
	claims := parsed.Claims.(*accessClaims)
	if claims.Subject != "7" {
		t.Errorf("subject = %q, want \"7\"", claims.Subject)
	}
	if claims.Issuer != tokenIssuer {
		t.Errorf("issuer = %q, want %q", claims.Issuer, tokenIssuer)
	}
}

func TestJWTWrongSecret(t *testing.T) {
	token, err := NewJWTService("secret-one", time.Hour).Issue(&models.User{ID: 1, Plan: models.PlanFree})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := NewJWTService("secret-two", time.Hour).Verify(token); err == nil {
		t.Fatal("token verified with the wrong secret")
	}
}

func TestJWTExpired(t *testing.T) {
	svc := NewJWTService("test-secret", -time.Minute)

	token, err := svc.Issue(&models.User{ID: 1, Plan: models.PlanFree})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := svc.Verify(token); err == nil {
		t.Fatal("expired token verified")
	}
}

func TestJWTWrongIssuer(t *testing.T) {
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims{
		Plan: models.PlanPro,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := NewJWTService("test-secret", time.Hour).Verify(raw); err == nil {
		t.Fatal("token from a foreign issuer verified")
	}
}

func TestJWTRejectsUnsignedAlg(t *testing.T) {
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := NewJWTService("test-secret", time.Hour).Verify(raw); err == nil {
		t.Fatal("alg=none token verified")
	}
}

func TestJWTGarbage(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)

	for _, raw := range []string{"", "not-a-token", strings.Repeat("x.", 3)} {
		if _, err := svc.Verify(raw); err == nil {
			t.Errorf("Verify(%q) succeeded", raw)
		}
	}
}
