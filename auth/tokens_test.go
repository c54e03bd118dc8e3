package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestIssuer_AccessTokenRoundTrip(t *testing.T) {
	issuer := NewIssuer("access-secret", "refresh-secret")

	pair, err := issuer.Issue("b1", "ana@x.com", "broker")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := issuer.VerifyAccess(pair.AccessToken)
	if err != nil {
		t.Fatalf("verify access: %v", err)
	}
	if claims.ID != "b1" || claims.Email != "ana@x.com" || claims.Role != "broker" || claims.Type != "access" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	id, err := issuer.VerifyRefresh(pair.RefreshToken)
	if err != nil {
		t.Fatalf("verify refresh: %v", err)
	}
	if id != "b1" {
		t.Fatalf("expected refresh subject b1, got %q", id)
	}
}

func TestIssuer_TokenClassesDoNotCross(t *testing.T) {
	issuer := NewIssuer("access-secret", "refresh-secret")

	pair, err := issuer.Issue("b1", "ana@x.com", "broker")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// A refresh token presented as an access token fails on signature: the
	// two classes are signed with distinct secrets.
	if _, err := issuer.VerifyAccess(pair.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for refresh-as-access, got %v", err)
	}
	if _, err := issuer.VerifyRefresh(pair.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for access-as-refresh, got %v", err)
	}
}

func TestIssuer_DerivedRefreshSecretDiffers(t *testing.T) {
	issuer := NewIssuer("only-secret", "")

	pair, err := issuer.Issue("b1", "ana@x.com", "broker")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := issuer.VerifyAccess(pair.RefreshToken); err == nil {
		t.Fatal("derived refresh secret must not verify as the access secret")
	}
}

func TestIssuer_ExpiredAccessTokenIsDistinguishable(t *testing.T) {
	secret := "access-secret"
	issuer := NewIssuer(secret, "refresh-secret")

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &AccessClaims{
		ID:    "b1",
		Email: "ana@x.com",
		Role:  "broker",
		Type:  "access",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-AccessTokenTTL)),
		},
	})
	tokenString, err := expired.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign expired token: %v", err)
	}

	if _, err := issuer.VerifyAccess(tokenString); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}

	if _, err := issuer.VerifyAccess("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for garbage, got %v", err)
	}
}

func TestIssuer_RejectsWrongTokenType(t *testing.T) {
	secret := "access-secret"
	issuer := NewIssuer(secret, "refresh-secret")

	// Correctly signed with the access secret but carrying the wrong type.
	mistyped := jwt.NewWithClaims(jwt.SigningMethodHS256, &AccessClaims{
		ID:   "b1",
		Type: "refresh",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	})
	tokenString, err := mistyped.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := issuer.VerifyAccess(tokenString); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for mistyped claims, got %v", err)
	}
}

func TestHashToken_StableAndOneWay(t *testing.T) {
	a := HashToken("raw-token")
	b := HashToken("raw-token")
	if a != b {
		t.Fatal("digest must be deterministic")
	}
	if a == "raw-token" {
		t.Fatal("digest must not equal the raw token")
	}
	if len(a) != 64 {
		t.Fatalf("expected hex sha256 digest, got %d chars", len(a))
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("Abcd1234!"); err != nil {
		t.Fatalf("expected valid password, got %v", err)
	}
	for _, pw := range []string{"", "Ab1!", "alllower1!", "ALLUPPER1!", "NoDigits!!", "NoSpecial11A"} {
		if err := ValidatePassword(pw); !errors.Is(err, ErrWeakPassword) {
			t.Fatalf("password %q: expected ErrWeakPassword, got %v", pw, err)
		}
	}
}
