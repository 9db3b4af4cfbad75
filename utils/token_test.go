package utils

import "testing"

func TestJwtRoundTrip(t *testing.T) {
	token, err := JwtGenerate(7, "Maria")
	if err != nil {
		t.Fatalf("JwtGenerate error: %v", err)
	}

	parsed, err := JwtValidate(token)
	if err != nil {
		t.Fatalf("JwtValidate error: %v", err)
	}
	if !parsed.Valid {
		t.Fatal("token should be valid right after issue")
	}
	claim, ok := parsed.Claims.(*JwtCustomClaim)
	if !ok {
		t.Fatalf("unexpected claims type %T", parsed.Claims)
	}
	if claim.ID != 7 || claim.Nome != "Maria" {
		t.Fatalf("claims round-trip: got id=%d nome=%q", claim.ID, claim.Nome)
	}
}

func TestJwtValidate_RejectsGarbage(t *testing.T) {
	if _, err := JwtValidate("not-a-token"); err == nil {
		t.Fatal("garbage token should fail validation")
	}
}

func TestJwtSecretIsReadAtCallTime(t *testing.T) {
	t.Setenv("API_SECRET", "first-secret")
	token, err := JwtGenerate(3, "Carlos")
	if err != nil {
		t.Fatalf("JwtGenerate error: %v", err)
	}
	if _, err := JwtValidate(token); err != nil {
		t.Fatalf("token signed and validated under the same secret: %v", err)
	}

	t.Setenv("API_SECRET", "rotated-secret")
	if parsed, err := JwtValidate(token); err == nil && parsed.Valid {
		t.Fatal("token signed under the old secret should not validate after rotation")
	}
}
