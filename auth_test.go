package nats

import (
	"testing"

	"github.com/nats-io/jwt/v2"
	"github.com/nats-io/nkeys"
)

func TestUserPassAuthenticator(t *testing.T) {
	a := UserPassAuthenticator{User: "alice", Pass: "s3cret"}
	creds, err := a.Authenticate(nil)
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if creds.User != "alice" || creds.Pass != "s3cret" {
		t.Errorf("creds = %+v", creds)
	}
}

func TestTokenAuthenticatorPropagatesProviderError(t *testing.T) {
	a := TokenAuthenticator{Token: func() (string, error) { return "", newErr(ErrTimeout, "boom") }}
	if _, err := a.Authenticate(nil); err == nil {
		t.Fatal("expected error from failing token provider")
	}
}

func TestNKeyAuthenticatorSignsNonce(t *testing.T) {
	kp, err := nkeys.CreateUser()
	if err != nil {
		t.Fatalf("nkeys.CreateUser() error = %v", err)
	}
	seed, err := kp.Seed()
	if err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	pub, err := kp.PublicKey()
	if err != nil {
		t.Fatalf("PublicKey() error = %v", err)
	}

	a := NKeyAuthenticator{Seed: func() ([]byte, error) { return seed, nil }}
	nonce := []byte("server-nonce")
	creds, err := a.Authenticate(nonce)
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if creds.NKey != pub {
		t.Errorf("NKey = %q, want %q", creds.NKey, pub)
	}
	if creds.Sig == "" {
		t.Error("expected a non-empty signature")
	}
}

func TestNKeyAuthenticatorRejectsBadSeed(t *testing.T) {
	a := NKeyAuthenticator{Seed: func() ([]byte, error) { return []byte("not-a-seed"), nil }}
	if _, err := a.Authenticate([]byte("nonce")); err == nil {
		t.Fatal("expected error for invalid seed")
	}
}

func TestJWTAuthenticatorValidatesSubjectAgainstNKey(t *testing.T) {
	userKP, err := nkeys.CreateUser()
	if err != nil {
		t.Fatalf("nkeys.CreateUser() error = %v", err)
	}
	pub, err := userKP.PublicKey()
	if err != nil {
		t.Fatalf("PublicKey() error = %v", err)
	}
	seed, err := userKP.Seed()
	if err != nil {
		t.Fatalf("Seed() error = %v", err)
	}

	issuerKP, err := nkeys.CreateAccount()
	if err != nil {
		t.Fatalf("nkeys.CreateAccount() error = %v", err)
	}

	claims := jwt.NewUserClaims(pub)
	token, err := claims.Encode(issuerKP)
	if err != nil {
		t.Fatalf("claims.Encode() error = %v", err)
	}

	a := JWTAuthenticator{
		JWT:  func() (string, error) { return token, nil },
		Seed: func() ([]byte, error) { return seed, nil },
	}
	creds, err := a.Authenticate([]byte("nonce"))
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if creds.JWT != token {
		t.Errorf("JWT = %q, want %q", creds.JWT, token)
	}
	if creds.NKey != pub {
		t.Errorf("NKey = %q, want %q", creds.NKey, pub)
	}
}

func TestJWTAuthenticatorRejectsMismatchedSubject(t *testing.T) {
	subjectKP, err := nkeys.CreateUser()
	if err != nil {
		t.Fatalf("nkeys.CreateUser() error = %v", err)
	}
	subjectPub, err := subjectKP.PublicKey()
	if err != nil {
		t.Fatalf("PublicKey() error = %v", err)
	}

	otherKP, err := nkeys.CreateUser()
	if err != nil {
		t.Fatalf("nkeys.CreateUser() error = %v", err)
	}
	otherSeed, err := otherKP.Seed()
	if err != nil {
		t.Fatalf("Seed() error = %v", err)
	}

	issuerKP, err := nkeys.CreateAccount()
	if err != nil {
		t.Fatalf("nkeys.CreateAccount() error = %v", err)
	}
	claims := jwt.NewUserClaims(subjectPub)
	token, err := claims.Encode(issuerKP)
	if err != nil {
		t.Fatalf("claims.Encode() error = %v", err)
	}

	a := JWTAuthenticator{
		JWT:  func() (string, error) { return token, nil },
		Seed: func() ([]byte, error) { return otherSeed, nil },
	}
	if _, err := a.Authenticate([]byte("nonce")); err == nil {
		t.Fatal("expected error when jwt subject does not match the signing nkey")
	}
}
