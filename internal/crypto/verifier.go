// Package crypto authenticates payment events. The payment authority
// signs the canonical serialization of each transaction with its RSA
// private key; consumers verify against the published public key. A bad
// signature is an expected outcome (forged or corrupted message) and is
// reported as false, never as an error.
package crypto

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
)

// Verifier checks RSA PKCS#1 v1.5 / SHA-256 signatures with a key loaded
// once at startup. Immutable after construction, safe for concurrent use.
type Verifier struct {
	key *rsa.PublicKey
}

// NewVerifier loads the trusted public key from a PEM file. A missing or
// unreadable key file is a startup error; callers are expected to treat
// it as fatal.
func NewVerifier(path string) (*Verifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read public key %s: %w", path, err)
	}
	key, err := parsePublicKey(data)
	if err != nil {
		return nil, fmt.Errorf("parse public key %s: %w", path, err)
	}
	return &Verifier{key: key}, nil
}

// Verify reports whether sig is a valid signature over payload. The
// payload must already be in canonical form (see CanonicalJSON).
func (v *Verifier) Verify(payload, sig []byte) bool {
	sum := sha256.Sum256(payload)
	return rsa.VerifyPKCS1v15(v.key, crypto.SHA256, sum[:], sig) == nil
}

// parsePublicKey accepts PKCS#1 ("RSA PUBLIC KEY") PEM blocks, the format
// the payment authority distributes, with a PKIX fallback.
func parsePublicKey(data []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errors.New("no PEM block found")
	}
	if key, err := x509.ParsePKCS1PublicKey(block.Bytes); err == nil {
		return key, nil
	}
	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	key, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("not an RSA public key")
	}
	return key, nil
}
