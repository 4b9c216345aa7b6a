// Package auth signs WebSocket connection requests with the exchange's
// RSA-PSS request-signing scheme.
package auth

import (
	"bytes"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"
)

// ErrorKind classifies signer failures.
type ErrorKind int

const (
	MissingKeyId ErrorKind = iota
	MissingPrivateKey
	SigningFailed
)

func (k ErrorKind) String() string {
	switch k {
	case MissingKeyId:
		return "MissingKeyId"
	case MissingPrivateKey:
		return "MissingPrivateKey"
	case SigningFailed:
		return "SigningFailed"
	default:
		return "Unknown"
	}
}

// Error is a typed signer failure carrying a human-readable detail.
type Error struct {
	Kind   ErrorKind
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// WebSocketPath is the path signed for the streaming market-data upgrade.
const WebSocketPath = "/trade-api/ws/v2"

// Credentials holds an API key id and the private key used to sign it.
// Read-only after construction; safe for concurrent use across connection
// attempts.
type Credentials struct {
	KeyID      string
	PrivateKey *rsa.PrivateKey
}

var (
	lastSignErrorMu sync.Mutex
	lastSignError   string
)

func setLastSignError(detail string) {
	lastSignErrorMu.Lock()
	lastSignError = detail
	lastSignErrorMu.Unlock()
}

// LastSignError returns the detail string of the most recent signing
// failure observed by this process, or the empty string if none occurred.
func LastSignError() string {
	lastSignErrorMu.Lock()
	defer lastSignErrorMu.Unlock()
	return lastSignError
}

// NewCredentials validates and wraps a key id and private key.
func NewCredentials(keyID string, privateKey *rsa.PrivateKey) (*Credentials, error) {
	if keyID == "" {
		return nil, &Error{Kind: MissingKeyId}
	}
	if privateKey == nil {
		return nil, &Error{Kind: MissingPrivateKey}
	}
	return &Credentials{KeyID: keyID, PrivateKey: privateKey}, nil
}

// LoadPrivateKey reads a PKCS#8 PEM-encoded RSA private key from raw PEM
// bytes. OpenSSH-format keys are rejected explicitly since the underlying
// cryptographic library accepts only PKCS#8.
func LoadPrivateKey(pemBytes []byte) (*rsa.PrivateKey, error) {
	if bytes.Contains(pemBytes, []byte("BEGIN OPENSSH PRIVATE KEY")) {
		detail := "OpenSSH-format private key supplied; convert to PKCS#8 PEM (e.g. via `openssl pkcs8 -topk8`)"
		setLastSignError(detail)
		return nil, &Error{Kind: SigningFailed, Detail: detail}
	}

	block, _ := pem.Decode(pemBytes)
	if block == nil {
		detail := "no PEM block found in private key"
		setLastSignError(detail)
		return nil, &Error{Kind: SigningFailed, Detail: detail}
	}

	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		detail := fmt.Sprintf("parse PKCS8 private key: %v", err)
		setLastSignError(detail)
		return nil, &Error{Kind: SigningFailed, Detail: detail}
	}

	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		detail := "private key is not an RSA key"
		setLastSignError(detail)
		return nil, &Error{Kind: SigningFailed, Detail: detail}
	}

	return rsaKey, nil
}

// SignWebSocket mints the three headers required to authenticate a
// WebSocket upgrade, using the current wall-clock time. A fresh timestamp
// (and therefore signature) is produced on every call — callers must invoke
// this once per connection attempt, never cache the result.
func (c *Credentials) SignWebSocket() (map[string]string, error) {
	return c.SignRequest("GET", WebSocketPath)
}

// SignRequest produces authentication headers for an arbitrary method and
// path, signing the canonical request string with the current time.
func (c *Credentials) SignRequest(method, path string) (map[string]string, error) {
	if c.KeyID == "" {
		return nil, &Error{Kind: MissingKeyId}
	}
	if c.PrivateKey == nil {
		return nil, &Error{Kind: MissingPrivateKey}
	}

	timestampMs := time.Now().UnixMilli()

	signature, err := c.sign(timestampMs, method, path)
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"KALSHI-ACCESS-KEY":       c.KeyID,
		"KALSHI-ACCESS-TIMESTAMP": strconv.FormatInt(timestampMs, 10),
		"KALSHI-ACCESS-SIGNATURE": signature,
	}, nil
}

// sign computes the RSA-PSS/SHA-256 signature over the canonical request
// string `<timestamp_ms> || method || path`, salt length equal to the
// digest length.
func (c *Credentials) sign(timestampMs int64, method, path string) (string, error) {
	message := strconv.FormatInt(timestampMs, 10) + method + path
	hashed := sha256.Sum256([]byte(message))

	signature, err := rsa.SignPSS(
		rand.Reader,
		c.PrivateKey,
		crypto.SHA256,
		hashed[:],
		&rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthEqualsHash},
	)
	if err != nil {
		detail := fmt.Sprintf("sign canonical request: %v", err)
		setLastSignError(detail)
		return "", &Error{Kind: SigningFailed, Detail: detail}
	}

	return base64.StdEncoding.EncodeToString(signature), nil
}

// IsSigningFailed reports whether err is a signer Error of kind SigningFailed.
func IsSigningFailed(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == SigningFailed
	}
	return false
}
