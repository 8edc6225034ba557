package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
)

// GenerateTokenSecret returns a fresh 256-bit secret in hex together with its
// SHA-256 digest. Only the digest is ever persisted; the plaintext is handed
// to the caller once and becomes unrecoverable after use.
func GenerateTokenSecret() (plain string, hash string, err error) {
	b := make([]byte, 32)
	_, err = rand.Read(b)
	if err != nil {
		slog.Info(err.Error())
		return "", "", err
	}

	plain = hex.EncodeToString(b)
	return plain, HashTokenSecret(plain), nil
}

// HashTokenSecret computes the storage form of a token secret.
func HashTokenSecret(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}
