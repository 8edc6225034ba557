package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/pra2107tham/Reeva/internal/models"
	"github.com/pra2107tham/Reeva/internal/repository"
	"github.com/pra2107tham/Reeva/pkg/utils"
)

var (
	ErrTokenNotFound = errors.New("verification token not found or already used")
	ErrTokenExpired  = errors.New("verification token expired")
)

const tokenTTL = time.Hour

type CreatedToken struct {
	Plain     string
	Hash      string
	ExpiresAt time.Time
}

type TokenService interface {
	Create(ctx context.Context, igID, messageID string) (*CreatedToken, error)
	Consume(ctx context.Context, plain, igID string) error
}

type tokenService struct {
	vt repository.VerificationTokenRepository
}

func NewTokenService(vt repository.VerificationTokenRepository) TokenService {
	return &tokenService{vt: vt}
}

// Create mints a single-use token bound to the Instagram identity and the
// inbound message that triggered it. The plaintext secret is returned to the
// caller exactly once; only its hash reaches storage.
func (s *tokenService) Create(ctx context.Context, igID, messageID string) (*CreatedToken, error) {
	plain, hash, err := utils.GenerateTokenSecret()
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(tokenTTL)
	err = s.vt.Create(ctx, &models.VerificationToken{
		TokenHash: hash,
		IGID:      igID,
		MessageID: messageID,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		return nil, err
	}

	return &CreatedToken{Plain: plain, Hash: hash, ExpiresAt: expiresAt}, nil
}

// Consume validates and burns a token: hash lookup, expiry check, one-way
// consumed flip. A second call with the same secret fails with
// ErrTokenNotFound.
func (s *tokenService) Consume(ctx context.Context, plain, igID string) error {
	hash := utils.HashTokenSecret(plain)

	token, found, err := s.vt.GetActive(ctx, hash, igID)
	if err != nil {
		return err
	}
	if !found {
		return ErrTokenNotFound
	}

	if time.Now().After(token.ExpiresAt) {
		return ErrTokenExpired
	}

	consumed, err := s.vt.Consume(ctx, hash)
	if err != nil {
		return err
	}
	if !consumed {
		// Lost the race against a concurrent consume.
		return ErrTokenNotFound
	}

	slog.Info("verification token consumed", "ig_id", igID)
	return nil
}
