package job

import (
	"context"
	"log/slog"

	"github.com/pra2107tham/Reeva/internal/repository"
)

type TokenCleanupJob struct {
	vt repository.VerificationTokenRepository
}

func NewTokenCleanupJob(vt repository.VerificationTokenRepository) *TokenCleanupJob {
	return &TokenCleanupJob{vt: vt}
}

// CleanupTokens removes consumed and expired verification tokens. Tokens are
// single-use with a one-hour lifetime, so anything stale is pure dead weight.
func (c *TokenCleanupJob) CleanupTokens() {
	ctx := context.Background()

	deleted, err := c.vt.DeleteStale(ctx)
	if err != nil {
		slog.Info("token cleanup failed", "error", err.Error())
		return
	}

	if deleted > 0 {
		slog.Info("stale verification tokens removed", "count", deleted)
	}
}
