package sessions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/secrets/internal/logging"
)

type purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// RunSweeper calls PurgeExpired every interval until ctx is done.
func RunSweeper(ctx context.Context, p purger, interval time.Duration, log logging.Logger) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := p.PurgeExpired(ctx)
			if err != nil {
				log.Error(ctx, "session sweep failed", "error", err)
				continue
			}
			if n > 0 {
				log.Debug(ctx, "expired sessions purged", "count", n)
			}
		}
	}
}
