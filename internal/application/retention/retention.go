package retention

import (
	"context"
	"time"

	"github.com/obrentanasic/drs-projekat/internal/application/ports"
)

// RunPurgeLoginAttempts deletes audit rows older than retainDays. The trail
// exists for recent-incident review, not long-term storage. Call periodically
// (e.g. daily). retainDays 0 = no-op.
func RunPurgeLoginAttempts(ctx context.Context, attempts ports.LoginAttemptRepository, retainDays int) (int64, error) {
	if retainDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().Add(-time.Duration(retainDays) * 24 * time.Hour)
	return attempts.DeleteOlderThan(ctx, cutoff)
}
