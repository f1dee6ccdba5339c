// Package jobs holds the background workers that run alongside the
// HTTP server.
package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/FaridHajiyevAZ/KomfyAz/internal/repository"
)

// StartWarrantyExpirySweep runs the expiry sweep once at startup and
// then on every tick until the context is cancelled.  The sweep moves
// ACTIVE warranties whose end date has passed to EXPIRED; read paths
// already report those as expired, so the job only reconciles storage.
// Running with nothing to expire is a no-op.
func StartWarrantyExpirySweep(ctx context.Context, warrs *repository.WarrantyRepo, interval time.Duration, log zerolog.Logger) {
	sweep := func() {
		sctx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		n, err := warrs.ExpireOverdue(sctx, time.Now().UTC())
		if err != nil {
			log.Error().Err(err).Msg("warranty expiry sweep failed")
			return
		}
		if n > 0 {
			log.Info().Int64("expired", n).Msg("warranty expiry sweep")
		}
	}

	sweep()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweep()
		}
	}
}
