// Kuppi Admin - Back Office for the Kuppi Tutorial Sharing Platform
// Copyright 2026 Kuppi Admin contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kuppihub/kuppi-admin

package services

import (
	"context"
	"time"

	"github.com/kuppihub/kuppi-admin/internal/logging"
	"github.com/kuppihub/kuppi-admin/internal/metrics"
	"github.com/kuppihub/kuppi-admin/internal/ratelimit"
)

// SweeperService periodically evicts expired limiter windows so the
// identifier table stays bounded.
type SweeperService struct {
	limiter  *ratelimit.Limiter
	interval time.Duration
}

// NewSweeperService creates a sweeper over limiter.
func NewSweeperService(limiter *ratelimit.Limiter, interval time.Duration) *SweeperService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &SweeperService{limiter: limiter, interval: interval}
}

// Serve implements suture.Service.
func (s *SweeperService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			evicted := s.limiter.Sweep()
			metrics.RateLimitWindows.Set(float64(s.limiter.Size()))
			if evicted > 0 {
				logging.Debug().Int("evicted", evicted).Msg("swept expired rate limit windows")
			}
		}
	}
}

func (s *SweeperService) String() string {
	return "ratelimit-sweeper"
}
