package main

import (
	"context"
	"log"
	"time"

	"freelanceBack/internal/repositories"
)

const sessionCleanerTimeout = 1 * time.Minute

// startSessionCleaner drops expired refresh sessions once a day.
func startSessionCleaner(ctx context.Context, repo *repositories.UserRepository, errorLog *log.Logger) {
	if repo == nil {
		return
	}

	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		runOnce := func() {
			runCtx, cancel := context.WithTimeout(ctx, sessionCleanerTimeout)
			defer cancel()
			if err := repo.DeleteExpiredSessions(runCtx, time.Now()); err != nil {
				errorLog.Printf("session cleaner: %v", err)
			}
		}

		runOnce()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				runOnce()
			}
		}
	}()
}
