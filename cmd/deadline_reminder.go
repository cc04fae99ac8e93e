package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"freelanceBack/internal/repositories"
	"freelanceBack/internal/services"
)

const (
	deadlineReminderTimeout  = 1 * time.Minute
	deadlineReminderInterval = 1 * time.Hour
	deadlineReminderWindow   = 24 * time.Hour
)

// startDeadlineReminder periodically emails buyers whose active projects are
// within a day of their deadline. Each project is reminded once; editing the
// deadline re-arms it.
func startDeadlineReminder(ctx context.Context, repo *repositories.ProjectRepository, mailer services.Notifier, users *repositories.UserRepository, infoLog, errorLog *log.Logger) {
	if repo == nil || mailer == nil {
		return
	}

	go func() {
		ticker := time.NewTicker(deadlineReminderInterval)
		defer ticker.Stop()

		runOnce := func() {
			runCtx, cancel := context.WithTimeout(ctx, deadlineReminderTimeout)
			defer cancel()

			projects, err := repo.GetProjectsNeedingReminder(runCtx, time.Now(), deadlineReminderWindow)
			if err != nil {
				errorLog.Printf("deadline reminder: list projects: %v", err)
				return
			}

			for _, project := range projects {
				buyer, err := users.GetUserByID(runCtx, project.BuyerID)
				if err != nil {
					errorLog.Printf("deadline reminder: buyer of project %d: %v", project.ID, err)
					continue
				}
				body := fmt.Sprintf("Your project %q is due on %s.", project.Title, project.Deadline.Format("2006-01-02 15:04"))
				if err := mailer.Send(buyer.Email, "Project deadline approaching", body); err != nil {
					errorLog.Printf("deadline reminder: send for project %d: %v", project.ID, err)
					continue
				}
				if err := repo.MarkReminderSent(runCtx, project.ID); err != nil {
					errorLog.Printf("deadline reminder: mark project %d: %v", project.ID, err)
					continue
				}
				infoLog.Printf("deadline reminder: notified buyer %d about project %d", project.BuyerID, project.ID)
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
