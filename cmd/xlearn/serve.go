package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ShinnosukeUesaka/XLearn/internal/broadcast/x"
	"github.com/ShinnosukeUesaka/XLearn/internal/database"
	"github.com/ShinnosukeUesaka/XLearn/internal/identity"
	"github.com/ShinnosukeUesaka/XLearn/internal/inference"
	"github.com/ShinnosukeUesaka/XLearn/internal/inference/openai"
	"github.com/ShinnosukeUesaka/XLearn/internal/material"
	"github.com/ShinnosukeUesaka/XLearn/internal/scheduler"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the review scheduler until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("loadConfig() > %w", err)
			}
			if cfg.OpenAI.APIKey == "" {
				return fmt.Errorf("OPENAI_API_KEY environment variable is required")
			}
			if cfg.X.BearerToken == "" {
				return fmt.Errorf("X_BEARER_TOKEN environment variable is required")
			}

			location, err := time.LoadLocation(cfg.Scheduler.Timezone)
			if err != nil {
				return fmt.Errorf("time.LoadLocation(%s) > %w", cfg.Scheduler.Timezone, err)
			}

			db, err := database.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("database.Open() > %w", err)
			}
			defer func() {
				_ = db.Close()
			}()

			grader := openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, inference.DefaultMaxRetryAttempts)
			defer func() {
				_ = grader.Close()
			}()

			publisher := x.NewPublisher(cfg.X.APIBaseURL, cfg.X.PublishRetryAttempts)
			defer func() {
				_ = publisher.Close()
			}()
			listener := x.NewListener(
				cfg.X.APIBaseURL,
				cfg.X.BearerToken,
				time.Duration(cfg.Scheduler.PollIntervalSeconds)*time.Second,
			)

			sched := scheduler.New(
				material.NewDBRepository(db),
				identity.NewDBResolver(db),
				publisher,
				listener,
				grader,
				location,
				scheduler.Options{
					FloorInterval: time.Duration(cfg.Scheduler.FloorIntervalHours) * time.Hour,
					ReplyWindow:   time.Duration(cfg.Scheduler.ReplyWindowMinutes) * time.Minute,
				},
			)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := sched.Restore(ctx); err != nil {
				return fmt.Errorf("sched.Restore() > %w", err)
			}
			slog.Default().Info("scheduler running", "timezone", cfg.Scheduler.Timezone)

			group, ctx := errgroup.WithContext(ctx)
			group.Go(func() error {
				// Pick up materials submitted by the one-shot CLI while
				// this process is running.
				ticker := time.NewTicker(time.Duration(cfg.Scheduler.RescanIntervalMinutes) * time.Minute)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return nil
					case <-ticker.C:
						if err := sched.Rescan(ctx); err != nil {
							slog.Default().Warn("rescan failed", "error", err)
						}
					}
				}
			})
			group.Go(func() error {
				<-ctx.Done()
				sched.Stop()
				return nil
			})
			return group.Wait()
		},
	}
}
