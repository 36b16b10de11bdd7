package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/secmon-lab/janus/pkg/cli/config"
	httpctrl "github.com/secmon-lab/janus/pkg/controller/http"
	"github.com/secmon-lab/janus/pkg/domain/model"
	"github.com/secmon-lab/janus/pkg/usecase"
	"github.com/secmon-lab/janus/pkg/utils/async"
	"github.com/secmon-lab/janus/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var eventTimeout time.Duration
	var botCfg config.Bot
	var repoCfg config.Repository
	var slackCfg config.Slack

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("JANUS_ADDR"),
			Destination: &addr,
		},
		&cli.DurationFlag{
			Name:        "event-timeout",
			Usage:       "Deadline for handling a single Slack event",
			Value:       async.DefaultTimeout,
			Sources:     cli.EnvVars("JANUS_EVENT_TIMEOUT"),
			Destination: &eventTimeout,
		},
	}

	// Add shared config flags
	flags = append(flags, botCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server receiving Slack events",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			botConfig, err := botCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load bot configuration")
			}
			if err := slackCfg.Validate(); err != nil {
				return err
			}

			slackSvc, err := slackCfg.Configure(botConfig.Search)
			if err != nil {
				return err
			}

			// Credentials and the command list are checked before accepting any event
			var commands model.CommandList
			eg, egCtx := errgroup.WithContext(ctx)
			eg.Go(func() error {
				id, err := slackSvc.AuthTest(egCtx)
				if err != nil {
					return goerr.Wrap(err, "bot token is rejected by Slack")
				}
				logger.Info("Slack bot authenticated", "user_id", id.UserID, "team", id.Team)
				return nil
			})
			eg.Go(func() error {
				id, err := slackSvc.SearchAuthTest(egCtx)
				if err != nil {
					return goerr.Wrap(err, "search token is rejected by Slack")
				}
				logger.Info("Slack search token authenticated", "user_id", id.UserID)
				return nil
			})
			eg.Go(func() error {
				list, err := botCfg.LoadCommandList(egCtx)
				if err != nil {
					return goerr.Wrap(err, "failed to load command list")
				}
				commands = list
				return nil
			})
			if err := eg.Wait(); err != nil {
				return err
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logger.Error("failed to close repository", "error", err.Error())
				}
			}()

			uc := usecase.New(repo,
				usecase.WithSlackService(slackSvc),
				usecase.WithBotProfile(botConfig.Bot),
				usecase.WithCommandList(commands),
			)

			webhook := httpctrl.NewSlackWebhookHandler(uc.Janus, httpctrl.WithEventTimeout(eventTimeout))
			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(httpctrl.WithSlackWebhook(webhook, slackCfg.SigningSecret())),
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logger.Info("Starting HTTP server",
					"addr", addr,
					"bot", botConfig,
					"slack", slackCfg,
					"repository", repoCfg,
				)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logger.Info("Received shutdown signal", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				// Let accepted events finish their posts and repository writes
				if err := async.Wait(shutdownCtx); err != nil {
					logger.Warn("shutdown timed out before all events were handled", "error", err)
				}

				logger.Info("Server shutdown completed")
				return nil
			}
		},
	}
}
