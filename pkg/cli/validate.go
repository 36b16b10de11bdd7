package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/janus/pkg/cli/config"
	"github.com/urfave/cli/v3"
)

var errValidationFailed = goerr.New("validation failed")

type validationCheck struct {
	name string
	run  func(ctx context.Context) (string, error)
}

func cmdValidate() *cli.Command {
	var botCfg config.Bot
	var repoCfg config.Repository
	var slackCfg config.Slack

	var flags []cli.Flag
	flags = append(flags, botCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate configuration without connecting to Slack",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			checks := []validationCheck{
				{
					name: "bot configuration",
					run: func(ctx context.Context) (string, error) {
						cfg, err := botCfg.Configure()
						if err != nil {
							return "", err
						}
						if botCfg.ConfigPath() == "" {
							return fmt.Sprintf("defaults (name=%s)", cfg.Bot.Name), nil
						}
						return fmt.Sprintf("%s (name=%s)", botCfg.ConfigPath(), cfg.Bot.Name), nil
					},
				},
				{
					name: "command list",
					run: func(ctx context.Context) (string, error) {
						if _, err := botCfg.LoadCommandList(ctx); err != nil {
							return "", err
						}
						return botCfg.CommandListSource(), nil
					},
				},
				{
					name: "slack credentials",
					run: func(ctx context.Context) (string, error) {
						return "set", slackCfg.Validate()
					},
				},
				{
					name: "repository",
					run: func(ctx context.Context) (string, error) {
						return repoCfg.Backend(), repoCfg.Validate()
					},
				},
			}

			return runChecks(ctx, c.Root().Writer, checks)
		},
	}
}

func runChecks(ctx context.Context, w io.Writer, checks []validationCheck) error {
	ok := color.New(color.FgGreen).SprintFunc()
	ng := color.New(color.FgRed).SprintFunc()

	var failed int
	for _, check := range checks {
		detail, err := check.run(ctx)
		if err != nil {
			failed++
			_, _ = fmt.Fprintf(w, "%s %s: %v\n", ng("✗"), check.name, err)
			continue
		}
		_, _ = fmt.Fprintf(w, "%s %s: %s\n", ok("✓"), check.name, detail)
	}

	if failed > 0 {
		return goerr.Wrap(errValidationFailed, "configuration has errors", goerr.V("failed", failed))
	}
	return nil
}
