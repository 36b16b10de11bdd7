package config

import (
	"context"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/janus/pkg/domain/model"
	"github.com/secmon-lab/janus/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

const gcsScheme = "gs://"

// Bot holds CLI flags for the bot configuration file and the help command resource
type Bot struct {
	configPath  string
	commandList string
}

func (b *Bot) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Bot configuration TOML file (optional)",
			Category:    "Bot",
			Sources:     cli.EnvVars("JANUS_CONFIG"),
			Destination: &b.configPath,
		},
		&cli.StringFlag{
			Name:        "command-list",
			Usage:       "Help text resource, a local path or gs://bucket/object",
			Category:    "Bot",
			Value:       "commands.txt",
			Sources:     cli.EnvVars("JANUS_COMMAND_LIST"),
			Destination: &b.commandList,
		},
	}
}

// ConfigPath returns the configuration file path, empty if not set
func (b *Bot) ConfigPath() string {
	return b.configPath
}

// CommandListSource returns where the command list is loaded from
func (b *Bot) CommandListSource() string {
	return b.commandList
}

// Configure loads the configuration file, or returns defaults when no file is set
func (b *Bot) Configure() (*BotConfig, error) {
	if b.configPath == "" {
		return DefaultBotConfig(), nil
	}
	return LoadBotConfiguration(b.configPath)
}

// LoadCommandList reads the command list once. A missing or empty resource is an error.
func (b *Bot) LoadCommandList(ctx context.Context) (model.CommandList, error) {
	data, err := readResource(ctx, b.commandList)
	if err != nil {
		return "", err
	}

	commands, err := model.NewCommandList(data)
	if err != nil {
		return "", goerr.Wrap(err, "invalid command list", goerr.V(ResourceKey, b.commandList))
	}
	return commands, nil
}

func readResource(ctx context.Context, src string) ([]byte, error) {
	if src == "" {
		return nil, goerr.Wrap(ErrInvalidResourceURL, "resource location is empty")
	}

	if !strings.HasPrefix(src, gcsScheme) {
		// #nosec G304 - path is expected to be provided by CLI argument
		data, err := os.ReadFile(src)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read resource file", goerr.V(ResourceKey, src))
		}
		return data, nil
	}

	bucket, object, err := parseGCSURL(src)
	if err != nil {
		return nil, err
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create cloud storage client")
	}
	defer safe.Close(ctx, client)

	reader, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open cloud storage object",
			goerr.V("bucket", bucket),
			goerr.V("object", object),
		)
	}
	defer safe.Close(ctx, reader)

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read cloud storage object",
			goerr.V("bucket", bucket),
			goerr.V("object", object),
		)
	}
	return data, nil
}

// parseGCSURL splits gs://bucket/path/to/object into bucket and object
func parseGCSURL(src string) (string, string, error) {
	rest := strings.TrimPrefix(src, gcsScheme)
	bucket, object, found := strings.Cut(rest, "/")
	if !found || bucket == "" || object == "" {
		return "", "", goerr.Wrap(ErrInvalidResourceURL, "expected gs://bucket/object", goerr.V(ResourceKey, src))
	}
	return bucket, object, nil
}
