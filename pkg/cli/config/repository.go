package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/janus/pkg/domain/interfaces"
	"github.com/secmon-lab/janus/pkg/repository/firestore"
	"github.com/secmon-lab/janus/pkg/repository/memory"
	"github.com/secmon-lab/janus/pkg/repository/redis"
	"github.com/secmon-lab/janus/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Repository holds CLI flags for repository backend configuration
type Repository struct {
	backend          string
	projectID        string
	databaseID       string
	collectionPrefix string
	redisURL         string
	redisKeyPrefix   string
}

// Flags returns CLI flags for repository configuration
func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "repository-backend",
			Usage:       "Repository backend type (memory, firestore or redis)",
			Value:       "memory",
			Category:    "Repository",
			Sources:     cli.EnvVars("JANUS_REPOSITORY_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (required when using firestore backend)",
			Category:    "Repository",
			Sources:     cli.EnvVars("JANUS_FIRESTORE_PROJECT_ID"),
			Destination: &r.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID",
			Category:    "Repository",
			Sources:     cli.EnvVars("JANUS_FIRESTORE_DATABASE_ID"),
			Destination: &r.databaseID,
		},
		&cli.StringFlag{
			Name:        "firestore-collection-prefix",
			Usage:       "Prefix for Firestore collection names",
			Category:    "Repository",
			Sources:     cli.EnvVars("JANUS_FIRESTORE_COLLECTION_PREFIX"),
			Destination: &r.collectionPrefix,
		},
		&cli.StringFlag{
			Name:        "redis-url",
			Usage:       "Redis URL (required when using redis backend), e.g. redis://localhost:6379/0",
			Category:    "Repository",
			Sources:     cli.EnvVars("JANUS_REDIS_URL"),
			Destination: &r.redisURL,
		},
		&cli.StringFlag{
			Name:        "redis-key-prefix",
			Usage:       "Prefix for Redis keys",
			Value:       redis.DefaultKeyPrefix,
			Category:    "Repository",
			Sources:     cli.EnvVars("JANUS_REDIS_KEY_PREFIX"),
			Destination: &r.redisKeyPrefix,
		},
	}
}

// Backend returns the configured backend type
func (r *Repository) Backend() string {
	return r.backend
}

func (r Repository) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("backend", r.backend),
		slog.String("project_id", r.projectID),
		slog.String("database_id", r.databaseID),
		slog.Bool("redis_url.set", r.redisURL != ""),
		slog.String("redis_key_prefix", r.redisKeyPrefix),
	)
}

// Validate checks backend specific settings without connecting
func (r *Repository) Validate() error {
	switch r.backend {
	case "memory":
		return nil
	case "firestore":
		if r.projectID == "" {
			return goerr.Wrap(ErrInvalidConfig, "firestore-project-id is required when using firestore backend")
		}
		return nil
	case "redis":
		if r.redisURL == "" {
			return goerr.Wrap(ErrInvalidConfig, "redis-url is required when using redis backend")
		}
		return nil
	default:
		return goerr.Wrap(ErrInvalidBackend, "unsupported backend", goerr.V(BackendKey, r.backend))
	}
}

// Configure initializes and returns a repository based on the configured backend.
// The caller is responsible for calling Close() on the returned repository.
func (r *Repository) Configure(ctx context.Context) (interfaces.Repository, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	switch r.backend {
	case "firestore":
		var opts []firestore.Option
		if r.collectionPrefix != "" {
			opts = append(opts, firestore.WithCollectionPrefix(r.collectionPrefix))
		}
		repo, err := firestore.New(ctx, r.projectID, r.databaseID, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize firestore repository")
		}
		logging.Default().Info("Using Firestore repository",
			"project_id", r.projectID,
			"database_id", r.databaseID,
		)
		return repo, nil

	case "redis":
		var opts []redis.Option
		if r.redisKeyPrefix != "" {
			opts = append(opts, redis.WithKeyPrefix(r.redisKeyPrefix))
		}
		repo, err := redis.New(ctx, r.redisURL, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize redis repository")
		}
		logging.Default().Info("Using Redis repository", "key_prefix", r.redisKeyPrefix)
		return repo, nil

	default:
		logging.Default().Info("Using in-memory repository (records are lost on restart)")
		return memory.New(), nil
	}
}
