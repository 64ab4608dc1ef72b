package cli

import (
	"context"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/lore/pkg/adapter"
	"github.com/m-mizutani/lore/pkg/model"
	"github.com/m-mizutani/lore/pkg/repository"
	"github.com/m-mizutani/lore/pkg/service/reference"
	"github.com/m-mizutani/lore/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

const defaultKnowledgeBase = "knowledgeBase.json"

// config holds configuration values
type config struct {
	// Knowledge base
	kbPath string
	bucket string
	init   bool

	// Reference source
	baseURL     string
	containerID string
	timeout     time.Duration

	logLevel string
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "kb",
			Aliases:     []string{"k"},
			Usage:       "Knowledge base file (.json, .yaml or .yml). Object key when --bucket is set",
			Value:       defaultKnowledgeBase,
			Sources:     cli.EnvVars("LORE_KB"),
			Destination: &cfg.kbPath,
		},
		&cli.StringFlag{
			Name:        "bucket",
			Usage:       "Cloud Storage bucket holding the knowledge base",
			Sources:     cli.EnvVars("LORE_BUCKET"),
			Destination: &cfg.bucket,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "warn",
			Sources:     cli.EnvVars("LORE_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
	}
}

// referenceFlags returns flags for the reference source used on unknown topics
func referenceFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:        "init",
			Usage:       "Start with an empty knowledge base if it does not exist",
			Sources:     cli.EnvVars("LORE_INIT"),
			Destination: &cfg.init,
		},
		&cli.StringFlag{
			Name:        "base-url",
			Usage:       "Reference page root, the topic is appended to it",
			Value:       reference.DefaultBaseURL,
			Sources:     cli.EnvVars("LORE_BASE_URL"),
			Destination: &cfg.baseURL,
		},
		&cli.StringFlag{
			Name:        "container-id",
			Usage:       "ID of the element holding the article paragraphs",
			Value:       reference.DefaultContainerID,
			Sources:     cli.EnvVars("LORE_CONTAINER_ID"),
			Destination: &cfg.containerID,
		},
		&cli.DurationFlag{
			Name:        "timeout",
			Usage:       "Timeout of a reference lookup (0 means no timeout)",
			Sources:     cli.EnvVars("LORE_TIMEOUT"),
			Destination: &cfg.timeout,
		},
	}
}

// setupLogger attaches a logger built from the log level to ctx
func (cfg *config) setupLogger(ctx context.Context, c *cli.Command) context.Context {
	logger := logging.New(cfg.logLevel, c.Root().ErrWriter)
	logging.SetDefault(logger)
	return logging.With(ctx, logger)
}

// newStore creates a KnowledgeStore on Cloud Storage or the local filesystem
func (cfg *config) newStore(ctx context.Context) (*repository.KnowledgeStore, error) {
	if cfg.kbPath == "" {
		return nil, goerr.New("kb is required")
	}

	if cfg.bucket != "" {
		storage, err := adapter.NewStorage(ctx, cfg.bucket)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create storage")
		}
		return repository.New(storage, cfg.kbPath), nil
	}

	return repository.New(adapter.NewFileStorage(""), cfg.kbPath), nil
}

// loadKnowledgeBase loads the knowledge base. A missing one is an error unless init is set.
func (cfg *config) loadKnowledgeBase(ctx context.Context, store *repository.KnowledgeStore) (*model.KnowledgeBase, error) {
	kb, err := store.Load(ctx)
	if err != nil {
		if cfg.init && goerr.HasTag(err, model.ErrTagNotFound) {
			logging.From(ctx).Info("knowledge base not found, start with empty one", "key", store.Key())
			return &model.KnowledgeBase{}, nil
		}
		return nil, goerr.Wrap(err, "failed to load knowledge base")
	}
	return kb, nil
}

// newReference creates a reference client
func (cfg *config) newReference() (*reference.Client, error) {
	if cfg.baseURL == "" {
		return nil, goerr.New("base-url is required")
	}

	return reference.New(
		reference.WithBaseURL(cfg.baseURL),
		reference.WithHTTPClient(&http.Client{Timeout: cfg.timeout}),
		reference.WithExtractor(reference.NewContainerExtractor(cfg.containerID)),
	), nil
}
