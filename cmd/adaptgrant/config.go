package main

import (
	"context"
	"fmt"

	"adaptgrant/internal/db"
	"adaptgrant/internal/evaluation"
	"adaptgrant/internal/scoring"
	"adaptgrant/internal/store"
	"adaptgrant/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func loadConfig(prefix string) (*types.Config, error) {
	c := new(types.Config)
	if err := envconfig.Process(prefix, c); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}

	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("set DATABASE_URL")
	}

	if c.ServerPort == 0 {
		c.ServerPort = 8080
	}

	if c.ReadTimeoutSec == 0 {
		c.ReadTimeoutSec = 10
	}

	if c.WriteTimeoutSec == 0 {
		c.WriteTimeoutSec = 30
	}

	if c.DatabaseSchema == "" {
		c.DatabaseSchema = "adaptgrant"
	}

	if c.MinApplicantAge > c.MaxApplicantAge {
		return nil, fmt.Errorf("MIN_APPLICANT_AGE (%d) is above MAX_APPLICANT_AGE (%d)", c.MinApplicantAge, c.MaxApplicantAge)
	}

	return c, nil
}

func loadAWSConfig(ctx context.Context) (aws.Config, error) {
	config, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load aws config: %w", err)
	}

	return config, nil
}

func newLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		logger.WithField("level", level).Warn("unknown LOG_LEVEL, using info")
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)

	return logger
}

// connect loads config and opens the database for a CLI command. The caller
// closes the pool.
func connect(c *cli.Context) (*types.Config, *pgxpool.Pool, *store.Store, error) {
	cfg, err := loadConfig(c.String("env-prefix"))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	pool, err := db.Connect(c.Context, cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	logrus.Info("Connected to database")

	return cfg, pool, store.New(pool), nil
}

func newEvaluationService(cfg *types.Config, st *store.Store, logger *logrus.Logger, opts ...evaluation.Option) *evaluation.Service {
	engine := scoring.NewEngine(cfg.MinApplicantAge, cfg.MaxApplicantAge)
	return evaluation.New(evaluation.NewStoreRepository(st), engine, logger, opts...)
}
