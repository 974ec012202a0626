package main

import (
	"fmt"

	"adaptgrant/internal/seed"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Seed the database with the default rubric, evaluators and fake applications",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:    "count",
			Aliases: []string{"c"},
			Usage:   "Number of fake applications to create",
			Value:   25,
		},
		&cli.BoolFlag{
			Name:  "reset",
			Usage: "Delete previously seeded applications first",
		},
	},
	Action: func(c *cli.Context) error {
		cfg, pool, st, err := connect(c)
		if err != nil {
			return err
		}
		defer pool.Close()

		ctx := c.Context
		svc := newEvaluationService(cfg, st, logrus.StandardLogger())

		logrus.Info("Seeding rubric...")
		if err := seed.SeedRubric(ctx, st.Scoring, svc); err != nil {
			return fmt.Errorf("failed to seed rubric: %w", err)
		}

		logrus.Info("Seeding evaluators...")
		if err := seed.SeedEvaluators(ctx, st.Evaluators); err != nil {
			return fmt.Errorf("failed to seed evaluators: %w", err)
		}

		logrus.Info("Seeding fake applications...")
		if err := seed.SeedFakeApplications(ctx, pool, c.Int("count"), c.Bool("reset")); err != nil {
			return fmt.Errorf("failed to seed applications: %w", err)
		}

		logrus.Info("Seed complete")
		return nil
	},
}
