package main

import (
	"fmt"

	"adaptgrant/internal/scoring"

	"github.com/k0kubun/pp/v3"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var reevaluateCommand = &cli.Command{
	Name:  "reevaluate",
	Usage: "Re-evaluate every submitted application under a scoring configuration",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "Configuration ID (defaults to the active configuration)",
		},
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Compute the report without writing",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Print every delta",
		},
	},
	Action: func(c *cli.Context) error {
		cfg, pool, st, err := connect(c)
		if err != nil {
			return err
		}
		defer pool.Close()

		svc := newEvaluationService(cfg, st, logrus.StandardLogger())

		report, err := svc.Reevaluate(c.Context, c.String("config"), c.Bool("dry-run"))
		if err != nil {
			return fmt.Errorf("failed to reevaluate: %w", err)
		}

		logReport(report)

		if c.Bool("verbose") {
			for _, delta := range report.Deltas {
				if delta.Changed() {
					pp.Println(delta)
				}
			}
		}

		return nil
	},
}

func logReport(report *scoring.Report) {
	logrus.WithFields(logrus.Fields{
		"configuration_id":  report.ConfigurationID,
		"dry_run":           report.DryRun,
		"evaluated":         report.Evaluated,
		"changed":           report.Changed,
		"became_eligible":   report.BecameEligible,
		"became_ineligible": report.BecameIneligible,
		"failed":            report.Failed,
		"duration":          report.FinishedAt.Sub(report.StartedAt).String(),
	}).Info("Re-evaluation finished")
}
