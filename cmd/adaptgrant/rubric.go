package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var rubricCommand = &cli.Command{
	Name:  "rubric",
	Usage: "Manage scoring rubrics",
	Subcommands: []*cli.Command{
		{
			Name:      "import",
			Usage:     "Import a rubric JSON document as a new inactive configuration",
			ArgsUsage: "<file>",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "activate",
					Usage: "Activate the imported configuration",
				},
				&cli.BoolFlag{
					Name:  "reevaluate",
					Usage: "Re-evaluate submitted applications after activating",
				},
			},
			Action: importRubric,
		},
	},
}

func importRubric(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return cli.Exit("rubric import requires a file", 2)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read rubric: %w", err)
	}

	cfg, pool, st, err := connect(c)
	if err != nil {
		return err
	}
	defer pool.Close()

	svc := newEvaluationService(cfg, st, logrus.StandardLogger())

	config, err := svc.ImportConfiguration(c.Context, data, "cli")
	if err != nil {
		return fmt.Errorf("failed to import rubric: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"configuration_id": config.ID,
		"name":             config.Name,
		"version":          config.Version,
		"criteria":         len(config.Criteria),
	}).Info("Rubric imported")

	if !c.Bool("activate") {
		return nil
	}

	report, err := svc.Activate(c.Context, config.ID, c.Bool("reevaluate"))
	if err != nil {
		return fmt.Errorf("failed to activate rubric: %w", err)
	}

	logrus.WithField("configuration_id", config.ID).Info("Rubric activated")
	if report != nil {
		logReport(report)
	}

	return nil
}
