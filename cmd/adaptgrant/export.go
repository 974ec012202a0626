package main

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"adaptgrant/internal/export"
	"adaptgrant/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var exportCommand = &cli.Command{
	Name:  "export",
	Usage: "Export application results",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "One of " + strings.Join(export.Formats, ", "),
			Value:   export.FormatCSV,
		},
		&cli.StringFlag{
			Name:    "out",
			Aliases: []string{"o"},
			Usage:   "Output file, - for stdout",
			Value:   "-",
		},
		&cli.StringFlag{
			Name:  "status",
			Usage: "Comma separated statuses to include (defaults to every submitted application)",
		},
	},
	Action: func(c *cli.Context) error {
		format := c.String("format")
		if !slices.Contains(export.Formats, format) {
			return cli.Exit(fmt.Sprintf("unknown format %q", format), 2)
		}

		statuses, err := types.ParseApplicationStatuses(c.String("status"))
		if err != nil {
			return cli.Exit(err.Error(), 2)
		}

		_, pool, st, err := connect(c)
		if err != nil {
			return err
		}
		defer pool.Close()

		rows, err := export.Load(c.Context, st, statuses...)
		if err != nil {
			return fmt.Errorf("failed to load applications: %w", err)
		}

		var out io.Writer = os.Stdout
		if path := c.String("out"); path != "-" {
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", path, err)
			}
			defer f.Close()
			out = f
		}

		if err := export.Write(out, format, rows, time.Now()); err != nil {
			return err
		}

		logrus.WithFields(logrus.Fields{"format": format, "rows": len(rows)}).Info("Export written")
		return nil
	},
}
