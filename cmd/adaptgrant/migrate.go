package main

import (
	"fmt"

	"adaptgrant/internal/db"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var migrateCommand = &cli.Command{
	Name:  "migrate",
	Usage: "Apply the database schema",
	Action: func(c *cli.Context) error {
		_, pool, _, err := connect(c)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := db.Migrate(c.Context, pool); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}

		logrus.Info("Schema applied")
		return nil
	},
}
