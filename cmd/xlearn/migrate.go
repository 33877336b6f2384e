package main

import (
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/ShinnosukeUesaka/XLearn/internal/database"
	"github.com/ShinnosukeUesaka/XLearn/schemas"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded database migrations in order",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("loadConfig() > %w", err)
			}
			db, err := database.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("database.Open() > %w", err)
			}
			defer func() {
				_ = db.Close()
			}()

			// fs.ReadDir returns entries sorted by name, which is the
			// migration order.
			entries, err := fs.ReadDir(schemas.Migrations, "migrations")
			if err != nil {
				return fmt.Errorf("fs.ReadDir() > %w", err)
			}
			for _, entry := range entries {
				contents, err := fs.ReadFile(schemas.Migrations, "migrations/"+entry.Name())
				if err != nil {
					return fmt.Errorf("fs.ReadFile(%s) > %w", entry.Name(), err)
				}
				if _, err := db.ExecContext(cmd.Context(), string(contents)); err != nil {
					return fmt.Errorf("db.ExecContext(%s) > %w", entry.Name(), err)
				}
				fmt.Printf("Applied %s\n", entry.Name())
			}
			return nil
		},
	}
}
