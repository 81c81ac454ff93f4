package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"vaultcapture/internal/store"
)

func newDBCommand(ctx *commandContext) *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Database maintenance",
	}
	dbCmd.AddCommand(newDBHealthCommand(ctx))
	return dbCmd
}

func newDBHealthCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check database configuration, schema and integrity",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withPool(cmd, func(pool *store.Pool) error {
				health, err := pool.CheckHealth(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, health)
				}
				out := cmd.OutOrStdout()
				missing := "none"
				if len(health.MissingTables) > 0 {
					missing = strings.Join(health.MissingTables, ", ")
				}
				rows := [][]string{
					{"Database", health.DBPath},
					{"Exists", yesNo(health.DatabaseExists)},
					{"Readable", yesNo(health.DatabaseReadable)},
					{"Journal mode", health.JournalMode},
					{"Foreign keys", yesNo(health.ForeignKeys)},
					{"Migrations", fmt.Sprintf("%d applied", len(health.AppliedMigrations))},
					{"Missing tables", missing},
					{"Integrity ok", yesNo(health.IntegrityCheck)},
				}
				if health.Error != "" {
					rows = append(rows, []string{"Error", health.Error})
				}
				fmt.Fprint(out, renderTable([]string{"Check", "Result"}, rows, nil))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
