package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/rgehrsitz/encounters/internal/datastore"
	"github.com/rgehrsitz/encounters/internal/domain"
)

func tablesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "Manage life table data",
	}

	importCmd := &cobra.Command{
		Use:   "import [dir]",
		Short: "Import every <ISO3>_<sex>.json table in a directory into the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			tables, err := datastore.LoadDir(args[0])
			if err != nil {
				return err
			}
			ctx := context.Background()
			for _, table := range tables {
				if err := store.Put(ctx, table); err != nil {
					return fmt.Errorf("import %s: %w", table.Key(), err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %s (%d ages, %d)\n", table.Key(), len(table.Entries), table.Year)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d tables imported\n", len(tables))
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List tables stored in the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			infos, err := store.List(context.Background())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "COUNTRY\tSEX\tYEAR\tAGES")
			for _, info := range infos {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", info.Country, info.Sex, info.Year, info.Ages)
			}
			return w.Flush()
		},
	}

	showCmd := &cobra.Command{
		Use:   "show [ISO3] [sex]",
		Short: "Print one life table as JSON, resolved through the configured sources",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := settings(cmd)
			if err != nil {
				return err
			}
			src, closer, err := openSource(cfg)
			if err != nil {
				return err
			}
			if closer != nil {
				defer closer()
			}

			sex := domain.Sex(strings.ToLower(args[1]))
			table, err := src.LifeTable(context.Background(), args[0], sex)
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(table, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	cmd.AddCommand(importCmd, listCmd, showCmd)
	return cmd
}

// openStore opens the database named by --db or ENCOUNTERS_DB_PATH.
func openStore(cmd *cobra.Command) (*datastore.SQLiteStore, error) {
	cfg, err := settings(cmd)
	if err != nil {
		return nil, err
	}
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("a database path is required (--db or ENCOUNTERS_DB_PATH)")
	}
	return datastore.OpenSQLite(cfg.DBPath)
}
