// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jeranaias/rigbench/internal/history"
)

// =============================================================================
// HISTORY COMMANDS
// =============================================================================

var (
	historyLimit     int
	historyExportDir string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage stored benchmark runs",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistoryStore()
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.List(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No stored runs.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tMODEL\tMODE\tSTARTED\tREQUESTS\tFAILED")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\n",
				r.ID, r.Model, r.Mode,
				r.StartTime.Format("2006-01-02 15:04:05"),
				r.Total, r.Failed)
		}
		return w.Flush()
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one stored run in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistoryStore()
		if err != nil {
			return err
		}
		defer store.Close()

		batch, err := store.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printBatch(batch)
		return nil
	},
}

var historyExportCmd = &cobra.Command{
	Use:   "export <run-id>",
	Short: "Export a stored run to a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		store, err := openHistoryStore()
		if err != nil {
			return err
		}
		defer store.Close()

		batch, err := store.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		dir := historyExportDir
		if dir == "" {
			dir = cfg.History.ExportDir
		}
		path, err := history.ExportJSON(batch, dir)
		if err != nil {
			return err
		}
		fmt.Printf("Exported to %s\n", path)
		return nil
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete a stored run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistoryStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted %s\n", args[0])
		return nil
	},
}

func openHistoryStore() (*history.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	path, err := cfg.DatabasePath()
	if err != nil {
		return nil, err
	}
	return history.OpenStore(path)
}

func init() {
	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "max runs to list (0 = all)")
	historyExportCmd.Flags().StringVarP(&historyExportDir, "dir", "d", "", "export directory (default from config)")

	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyExportCmd, historyDeleteCmd)
	rootCmd.AddCommand(historyCmd)
}
