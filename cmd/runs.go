/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var (
	runsLimit     int
	runsOlderThan time.Duration
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect the run journal",
	Long: `List, inspect, and prune recorded translation runs.

The journal is an audit trail: it shows which fragments of a run were
skipped and why. It is never used to resume or shorten a later run.`,
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore(cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		runs, err := db.ListRuns(context.Background(), runsLimit)
		if err != nil {
			return fmt.Errorf("failed to list runs: %w", err)
		}

		if len(runs) == 0 {
			fmt.Println("No runs recorded.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSTARTED\tSTATUS\tSERVICE\tLANG\tDONE\tSKIPPED\tSOURCE")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d/%d\t%d\t%s\n",
				r.ID, r.StartedAt.Local().Format("2006-01-02 15:04"), r.Status, r.Service,
				orDash(r.SourceLang), r.Translated, r.Total, len(r.Skipped), r.SourceFile)
		}
		return w.Flush()
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show a run and the outcome of each fragment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore(cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		run, outcomes, err := db.GetRun(context.Background(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Run:        %s\n", run.ID)
		fmt.Printf("Status:     %s\n", run.Status)
		fmt.Printf("Service:    %s\n", run.Service)
		fmt.Printf("Source:     %s (%s)\n", run.SourceFile, orDash(run.SourceLang))
		fmt.Printf("Output:     %s\n", run.OutputFile)
		fmt.Printf("Max words:  %d\n", run.MaxWords)
		fmt.Printf("Translated: %d/%d\n", run.Translated, run.Total)
		if len(run.Skipped) > 0 {
			fmt.Printf("Skipped:    %v\n", run.Skipped)
		}
		fmt.Printf("Started:    %s\n", run.StartedAt.Local().Format(time.DateTime))
		if !run.FinishedAt.IsZero() {
			fmt.Printf("Finished:   %s (%s)\n", run.FinishedAt.Local().Format(time.DateTime),
				run.FinishedAt.Sub(run.StartedAt).Round(time.Second))
		}

		if len(outcomes) == 0 {
			return nil
		}
		fmt.Println()

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "FRAGMENT\tWORDS\tSTATUS\tLATENCY\tERROR")
		for _, o := range outcomes {
			fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\n",
				o.Index, o.Words, o.Status, o.Latency.Round(time.Millisecond), oneLine(o.Error))
		}
		return w.Flush()
	},
}

var runsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete runs older than a given age",
	RunE: func(cmd *cobra.Command, args []string) error {
		if runsOlderThan <= 0 {
			return fmt.Errorf("--older-than must be positive")
		}

		db, err := openStore(cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := db.DeleteRunsBefore(context.Background(), time.Now().Add(-runsOlderThan))
		if err != nil {
			return fmt.Errorf("failed to prune runs: %w", err)
		}
		fmt.Printf("Deleted %d run(s).\n", n)
		return nil
	},
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func oneLine(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > 80 {
		s = string(r[:77]) + "..."
	}
	return s
}

func init() {
	rootCmd.AddCommand(runsCmd)

	runsListCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "Number of runs to show (0 = all)")
	runsPruneCmd.Flags().DurationVar(&runsOlderThan, "older-than", 30*24*time.Hour, "Delete runs started before this age")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsPruneCmd)
}
