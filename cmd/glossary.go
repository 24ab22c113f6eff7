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
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/valpere/mdtran/internal/glossary"
)

var glossaryCmd = &cobra.Command{
	Use:   "glossary",
	Short: "Manage the terminology glossary",
	Long: `Add, list, and delete terminology glossary entries.

Entries are stored per language pair and appended to the glossary folder
contents when translate runs with the same source_lang and target_lang, as
"source = target" lines.`,
}

var glossaryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List glossary entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore(cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		// Empty languages list everything; flags narrow the filter.
		entries, err := db.ListGlossaryTerms(context.Background(), cfg.SourceLang, cfg.TargetLang)
		if err != nil {
			return fmt.Errorf("failed to list glossary: %w", err)
		}

		if len(entries) == 0 {
			fmt.Println("Glossary is empty.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSOURCE LANG\tTARGET LANG\tSOURCE TERM\tTARGET TERM")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				e.ID, e.SourceLang, e.TargetLang, e.SourceTerm, e.TargetTerm)
		}
		return w.Flush()
	},
}

var glossaryShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the glossary text translate would send",
	Long: `Print the merged glossary: the .txt files of glossary_folder followed by
the database terms for source_lang and target_lang.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore(cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		text, err := loadGlossary(context.Background(), cfg.GlossaryFolder, db, cfg.SourceLang, cfg.TargetLang)
		if err != nil {
			return err
		}
		if text == "" {
			fmt.Println("Glossary is empty.")
			return nil
		}
		fmt.Println(text)
		return nil
	},
}

var glossaryAddCmd = &cobra.Command{
	Use:   "add <source-term> <target-term>",
	Short: "Add or update a glossary entry",
	Long: `Add a glossary entry mapping a source-language term to a target-language term.

Example:
  mdtran glossary add "pull request" "pull request" --source-lang en --target-lang pl`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.SourceLang == "" || cfg.SourceLang == "auto" {
			return fmt.Errorf("--source-lang is required")
		}
		if cfg.TargetLang == "" {
			return fmt.Errorf("--target-lang is required")
		}

		db, err := openStore(cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.AddGlossaryTerm(context.Background(), cfg.SourceLang, cfg.TargetLang, args[0], args[1]); err != nil {
			return fmt.Errorf("failed to add glossary entry: %w", err)
		}
		fmt.Printf("Added: [%s→%s] %s\n", cfg.SourceLang, cfg.TargetLang,
			glossary.Terms([]glossary.Term{{Source: args[0], Target: args[1]}}))
		return nil
	},
}

var glossaryDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a glossary entry by ID",
	Long:  `Delete a glossary entry by its ID (shown in "mdtran glossary list").`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore(cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		deleted, err := db.DeleteGlossaryTerm(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("failed to delete glossary entry: %w", err)
		}
		if !deleted {
			return fmt.Errorf("glossary entry not found: %s", args[0])
		}
		fmt.Printf("Deleted glossary entry: %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(glossaryCmd)

	glossaryCmd.PersistentFlags().StringP("source-lang", "s", "", "Source language code (e.g. en)")
	glossaryCmd.PersistentFlags().StringP("target-lang", "t", "", "Target language code (e.g. pl)")
	glossaryShowCmd.Flags().StringP("glossary", "g", "", "Folder of .txt glossary files (glossary_folder)")

	glossaryCmd.AddCommand(glossaryListCmd)
	glossaryCmd.AddCommand(glossaryShowCmd)
	glossaryCmd.AddCommand(glossaryAddCmd)
	glossaryCmd.AddCommand(glossaryDeleteCmd)
}
