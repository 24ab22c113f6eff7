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
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/valpere/mdtran/internal/fragmenter"
)

const previewRunes = 50

var splitCmd = &cobra.Command{
	Use:   "split",
	Short: "Show how the source document would be split into fragments",
	Long: `Split source_file with the configured word budget and print one line per
fragment: its index, word count, number of paragraphs and the start of its
first line. Nothing is translated and no file is written.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.SourceFile == "" {
			return fmt.Errorf("source_file is required")
		}

		fragments, err := fragmenter.SplitFile(cfg.SourceFile, cfg.MaxWords)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "FRAGMENT\tWORDS\tPARAGRAPHS\tSTARTS WITH")
		over := 0
		for _, f := range fragments {
			mark := ""
			if f.Words > cfg.MaxWords {
				mark = " (oversized)"
				over++
			}
			fmt.Fprintf(w, "%d\t%d%s\t%d\t%s\n", f.Index, f.Words, mark, len(f.Paragraphs()), preview(f.Text))
		}
		if err := w.Flush(); err != nil {
			return err
		}

		fmt.Printf("\n%d fragments, max %d words", len(fragments), cfg.MaxWords)
		if over > 0 {
			fmt.Printf(", %d oversized paragraph(s) kept whole", over)
		}
		fmt.Println()
		return nil
	},
}

func preview(text string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(text), "\n")
	if r := []rune(line); len(r) > previewRunes {
		line = string(r[:previewRunes-3]) + "..."
	}
	return line
}

func init() {
	rootCmd.AddCommand(splitCmd)

	splitCmd.Flags().StringP("source", "i", "", "Markdown file to split (source_file)")
	splitCmd.Flags().IntP("max-words", "w", 0, "Word budget per fragment (default 250)")
}
