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
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/valpere/mdtran/internal/output"
	"github.com/valpere/mdtran/internal/pipeline"
	"github.com/valpere/mdtran/internal/progress"
	"github.com/valpere/mdtran/internal/store"
)

var (
	skipVerify bool
	noJournal  bool
	noProgress bool
)

var translateCmd = &cobra.Command{
	Use:   "translate",
	Short: "Translate a Markdown document fragment by fragment",
	Long: `Translate source_file into output_file.

The output file is removed first, then every translated fragment is appended
to it in document order. Fragments the service fails on are reported as
"Fragment <n> skipped due to an error." and left out; use --strict to make
such a run exit with an error.

Available providers:
  - openai      OpenAI chat completions (default, OPENAI_API_KEY)
  - openrouter  OpenRouter chat completions (API key required)
  - ollama      Ollama LLM (self-hosted)
  - google      Google Cloud Translation (no instructions or glossary)

Example:
  mdtran translate --source book.md --output book.pl.md \
    --instructions "Translate into Polish. Keep the Markdown markup." \
    --glossary glossary/`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		svc, err := buildService(cfg.Service)
		if err != nil {
			return err
		}

		if !skipVerify {
			if err := svc.IsAvailable(ctx); err != nil {
				return fmt.Errorf("%s verification failed: %w", svc.Name(), err)
			}
			fmt.Fprintf(os.Stderr, "%s: API key verified.\n", svc.Name())
		}

		var db *store.Store
		if cfg.Journal && !noJournal {
			db, err = openStore(cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()
		}

		sourceLang := detectSourceLang(cfg.SourceLang, cfg.SourceFile)

		gloss, err := loadGlossary(ctx, cfg.GlossaryFolder, db, sourceLang, cfg.TargetLang)
		if err != nil {
			return err
		}

		pcfg := pipeline.Config{
			Logger:  logger,
			Notices: os.Stdout,
		}
		if !noProgress {
			pcfg.Progress = progress.New(os.Stderr)
		}
		if db != nil {
			pcfg.Journal = db
		}

		report, err := pipeline.New(svc, pcfg).Run(ctx, pipeline.Job{
			SourcePath:   cfg.SourceFile,
			OutputPath:   cfg.OutputFile,
			Instructions: cfg.Instructions,
			Glossary:     gloss,
			MaxWords:     cfg.MaxWords,
			SourceLang:   sourceLang,
			Strict:       cfg.Strict,
		})
		if err != nil && !errors.Is(err, pipeline.ErrFragmentsSkipped) {
			if report != nil {
				fmt.Fprintf(os.Stderr, "Stopped after %d of %d fragments (run %s).\n",
					report.Translated+len(report.Skipped), report.Total, report.RunID)
			}
			return err
		}

		if cfg.OutputHTML != "" && report.Translated > 0 {
			if htmlErr := output.RenderHTML(cfg.OutputFile, cfg.OutputHTML); htmlErr != nil {
				return htmlErr
			}
			logger.Info("html written", zap.String("path", cfg.OutputHTML))
		}

		fmt.Println("Translation completed!")
		fmt.Printf("Fragments translated: %d/%d\n", report.Translated, report.Total)
		if len(report.Skipped) > 0 {
			fmt.Printf("Fragments skipped: %v\n", report.Skipped)
		}
		if db != nil {
			fmt.Printf("Run ID: %s\n", report.RunID)
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().StringP("source", "i", "", "Markdown file to translate (source_file)")
	translateCmd.Flags().StringP("output", "o", "", "Translated Markdown file (output_file)")
	translateCmd.Flags().StringP("glossary", "g", "", "Folder of .txt glossary files (glossary_folder)")
	translateCmd.Flags().String("instructions", "", "Translation instructions sent with every fragment")
	translateCmd.Flags().IntP("max-words", "w", 0, "Word budget per fragment (default 250)")
	translateCmd.Flags().String("html", "", "Also render the translation to this HTML file")
	translateCmd.Flags().StringP("source-lang", "s", "", `Source language code, "auto" or empty to detect`)
	translateCmd.Flags().StringP("target-lang", "t", "", "Target language code (required by google)")
	translateCmd.Flags().Bool("strict", false, "Exit with an error when any fragment was skipped")

	translateCmd.Flags().StringP("provider", "p", "", "Translation provider: openai, openrouter, ollama, google")
	translateCmd.Flags().StringP("model", "m", "", "Model name (provider default when empty)")
	translateCmd.Flags().String("base-url", "", "Provider base URL (OpenAI-compatible endpoint, Ollama host)")
	translateCmd.Flags().StringP("credentials", "c", "", "Path to Google Cloud credentials")
	translateCmd.Flags().Duration("timeout", 0, "Per-request timeout (default 2m)")
	translateCmd.Flags().Int("rpm", 0, "Maximum requests per minute (0 = unlimited)")

	translateCmd.Flags().BoolVar(&skipVerify, "skip-verify", false, "Do not verify the API key before translating")
	translateCmd.Flags().BoolVar(&noJournal, "no-journal", false, "Do not record the run in the database")
	translateCmd.Flags().BoolVar(&noProgress, "no-progress", false, "Hide the progress line")
}
