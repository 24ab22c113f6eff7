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
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/valpere/mdtran/internal/config"
	"github.com/valpere/mdtran/internal/logging"
)

var version = "0.1.0"

var (
	cfgFile string
	verbose bool

	// Set up by PersistentPreRunE for every subcommand.
	cfg         *config.Config
	logger      = zap.NewNop()
	closeLogger = func() {}
)

var rootCmd = &cobra.Command{
	Use:   "mdtran",
	Short: "Translate long Markdown documents with a language model",
	Long: `mdtran translates a long Markdown document fragment by fragment.

The document is split on blank lines into fragments of at most max_words
words, each fragment is sent to the configured translation service together
with the instructions and the glossary, and every translated fragment is
appended to the output file. A fragment that cannot be translated is reported
and skipped; the run goes on.

Settings come from config.yaml in the working directory (or --config),
MDTRAN_* environment variables and flags. OPENAI_API_KEY may be kept in a
.env file.

Use "mdtran translate --help" for translation options.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load .env: %w", err)
		}

		c, err := config.Load(cfgFile, cmd.Flags())
		if err != nil {
			// The configured log file is unknown; record the failure in the
			// default one.
			if logErr := setupLogger(config.DefaultLogFile); logErr != nil {
				return errors.Join(err, logErr)
			}
			return err
		}
		cfg = c

		if err := setupLogger(cfg.LogFile); err != nil {
			return err
		}

		if cfg.File != "" {
			logger.Debug("using config file", zap.String("path", cfg.File))
		}
		return nil
	},
}

func setupLogger(file string) error {
	l, closeFn, err := logging.New(logging.Options{File: file, Verbose: verbose})
	if err != nil {
		return err
	}
	logger, closeLogger = l, closeFn
	return nil
}

// Execute runs the root command. Errors are written to the diagnostic log
// and reported as "An error occurred: <err>" with exit status 1.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		reportError(os.Stderr, err)
	}
	closeLogger()
	if err != nil {
		os.Exit(1)
	}
}

func reportError(w io.Writer, err error) {
	logger.Error("critical error", zap.String("command", commandPath()), zap.Error(err))
	fmt.Fprintf(w, "An error occurred: %v\n", err)
}

func commandPath() string {
	c, _, err := rootCmd.Find(os.Args[1:])
	if err != nil || c == nil {
		return rootCmd.Name()
	}
	return c.CommandPath()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show debug and info messages")
	rootCmd.PersistentFlags().String("log-file", config.DefaultLogFile, "Diagnostic log file for errors")
	rootCmd.PersistentFlags().String("db", config.DefaultDatabase, "SQLite database for the run journal and glossary terms")
}
