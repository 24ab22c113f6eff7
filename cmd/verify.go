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

	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that the translation service is reachable and the API key works",
	Long: `Verify the configured provider without translating anything.

For openai the API key is checked by listing the available models, for
openrouter by querying the key endpoint, for ollama by listing local models
and for google by creating a client from the credentials.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.ValidateService(); err != nil {
			return err
		}

		svc, err := buildService(cfg.Service)
		if err != nil {
			return err
		}

		if err := svc.IsAvailable(context.Background()); err != nil {
			return fmt.Errorf("%s verification failed: %w", svc.Name(), err)
		}
		fmt.Printf("%s: API key verified.\n", svc.Name())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringP("provider", "p", "", "Translation provider: openai, openrouter, ollama, google")
	verifyCmd.Flags().StringP("model", "m", "", "Model name")
	verifyCmd.Flags().String("base-url", "", "Provider base URL")
	verifyCmd.Flags().StringP("credentials", "c", "", "Path to Google Cloud credentials")
	verifyCmd.Flags().StringP("target-lang", "t", "", "Target language code (required by google)")
}
