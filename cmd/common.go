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
	"path/filepath"

	"go.uber.org/zap"

	"github.com/valpere/mdtran/internal/detector"
	"github.com/valpere/mdtran/internal/glossary"
	"github.com/valpere/mdtran/internal/store"
	"github.com/valpere/mdtran/internal/translator"
)

// buildService constructs the translation service selected by the
// configuration, wrapped in a rate limiter when one is configured.
func buildService(sc translator.ServiceConfig) (translator.Service, error) {
	var svc translator.Service

	switch sc.Provider {
	case "openai":
		svc = translator.NewOpenAIService(sc.APIKey, sc.BaseURL, sc.Model, sc.Timeout)
	case "openrouter":
		svc = translator.NewOpenRouterService(sc.APIKey, sc.BaseURL, sc.Model, sc.Timeout)
	case "ollama":
		svc = translator.NewOllamaTranslator(sc.BaseURL, sc.Model, sc.Timeout)
	case "google":
		svc = translator.NewGoogleService(sc.Credentials, sc.TargetLang)
	default:
		return nil, fmt.Errorf("unknown service: %s", sc.Provider)
	}

	return translator.WithRateLimit(svc, sc.RequestsPerMinute), nil
}

// openStore opens the SQLite database, creating its directory when needed.
func openStore(path string) (*store.Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := store.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// detectSourceLang returns the configured source language, or the one
// detected from the document when it is empty or "auto". An unreadable
// document yields "" and is reported later by the pipeline.
func detectSourceLang(configured, sourcePath string) string {
	if configured != "" && configured != "auto" {
		return configured
	}
	text, err := os.ReadFile(sourcePath)
	if err != nil {
		return ""
	}
	lang, ok := detector.New().DetectDocument(string(text))
	if !ok {
		logger.Warn("could not detect source language", zap.String("source", sourcePath))
		return ""
	}
	fmt.Fprintf(os.Stderr, "Detected source language: %s\n", lang)
	return lang
}

// loadGlossary merges the glossary folder with the database terms for the
// language pair. db may be nil.
func loadGlossary(ctx context.Context, folder string, db *store.Store, sourceLang, targetLang string) (string, error) {
	text, err := glossary.Load(folder)
	if err != nil {
		return "", err
	}
	if db == nil || sourceLang == "" || targetLang == "" {
		return text, nil
	}

	terms, err := db.GetGlossaryTerms(ctx, sourceLang, targetLang)
	if err != nil {
		return "", fmt.Errorf("failed to load glossary terms: %w", err)
	}
	if len(terms) > 0 {
		logger.Info("glossary terms loaded", zap.Int("terms", len(terms)), zap.String("pair", sourceLang+"-"+targetLang))
	}
	return glossary.Merge(text, glossary.Terms(terms)), nil
}
