package translator

import (
	"context"
	"errors"
	"fmt"
	"time"

	translate "cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GoogleService uses Cloud Translation v2. The API accepts text only, so
// instructions and glossary are not sent.
type GoogleService struct {
	credentials string
	target      string
}

func NewGoogleService(credentials, targetLang string) *GoogleService {
	return &GoogleService{credentials: credentials, target: targetLang}
}

func (s *GoogleService) Name() string {
	return "google"
}

func (s *GoogleService) Translate(ctx context.Context, fragment, instructions, glossary string) (result Result) {
	start := time.Now()
	defer func() {
		result.Service = s.Name()
		result.Latency = time.Since(start)
	}()

	targetLangTag, err := language.Parse(s.target)
	if err != nil {
		return Failed(KindBadRequest, fmt.Errorf("invalid target language: %w", err))
	}

	client, err := translate.NewClient(ctx, s.clientOptions()...)
	if err != nil {
		return Failed(KindAuth, fmt.Errorf("failed to create client: %w", err))
	}
	defer client.Close()

	translations, err := client.Translate(ctx, []string{fragment}, targetLangTag, &translate.Options{
		Format: translate.Text,
	})
	if err != nil {
		return Failed(classifyGoogleError(err), fmt.Errorf("translation failed: %w", err))
	}

	if len(translations) == 0 || translations[0].Text == "" {
		return Failed(KindAPI, errEmptyTranslation)
	}
	return Success(translations[0].Text)
}

func (s *GoogleService) IsAvailable(ctx context.Context) error {
	if _, err := language.Parse(s.target); err != nil {
		return fmt.Errorf("google: target_lang is required: %w", err)
	}
	client, err := translate.NewClient(ctx, s.clientOptions()...)
	if err != nil {
		return fmt.Errorf("google: failed to create client: %w", err)
	}
	return client.Close()
}

func (s *GoogleService) clientOptions() []option.ClientOption {
	var opts []option.ClientOption
	if s.credentials != "" {
		opts = append(opts, option.WithCredentialsFile(s.credentials))
	}
	return opts
}

func classifyGoogleError(err error) FailureKind {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return classifyStatus(gErr.Code)
	}
	return classifyError(err)
}
