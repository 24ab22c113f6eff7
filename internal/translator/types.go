package translator

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// ServiceConfig selects and configures the translation backend.
type ServiceConfig struct {
	Provider          string        `mapstructure:"provider" json:"provider"`
	APIKey            string        `mapstructure:"api_key" json:"-"`
	Model             string        `mapstructure:"model" json:"model"`
	BaseURL           string        `mapstructure:"base_url" json:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout" json:"timeout"`
	Credentials       string        `mapstructure:"credentials" json:"credentials"`
	TargetLang        string        `mapstructure:"target_lang" json:"target_lang"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute" json:"requests_per_minute"`
}

// FailureKind classifies why a fragment could not be translated.
type FailureKind string

const (
	KindAuth       FailureKind = "auth"
	KindRateLimit  FailureKind = "rate_limit"
	KindBadRequest FailureKind = "bad_request"
	KindAPI        FailureKind = "api"
	KindNetwork    FailureKind = "network"
	KindUnexpected FailureKind = "unexpected"
)

// Failure carries the cause of a failed translation.
type Failure struct {
	Kind  FailureKind
	Cause error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s error: %v", f.Kind, f.Cause)
}

func (f *Failure) Unwrap() error { return f.Cause }

// Result is the outcome of one Translate call: either Text or Failure is
// meaningful, never both.
type Result struct {
	Service string
	Text    string
	Failure *Failure
	Latency time.Duration
}

// OK reports whether the translation succeeded.
func (r Result) OK() bool { return r.Failure == nil }

// Success builds a successful result.
func Success(text string) Result {
	return Result{Text: text}
}

// Failed builds a failed result.
func Failed(kind FailureKind, cause error) Result {
	return Result{Failure: &Failure{Kind: kind, Cause: cause}}
}

// Service translates one fragment per call. Implementations call the
// upstream exactly once and never retry.
type Service interface {
	Name() string
	Translate(ctx context.Context, fragment, instructions, glossary string) Result
	IsAvailable(ctx context.Context) error
}

// classifyStatus maps an upstream HTTP status to a failure kind.
func classifyStatus(code int) FailureKind {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return KindAuth
	case code == http.StatusTooManyRequests:
		return KindRateLimit
	case code == http.StatusBadRequest || code == http.StatusNotFound ||
		code == http.StatusUnprocessableEntity || code == http.StatusRequestEntityTooLarge:
		return KindBadRequest
	case code == http.StatusRequestTimeout || code == http.StatusGatewayTimeout:
		return KindNetwork
	case code >= 400:
		return KindAPI
	default:
		return KindUnexpected
	}
}

// classifyError maps a transport-level error to a failure kind.
func classifyError(err error) FailureKind {
	// *url.Error from http.Client.Do satisfies net.Error.
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindNetwork
	}
	return KindUnexpected
}

var errEmptyTranslation = errors.New("empty translation returned")
