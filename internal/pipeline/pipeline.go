// Package pipeline drives a document translation run: split the source,
// reset the output, then translate fragments one at a time, appending each
// success and skipping each failure.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/valpere/mdtran/internal"
	"github.com/valpere/mdtran/internal/fragmenter"
	"github.com/valpere/mdtran/internal/output"
	"github.com/valpere/mdtran/internal/translator"
)

// ErrFragmentsSkipped is returned by strict runs that skipped at least one
// fragment. The output document is still complete for the rest.
var ErrFragmentsSkipped = errors.New("some fragments were skipped")

// SkipNotice is printed for every fragment that could not be translated.
const SkipNotice = "Fragment %d skipped due to an error.\n"

// Job describes one translation run.
type Job struct {
	SourcePath   string
	OutputPath   string
	Instructions string
	Glossary     string
	MaxWords     int
	SourceLang   string
	Strict       bool
}

// Report summarises a run.
type Report struct {
	RunID      string
	Total      int
	Translated int
	Skipped    []int
	Duration   time.Duration
}

// Progress receives one Advance per fragment, whatever its outcome.
type Progress interface {
	Start(total int)
	Advance(index, total int)
	Finish()
}

// Journal records runs for later inspection. Journal failures are logged and
// never stop a run.
type Journal interface {
	BeginRun(ctx context.Context, run internal.Run) error
	RecordFragment(ctx context.Context, outcome internal.FragmentOutcome) error
	EndRun(ctx context.Context, run internal.Run) error
}

// Config holds the optional collaborators of a Driver.
type Config struct {
	Logger   *zap.Logger
	Progress Progress
	Journal  Journal
	// Notices receives operator notices such as skipped fragments; defaults
	// to io.Discard.
	Notices io.Writer
}

// Driver runs jobs against a single translation service.
type Driver struct {
	service translator.Service
	config  Config
}

func New(service translator.Service, config Config) *Driver {
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	if config.Progress == nil {
		config.Progress = nopProgress{}
	}
	if config.Notices == nil {
		config.Notices = io.Discard
	}
	return &Driver{service: service, config: config}
}

// Run translates job.SourcePath into job.OutputPath. Errors reading or
// splitting the source are returned before the output is touched. A failed
// fragment is reported and skipped; a failed append aborts the run. When ctx
// is cancelled the run stops before the next fragment and keeps what was
// already written; a fragment whose call was cut short by the cancellation is
// not reported as skipped.
func (d *Driver) Run(ctx context.Context, job Job) (*Report, error) {
	start := time.Now()
	log := d.config.Logger

	fragments, err := fragmenter.SplitFile(job.SourcePath, job.MaxWords)
	if err != nil {
		return nil, err
	}

	removed, err := output.Reset(job.OutputPath)
	if err != nil {
		return nil, err
	}
	if removed {
		fmt.Fprintf(d.config.Notices, "Removed existing output file: %s\n", job.OutputPath)
		log.Info("removed previous output", zap.String("path", job.OutputPath))
	}

	report := &Report{RunID: uuid.New().String(), Total: len(fragments)}
	run := internal.Run{
		ID:         report.RunID,
		SourceFile: job.SourcePath,
		OutputFile: job.OutputPath,
		Service:    d.service.Name(),
		SourceLang: job.SourceLang,
		MaxWords:   job.MaxWords,
		Total:      report.Total,
		Status:     internal.RunRunning,
		StartedAt:  start,
	}
	d.journal("begin run", func(j Journal) error { return j.BeginRun(ctx, run) })

	log.Info("translation started",
		zap.String("run_id", report.RunID),
		zap.String("service", run.Service),
		zap.Int("fragments", report.Total),
		zap.Int("max_words", job.MaxWords),
	)

	d.config.Progress.Start(report.Total)
	runErr := d.translate(ctx, job, fragments, report)
	d.config.Progress.Finish()

	report.Duration = time.Since(start)
	run.Translated = report.Translated
	run.Skipped = report.Skipped
	run.FinishedAt = time.Now()
	switch {
	case runErr == nil:
		run.Status = internal.RunCompleted
	case ctx.Err() != nil:
		run.Status = internal.RunCancelled
	default:
		run.Status = internal.RunFailed
	}
	d.journal("end run", func(j Journal) error { return j.EndRun(context.WithoutCancel(ctx), run) })

	if runErr != nil {
		return report, runErr
	}

	log.Info("translation finished",
		zap.String("run_id", report.RunID),
		zap.Int("translated", report.Translated),
		zap.Ints("skipped", report.Skipped),
		zap.Duration("duration", report.Duration),
	)

	if job.Strict && len(report.Skipped) > 0 {
		return report, fmt.Errorf("%w: %v", ErrFragmentsSkipped, report.Skipped)
	}
	return report, nil
}

func (d *Driver) translate(ctx context.Context, job Job, fragments []fragmenter.Fragment, report *Report) error {
	log := d.config.Logger

	for _, f := range fragments {
		if err := ctx.Err(); err != nil {
			log.Warn("translation interrupted", zap.Int("next_fragment", f.Index), zap.Error(err))
			return err
		}

		res := d.service.Translate(ctx, f.Text, job.Instructions, job.Glossary)
		if !res.OK() && ctx.Err() != nil {
			// Interrupted in flight: neither translated nor skipped.
			log.Warn("translation interrupted", zap.Int("fragment", f.Index), zap.Error(ctx.Err()))
			return ctx.Err()
		}

		outcome := internal.FragmentOutcome{
			RunID:     report.RunID,
			Index:     f.Index,
			Words:     f.Words,
			Latency:   res.Latency,
			CreatedAt: time.Now(),
		}

		if res.OK() {
			if err := output.Append(job.OutputPath, res.Text); err != nil {
				return fmt.Errorf("fragment %d: %w", f.Index, err)
			}
			report.Translated++
			outcome.Status = internal.FragmentTranslated
			log.Debug("fragment translated", zap.Int("fragment", f.Index), zap.Duration("latency", res.Latency))
		} else {
			report.Skipped = append(report.Skipped, f.Index)
			outcome.Status = internal.FragmentSkipped
			outcome.Kind = string(res.Failure.Kind)
			outcome.Error = res.Failure.Error()
			fmt.Fprintf(d.config.Notices, SkipNotice, f.Index)
			log.Warn("error translating fragment",
				zap.Int("fragment", f.Index),
				zap.String("service", res.Service),
				zap.String("kind", outcome.Kind),
				zap.Error(res.Failure),
			)
		}

		d.journal("record fragment", func(j Journal) error { return j.RecordFragment(context.WithoutCancel(ctx), outcome) })
		d.config.Progress.Advance(f.Index, report.Total)
	}
	return nil
}

func (d *Driver) journal(op string, fn func(Journal) error) {
	if d.config.Journal == nil {
		return
	}
	if err := fn(d.config.Journal); err != nil {
		d.config.Logger.Warn("journal write failed", zap.String("op", op), zap.Error(err))
	}
}

type nopProgress struct{}

func (nopProgress) Start(int)        {}
func (nopProgress) Advance(int, int) {}
func (nopProgress) Finish()          {}
