package internal

import "time"

// Run statuses recorded in the journal.
const (
	RunRunning   = "running"
	RunCompleted = "completed"
	RunFailed    = "failed"
	RunCancelled = "cancelled"
)

// Fragment outcomes recorded in the journal.
const (
	FragmentTranslated = "translated"
	FragmentSkipped    = "skipped"
)

// Run is one invocation of the translation pipeline over a document.
type Run struct {
	ID         string    `json:"id"`
	SourceFile string    `json:"source_file"`
	OutputFile string    `json:"output_file"`
	Service    string    `json:"service"`
	SourceLang string    `json:"source_lang"`
	MaxWords   int       `json:"max_words"`
	Total      int       `json:"total"`
	Translated int       `json:"translated"`
	Skipped    []int     `json:"skipped"`
	Status     string    `json:"status"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
}

// FragmentOutcome is the journal entry for one fragment of a run.
type FragmentOutcome struct {
	RunID     string        `json:"run_id"`
	Index     int           `json:"index"`
	Words     int           `json:"words"`
	Status    string        `json:"status"`
	Kind      string        `json:"kind,omitempty"`
	Error     string        `json:"error,omitempty"`
	Latency   time.Duration `json:"latency"`
	CreatedAt time.Time     `json:"created_at"`
}
