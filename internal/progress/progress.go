// Package progress renders a translation run's progress on a terminal.
package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

const barWidth = 30

// Terminal prints a single self-overwriting line on a TTY and one line per
// fragment otherwise. It is safe for concurrent use and goes quiet after the
// first write error.
type Terminal struct {
	w       io.Writer
	isTTY   bool
	enabled bool

	start   time.Time
	lastLen int

	mu sync.Mutex
}

// New returns a Terminal writing to w (os.Stderr when nil). Line overwriting
// is used only when w is a terminal and CI is unset.
func New(w io.Writer) *Terminal {
	if w == nil {
		w = os.Stderr
	}
	return &Terminal{w: w, isTTY: isTerminal(w), enabled: true}
}

func isTerminal(w io.Writer) bool {
	if os.Getenv("CI") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (t *Terminal) Start(total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.start = time.Now()
	t.lastLen = 0
	if t.isTTY {
		t.printInline(Line(0, total, 0))
		return
	}
	t.println(fmt.Sprintf("Translating %d fragments", total))
}

func (t *Terminal) Advance(index, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	line := Line(index, total, time.Since(t.start))
	if t.isTTY {
		t.printInline(line)
		return
	}
	t.println(line)
}

func (t *Terminal) Finish() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.isTTY && t.lastLen > 0 {
		t.println("")
	}
}

// Line formats the progress of done out of total fragments.
func Line(done, total int, elapsed time.Duration) string {
	filled := 0
	if total > 0 {
		filled = done * barWidth / total
	}
	if filled > barWidth {
		filled = barWidth
	}
	bar := strings.Repeat("#", filled) + strings.Repeat(".", barWidth-filled)
	return fmt.Sprintf("Translating [%s] %d/%d %s", bar, done, total, elapsed.Round(time.Second))
}

func (t *Terminal) println(s string) {
	if !t.enabled {
		return
	}
	if _, err := io.WriteString(t.w, s+"\n"); err != nil {
		t.enabled = false
	}
	t.lastLen = 0
}

func (t *Terminal) printInline(s string) {
	if !t.enabled {
		return
	}
	n := len([]rune(s))
	pad := 0
	if t.lastLen > n {
		pad = t.lastLen - n
	}
	if _, err := io.WriteString(t.w, "\r"+s+strings.Repeat(" ", pad)); err != nil {
		t.enabled = false
		return
	}
	t.lastLen = n
}
