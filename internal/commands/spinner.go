package commands

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/ideagen/internal/render"
)

var (
	colorText     = lipgloss.Color("#c0caf5")
	colorTextDim  = lipgloss.Color("#565f89")
	colorTextMute = lipgloss.Color("#3b4261")
	colorSuccess  = lipgloss.Color("#9ece6a")
	colorPrimary  = lipgloss.Color("#7aa2f7")
	colorError    = lipgloss.Color("#f7768e")
)

var (
	spinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}
	barShades     = []string{"█", "█", "█", "█", "▓", "▒", "░"}
)

const spinnerBarWidth = 12

// spinner is the animated "Thinking..." line shown by generate while the
// request is in flight. It writes to stderr so stdout stays clean.
type spinner struct {
	out      io.Writer
	message  string
	gradient []lipgloss.Color
	started  time.Time

	stop    chan struct{}
	done    chan struct{}
	mu      sync.Mutex
	frame   int
	stopped bool
}

func newSpinner(out io.Writer, message string, p render.Palette) *spinner {
	return &spinner{
		out:      out,
		message:  message,
		gradient: []lipgloss.Color{p.User, p.Accent, p.Bot, p.Warning},
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (s *spinner) start() {
	s.started = time.Now()
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		// Hide cursor
		fmt.Fprint(s.out, "\033[?25l")

		for {
			select {
			case <-s.stop:
				// Clear line and show cursor
				fmt.Fprint(s.out, "\r\033[K\033[?25h")
				return
			case <-ticker.C:
				s.mu.Lock()
				fmt.Fprint(s.out, "\r\033[K"+s.frameText(time.Since(s.started)))
				s.frame++
				s.mu.Unlock()
			}
		}
	}()
}

// frameText draws one frame: glyph, shaded bar, message, elapsed seconds
func (s *spinner) frameText(elapsed time.Duration) string {
	color := func(i int) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(s.gradient[(i+s.frame)%len(s.gradient)])
	}

	var sb strings.Builder
	sb.WriteString(color(0).Bold(true).Render(spinnerFrames[s.frame%len(spinnerFrames)]))
	sb.WriteString(" ")
	for i := 0; i < spinnerBarWidth; i++ {
		sb.WriteString(color(i).Render(barShades[(i+s.frame/2)%len(barShades)]))
	}
	sb.WriteString(" ")
	sb.WriteString(lipgloss.NewStyle().Foreground(colorText).Render(s.message))
	sb.WriteString(" ")
	sb.WriteString(lipgloss.NewStyle().Foreground(colorTextMute).Render(fmt.Sprintf("%ds", int(elapsed.Seconds()))))
	return sb.String()
}

func (s *spinner) stopOnce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		close(s.stop)
		s.stopped = true
	}
}

// stopWithSuccess stops the spinner and prints message with the elapsed time
func (s *spinner) stopWithSuccess(message string) {
	s.stopOnce()
	<-s.done

	checkmark := lipgloss.NewStyle().Foreground(colorSuccess).Bold(true).Render("✓")
	msg := lipgloss.NewStyle().Foreground(colorSuccess).Render(message)
	took := lipgloss.NewStyle().Foreground(colorTextDim).Render(fmt.Sprintf("(%s)", time.Since(s.started).Round(100*time.Millisecond)))
	fmt.Fprintf(s.out, "%s %s %s\n", checkmark, msg, took)
}

// stopWithError stops the spinner and leaves the line clear for the error
func (s *spinner) stopWithError() {
	s.stopOnce()
	<-s.done
}
