package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/harrisonrobin/codeclock/pkg/config"
	"github.com/harrisonrobin/codeclock/pkg/daily"
	"github.com/harrisonrobin/codeclock/pkg/session"
	"github.com/harrisonrobin/codeclock/pkg/util"
	"google.golang.org/api/calendar/v3"
)

const (
	promptText = "Enter 's' to start time, 't' to see session length, " +
		"'e' to end time, 'c' to see today's total or 'q' to quit: "

	displayLayout = "2006-01-02 15:04:05"
)

// EventInserter writes a finished session to the calendar.
type EventInserter interface {
	InsertEvent(ctx context.Context, event *calendar.Event) (*calendar.Event, error)
}

// DailyTotaler reports the coding time recorded today.
type DailyTotaler interface {
	Today(ctx context.Context) (daily.Total, error)
}

// Options wires the shell to its tracker and calendar collaborators.
type Options struct {
	Tracker  *session.Tracker
	Inserter EventInserter
	Totals   DailyTotaler
	Event    util.EventOptions
	// Prompt prints the command help before every read.
	Prompt bool
}

// Shell is the single-character command loop. Every command is handled to
// completion before the next line is read.
type Shell struct {
	in   *bufio.Reader
	out  io.Writer
	opts Options
}

// New returns a shell reading commands from in and writing to out.
func New(in io.Reader, out io.Writer, opts Options) *Shell {
	if opts.Tracker == nil {
		opts.Tracker = session.NewTracker(nil)
	}
	if opts.Event.Location == nil {
		opts.Event.Location = config.DefaultLocation()
	}
	return &Shell{in: bufio.NewReader(in), out: out, opts: opts}
}

// Run reads commands until "q" or end of input. Failures of individual
// commands are reported and never end the loop.
func (s *Shell) Run(ctx context.Context) error {
	for {
		if s.opts.Prompt {
			fmt.Fprint(s.out, stylePrompt.Render(promptText))
		}
		// Lines of any length are read whole; only EOF or a read failure stops here.
		line, err := s.in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to read command: %w", err)
		}
		eof := err != nil

		action := strings.ToLower(strings.TrimSpace(line))
		if action == "q" {
			return nil
		}
		if !eof || action != "" {
			s.dispatch(ctx, action)
		}
		if eof {
			return nil
		}
	}
}

func (s *Shell) dispatch(ctx context.Context, action string) {
	switch action {
	case "s":
		s.start()
	case "t":
		s.elapsed()
	case "e":
		s.end(ctx)
	case "c":
		s.today(ctx)
	default:
		s.println(styleWarn, "Invalid command!")
	}
}

func (s *Shell) start() {
	started, previous := s.opts.Tracker.Start()
	if previous != nil {
		s.println(styleWarn, fmt.Sprintf("Discarded session started at %s", s.format(previous.Start)))
	}
	s.println(styleOK, fmt.Sprintf("Started at %s", s.format(started.Start)))
}

func (s *Shell) elapsed() {
	minutes, err := s.opts.Tracker.Elapsed()
	if err != nil {
		s.reportSessionError(err)
		return
	}
	s.println(styleOK, fmt.Sprintf("Session: %d minutes", minutes))
}

func (s *Shell) end(ctx context.Context) {
	finished, err := s.opts.Tracker.Stop()
	if err != nil {
		s.reportSessionError(err)
		return
	}
	s.println(styleOK, fmt.Sprintf("Ended at %s", s.format(finished.End)))

	event, err := util.ConvertSessionToCalendarEvent(finished, s.opts.Event)
	if err != nil {
		s.reportError(err)
		return
	}
	if s.opts.Inserter == nil {
		s.reportError(errors.New("no calendar configured"))
		return
	}
	created, err := s.opts.Inserter.InsertEvent(ctx, event)
	if err != nil {
		s.reportError(err)
		return
	}
	s.println(styleOK, fmt.Sprintf("Event created %s", created.HtmlLink))
}

func (s *Shell) today(ctx context.Context) {
	if s.opts.Totals == nil {
		s.reportError(errors.New("no calendar configured"))
		return
	}
	total, err := s.opts.Totals.Today(ctx)
	if err != nil {
		s.reportError(err)
		return
	}
	s.println(styleTotal, fmt.Sprintf("Coding today: %s", total))
}

func (s *Shell) reportSessionError(err error) {
	if errors.Is(err, session.ErrNoActiveSession) {
		s.println(styleWarn, "Please start the time first!")
		return
	}
	s.reportError(err)
}

func (s *Shell) reportError(err error) {
	log.Printf("command failed: %v", err)
	s.println(styleError, fmt.Sprintf("An error occurred: %v", err))
}

func (s *Shell) format(t time.Time) string {
	return t.In(s.opts.Event.Location).Format(displayLayout)
}

func (s *Shell) println(style lipgloss.Style, msg string) {
	fmt.Fprintln(s.out, style.Render(msg))
}
