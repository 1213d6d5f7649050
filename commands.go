package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/harrisonrobin/codeclock/pkg/auth"
	"github.com/harrisonrobin/codeclock/pkg/colors"
	"github.com/harrisonrobin/codeclock/pkg/config"
	"github.com/harrisonrobin/codeclock/pkg/daily"
	"github.com/harrisonrobin/codeclock/pkg/google"
	"github.com/harrisonrobin/codeclock/pkg/session"
	"github.com/harrisonrobin/codeclock/pkg/shell"
	"github.com/harrisonrobin/codeclock/pkg/util"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"google.golang.org/api/calendar/v3"
)

type rootFlags struct {
	calendar string
	timezone string
	verbose  bool
}

// settings is the effective configuration. Priority: flag > config file > default.
type settings struct {
	calendar string
	location *time.Location
	tag      string
	colorID  string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "codeclock",
		Short: "Track coding sessions as Google Calendar events",
		Long: `codeclock times coding sessions from an interactive prompt and records
each finished session as a "Coding" event in Google Calendar.

Commands at the prompt:
  s  start a session
  t  show minutes elapsed in the current session
  e  end the session and create the calendar event
  c  show today's coding total
  q  quit`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if !flags.verbose {
				log.SetOutput(io.Discard)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd.Context(), flags)
		},
	}

	cmd.PersistentFlags().StringVar(&flags.calendar, "calendar", "", "Google Calendar name to record sessions in (overrides config)")
	cmd.PersistentFlags().StringVar(&flags.timezone, "timezone", "", "IANA time zone for events and day boundaries (overrides config)")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable diagnostic logging")

	cmd.AddCommand(newAuthCmd(), newTodayCmd(flags), newSetCalendarCmd())
	return cmd
}

func newAuthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with Google Calendar, replacing any stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := auth.Reset(); err != nil {
				return err
			}
			if _, err := auth.GetClient(cmd.Context(), auth.Scopes); err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}
			path, _ := auth.TokenPath()
			fmt.Fprintf(cmd.OutOrStdout(), "Authentication successful! Token saved to %s\n", path)
			return nil
		},
	}
}

func newTodayCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Print today's coding total",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(flags)
			if err != nil {
				return err
			}
			client, err := newCalendarClient(cmd.Context(), s)
			if err != nil {
				return err
			}
			total, err := daily.NewAggregator(client, s.tag, s.location, nil).Today(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), total)
			return nil
		},
	}
}

func newSetCalendarCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-calendar NAME",
		Short: "Set the default Google Calendar name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			cfg.Calendar = args[0]
			if err := config.Save(cfg); err != nil {
				return fmt.Errorf("error saving config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Default calendar set to: %s\n", args[0])
			return nil
		},
	}
}

func loadSettings(flags *rootFlags) (*settings, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	if flags.calendar != "" {
		cfg.Calendar = flags.calendar
	}
	if flags.timezone != "" {
		cfg.TimeZone = flags.timezone
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	colorID, err := colors.Resolve(cfg.Color)
	if err != nil {
		return nil, err
	}
	return &settings{
		calendar: cfg.Calendar,
		location: loc,
		tag:      cfg.Tag,
		colorID:  colorID,
	}, nil
}

func newCalendarClient(ctx context.Context, s *settings) (*google.CalendarClient, error) {
	httpClient, err := auth.GetClient(ctx, auth.Scopes)
	if err != nil {
		return nil, err
	}
	client, err := google.NewClient(ctx, httpClient, s.calendar)
	if err != nil {
		return nil, fmt.Errorf("error creating Google Calendar client: %w", err)
	}
	log.Printf("Recording %q events (color %s) in calendar %s, zone %s",
		s.tag, colors.Name(s.colorID), client.CalendarID(), s.location)
	return client, nil
}

// lazyCalendar connects on the first calendar call and retries on the next
// call after a failure, so auth and lookup errors surface per command instead
// of preventing the shell from starting.
type lazyCalendar struct {
	settings *settings
	connect  func(ctx context.Context, s *settings) (*google.CalendarClient, error)
	client   *google.CalendarClient
}

func (l *lazyCalendar) get(ctx context.Context) (*google.CalendarClient, error) {
	if l.client != nil {
		return l.client, nil
	}
	client, err := l.connect(ctx, l.settings)
	if err != nil {
		return nil, err
	}
	l.client = client
	return client, nil
}

func (l *lazyCalendar) InsertEvent(ctx context.Context, event *calendar.Event) (*calendar.Event, error) {
	client, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return client.InsertEvent(ctx, event)
}

func (l *lazyCalendar) ListEvents(ctx context.Context, timeMin, timeMax time.Time) ([]*calendar.Event, error) {
	client, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return client.ListEvents(ctx, timeMin, timeMax)
}

func newShell(s *settings, in io.Reader, out io.Writer, prompt bool) *shell.Shell {
	cal := &lazyCalendar{settings: s, connect: newCalendarClient}
	return shell.New(in, out, shell.Options{
		Tracker:  session.NewTracker(nil),
		Inserter: cal,
		Totals:   daily.NewAggregator(cal, s.tag, s.location, nil),
		Event: util.EventOptions{
			Tag:      s.tag,
			ColorID:  s.colorID,
			Location: s.location,
		},
		Prompt: prompt,
	})
}

func runShell(ctx context.Context, flags *rootFlags) error {
	s, err := loadSettings(flags)
	if err != nil {
		return err
	}
	prompt := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	return newShell(s, os.Stdin, os.Stdout, prompt).Run(ctx)
}
