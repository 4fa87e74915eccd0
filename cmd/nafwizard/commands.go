package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	wizard "github.com/goliatone/go-wizard"
	"github.com/goliatone/go-wizard/internal/calendar"
	"github.com/goliatone/go-wizard/internal/httpapi"
	"github.com/goliatone/go-wizard/pkg/activity"
	"github.com/goliatone/go-wizard/pkg/session"
	"github.com/goliatone/go-wizard/schema/jsonschema"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *app) buildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build [state.json]",
		Short: "Encode a control state into a payload",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := a.wizard()
			if err != nil {
				return err
			}
			var state wizard.ControlState
			if err := a.readJSON(firstArg(args), &state); err != nil {
				return err
			}
			return a.writeJSON(w.Build(state))
		},
	}
}

func (a *app) restoreCmd() *cobra.Command {
	var statePath string
	cmd := &cobra.Command{
		Use:   "restore [payload.json]",
		Short: "Decode a payload into control updates",
		Long: `Decode a payload into control updates and warnings.

With --state the updates are applied over that control state and the
resulting state is printed instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := a.wizard()
			if err != nil {
				return err
			}
			var payload any
			if err := a.readJSON(firstArg(args), &payload); err != nil {
				return err
			}
			if statePath == "" {
				result, err := w.Restore(payload)
				if err != nil {
					return err
				}
				return a.writeJSON(result)
			}

			var state wizard.ControlState
			if err := a.readJSON(statePath, &state); err != nil {
				return err
			}
			next, result, err := w.Load(state, payload)
			if err != nil {
				return err
			}
			for _, warning := range result.Warnings {
				a.logger.Warn("restore warning", zap.String("warning", warning.String()))
			}
			return a.writeJSON(next)
		},
	}
	cmd.Flags().StringVar(&statePath, "state", "", "control state JSON to apply the updates over")
	return cmd
}

func (a *app) scheduleCmd() *cobra.Command {
	var (
		start    string
		phases   []string
		holidays []string
	)
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Lay timeline phases over business days",
		Example: `  nafwizard schedule --start 2025-12-12
  nafwizard schedule --start 2025-12-12 --phase Planning:5 --phase Build:20 --holiday 2025-12-25`,
		RunE: func(cmd *cobra.Command, args []string) error {
			begin, err := wizard.ParseDate(start)
			if err != nil {
				return fmt.Errorf("--start: %w", err)
			}
			rows, err := parsePhases(phases)
			if err != nil {
				return err
			}
			days := make([]time.Time, 0, len(holidays))
			for _, value := range holidays {
				day, err := wizard.ParseDate(value)
				if err != nil {
					return fmt.Errorf("--holiday: %w", err)
				}
				days = append(days, day)
			}

			durations := make([]int, len(rows))
			total := 0
			for i, row := range rows {
				durations[i] = row.Duration
				total += row.Duration
			}
			spans := calendar.New(days...).Schedule(begin, durations)

			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PHASE\tDAYS\tSTART\tEND")
			for i, row := range rows {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", row.Name, row.Duration,
					spans[i].Start.Format(wizard.DateLayout), spans[i].End.Format(wizard.DateLayout))
			}
			completion := calendar.Date(begin)
			if len(spans) > 0 {
				completion = spans[len(spans)-1].End
			}
			fmt.Fprintf(tw, "TOTAL\t%d\t\t%s\n", total, completion.Format(wizard.DateLayout))
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "first day of the timeline (YYYY-MM-DD)")
	cmd.Flags().StringArrayVar(&phases, "phase", nil, "phase as name:days, repeatable (default phases when omitted)")
	cmd.Flags().StringArrayVar(&holidays, "holiday", nil, "non-working date (YYYY-MM-DD), repeatable")
	_ = cmd.MarkFlagRequired("start")
	return cmd
}

func parsePhases(values []string) ([]wizard.Phase, error) {
	if len(values) == 0 {
		return append([]wizard.Phase(nil), wizard.DefaultPhases...), nil
	}
	rows := make([]wizard.Phase, 0, len(values))
	for _, value := range values {
		idx := strings.LastIndex(value, ":")
		if idx <= 0 {
			return nil, fmt.Errorf("--phase %q: expected name:days", value)
		}
		days, err := strconv.Atoi(strings.TrimSpace(value[idx+1:]))
		if err != nil || days < 0 {
			return nil, fmt.Errorf("--phase %q: days must be a non-negative integer", value)
		}
		rows = append(rows, wizard.Phase{Name: strings.TrimSpace(value[:idx]), Duration: days})
	}
	return rows, nil
}

func (a *app) schemaCmd() *cobra.Command {
	var (
		id     string
		strict bool
	)
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of the payload",
		RunE: func(cmd *cobra.Command, args []string) error {
			generator := jsonschema.NewGenerator(
				jsonschema.WithID(id),
				jsonschema.WithEnumerations(a.config.Enumerations),
				jsonschema.WithStrict(strict),
			)
			data, err := generator.Marshal(wizard.NAFQuestionnaire())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.out, string(data))
			return err
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "$id of the schema document")
	cmd.Flags().BoolVar(&strict, "strict", false, "reject properties the questionnaire does not declare")
	return cmd
}

func (a *app) serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve payload and session endpoints over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.config.Addr
			}
			w, err := a.wizard()
			if err != nil {
				return err
			}
			emitter := activity.NewEmitter(activity.Hooks{activityLogger(a.logger)}, activity.Config{
				Enabled:       true,
				Questionnaire: session.DefaultQuestionnaire,
			})
			manager, err := session.NewManager(w,
				session.WithDefaults(wizard.NAFDefaults()),
				session.WithEmitter(emitter),
			)
			if err != nil {
				return err
			}
			handler, err := httpapi.NewServer(manager,
				httpapi.WithLogger(a.logger),
				httpapi.WithSchemaGenerator(jsonschema.NewGenerator(jsonschema.WithEnumerations(a.config.Enumerations))),
			)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}, a.logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default "+envAddr+" or "+defaultAddr+")")
	return cmd
}

// activityLogger records session activity in the service log.
func activityLogger(logger *zap.Logger) activity.ActivityHook {
	return activity.HookFunc(func(_ context.Context, event activity.Event) error {
		logger.Info("session activity",
			zap.String("verb", event.Verb),
			zap.String("session", event.SessionID),
			zap.String("questionnaire", event.Questionnaire),
			zap.String("etag", event.ETag),
			zap.Strings("changed", event.Changed),
			zap.Strings("warnings", event.Warnings),
		)
		return nil
	})
}

func serve(ctx context.Context, srv *http.Server, logger *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
