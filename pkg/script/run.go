package script

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/aretw0/stagehand"
	"github.com/aretw0/stagehand/pkg/adapters/notify"
	"github.com/aretw0/stagehand/pkg/adapters/virtual"
	"github.com/aretw0/stagehand/pkg/domain"
)

// StepResult records what one step did.
type StepResult struct {
	Index     int             `json:"index"`
	Signal    domain.Signal   `json:"signal"`
	Container string          `json:"container"`
	Err       string          `json:"error,omitempty"`
	Journal   []string        `json:"journal,omitempty"`
	Notified  []string        `json:"notified,omitempty"`
	Snapshot  domain.Snapshot `json:"snapshot"`
	Failures  []string        `json:"failures,omitempty"`
}

// Passed reports whether the step met its expectations.
func (r StepResult) Passed() bool {
	return len(r.Failures) == 0
}

// Report is the outcome of a replay.
type Report struct {
	Name  string       `json:"name"`
	Steps []StepResult `json:"steps"`
	// Violations lists steps after which an engine had more than one attached surface.
	Violations []string `json:"violations,omitempty"`
	// Journal is every surface and engine operation of the replay, in order.
	Journal []virtual.Entry `json:"journal,omitempty"`
}

// Passed reports whether every step passed and no invariant was violated.
func (r *Report) Passed() bool {
	if len(r.Violations) > 0 {
		return false
	}
	for _, s := range r.Steps {
		if !s.Passed() {
			return false
		}
	}
	return true
}

// Failures flattens every step failure and violation.
func (r *Report) Failures() []string {
	out := append([]string(nil), r.Violations...)
	for _, s := range r.Steps {
		for _, f := range s.Failures {
			out = append(out, fmt.Sprintf("step %d (%s %s): %s", s.Index, s.Signal, s.Container, f))
		}
	}
	return out
}

// Option configures Run.
type Option func(*runConfig)

type runConfig struct {
	logger *slog.Logger
	hooks  domain.LifecycleHooks
	rule   stagehand.SuppressionRule
	ruleOK bool
}

// WithLogger passes a logger to the coordinator.
func WithLogger(logger *slog.Logger) Option {
	return func(c *runConfig) {
		c.logger = logger
	}
}

// WithLifecycleHooks observes the replay (metrics, event stream).
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *runConfig) {
		c.hooks = hooks
	}
}

// WithSuppressionRule overrides the rule derived from the script's host block.
func WithSuppressionRule(rule stagehand.SuppressionRule) Option {
	return func(c *runConfig) {
		c.rule = rule
		c.ruleOK = true
	}
}

// Run replays s on fresh virtual engines. Signal errors are recorded in the
// report rather than aborting the run; the returned error covers setup only.
func Run(ctx context.Context, s *Script, opts ...Option) (*Report, error) {
	cfg := &runConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	journal := virtual.NewJournal()
	engines := make(map[string]*virtual.Engine)
	sink := notify.NewRecorder()

	coOpts := []stagehand.Option{
		stagehand.WithSink(sink),
		stagehand.WithLifecycleHooks(cfg.hooks),
		stagehand.WithHost(s.Host),
	}
	if cfg.ruleOK {
		coOpts = append(coOpts, stagehand.WithSuppressionRule(cfg.rule))
	}
	if cfg.logger != nil {
		coOpts = append(coOpts, stagehand.WithLogger(cfg.logger))
	}
	for _, id := range s.EngineIDs() {
		e := virtual.NewEngine(id, journal)
		engines[id] = e
		coOpts = append(coOpts, stagehand.WithEngine(e))
	}
	co, err := stagehand.New(coOpts...)
	if err != nil {
		return nil, err
	}

	declared := make(map[string]Container, len(s.Containers))
	for _, c := range s.Containers {
		declared[c.ID] = c
	}

	report := &Report{Name: s.Name}
	for i, step := range s.Steps {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		before, notifiedBefore := len(journal.Entries()), len(sink.Notifications())
		signal, _ := domain.ParseSignal(step.Signal)
		result := StepResult{Index: i + 1, Signal: signal, Container: step.Container}

		var stepErr error
		if signal == domain.SignalCreate {
			stepErr = create(ctx, co, declared, step.Container, journal)
		} else {
			stepErr = co.Dispatch(ctx, step.Container, signal)
		}
		if stepErr != nil {
			result.Err = stepErr.Error()
		}

		for _, e := range journal.Entries()[before:] {
			result.Journal = append(result.Journal, e.String())
		}
		for _, n := range sink.Notifications()[notifiedBefore:] {
			result.Notified = append(result.Notified, n.String())
		}
		result.Snapshot = co.Snapshot()
		result.Failures = check(step, stepErr, result.Snapshot)

		for id, e := range engines {
			if surfaces := e.AttachedSurfaces(); len(surfaces) > 1 {
				report.Violations = append(report.Violations,
					fmt.Sprintf("step %d: engine %s has %d attached surfaces %v", result.Index, id, len(surfaces), surfaces))
			}
		}
		report.Steps = append(report.Steps, result)
	}
	report.Journal = journal.Entries()
	return report, nil
}

func create(ctx context.Context, co *stagehand.Coordinator, declared map[string]Container, id string, journal *virtual.Journal) error {
	c, ok := declared[id]
	if !ok {
		return fmt.Errorf("create %s: %w", id, domain.ErrContainerNotFound)
	}
	desc, err := c.Descriptor()
	if err != nil {
		return err
	}
	_, err = co.Create(ctx, desc, virtual.NewSurfaces(id, journal))
	return err
}

// ErrorName maps a coordinator error to the sentinel name used by expect_error.
func ErrorName(err error) string {
	for name, target := range map[string]error{
		"container_not_found": domain.ErrContainerNotFound,
		"duplicate_container": domain.ErrDuplicateContainer,
		"engine_not_found":    domain.ErrEngineNotFound,
		"missing_url":         domain.ErrMissingURL,
		"missing_surface":     domain.ErrMissingSurface,
		"unknown_signal":      domain.ErrUnknownSignal,
	} {
		if errors.Is(err, target) {
			return name
		}
	}
	if err != nil {
		return "other"
	}
	return ""
}

func check(step Step, err error, snap domain.Snapshot) []string {
	var failures []string
	if got := ErrorName(err); got != step.ExpectError {
		if step.ExpectError == "" {
			failures = append(failures, fmt.Sprintf("unexpected error: %v", err))
		} else {
			failures = append(failures, fmt.Sprintf("expected error %s, got %q", step.ExpectError, got))
		}
	}

	exp := step.Expect
	if exp == nil {
		return failures
	}
	if exp.Top != "" {
		want := exp.Top
		if want == "-" {
			want = ""
		}
		if snap.Top != want {
			failures = append(failures, fmt.Sprintf("top: want %q, got %q", want, snap.Top))
		}
	}
	for engine, want := range exp.Attached {
		if got := snap.Owners[engine]; got != want {
			failures = append(failures, fmt.Sprintf("attached to %s: want %q, got %q", engine, want, got))
		}
	}
	for id, want := range exp.Stages {
		info, ok := snap.Find(id)
		if !ok {
			failures = append(failures, fmt.Sprintf("stage of %s: container is not live", id))
			continue
		}
		if info.Stage != want {
			failures = append(failures, fmt.Sprintf("stage of %s: want %s, got %s", id, want, info.Stage))
		}
	}
	if exp.Live != nil {
		live := make([]string, 0, len(snap.Containers))
		for _, c := range snap.Containers {
			live = append(live, c.UniqueID)
		}
		if !slices.Equal(live, exp.Live) {
			failures = append(failures, fmt.Sprintf("live: want %v, got %v", exp.Live, live))
		}
	}
	return failures
}
