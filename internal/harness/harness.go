package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/roach88/mockstore/internal/action"
	"github.com/roach88/mockstore/internal/async"
	"github.com/roach88/mockstore/internal/engine"
	"github.com/roach88/mockstore/internal/mockstore"
	"github.com/roach88/mockstore/internal/testutil"
)

// DefaultSettleTimeout bounds each settle step.
const DefaultSettleTimeout = 5 * time.Second

// Option configures a scenario run.
type Option func(*options)

type options struct {
	logger        *slog.Logger
	settleTimeout time.Duration
	runIDs        mockstore.IDGenerator
}

// WithLogger sets the logger for the run and the store under test.
// Default: discards all output.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithSettleTimeout bounds each settle step.
func WithSettleTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.settleTimeout = d
		}
	}
}

// WithRunIDs sets the generator for Result.RunID. Default: UUIDv7.
func WithRunIDs(ids mockstore.IDGenerator) Option {
	return func(o *options) {
		if ids != nil {
			o.runIDs = ids
		}
	}
}

// Harness executes one scenario against one store.
type Harness struct {
	store   *mockstore.Store
	clock   *engine.Clock
	logger  *slog.Logger
	timeout time.Duration
	errs    []error // reducer failures
}

// Run executes a scenario and returns the result.
//
// Execution flow:
// 1. Build a fresh store from the scenario's reducer, block list and middlewares
// 2. Execute flow steps in order
// 3. Snapshot recordings and state
// 4. Evaluate assertions
//
// The returned error reports a harness failure (bad scenario); step and
// assertion failures are recorded in Result.Errors.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	return RunContext(context.Background(), scenario, opts...)
}

// RunContext is Run with a caller context bounding settle steps.
func RunContext(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	o := options{
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		settleTimeout: DefaultSettleTimeout,
		runIDs:        mockstore.UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(&o)
	}

	h := &Harness{
		clock:   engine.NewClock(),
		logger:  o.logger.With("scenario", scenario.Name),
		timeout: o.settleTimeout,
	}
	h.store = h.buildStore(scenario)

	result := NewResult(scenario.Name, o.runIDs.Generate())

	for i, step := range scenario.Flow {
		if err := h.executeStep(ctx, i, step, result); err != nil {
			return nil, fmt.Errorf("flow step %d: %w", i, err)
		}
	}

	for _, err := range h.errs {
		result.AddError(err.Error())
	}

	result.Recording = h.store.Recording()
	result.State = h.store.GetState()

	for _, msg := range EvaluateAssertions(result, scenario.Assertions, h.store) {
		result.AddError(msg)
	}

	h.logger.Info("scenario finished",
		"run_id", result.RunID,
		"pass", result.Pass,
		"errors", len(result.Errors),
	)
	return result, nil
}

func (h *Harness) buildStore(s *Scenario) *mockstore.Store {
	var extra []engine.Middleware
	for _, name := range s.Middlewares {
		if name == MiddlewareThunk {
			extra = append(extra, engine.ThunkMiddleware())
		}
	}

	initial, _ := s.InitialState.(map[string]any)
	initial = cloneDeep(initial)

	reducer := buildReducer(s.Reducer, initial, func(err error) {
		h.errs = append(h.errs, err)
	})

	var allow func(state, act any) bool
	if len(s.Block) > 0 {
		criteria := s.Block
		allow = func(_, act any) bool {
			for _, c := range criteria {
				if action.Matches(c, act) {
					return false
				}
			}
			return true
		}
	}

	create := mockstore.New(extra,
		mockstore.WithLogger(h.logger),
		mockstore.WithSessionIDs(testutil.NewFixedSessionGenerator("scenario-"+s.Name)),
	)
	return create(func() any { return cloneDeep(initial) }, reducer, allow)
}

func (h *Harness) executeStep(ctx context.Context, i int, step FlowStep, result *Result) error {
	seq := h.clock.Next()

	switch {
	case step.Dispatch != nil:
		_, err := h.store.Dispatch(step.Dispatch)
		h.checkDispatch(i, step, seq, action.TypeOf(step.Dispatch), StepDispatch, err, result)

	case step.Async != nil:
		_, err := h.store.Dispatch(h.asyncThunk(*step.Async))
		var typ any
		if step.Async.Dispatch {
			typ = action.TypeOf(step.Async.Value)
		}
		h.checkDispatch(i, step, seq, typ, StepAsync, err, result)

	case step.Clear != "":
		h.clear(step.Clear)
		result.AddTrace(TraceEvent{Seq: seq, Kind: StepClear, Type: step.Clear})

	case step.Settle:
		sctx, cancel := context.WithTimeout(ctx, h.timeout)
		defer cancel()
		ev := TraceEvent{Seq: seq, Kind: StepSettle}
		if err := h.store.Settle(sctx); err != nil {
			ev.Error = err.Error()
			result.AddError(fmt.Sprintf("flow[%d]: settle: %v", i, err))
		}
		result.AddTrace(ev)

	default:
		return errors.New("empty step")
	}

	h.logger.Debug("flow step completed", "step", i, "seq", seq)
	return nil
}

func (h *Harness) checkDispatch(i int, step FlowStep, seq int64, typ any, kind string, err error, result *Result) {
	ev := TraceEvent{Seq: seq, Kind: kind, Type: typ}
	if err != nil {
		ev.Error = err.Error()
	}
	result.AddTrace(ev)

	switch {
	case step.ExpectError == "" && err != nil:
		result.AddError(fmt.Sprintf("flow[%d]: unexpected error: %v", i, err))
	case step.ExpectError != "" && err == nil:
		result.AddError(fmt.Sprintf("flow[%d]: expected error containing %q, dispatch succeeded", i, step.ExpectError))
	case step.ExpectError != "" && !strings.Contains(err.Error(), step.ExpectError):
		result.AddError(fmt.Sprintf("flow[%d]: expected error containing %q, got %q", i, step.ExpectError, err.Error()))
	}
}

// asyncThunk returns a thunk whose promise settles on the store's loop.
func (h *Harness) asyncThunk(step AsyncStep) engine.Thunk {
	loop := h.store.Loop()
	return func(dispatch engine.Dispatch, _ engine.GetState) any {
		if step.Outcome == "reject" {
			return async.Rejected(loop, errors.New(fmt.Sprint(step.Value)))
		}
		p := async.Resolved(loop, step.Value)
		if !step.Dispatch {
			return p
		}
		return p.Then(func(v any) (any, error) {
			return dispatch(v)
		}, nil)
	}
}

func (h *Harness) clear(target string) {
	switch target {
	case "actions":
		h.store.ClearActions()
	case "orphans":
		h.store.ClearOrphans()
	case "promises":
		h.store.ClearPromises()
	case "blocked":
		h.store.ClearBlocked()
	case "all":
		h.store.ClearActions()
		h.store.ClearOrphans()
		h.store.ClearPromises()
		h.store.ClearBlocked()
	}
}
