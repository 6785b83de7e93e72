package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"gopkg.in/yaml.v3"
)

// Scenario drives one instrumented store through a flow of dispatches and
// asserts on what it recorded.
type Scenario struct {
	// Name uniquely identifies this scenario. Also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// InitialState is the store's state at construction.
	// Defaults to an empty map.
	InitialState any `yaml:"initial_state,omitempty"`

	// Reducer maps action types to declarative state updates.
	// Actions with no rule leave state unchanged.
	Reducer map[string]ReducerRule `yaml:"reducer,omitempty"`

	// Block lists criteria (type strings or partial records). Actions
	// matching any of them are blocked.
	Block []any `yaml:"block,omitempty"`

	// Middlewares names caller middlewares placed between the promise
	// tracker and the action logger, in order. Supported: "thunk".
	Middlewares []string `yaml:"middlewares,omitempty"`

	// Flow is executed top to bottom.
	Flow []FlowStep `yaml:"flow"`

	// Assertions are evaluated after the flow.
	Assertions []Assertion `yaml:"assertions"`
}

// ReducerRule is one declarative state update.
type ReducerRule struct {
	// Op is one of set, append, increment, decrement, replace, reset.
	Op string `yaml:"op"`

	// Path is a dotted path into the state map (set, append, increment,
	// decrement).
	Path string `yaml:"path,omitempty"`

	// From names the action field supplying the operand. When empty, Value
	// is used.
	From string `yaml:"from,omitempty"`

	// Value is the literal operand.
	Value any `yaml:"value,omitempty"`
}

// FlowStep is exactly one of dispatch, async, clear or settle.
type FlowStep struct {
	// Dispatch is an action to dispatch synchronously.
	Dispatch any `yaml:"dispatch,omitempty"`

	// ExpectError, with Dispatch or Async, requires the dispatch to fail
	// with an error containing this text.
	ExpectError string `yaml:"expect_error,omitempty"`

	// Async dispatches a thunk returning a promise.
	Async *AsyncStep `yaml:"async,omitempty"`

	// Clear empties one log: actions, orphans, promises, blocked or all.
	Clear string `yaml:"clear,omitempty"`

	// Settle drives the store's loop until no promise is pending.
	Settle bool `yaml:"settle,omitempty"`
}

// AsyncStep describes the promise an async thunk returns.
type AsyncStep struct {
	// Outcome is resolve or reject.
	Outcome string `yaml:"outcome"`

	// Value is the fulfillment value, or the rejection message.
	Value any `yaml:"value,omitempty"`

	// Dispatch, on fulfillment, dispatches Value as an action.
	Dispatch bool `yaml:"dispatch,omitempty"`
}

// Assertion validates recordings or final state.
type Assertion struct {
	// Type selects the check; see the Assert* constants.
	Type string `yaml:"type"`

	// Criteria for has_* and not_has_* assertions.
	Criteria []any `yaml:"criteria,omitempty"`

	// Log names the recording for count and log_equals.
	Log string `yaml:"log,omitempty"`

	// Count is the exact expected length of Log.
	Count *int `yaml:"count,omitempty"`

	// Expect is the expected log (log_equals) or state (final_state).
	Expect any `yaml:"expect,omitempty"`

	// Path narrows final_state to a dotted path.
	Path string `yaml:"path,omitempty"`

	// Promise view sizes (promises). Nil fields are not checked.
	Total    *int `yaml:"total,omitempty"`
	Pending  *int `yaml:"pending,omitempty"`
	Resolved *int `yaml:"resolved,omitempty"`
	Rejected *int `yaml:"rejected,omitempty"`
}

// Assertion type constants.
const (
	AssertHasActions    = "has_actions"
	AssertHasBlocked    = "has_blocked"
	AssertHasOrphans    = "has_orphans"
	AssertNotHasActions = "not_has_actions"
	AssertNotHasBlocked = "not_has_blocked"
	AssertNotHasOrphans = "not_has_orphans"
	AssertCount         = "count"
	AssertLogEquals     = "log_equals"
	AssertPromises      = "promises"
	AssertFinalState    = "final_state"
)

// Reducer op constants.
const (
	OpSet       = "set"
	OpAppend    = "append"
	OpIncrement = "increment"
	OpDecrement = "decrement"
	OpReplace   = "replace"
	OpReset     = "reset"
)

// MiddlewareThunk is the only named caller middleware.
const MiddlewareThunk = "thunk"

var clearTargets = []string{"actions", "orphans", "promises", "blocked", "all"}

// LoadScenario reads, schema-checks and parses a scenario YAML file.
// Returns an error if the file doesn't exist, violates the schema, contains
// unknown fields, or fails semantic validation.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(filepath.Base(path), data)
}

// ParseScenario is LoadScenario for in-memory YAML.
func ParseScenario(filename string, data []byte) (*Scenario, error) {
	if err := ValidateSchema(filename, data); err != nil {
		return nil, err
	}

	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadDir loads every *.yaml and *.yml scenario in dir, sorted by file name.
func LoadDir(dir string) ([]*Scenario, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", pattern, err)
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	seen := make(map[string]string)
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		if prev, dup := seen[s.Name]; dup {
			return nil, fmt.Errorf("%s: scenario name %q already used by %s", p, s.Name, prev)
		}
		seen[s.Name] = p
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks what the schema cannot: cross-field rules and
// scenarios built in Go rather than parsed.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	if s.InitialState != nil {
		if _, ok := s.InitialState.(map[string]any); !ok {
			return fmt.Errorf("initial_state must be a map, got %T", s.InitialState)
		}
	}

	for typ, rule := range s.Reducer {
		if err := validateRule(typ, rule); err != nil {
			return err
		}
	}

	for i, mw := range s.Middlewares {
		if mw != MiddlewareThunk {
			return fmt.Errorf("middlewares[%d]: unknown middleware %q", i, mw)
		}
	}

	for i, step := range s.Flow {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateRule(typ string, r ReducerRule) error {
	switch r.Op {
	case OpSet, OpAppend, OpIncrement, OpDecrement:
		if r.Path == "" {
			return fmt.Errorf("reducer[%s]: path is required for %s", typ, r.Op)
		}
	case OpReplace, OpReset:
	default:
		return fmt.Errorf("reducer[%s]: unknown op %q", typ, r.Op)
	}
	return nil
}

func validateStep(i int, step FlowStep) error {
	kinds := 0
	if step.Dispatch != nil {
		kinds++
	}
	if step.Async != nil {
		kinds++
		if step.Async.Outcome != "resolve" && step.Async.Outcome != "reject" {
			return fmt.Errorf("flow[%d].async: outcome must be resolve or reject", i)
		}
	}
	if step.Clear != "" {
		kinds++
		if !slices.Contains(clearTargets, step.Clear) {
			return fmt.Errorf("flow[%d]: unknown clear target %q", i, step.Clear)
		}
	}
	if step.Settle {
		kinds++
	}

	if kinds != 1 {
		return fmt.Errorf("flow[%d]: exactly one of dispatch, async, clear, settle is required", i)
	}
	if step.ExpectError != "" && step.Dispatch == nil && step.Async == nil {
		return fmt.Errorf("flow[%d]: expect_error only applies to dispatch and async", i)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertHasActions, AssertHasBlocked, AssertHasOrphans,
		AssertNotHasActions, AssertNotHasBlocked, AssertNotHasOrphans:
		if len(a.Criteria) == 0 {
			return fmt.Errorf("assertions[%d]: criteria is required for %s", index, a.Type)
		}
	case AssertCount:
		if a.Log == "" {
			return fmt.Errorf("assertions[%d]: log is required for count", index)
		}
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for count", index)
		}
	case AssertLogEquals:
		if a.Log == "" {
			return fmt.Errorf("assertions[%d]: log is required for log_equals", index)
		}
	case AssertPromises:
		if a.Total == nil && a.Pending == nil && a.Resolved == nil && a.Rejected == nil {
			return fmt.Errorf("assertions[%d]: promises needs at least one of total, pending, resolved, rejected", index)
		}
	case AssertFinalState:
		if a.Expect == nil {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
