// Package testkit — runner.go
//
// Run() executes a single scenario against an http.Handler.
// RunDir() discovers the scenario files of a directory and runs them in
// name order as subtests.
package testkit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/diybuddy/projectbuddy/pkg/slot"
)

// Option configures a run.
type Option func(*runConfig)

type runConfig struct {
	store slot.Store
	key   string
}

// WithSlot gives scenarios access to the basket slot: seedSlot writes to
// it, expectSlot and expectSlotMissing read it, and slotFailures arm it
// when store is a *SlotMock.
func WithSlot(store slot.Store, key string) Option {
	return func(c *runConfig) {
		c.store = store
		c.key = key
	}
}

func newRunConfig(opts []Option) *runConfig {
	c := &runConfig{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ─── Public API ───────────────────────────────────────────────────────────────

// Run executes a single scenario from a JSON file against the provided handler.
//
// Lifecycle per scenario:
//  1. Load the scenario JSON file.
//  2. Seed the slot (if seedSlot is set).
//  3. Arm slot failures on the SlotMock.
//  4. Fire the request against handler using httptest.
//  5. Assert status code.
//  6. Assert response body (JSON diff) against responseFileName (if set).
//  7. Assert slot contents.
//  8. Verify every armed failure fired, then disarm.
func Run(t *testing.T, handler http.Handler, scenarioPath string, opts ...Option) {
	t.Helper()

	s, err := LoadScenario(scenarioPath)
	if err != nil {
		t.Fatalf("testkit: load scenario %q: %v", scenarioPath, err)
	}

	cfg := newRunConfig(opts)
	t.Run(s.Name, func(t *testing.T) {
		runScenario(t, handler, s, cfg)
	})
}

// RunDir runs every scenario file in dir, in name order, as t.Run subtests
// sharing one handler. Files that fail to parse are reported as test
// failures (not fatal).
func RunDir(t *testing.T, handler http.Handler, dir string, opts ...Option) {
	t.Helper()

	paths, err := scenarioFiles(dir)
	if err != nil {
		t.Fatalf("%v", err)
	}

	cfg := newRunConfig(opts)
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			t.Errorf("testkit: load %q: %v", path, err)
			continue
		}

		t.Run(s.Name, func(t *testing.T) {
			runScenario(t, handler, s, cfg)
		})
	}
}

// ─── Internal execution ───────────────────────────────────────────────────────

func runScenario(t *testing.T, handler http.Handler, s *Scenario, cfg *runConfig) {
	t.Helper()
	ctx := context.Background()

	// ── 1. Build request body ─────────────────────────────────────────────

	var reqBody io.Reader
	if p := s.RequestBodyPath(); p != "" {
		data, err := os.ReadFile(p)
		if err != nil {
			t.Fatalf("[%s] read request file %q: %v", s.Name, p, err)
		}
		reqBody = bytes.NewReader(data)
	} else if len(s.RequestBody) > 0 {
		reqBody = bytes.NewReader(s.RequestBody)
	}

	// ── 2. Seed the slot ──────────────────────────────────────────────────

	needsSlot := len(s.SeedSlot) > 0 || len(s.ExpectSlot) > 0 || s.ExpectSlotMissing || len(s.SlotFailures) > 0
	if needsSlot && cfg.store == nil {
		t.Fatalf("[%s] scenario touches the slot but the run has no WithSlot option", s.Name)
	}
	if len(s.SeedSlot) > 0 {
		if err := cfg.store.Put(ctx, cfg.key, s.SeedSlot); err != nil {
			t.Fatalf("[%s] seed slot: %v", s.Name, err)
		}
	}

	// ── 3. Arm slot failures ──────────────────────────────────────────────

	var sm *SlotMock
	if len(s.SlotFailures) > 0 {
		var ok bool
		if sm, ok = cfg.store.(*SlotMock); !ok {
			t.Fatalf("[%s] slotFailures need a *testkit.SlotMock store", s.Name)
		}
		for _, f := range s.SlotFailures {
			sm.Fail(f.Op, errors.New(f.Error))
		}
		defer sm.Reset()
	}

	// ── 4. Fire the request ───────────────────────────────────────────────

	method := strings.ToUpper(s.RequestMethod)
	if method == "" {
		method = http.MethodGet
	}

	req := httptest.NewRequest(method, s.RequestURL, reqBody)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	for k, v := range s.Headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	// ── 5. Assert status code ─────────────────────────────────────────────

	AssertStatusCode(t, s, rec.Code)

	// ── 6. Assert response body ───────────────────────────────────────────

	if p := s.ResponseBodyPath(); p != "" {
		expected, err := os.ReadFile(p)
		if err != nil {
			t.Errorf("[%s] read response file %q: %v", s.Name, p, err)
		} else {
			AssertJSONBody(t, s, expected, rec.Body.Bytes())
		}
	}

	// ── 7. Assert slot contents ───────────────────────────────────────────

	if len(s.ExpectSlot) > 0 || s.ExpectSlotMissing {
		AssertSlot(t, s, cfg.store, cfg.key)
	}

	// ── 8. Verify armed failures fired ────────────────────────────────────

	if sm != nil {
		AssertFailuresFired(t, s, sm)
	}
}

// ─── Debug helpers ────────────────────────────────────────────────────────────

// DumpScenario prints a human-readable summary of the scenario to w.
// Useful during test development to inspect what was loaded.
func DumpScenario(w io.Writer, s *Scenario) {
	fmt.Fprintf(w, "Scenario: %s\n", s.Name)
	fmt.Fprintf(w, "  %s %s → %d\n", s.RequestMethod, s.RequestURL, s.ExpectedCode)
	fmt.Fprintf(w, "  requestFile:  %s\n", s.RequestFileName)
	fmt.Fprintf(w, "  responseFile: %s\n", s.ResponseFileName)
	if len(s.IgnoreFields) > 0 {
		fmt.Fprintf(w, "  ignore: %s\n", strings.Join(s.IgnoreFields, ", "))
	}
	fmt.Fprintf(w, "  seedSlot: %v  expectSlot: %v  expectSlotMissing: %v\n",
		len(s.SeedSlot) > 0, len(s.ExpectSlot) > 0, s.ExpectSlotMissing)
	for i, f := range s.SlotFailures {
		fmt.Fprintf(w, "  slotFailure[%d]: op=%s  error=%q\n", i, f.Op, f.Error)
	}
}
