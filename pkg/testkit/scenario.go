// Package testkit drives HTTP API tests from JSON scenario files.
//
// A scenario names one request, the status and body it should produce, and
// the basket slot before and after. Scenarios in a directory run in
// file-name order against one handler, so each sees what the previous left
// behind. Request and response bodies sit beside the scenario:
//
//	testdata/
//	  03_create_basket.json      scenario
//	  03_create_basket_res.json  expected body
//
//	func TestAPI(t *testing.T) {
//	    store := testkit.NewSlotMock(slot.NewMemory())
//	    testkit.RunDir(t, buildHandler(store), "testdata", testkit.WithSlot(store, "projectBasket"))
//	}
package testkit

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Scenario is one request and its expectations.
type Scenario struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	RequestMethod   string            `json:"requestMethod"`
	RequestURL      string            `json:"requestUrl"`
	RequestFileName string            `json:"requestFileName"`
	RequestBody     json.RawMessage   `json:"requestBody"` // used when requestFileName is empty
	Headers         map[string]string `json:"headers"`

	ResponseFileName   string `json:"responseFileName"`
	ExpectedCode       int    `json:"expectedCode"`
	ExpectedStatusCode int    `json:"expectedStatusCode"` // alias of expectedCode

	// IgnoreFields are dot paths dropped from both bodies before comparing,
	// e.g. "data.receipt.orderRef".
	IgnoreFields []string `json:"ignoreFields"`

	SeedSlot          json.RawMessage `json:"seedSlot"`
	ExpectSlot        json.RawMessage `json:"expectSlot"`
	ExpectSlotMissing bool            `json:"expectSlotMissing"`

	// SlotFailures are armed on the SlotMock for this request only.
	SlotFailures []SlotFailure `json:"slotFailures"`

	dir string
}

// SlotFailure makes the next slot call of Op ("get", "put" or "forget")
// fail with Error.
type SlotFailure struct {
	Op    string `json:"op"`
	Error string `json:"error"`
}

var slotOps = []string{"get", "put", "forget"}

// LoadScenario reads one scenario file. Name, requestUrl and expectedCode
// are required; the method defaults to GET.
func LoadScenario(path string) (*Scenario, error) {
	var s Scenario
	dir, err := readJSON(path, &s)
	if err != nil {
		return nil, err
	}
	s.dir = dir
	s.normalize(0)
	if err := s.check(true); err != nil {
		return nil, fmt.Errorf("testkit: invalid scenario %q: %w", path, err)
	}
	return &s, nil
}

// LoadScenarioArray reads a JSON array of scenarios. URL and method may be
// empty for the suite runner to fill in; expectedCode defaults to 200.
func LoadScenarioArray(path string) ([]*Scenario, error) {
	var scenarios []*Scenario
	dir, err := readJSON(path, &scenarios)
	if err != nil {
		return nil, err
	}
	for i, s := range scenarios {
		s.dir = dir
		s.normalize(http.StatusOK)
		if err := s.check(false); err != nil {
			return nil, fmt.Errorf("testkit: invalid scenario %d in %q: %w", i, path, err)
		}
	}
	return scenarios, nil
}

// LoadAllFromDir loads every scenario in dir in name order, collecting
// per-file errors instead of stopping at the first.
func LoadAllFromDir(dir string) ([]*Scenario, []error) {
	paths, err := scenarioFiles(dir)
	if err != nil {
		return nil, []error{err}
	}
	var (
		out  []*Scenario
		errs []error
	)
	for _, p := range paths {
		if s, err := LoadScenario(p); err != nil {
			errs = append(errs, err)
		} else {
			out = append(out, s)
		}
	}
	return out, errs
}

// RequestBodyPath is "" when the scenario has no request file.
func (s *Scenario) RequestBodyPath() string { return s.resolve(s.RequestFileName) }

// ResponseBodyPath is "" when the scenario has no expected body file.
func (s *Scenario) ResponseBodyPath() string { return s.resolve(s.ResponseFileName) }

func (s *Scenario) resolve(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.dir, name)
}

func (s *Scenario) normalize(defaultCode int) {
	if s.ExpectedCode == 0 {
		s.ExpectedCode = s.ExpectedStatusCode
	}
	if s.ExpectedCode == 0 {
		s.ExpectedCode = defaultCode
	}
}

// check reports every problem at once. standalone scenarios must carry
// their own URL and status.
func (s *Scenario) check(standalone bool) error {
	var errs []error
	if s.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if standalone {
		if s.RequestURL == "" {
			errs = append(errs, errors.New("requestUrl is required"))
		}
		if s.ExpectedCode == 0 {
			errs = append(errs, errors.New("expectedCode is required"))
		}
		if s.RequestMethod == "" {
			s.RequestMethod = http.MethodGet
		}
	}
	for i, f := range s.SlotFailures {
		if !slices.Contains(slotOps, f.Op) {
			errs = append(errs, fmt.Errorf("slotFailures[%d].op %q must be one of %s", i, f.Op, strings.Join(slotOps, ", ")))
		}
	}
	if len(s.ExpectSlot) > 0 && s.ExpectSlotMissing {
		errs = append(errs, errors.New("expectSlot and expectSlotMissing are mutually exclusive"))
	}
	return errors.Join(errs...)
}

// readJSON decodes path into v and returns the file's absolute directory.
func readJSON(path string, v any) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("testkit: resolve %q: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return "", fmt.Errorf("testkit: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return "", fmt.Errorf("testkit: parse %q: %w", abs, err)
	}
	return filepath.Dir(abs), nil
}

// scenarioFiles lists dir's scenario files in name order, skipping request
// and response bodies (*_req.json, *_res.json).
func scenarioFiles(dir string) ([]string, error) {
	all, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	out := slices.DeleteFunc(all, func(p string) bool {
		base := filepath.Base(p)
		return strings.HasSuffix(base, "_req.json") || strings.HasSuffix(base, "_res.json")
	})
	if len(out) == 0 {
		return nil, fmt.Errorf("testkit: no scenario files found in %q", dir)
	}
	slices.Sort(out)
	return out, nil
}
