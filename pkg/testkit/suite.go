package testkit

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/diybuddy/projectbuddy/pkg/router"
)

// ConfigEntry is one endpoint group in a suite file: a handler mounted at
// ServiceURL and the scenario array that exercises it.
type ConfigEntry struct {
	ServiceName       string `json:"serviceName"`
	FilePath          string `json:"filePath"`
	ScenariosFileName string `json:"scenariosFileName"`
	ServiceURL        string `json:"serviceUrl"`
	HTTPMethodType    string `json:"httpMethodType"`
	WorkflowService   string `json:"workflowService"`
}

// RunSuite runs every entry of the suite file at path as a subtest. Each entry
// gets a fresh router with handlers[entry.WorkflowService] mounted on it;
// scenarios without a URL or method inherit the entry's.
func RunSuite(t *testing.T, path string, handlers map[string]http.HandlerFunc, opts ...Option) {
	t.Helper()

	entries, baseDir := loadSuite(t, path)
	cfg := newRunConfig(opts)

	for _, entry := range entries {
		t.Run(entry.ServiceName, func(t *testing.T) {
			h, ok := handlers[entry.WorkflowService]
			require.Truef(t, ok, "testkit: no handler for %q", entry.WorkflowService)

			url := "/" + strings.TrimPrefix(entry.ServiceURL, "/")
			method := strings.ToUpper(entry.HTTPMethodType)
			r := mount(method, url, entry.WorkflowService, h)

			scenarios, err := LoadScenarioArray(resolveScenarioPath(baseDir, entry))
			require.NoError(t, err)

			for _, s := range scenarios {
				if s.RequestURL == "" {
					s.RequestURL = url
				}
				if s.RequestMethod == "" {
					s.RequestMethod = method
				}
				t.Run(s.Name, func(t *testing.T) { runScenario(t, r, s, cfg) })
			}
		})
	}
}

func loadSuite(t *testing.T, path string) ([]ConfigEntry, string) {
	t.Helper()

	abs, err := filepath.Abs(path)
	require.NoError(t, err)
	data, err := os.ReadFile(abs)
	require.NoErrorf(t, err, "testkit: read suite %q", abs)

	var entries []ConfigEntry
	require.NoErrorf(t, json.Unmarshal(data, &entries), "testkit: parse suite %q", abs)
	return entries, filepath.Dir(abs)
}

func mount(method, url, name string, h http.HandlerFunc) *router.Router {
	r := router.New()
	switch method {
	case http.MethodPost:
		r.Post(url, name, h)
	case http.MethodPut:
		r.Put(url, name, h)
	case http.MethodDelete:
		r.Delete(url, name, h)
	default:
		r.Get(url, name, h)
	}
	return r
}

// resolveScenarioPath prefers a path relative to the suite file and falls
// back to one relative to the working directory.
func resolveScenarioPath(baseDir string, e ConfigEntry) string {
	p := filepath.Join(baseDir, e.FilePath, e.ScenariosFileName)
	if _, err := os.Stat(p); err == nil {
		return p
	}
	return filepath.Join(e.FilePath, e.ScenariosFileName)
}
