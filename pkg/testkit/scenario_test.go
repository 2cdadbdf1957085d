// Package testkit_test shows how to drive REST API tests from JSON
// scenario files with testkit.RunDir.
//
// Usage:
//
//  1. Put your scenario JSON files in a testdata/ directory, prefixed so
//     they sort in the order they should run (01_, 02_, …).
//  2. Call testkit.RunDir(t, yourHandler, "testdata", testkit.WithSlot(store, key))
//  3. go test ./... — each scenario becomes a named subtest.
package testkit_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diybuddy/projectbuddy/pkg/slot"
	"github.com/diybuddy/projectbuddy/pkg/testkit"
)

const key = "projectBasket"

// echoSlot serves the raw slot on GET and stores the body on PUT.
func echoSlot(store slot.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodPut:
			body, _ := io.ReadAll(r.Body)
			if err := store.Put(r.Context(), key, body); err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error":"` + err.Error() + `"}`))
				return
			}
			w.WriteHeader(http.StatusNoContent)
		case http.MethodDelete:
			_ = store.Forget(r.Context(), key)
			w.WriteHeader(http.StatusNoContent)
		default:
			data, err := store.Get(r.Context(), key)
			if errors.Is(err, slot.ErrMissing) {
				data = []byte(`[]`)
			}
			_, _ = w.Write([]byte(`{"items":` + string(data) + `,"ref":"generated"}`))
		}
	})
}

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestRunDirSharesState(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "01_put.json", `{
		"name": "put basket",
		"requestMethod": "PUT",
		"requestUrl": "/slot",
		"requestBody": [{"id":"1"}],
		"expectedCode": 204,
		"expectSlot": [{"id":"1"}]
	}`)
	writeFile(t, dir, "02_get.json", `{
		"name": "get basket",
		"requestUrl": "/slot",
		"expectedCode": 200,
		"responseFileName": "02_get_res.json",
		"ignoreFields": ["ref"]
	}`)
	writeFile(t, dir, "02_get_res.json", `{"items":[{"id":"1"}]}`)
	writeFile(t, dir, "03_delete.json", `{
		"name": "delete basket",
		"requestMethod": "DELETE",
		"requestUrl": "/slot",
		"expectedStatusCode": 204,
		"expectSlotMissing": true
	}`)

	store := slot.NewMemory()
	testkit.RunDir(t, echoSlot(store), dir, testkit.WithSlot(store, key))
}

func TestRunSeedsSlot(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "seeded.json", `{
		"name": "seeded",
		"requestUrl": "/slot",
		"seedSlot": [{"id":"9"}],
		"expectedCode": 200,
		"responseFileName": "seeded_res.json",
		"ignoreFields": ["ref"]
	}`)
	writeFile(t, dir, "seeded_res.json", `{"items":[{"id":"9"}]}`)

	store := slot.NewMemory()
	testkit.Run(t, echoSlot(store), filepath.Join(dir, "seeded.json"), testkit.WithSlot(store, key))
}

func TestSlotFailuresAreArmedAndCleared(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "01_fail.json", `{
		"name": "put fails",
		"requestMethod": "PUT",
		"requestUrl": "/slot",
		"requestBody": [],
		"expectedCode": 500,
		"slotFailures": [{"op": "put", "error": "disk full"}]
	}`)
	writeFile(t, dir, "02_recovers.json", `{
		"name": "next put succeeds",
		"requestMethod": "PUT",
		"requestUrl": "/slot",
		"requestBody": [{"id":"2"}],
		"expectedCode": 204,
		"expectSlot": [{"id":"2"}]
	}`)

	store := testkit.NewSlotMock(slot.NewMemory())
	testkit.RunDir(t, echoSlot(store), dir, testkit.WithSlot(store, key))
	assert.Zero(t, store.Pending())
}

func TestSlotMockDelegatesUntilArmed(t *testing.T) {
	ctx := context.Background()
	store := testkit.NewSlotMock(slot.NewMemory())

	require.NoError(t, store.Put(ctx, key, []byte(`[]`)))
	store.Fail("get", errors.New("timeout"))

	_, err := store.Get(ctx, key)
	assert.EqualError(t, err, "timeout")

	data, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))
	store.AssertExpectations(t)
}

func TestLoadScenarioValidation(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad_op.json", `{"name":"x","requestUrl":"/","expectedCode":200,"slotFailures":[{"op":"scan"}]}`)
	writeFile(t, dir, "no_code.json", `{"name":"x","requestUrl":"/"}`)

	_, err := testkit.LoadScenario(filepath.Join(dir, "bad_op.json"))
	assert.ErrorContains(t, err, "slotFailures[0].op")

	_, err = testkit.LoadScenario(filepath.Join(dir, "no_code.json"))
	assert.ErrorContains(t, err, "expectedCode is required")
}

func TestLoadAllFromDirSkipsBodies(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.json", `{"name":"b","requestUrl":"/","expectedCode":200}`)
	writeFile(t, dir, "a.json", `{"name":"a","requestUrl":"/","expectedCode":200}`)
	writeFile(t, dir, "a_req.json", `{}`)
	writeFile(t, dir, "a_res.json", `{}`)

	scenarios, errs := testkit.LoadAllFromDir(dir)
	assert.Empty(t, errs)
	require.Len(t, scenarios, 2)
	assert.Equal(t, "a", scenarios[0].Name)
	assert.Equal(t, "b", scenarios[1].Name)
}

func TestAssertJSONBody(t *testing.T) {
	s := &testkit.Scenario{Name: "json assert test", ExpectedCode: 200, IgnoreFields: []string{"data.items.0.ref"}}

	expected := []byte(`{"data":{"items":[{"id":"1"}]}}`)
	actual := []byte(`{"data": {"items": [{"ref": "abc", "id": "1"}]}}`)
	testkit.AssertJSONBody(t, s, expected, actual)
}

func TestDumpScenario(t *testing.T) {
	var buf bytes.Buffer
	testkit.DumpScenario(&buf, &testkit.Scenario{
		Name:          "dump",
		RequestMethod: "GET",
		RequestURL:    "/api/basket",
		ExpectedCode:  200,
		SlotFailures:  []testkit.SlotFailure{{Op: "get", Error: "down"}},
	})
	assert.Contains(t, buf.String(), "GET /api/basket → 200")
	assert.Contains(t, buf.String(), `op=get  error="down"`)
}
