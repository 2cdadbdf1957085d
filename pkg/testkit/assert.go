package testkit

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diybuddy/projectbuddy/pkg/slot"
)

// AssertStatusCode checks the response code with testify.
func AssertStatusCode(t *testing.T, scenario *Scenario, got int) {
	t.Helper()
	assert.Equal(t, scenario.ExpectedCode, got,
		"[%s] HTTP status code mismatch", scenario.Name)
}

// AssertJSONBody deep-compares actual response bytes against the expected file
// contents after normalising both through JSON unmarshal (so key order and
// whitespace never matter). Fields named in IgnoreFields are removed from
// both sides first.
func AssertJSONBody(t *testing.T, scenario *Scenario, expected, actual []byte) {
	t.Helper()
	if len(expected) == 0 {
		return
	}

	var expVal, actVal any

	require.NoError(t,
		json.Unmarshal(expected, &expVal),
		"[%s] expected response file is not valid JSON", scenario.Name,
	)

	if !assert.NoError(t,
		json.Unmarshal(actual, &actVal),
		"[%s] actual response is not valid JSON\nbody: %s", scenario.Name, string(actual),
	) {
		return
	}

	for _, path := range scenario.IgnoreFields {
		if !dropField(actVal, path) {
			assert.Fail(t, "ignored field missing", "[%s] %q not present in response", scenario.Name, path)
		}
		dropField(expVal, path)
	}

	assert.Equal(t, expVal, actVal,
		"[%s] response body mismatch", scenario.Name)
}

// AssertSlot compares the slot contents with expectSlot, or checks the slot
// is empty when expectSlotMissing is set.
func AssertSlot(t *testing.T, scenario *Scenario, store slot.Store, key string) {
	t.Helper()

	data, err := store.Get(context.Background(), key)
	if scenario.ExpectSlotMissing {
		assert.True(t, errors.Is(err, slot.ErrMissing),
			"[%s] expected slot %q to be empty, got %s (err %v)", scenario.Name, key, data, err)
		return
	}
	if !assert.NoError(t, err, "[%s] read slot %q", scenario.Name, key) {
		return
	}
	assert.JSONEq(t, string(scenario.ExpectSlot), string(data),
		"[%s] slot contents mismatch", scenario.Name)
}

// AssertFailuresFired fails the test if an armed slot failure was never hit.
func AssertFailuresFired(t *testing.T, scenario *Scenario, sm *SlotMock) {
	t.Helper()
	assert.Zero(t, sm.Pending(), "[%s] armed slot failures did not fire", scenario.Name)
	sm.AssertExpectations(t)
}

// dropField deletes a dot path such as "data.receipt.orderRef" from a
// decoded JSON value. Numeric segments index arrays. Reports whether the
// field existed.
func dropField(v any, path string) bool {
	parts := strings.Split(path, ".")
	for i, part := range parts {
		last := i == len(parts)-1
		switch node := v.(type) {
		case map[string]any:
			next, ok := node[part]
			if !ok {
				return false
			}
			if last {
				delete(node, part)
				return true
			}
			v = next
		case []any:
			idx, ok := index(part, len(node))
			if !ok || last {
				return false
			}
			v = node[idx]
		default:
			return false
		}
	}
	return false
}

func index(s string, n int) (int, bool) {
	i, err := strconv.Atoi(s)
	if err != nil || i < 0 || i >= n {
		return 0, false
	}
	return i, true
}
