package bootstrap

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diybuddy/projectbuddy/pkg/event"
	"github.com/diybuddy/projectbuddy/pkg/slot"
)

func TestBootWiresServices(t *testing.T) {
	t.Cleanup(event.Flush)

	s, err := Boot(context.Background(), Options{Slot: slot.NewMemory(), Feed: true})
	require.NoError(t, err)
	defer s.Close(context.Background())

	assert.NotNil(t, s.Hub)
	assert.NotNil(t, s.Events)
	assert.Equal(t, "memory", s.Slot.Name())

	h := s.Application().Handler()
	for _, path := range []string{"/api/projects", "/api/basket", "/healthz"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestBootWithoutFeedSkipsNoticeRoute(t *testing.T) {
	t.Cleanup(event.Flush)

	s, err := Boot(context.Background(), Options{Slot: slot.NewMemory()})
	require.NoError(t, err)

	_, ok := s.Application().Router().Path("notices.stream")
	assert.False(t, ok)
}

func TestNoticeReachesSSEFeedThroughKernel(t *testing.T) {
	t.Cleanup(event.Flush)

	s, err := Boot(context.Background(), Options{Slot: slot.NewMemory(), Feed: true})
	require.NoError(t, err)

	srv := httptest.NewServer(s.Application().Handler())
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/sse/notices", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Eventually(t, func() bool { return s.Events.Subscribers() == 1 }, 2*time.Second, 10*time.Millisecond)

	post, err := http.Post(srv.URL+"/api/projects/floating-shelf/basket", "application/json", nil)
	require.NoError(t, err)
	post.Body.Close()
	require.Equal(t, http.StatusCreated, post.StatusCode)

	reader := bufio.NewReader(resp.Body)
	_, err = reader.ReadString('\n') // event: notice
	require.NoError(t, err)
	data, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, data, "Project basket created!")
}
