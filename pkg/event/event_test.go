package event_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/diybuddy/projectbuddy/pkg/event"
)

const changed event.Name = "basket.changed"

func TestFireReachesListenersInOrder(t *testing.T) {
	t.Cleanup(event.Flush)

	var got []string
	event.Listen(changed, func(p any) { got = append(got, "first:"+p.(string)) })
	event.Listen(changed, func(p any) { got = append(got, "second:"+p.(string)) })

	event.Fire(changed, "x")
	assert.Equal(t, []string{"first:x", "second:x"}, got)
}

func TestPanickingListenerDoesNotStopOthers(t *testing.T) {
	t.Cleanup(event.Flush)

	called := false
	event.Listen(changed, func(any) { panic("boom") })
	event.Listen(changed, func(any) { called = true })

	assert.NotPanics(t, func() { event.Fire(changed, nil) })
	assert.True(t, called)
}

func TestFlush(t *testing.T) {
	called := false
	event.Listen(changed, func(any) { called = true })
	event.Flush()

	event.Fire(changed, nil)
	assert.False(t, called)
}
