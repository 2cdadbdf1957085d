package testkit

import (
	"context"
	"errors"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/diybuddy/projectbuddy/pkg/slot"
)

// SlotMock is a slot.Store that delegates to a real store until a call is
// armed to fail. Armed calls go through testify/mock, so tests can assert
// them with AssertExpectations.
//
//	store := testkit.NewSlotMock(slot.NewMemory())
//	store.Fail("put", errors.New("disk full"))
type SlotMock struct {
	mock.Mock

	inner slot.Store
	mu    sync.Mutex
	armed map[string]int
}

// NewSlotMock wraps inner.
func NewSlotMock(inner slot.Store) *SlotMock {
	return &SlotMock{inner: inner, armed: map[string]int{}}
}

var opMethods = map[string]string{"get": "Get", "put": "Put", "forget": "Forget"}

// Fail makes the next call of op ("get", "put" or "forget") return err.
func (m *SlotMock) Fail(op string, err error) {
	method, ok := opMethods[op]
	if !ok {
		panic("testkit: unknown slot op " + op)
	}
	m.mu.Lock()
	m.armed[op]++
	m.mu.Unlock()
	m.On(method, mock.AnythingOfType("string")).Return(err).Once()
}

// Reset disarms pending failures and clears the call history.
func (m *SlotMock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.armed = map[string]int{}
	m.ExpectedCalls = nil
	m.Calls = nil
}

// Pending reports how many armed failures have not fired yet.
func (m *SlotMock) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.armed {
		n += c
	}
	return n
}

func (m *SlotMock) take(op string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.armed[op] == 0 {
		return false
	}
	m.armed[op]--
	return true
}

func (m *SlotMock) failure(method, key string) error {
	err := m.MethodCalled(method, key).Error(0)
	if err == nil {
		err = errors.New("testkit: armed slot failure")
	}
	return err
}

func (m *SlotMock) Name() string { return "mock(" + m.inner.Name() + ")" }

func (m *SlotMock) Get(ctx context.Context, key string) ([]byte, error) {
	if m.take("get") {
		return nil, m.failure("Get", key)
	}
	return m.inner.Get(ctx, key)
}

func (m *SlotMock) Put(ctx context.Context, key string, value []byte) error {
	if m.take("put") {
		return m.failure("Put", key)
	}
	return m.inner.Put(ctx, key, value)
}

func (m *SlotMock) Forget(ctx context.Context, key string) error {
	if m.take("forget") {
		return m.failure("Forget", key)
	}
	return m.inner.Forget(ctx, key)
}
