package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/USSTM/facility-portal/internal/session"
	"github.com/stretchr/testify/mock"
)

// MockSessionStore is a mock implementation of session.Store
type MockSessionStore struct {
	mock.Mock
}

// NewMockSessionStore creates a new mock session store
func NewMockSessionStore(t *testing.T) *MockSessionStore {
	m := &MockSessionStore{}
	m.Test(t)
	return m
}

func (m *MockSessionStore) Get(ctx context.Context, id string) (*session.Session, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*session.Session)
	return s, args.Error(1)
}

func (m *MockSessionStore) Put(ctx context.Context, id string, s *session.Session, ttl time.Duration) error {
	args := m.Called(ctx, id, s, ttl)
	return args.Error(0)
}

func (m *MockSessionStore) Clear(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// ExpectGet sets up expectation for Get
func (m *MockSessionStore) ExpectGet(id string, s *session.Session, err error) *mock.Call {
	return m.On("Get", mock.Anything, id).Return(s, err)
}

// ExpectClear sets up expectation for Clear
func (m *MockSessionStore) ExpectClear(id string, err error) *mock.Call {
	return m.On("Clear", mock.Anything, id).Return(err)
}
