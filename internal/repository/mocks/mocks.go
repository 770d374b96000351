package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/snapstudio/server/internal/domain/booking"
	"github.com/snapstudio/server/internal/domain/session"
)

// SessionRepository is a mock for session.Repository.
type SessionRepository struct {
	mock.Mock
}

func (m *SessionRepository) Save(ctx context.Context, sess *session.Session) error {
	args := m.Called(ctx, sess)
	return args.Error(0)
}

func (m *SessionRepository) Get(ctx context.Context, id string) (*session.Session, error) {
	args := m.Called(ctx, id)
	if sess, ok := args.Get(0).(*session.Session); ok {
		return sess, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SessionRepository) List(ctx context.Context) ([]session.Session, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]session.Session); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SessionRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *SessionRepository) FindActive(ctx context.Context) (*session.Session, error) {
	args := m.Called(ctx)
	if sess, ok := args.Get(0).(*session.Session); ok {
		return sess, args.Error(1)
	}
	return nil, args.Error(1)
}

// BookingRepository is a mock for booking.Repository.
type BookingRepository struct {
	mock.Mock
}

func (m *BookingRepository) Save(ctx context.Context, b *booking.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *BookingRepository) Get(ctx context.Context, id string) (*booking.Booking, error) {
	args := m.Called(ctx, id)
	if b, ok := args.Get(0).(*booking.Booking); ok {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *BookingRepository) List(ctx context.Context) ([]booking.Booking, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]booking.Booking); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *BookingRepository) FindActive(ctx context.Context) (*booking.Booking, error) {
	args := m.Called(ctx)
	if b, ok := args.Get(0).(*booking.Booking); ok {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

// SessionFileStore is a mock for session.FileStore.
type SessionFileStore struct {
	mock.Mock
}

func (m *SessionFileStore) CopyIntoSession(sessionID, sourcePath, filename string) (string, error) {
	args := m.Called(sessionID, sourcePath, filename)
	return args.String(0), args.Error(1)
}

func (m *SessionFileStore) EnsureSessionDir(sessionID string) error {
	args := m.Called(sessionID)
	return args.Error(0)
}
