package pipeline

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockEntityStore is a mock implementation of the EntityStore interface.
type MockEntityStore struct {
	mock.Mock
}

func (m *MockEntityStore) Get(ctx context.Context, id int64) (Entity, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Entity), args.Error(1)
}

func (m *MockEntityStore) ListByIDs(ctx context.Context, ids []int64) ([]Entity, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]Entity), args.Error(1)
}

func (m *MockEntityStore) ListEligible(ctx context.Context, force bool, limit int) ([]Entity, error) {
	args := m.Called(ctx, force, limit)
	return args.Get(0).([]Entity), args.Error(1)
}

func (m *MockEntityStore) SetStatus(ctx context.Context, id int64, status Status) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockEntityStore) SaveSuccess(ctx context.Context, id int64, primaryURL string, score int, logoURL string, at time.Time) error {
	args := m.Called(ctx, id, primaryURL, score, logoURL, at)
	return args.Error(0)
}

func (m *MockEntityStore) MarkFailed(ctx context.Context, id int64, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockEntityStore) ClearImages(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockEntityStore) Stats(ctx context.Context) (map[Status]int, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[Status]int), args.Error(1)
}

// MockObjectStore is a mock implementation of the ObjectStore interface.
type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) Put(ctx context.Context, key string, contentType string, data []byte) (string, error) {
	args := m.Called(ctx, key, contentType, data)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStore) List(ctx context.Context, prefix string) ([]string, error) {
	args := m.Called(ctx, prefix)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockObjectStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// MockPageFetcher is a mock implementation of the PageFetcher interface.
type MockPageFetcher struct {
	mock.Mock
}

func (m *MockPageFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockImageFetcher is a mock implementation of the ImageFetcher interface.
type MockImageFetcher struct {
	mock.Mock
}

func (m *MockImageFetcher) Download(ctx context.Context, url string) ([]byte, string, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}

// MockPublisher is a mock implementation of the Publisher interface.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, payload any) (string, error) {
	args := m.Called(ctx, topic, payload)
	return args.String(0), args.Error(1)
}

// fixedClock returns a constant time for deterministic assertions.
type fixedClock struct {
	at time.Time
}

func (c fixedClock) Now() time.Time {
	return c.at
}
