package landing

import (
	"context"
	"strings"
	"sync"

	"github.com/stretchr/testify/mock"
)

// MockGateway implements AuthGateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	args := m.Called(ctx, email, password)
	session, _ := args.Get(0).(*Session)
	return session, args.Error(1)
}

func (m *MockGateway) SignUp(ctx context.Context, email, password string, meta SignUpMetadata) error {
	args := m.Called(ctx, email, password, meta)
	return args.Error(0)
}

func (m *MockGateway) ResendVerificationEmail(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

// memoryResendStore implements ResendStore in memory
type memoryResendStore struct {
	mu      sync.Mutex
	records map[string]ResendRecord
	err     error
}

func newMemoryResendStore() *memoryResendStore {
	return &memoryResendStore{records: map[string]ResendRecord{}}
}

func (s *memoryResendStore) LastSent(ctx context.Context, email string) (*ResendRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	record, ok := s.records[strings.ToLower(email)]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

func (s *memoryResendStore) MarkSent(ctx context.Context, record *ResendRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.records[record.Email] = *record
	return nil
}
