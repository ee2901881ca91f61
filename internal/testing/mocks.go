package testing

import (
	"context"
	"sync"

	"github.com/aristath/rebalancer/internal/domain"
)

// MockPositionProvider is an in-memory position source keyed by holder
type MockPositionProvider struct {
	mu          sync.RWMutex
	positions   map[string][]domain.Position
	fixedIncome map[string][]domain.FixedIncomeItem
	err         error
}

// NewMockPositionProvider creates a new mock position provider
func NewMockPositionProvider() *MockPositionProvider {
	return &MockPositionProvider{
		positions:   make(map[string][]domain.Position),
		fixedIncome: make(map[string][]domain.FixedIncomeItem),
	}
}

// SetPositions sets the positions to return for a holder
func (m *MockPositionProvider) SetPositions(holderID string, positions []domain.Position) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.positions[holderID] = positions
}

// SetFixedIncome sets the fixed-income items to return for a holder
func (m *MockPositionProvider) SetFixedIncome(holderID string, items []domain.FixedIncomeItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fixedIncome[holderID] = items
}

// SetError sets the error to return
func (m *MockPositionProvider) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// GetPositions returns the holder's positions
func (m *MockPositionProvider) GetPositions(ctx context.Context, holderID string) ([]domain.Position, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	return append([]domain.Position(nil), m.positions[holderID]...), nil
}

// GetFixedIncome returns the holder's fixed-income items
func (m *MockPositionProvider) GetFixedIncome(ctx context.Context, holderID string) ([]domain.FixedIncomeItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	return append([]domain.FixedIncomeItem(nil), m.fixedIncome[holderID]...), nil
}
