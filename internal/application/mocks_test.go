package application

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/sanosuguru/go-slot-booking/internal/domain/event"
	"github.com/sanosuguru/go-slot-booking/internal/domain/slot"
	"github.com/sanosuguru/go-slot-booking/internal/domain/transaction"
	"github.com/sanosuguru/go-slot-booking/internal/notification"
)

// === Mock implementations ===

// MockTxManager implements transaction.Manager
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) Begin(ctx context.Context) (transaction.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(transaction.Tx), args.Error(1)
}

// MockTx implements transaction.Tx
type MockTx struct {
	mock.Mock
}

func (m *MockTx) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTx) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

// MockSlotRepository implements slot.Repository
type MockSlotRepository struct {
	mock.Mock
}

func (m *MockSlotRepository) CreateBulk(ctx context.Context, tx transaction.Tx, slots []*slot.Slot) error {
	args := m.Called(ctx, tx, slots)
	return args.Error(0)
}

func (m *MockSlotRepository) GetByID(ctx context.Context, id string) (*slot.Slot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*slot.Slot), args.Error(1)
}

func (m *MockSlotRepository) GetByEventAndStartTime(ctx context.Context, eventID string, startTime time.Time) (*slot.Slot, error) {
	args := m.Called(ctx, eventID, startTime)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*slot.Slot), args.Error(1)
}

func (m *MockSlotRepository) GetByEventID(ctx context.Context, eventID string) ([]*slot.Slot, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*slot.Slot), args.Error(1)
}

func (m *MockSlotRepository) GetAvailableByEventID(ctx context.Context, eventID string) ([]*slot.Slot, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*slot.Slot), args.Error(1)
}

func (m *MockSlotRepository) GetByBookedEmail(ctx context.Context, email string) ([]*slot.Slot, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*slot.Slot), args.Error(1)
}

func (m *MockSlotRepository) CountBookedByEventID(ctx context.Context, eventID string) (int, error) {
	args := m.Called(ctx, eventID)
	return args.Int(0), args.Error(1)
}

func (m *MockSlotRepository) Update(ctx context.Context, tx transaction.Tx, s *slot.Slot) error {
	args := m.Called(ctx, tx, s)
	return args.Error(0)
}

// MockEventRepository implements event.Repository
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) Create(ctx context.Context, tx transaction.Tx, e *event.Event) error {
	args := m.Called(ctx, tx, e)
	return args.Error(0)
}

func (m *MockEventRepository) GetByID(ctx context.Context, id string) (*event.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.Event), args.Error(1)
}

func (m *MockEventRepository) GetByShareableID(ctx context.Context, shareableID string) (*event.Event, error) {
	args := m.Called(ctx, shareableID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.Event), args.Error(1)
}

func (m *MockEventRepository) ListByHostID(ctx context.Context, hostID string, limit, offset int) ([]*event.Event, error) {
	args := m.Called(ctx, hostID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*event.Event), args.Error(1)
}

func (m *MockEventRepository) Delete(ctx context.Context, tx transaction.Tx, id string) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

// MockPublisher implements notification.Publisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishBookingConfirmed(ctx context.Context, p notification.BookingConfirmedPayload) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPublisher) PublishBookingCancelled(ctx context.Context, p notification.BookingCancelledPayload) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPublisher) PublishEventCancelled(ctx context.Context, p notification.EventCancelledPayload) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

// === In-memory versioned repository for concurrency tests ===

// noopTx はコミット・ロールバックを何もしないトランザクション
type noopTx struct{}

func (noopTx) Commit() error   { return nil }
func (noopTx) Rollback() error { return nil }

// noopTxManager はインメモリリポジトリ用のトランザクションマネージャ
type noopTxManager struct{}

func (noopTxManager) Begin(ctx context.Context) (transaction.Tx, error) { return noopTx{}, nil }

// memorySlotRepo は楽観的ロックの競合検出を再現するインメモリ実装
type memorySlotRepo struct {
	mu    sync.Mutex
	slots map[string]*slot.Slot
}

func newMemorySlotRepo(slots ...*slot.Slot) *memorySlotRepo {
	r := &memorySlotRepo{slots: make(map[string]*slot.Slot)}
	for _, s := range slots {
		copied := *s
		r.slots[s.ID] = &copied
	}
	return r
}

func (r *memorySlotRepo) CreateBulk(ctx context.Context, tx transaction.Tx, slots []*slot.Slot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range slots {
		copied := *s
		r.slots[s.ID] = &copied
	}
	return nil
}

func (r *memorySlotRepo) GetByID(ctx context.Context, id string) (*slot.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[id]
	if !ok {
		return nil, slot.ErrSlotNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *memorySlotRepo) GetByEventAndStartTime(ctx context.Context, eventID string, startTime time.Time) (*slot.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.slots {
		if s.EventID == eventID && s.StartTime.Equal(startTime) {
			copied := *s
			return &copied, nil
		}
	}
	return nil, slot.ErrSlotNotFound
}

func (r *memorySlotRepo) GetByEventID(ctx context.Context, eventID string) ([]*slot.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*slot.Slot
	for _, s := range r.slots {
		if s.EventID == eventID {
			copied := *s
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memorySlotRepo) GetAvailableByEventID(ctx context.Context, eventID string) ([]*slot.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*slot.Slot
	for _, s := range r.slots {
		if s.EventID == eventID && s.IsAvailable() {
			copied := *s
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memorySlotRepo) GetByBookedEmail(ctx context.Context, email string) ([]*slot.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*slot.Slot
	for _, s := range r.slots {
		if s.IsBookedBy(email) {
			copied := *s
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memorySlotRepo) CountBookedByEventID(ctx context.Context, eventID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, s := range r.slots {
		if s.EventID == eventID && !s.IsAvailable() {
			count++
		}
	}
	return count, nil
}

// Update は読み取り時のバージョンが一致する場合だけ書き込む
func (r *memorySlotRepo) Update(ctx context.Context, tx transaction.Tx, s *slot.Slot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.slots[s.ID]
	if !ok {
		return slot.ErrSlotNotFound
	}
	if current.Version != s.Version {
		return slot.ErrOptimisticLockConflict
	}
	copied := *s
	copied.Version++
	r.slots[s.ID] = &copied
	s.Version++
	return nil
}

var _ slot.Repository = (*MockSlotRepository)(nil)
var _ slot.Repository = (*memorySlotRepo)(nil)
var _ event.Repository = (*MockEventRepository)(nil)
var _ notification.Publisher = (*MockPublisher)(nil)
var _ transaction.Manager = (*MockTxManager)(nil)
var _ transaction.Manager = noopTxManager{}
