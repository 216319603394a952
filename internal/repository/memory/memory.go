// Package memory is an in-process Store with the same transactional
// semantics as the Postgres store. Transactions are serialized by a single
// mutex and applied by swapping in a modified copy of the state.
package memory

import (
	"context"
	"sync"

	"farmshare-backend/internal/domain"
	"farmshare-backend/internal/repository"

	"github.com/google/uuid"
)

// FaultFunc is consulted before every repository call; a non-nil error aborts it.
type FaultFunc func(op string) error

type state struct {
	users         map[uuid.UUID]domain.User
	tractors      map[uuid.UUID]domain.Tractor
	bookings      map[uuid.UUID]domain.Booking
	bookingOrder  []uuid.UUID
	wallets       map[uuid.UUID]domain.Wallet
	payments      []domain.PaymentRecord
	notifications []domain.Notification
}

func newState() *state {
	return &state{
		users:    make(map[uuid.UUID]domain.User),
		tractors: make(map[uuid.UUID]domain.Tractor),
		bookings: make(map[uuid.UUID]domain.Booking),
		wallets:  make(map[uuid.UUID]domain.Wallet),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.tractors {
		c.tractors[k] = v
	}
	for k, v := range s.bookings {
		c.bookings[k] = v
	}
	for k, v := range s.wallets {
		c.wallets[k] = v
	}
	c.bookingOrder = append([]uuid.UUID(nil), s.bookingOrder...)
	c.payments = make([]domain.PaymentRecord, len(s.payments))
	for i, p := range s.payments {
		c.payments[i] = copyPayment(p)
	}
	c.notifications = append([]domain.Notification(nil), s.notifications...)
	return c
}

type Store struct {
	mu    sync.Mutex
	state *state
	fault FaultFunc
}

func NewStore() *Store {
	return &Store{state: newState()}
}

// InjectFault installs fn for subsequent calls; nil clears it.
func (s *Store) InjectFault(fn FaultFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fault = fn
}

func (s *Store) Repos() repository.Repositories {
	return s.repositories(func() *state { return s.state }, &s.mu)
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	working := s.state.clone()
	if err := fn(ctx, s.repositories(func() *state { return working }, noopLocker{})); err != nil {
		return err
	}
	s.state = working
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) repositories(st func() *state, l sync.Locker) repository.Repositories {
	v := &view{st: st, lock: l, store: s}
	return repository.Repositories{
		Users:         &userRepository{v},
		Tractors:      &tractorRepository{v},
		Bookings:      &bookingRepository{v},
		Wallets:       &walletRepository{v},
		Payments:      &paymentRepository{v},
		Notifications: &notificationRepository{v},
	}
}

// view binds repositories to either the live state or a transaction's copy.
type view struct {
	st    func() *state
	lock  sync.Locker
	store *Store
}

// enter locks the view and checks for an injected fault.
func (v *view) enter(op string) (*state, func(), error) {
	v.lock.Lock()
	if f := v.store.fault; f != nil {
		if err := f(op); err != nil {
			v.lock.Unlock()
			return nil, nil, err
		}
	}
	return v.st(), v.lock.Unlock, nil
}

type noopLocker struct{}

func (noopLocker) Lock()   {}
func (noopLocker) Unlock() {}

// Seeding helpers for tests and local runs.

func (s *Store) AddUser(u domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.users[u.ID] = u
}

func (s *Store) AddTractor(t domain.Tractor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.tractors[t.ID] = t
}

func (s *Store) SetBalance(userID uuid.UUID, balance int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w := s.state.wallets[userID]
	w.UserID = userID
	w.Balance = balance
	s.state.wallets[userID] = w
}

// TotalBalance sums every wallet, for conservation checks.
func (s *Store) TotalBalance() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	for _, w := range s.state.wallets {
		total += w.Balance
	}
	return total
}

// Payments returns a snapshot of every payment record in insertion order.
func (s *Store) Payments() []domain.PaymentRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.PaymentRecord, len(s.state.payments))
	for i, p := range s.state.payments {
		out[i] = copyPayment(p)
	}
	return out
}

func copyPayment(p domain.PaymentRecord) domain.PaymentRecord {
	if p.Metadata != nil {
		m := make(map[string]string, len(p.Metadata))
		for k, v := range p.Metadata {
			m[k] = v
		}
		p.Metadata = m
	}
	if p.BookingID != nil {
		id := *p.BookingID
		p.BookingID = &id
	}
	return p
}
