package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"farmshare-backend/internal/domain"

	"github.com/google/uuid"
)

type userRepository struct{ *view }

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	st, done, err := r.enter("users.GetByID")
	if err != nil {
		return nil, err
	}
	defer done()
	u, ok := st.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (r *userRepository) RecordRating(ctx context.Context, id uuid.UUID, rating int) error {
	st, done, err := r.enter("users.RecordRating")
	if err != nil {
		return err
	}
	defer done()
	u, ok := st.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.Rating = domain.NextAverage(u.Rating, u.TotalRatings, rating)
	u.TotalRatings++
	st.users[id] = u
	return nil
}

type tractorRepository struct{ *view }

func (r *tractorRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tractor, error) {
	st, done, err := r.enter("tractors.GetByID")
	if err != nil {
		return nil, err
	}
	defer done()
	t, ok := st.tractors[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

func (r *tractorRepository) RecordRating(ctx context.Context, id uuid.UUID, rating int) error {
	st, done, err := r.enter("tractors.RecordRating")
	if err != nil {
		return err
	}
	defer done()
	t, ok := st.tractors[id]
	if !ok {
		return domain.ErrNotFound
	}
	t.Rating = domain.NextAverage(t.Rating, t.TotalRatings, rating)
	t.TotalRatings++
	st.tractors[id] = t
	return nil
}

func (r *tractorRepository) IncrementBookings(ctx context.Context, id uuid.UUID) error {
	st, done, err := r.enter("tractors.IncrementBookings")
	if err != nil {
		return err
	}
	defer done()
	t, ok := st.tractors[id]
	if !ok {
		return domain.ErrNotFound
	}
	t.TotalBookings++
	st.tractors[id] = t
	return nil
}

type bookingRepository struct{ *view }

func overlapsActive(st *state, tractorID uuid.UUID, start, end time.Time, skip uuid.UUID) bool {
	for id, b := range st.bookings {
		if id == skip || b.TractorID != tractorID || !b.Status.IsActive() {
			continue
		}
		if domain.Overlaps(b.StartTime, b.EndTime, start, end) {
			return true
		}
	}
	return false
}

func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	st, done, err := r.enter("bookings.Create")
	if err != nil {
		return err
	}
	defer done()
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if _, exists := st.bookings[b.ID]; exists {
		return fmt.Errorf("%w: booking %s exists", domain.ErrAlreadyProcessed, b.ID)
	}
	// mirrors the exclusion constraint on active windows
	if b.Status.IsActive() && overlapsActive(st, b.TractorID, b.StartTime, b.EndTime, b.ID) {
		return domain.ErrConflict
	}
	now := time.Now().UTC()
	b.CreatedAt, b.UpdatedAt = now, now
	st.bookings[b.ID] = *b
	st.bookingOrder = append(st.bookingOrder, b.ID)
	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id uuid.UUID, proj domain.BookingProjection) (*domain.Booking, error) {
	st, done, err := r.enter("bookings.GetByID")
	if err != nil {
		return nil, err
	}
	defer done()
	b, ok := st.bookings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if !proj.IncludeOTPs {
		return b.WithoutSecrets(), nil
	}
	return &b, nil
}

func (r *bookingRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	return r.GetByID(ctx, id, domain.ProjectionWithOTPs)
}

func (r *bookingRepository) Update(ctx context.Context, b *domain.Booking) error {
	st, done, err := r.enter("bookings.Update")
	if err != nil {
		return err
	}
	defer done()
	cur, ok := st.bookings[b.ID]
	if !ok {
		return domain.ErrNotFound
	}
	// only mutable columns are written, like the SQL UPDATE
	cur.Status = b.Status
	cur.PaymentStatus = b.PaymentStatus
	cur.ActualStartTime = b.ActualStartTime
	cur.ActualEndTime = b.ActualEndTime
	cur.CancellationReason = b.CancellationReason
	cur.CancelledBy = b.CancelledBy
	cur.CancelledAt = b.CancelledAt
	cur.Ratings = b.Ratings
	cur.UpdatedAt = time.Now().UTC()
	b.UpdatedAt = cur.UpdatedAt
	st.bookings[b.ID] = cur
	return nil
}

func (r *bookingRepository) LockTractorSchedule(ctx context.Context, tractorID uuid.UUID) error {
	_, done, err := r.enter("bookings.LockTractorSchedule")
	if err != nil {
		return err
	}
	done()
	return nil
}

func (r *bookingRepository) HasActiveOverlap(ctx context.Context, tractorID uuid.UUID, start, end time.Time) (bool, error) {
	st, done, err := r.enter("bookings.HasActiveOverlap")
	if err != nil {
		return false, err
	}
	defer done()
	return overlapsActive(st, tractorID, start, end, uuid.Nil), nil
}

func (r *bookingRepository) ListByUser(ctx context.Context, userID uuid.UUID, filter domain.BookingFilter) ([]domain.Booking, int32, error) {
	st, done, err := r.enter("bookings.ListByUser")
	if err != nil {
		return nil, 0, err
	}
	defer done()

	var matched []domain.Booking
	for i := len(st.bookingOrder) - 1; i >= 0; i-- {
		b := st.bookings[st.bookingOrder[i]]
		switch filter.Role {
		case domain.BookingRoleRenter:
			if b.RenterID != userID {
				continue
			}
		case domain.BookingRoleOwner:
			if b.OwnerID != userID {
				continue
			}
		default:
			if !b.IsParty(userID) {
				continue
			}
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		matched = append(matched, *b.WithoutSecrets())
	}

	page, pageSize := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	count := int32(len(matched))
	from := (page - 1) * pageSize
	if from >= count {
		return nil, count, nil
	}
	to := from + pageSize
	if to > count {
		to = count
	}
	return matched[from:to], count, nil
}

func (r *bookingRepository) ListPendingSettlement(ctx context.Context, limit int32) ([]domain.Booking, error) {
	st, done, err := r.enter("bookings.ListPendingSettlement")
	if err != nil {
		return nil, err
	}
	defer done()

	var out []domain.Booking
	for _, id := range st.bookingOrder {
		b := st.bookings[id]
		stuck := (b.Status == domain.BookingStatusCompleted && b.PaymentStatus == domain.PaymentStatusHeld) ||
			(b.Status == domain.BookingStatusCancelled && b.PaymentStatus.IsRefundable())
		if stuck {
			out = append(out, *b.WithoutSecrets())
		}
		if int32(len(out)) == limit {
			break
		}
	}
	return out, nil
}

type walletRepository struct{ *view }
func (r *walletRepository) Get(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	st, done, err := r.enter("wallets.Get")
	if err != nil {
		return nil, err
	}
	defer done()
	w, ok := st.wallets[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &w, nil
}

func (r *walletRepository) GetForUpdate(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	st, done, err := r.enter("wallets.GetForUpdate")
	if err != nil {
		return nil, err
	}
	defer done()
	w, ok := st.wallets[userID]
	if !ok {
		now := time.Now().UTC()
		w = domain.Wallet{UserID: userID, CreatedAt: now, UpdatedAt: now}
		st.wallets[userID] = w
	}
	return &w, nil
}

func (r *walletRepository) UpdateBalance(ctx context.Context, userID uuid.UUID, balance int64) error {
	st, done, err := r.enter("wallets.UpdateBalance")
	if err != nil {
		return err
	}
	defer done()
	w, ok := st.wallets[userID]
	if !ok {
		return domain.ErrNotFound
	}
	if balance < 0 {
		return fmt.Errorf("%w: wallet balance cannot go negative", domain.ErrInvalidState)
	}
	w.Balance = balance
	w.UpdatedAt = time.Now().UTC()
	st.wallets[userID] = w
	return nil
}

type paymentRepository struct{ *view }

func (r *paymentRepository) Create(ctx context.Context, p *domain.PaymentRecord) error {
	st, done, err := r.enter("payments.Create")
	if err != nil {
		return err
	}
	defer done()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.GatewayOrderID != "" {
		for _, existing := range st.payments {
			if existing.GatewayOrderID == p.GatewayOrderID {
				return fmt.Errorf("%w: gateway order %s", domain.ErrAlreadyProcessed, p.GatewayOrderID)
			}
		}
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	st.payments = append(st.payments, copyPayment(*p))
	return nil
}

func (r *paymentRepository) GetByGatewayOrderForUpdate(ctx context.Context, orderID string) (*domain.PaymentRecord, error) {
	st, done, err := r.enter("payments.GetByGatewayOrderForUpdate")
	if err != nil {
		return nil, err
	}
	defer done()
	for _, p := range st.payments {
		if p.GatewayOrderID == orderID {
			c := copyPayment(p)
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *paymentRepository) Update(ctx context.Context, p *domain.PaymentRecord) error {
	st, done, err := r.enter("payments.Update")
	if err != nil {
		return err
	}
	defer done()
	for i, cur := range st.payments {
		if cur.ID != p.ID {
			continue
		}
		if cur.Status != domain.PaymentRecordPending && cur.Status != domain.PaymentRecordProcessing {
			return fmt.Errorf("%w: payment %s is no longer pending", domain.ErrAlreadyProcessed, p.ID)
		}
		cur.Status = p.Status
		cur.PreviousBalance = p.PreviousBalance
		cur.NewBalance = p.NewBalance
		cur.GatewayPaymentID = p.GatewayPaymentID
		cur.ErrorMessage = p.ErrorMessage
		cur.FailureReason = p.FailureReason
		cur.Metadata = p.Metadata
		cur.UpdatedAt = time.Now().UTC()
		st.payments[i] = copyPayment(cur)
		return nil
	}
	return domain.ErrNotFound
}

func (r *paymentRepository) ListByUser(ctx context.Context, userID uuid.UUID, filter domain.PaymentFilter) ([]domain.PaymentRecord, error) {
	st, done, err := r.enter("payments.ListByUser")
	if err != nil {
		return nil, err
	}
	defer done()
	var out []domain.PaymentRecord
	for i := len(st.payments) - 1; i >= 0; i-- {
		p := st.payments[i]
		if p.UserID != userID {
			continue
		}
		if filter.Type != "" && p.Type != filter.Type {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		out = append(out, copyPayment(p))
		if filter.Limit > 0 && int32(len(out)) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (r *paymentRepository) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]domain.PaymentRecord, error) {
	st, done, err := r.enter("payments.ListByBooking")
	if err != nil {
		return nil, err
	}
	defer done()
	var out []domain.PaymentRecord
	for _, p := range st.payments {
		if p.BookingID != nil && *p.BookingID == bookingID {
			out = append(out, copyPayment(p))
		}
	}
	return out, nil
}

func (r *paymentRepository) TotalsByType(ctx context.Context, userID uuid.UUID) (map[domain.PaymentType]int64, error) {
	st, done, err := r.enter("payments.TotalsByType")
	if err != nil {
		return nil, err
	}
	defer done()
	totals := make(map[domain.PaymentType]int64)
	for _, p := range st.payments {
		if p.UserID == userID && p.Status == domain.PaymentRecordCompleted {
			totals[p.Type] += p.Amount
		}
	}
	return totals, nil
}

func (r *paymentRepository) ListStalePending(ctx context.Context, olderThan time.Time, limit int32) ([]domain.PaymentRecord, error) {
	st, done, err := r.enter("payments.ListStalePending")
	if err != nil {
		return nil, err
	}
	defer done()
	var out []domain.PaymentRecord
	for _, p := range st.payments {
		if p.Type == domain.PaymentTypeWalletCredit && p.Status == domain.PaymentRecordPending && p.CreatedAt.Before(olderThan) {
			out = append(out, copyPayment(p))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && int32(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

type notificationRepository struct{ *view }

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	st, done, err := r.enter("notifications.Create")
	if err != nil {
		return err
	}
	defer done()
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	n.CreatedAt = time.Now().UTC()
	st.notifications = append(st.notifications, *n)
	return nil
}

func (r *notificationRepository) List(ctx context.Context, userID uuid.UUID, limit, offset int32) ([]domain.Notification, int32, error) {
	st, done, err := r.enter("notifications.List")
	if err != nil {
		return nil, 0, err
	}
	defer done()
	var mine []domain.Notification
	for i := len(st.notifications) - 1; i >= 0; i-- {
		if st.notifications[i].UserID == userID {
			mine = append(mine, st.notifications[i])
		}
	}
	count := int32(len(mine))
	if offset >= count {
		return nil, count, nil
	}
	end := offset + limit
	if limit <= 0 || end > count {
		end = count
	}
	return mine[offset:end], count, nil
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	st, done, err := r.enter("notifications.MarkAsRead")
	if err != nil {
		return err
	}
	defer done()
	for i, n := range st.notifications {
		if n.ID == id && n.UserID == userID {
			st.notifications[i].IsRead = true
			return nil
		}
	}
	return fmt.Errorf("notification %s: %w", id, domain.ErrNotFound)
}
