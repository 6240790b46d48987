package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/wandertrip/tour_booking/internal/model"
	"github.com/wandertrip/tour_booking/internal/repository/base"
)

// In-memory фейки хранилищ для тестов сервисов. Транзакционность не
// эмулируется: фейковый Tx только считает коммиты и откаты.

type fakeTx struct {
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (t *fakeTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (t *fakeTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

type fakeDB struct {
	txs []*fakeTx
}

func (d *fakeDB) Begin(ctx context.Context) (Tx, error) {
	tx := &fakeTx{}
	d.txs = append(d.txs, tx)
	return tx, nil
}

type fakeUserStore struct {
	users map[int64]*model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[int64]*model.User)}
}

func (s *fakeUserStore) GetByID(ctx context.Context, id int64) (*model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (s *fakeUserStore) AddPoints(ctx context.Context, q base.Queryer, userID int64, delta int) (int, error) {
	u, ok := s.users[userID]
	if !ok {
		return 0, errors.New("user not found")
	}
	u.LoyaltyPoints += delta
	return u.LoyaltyPoints, nil
}

func (s *fakeUserStore) DeductPoints(ctx context.Context, q base.Queryer, userID int64, points int) (bool, error) {
	u, ok := s.users[userID]
	if !ok || u.LoyaltyPoints < points {
		return false, nil
	}
	u.LoyaltyPoints -= points
	return true, nil
}

func (s *fakeUserStore) DeductPointsClamped(ctx context.Context, q base.Queryer, userID int64, points int) (int, error) {
	u, ok := s.users[userID]
	if !ok {
		return 0, nil
	}
	if points > u.LoyaltyPoints {
		points = u.LoyaltyPoints
	}
	u.LoyaltyPoints -= points
	return points, nil
}

func (s *fakeUserStore) UpdateTier(ctx context.Context, q base.Queryer, userID int64, tier model.MemberTier) error {
	u, ok := s.users[userID]
	if !ok {
		return errors.New("user not found")
	}
	if u.MemberTier != tier {
		u.MemberTier = tier
		now := time.Now()
		u.LastTierUpdateAt = &now
	}
	return nil
}

type fakeTourStore struct {
	tours map[int64]*model.Tour
}

func newFakeTourStore() *fakeTourStore {
	return &fakeTourStore{tours: make(map[int64]*model.Tour)}
}

func (s *fakeTourStore) GetByID(ctx context.Context, id int64) (*model.Tour, error) {
	t, ok := s.tours[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

type fakeBookingStore struct {
	nextID   int64
	bookings map[int64]*model.Booking
	guests   map[int64][]*model.BookingGuest
	taken    map[string]bool // коды, занятые вне хранилища
}

func newFakeBookingStore() *fakeBookingStore {
	return &fakeBookingStore{
		bookings: make(map[int64]*model.Booking),
		guests:   make(map[int64][]*model.BookingGuest),
		taken:    make(map[string]bool),
	}
}

func (s *fakeBookingStore) Create(ctx context.Context, q base.Queryer, booking *model.Booking) error {
	s.nextID++
	booking.ID = s.nextID
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = booking.CreatedAt
	cp := *booking
	s.bookings[booking.ID] = &cp
	return nil
}

func (s *fakeBookingStore) Update(ctx context.Context, q base.Queryer, booking *model.Booking) error {
	if _, ok := s.bookings[booking.ID]; !ok {
		return errors.New("booking not found")
	}
	booking.UpdatedAt = time.Now()
	cp := *booking
	s.bookings[booking.ID] = &cp
	return nil
}

func (s *fakeBookingStore) GetByID(ctx context.Context, id int64) (*model.Booking, error) {
	b, ok := s.bookings[id]
	if !ok || b.DeletedAt != nil {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (s *fakeBookingStore) GetByCode(ctx context.Context, code string) (*model.Booking, error) {
	for _, b := range s.bookings {
		if b.Code == code && b.DeletedAt == nil {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *fakeBookingStore) ListByUser(ctx context.Context, userID int64) ([]*model.Booking, error) {
	var out []*model.Booking
	for _, b := range s.bookings {
		if b.UserID == userID && b.DeletedAt == nil {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakeBookingStore) CodeExists(ctx context.Context, code string) (bool, error) {
	if s.taken[code] {
		return true, nil
	}
	for _, b := range s.bookings {
		if b.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeBookingStore) SumGuestsForTourDate(ctx context.Context, tourID int64, date time.Time) (int, error) {
	sum := 0
	for _, b := range s.bookings {
		if b.TourID == tourID && sameDay(b.TourDate, date) &&
			b.Status != model.BookingStatusCancelled && b.DeletedAt == nil {
			sum += b.NumberOfGuests
		}
	}
	return sum, nil
}

func (s *fakeBookingStore) SoftDelete(ctx context.Context, q base.Queryer, id int64) error {
	b, ok := s.bookings[id]
	if !ok || b.DeletedAt != nil {
		return errors.New("booking not found")
	}
	now := time.Now()
	b.DeletedAt = &now
	return nil
}

func (s *fakeBookingStore) CreateGuests(ctx context.Context, q base.Queryer, bookingID int64, guests []*model.BookingGuest) error {
	for _, g := range guests {
		g.BookingID = bookingID
		s.guests[bookingID] = append(s.guests[bookingID], g)
	}
	return nil
}

func (s *fakeBookingStore) DeleteGuests(ctx context.Context, q base.Queryer, bookingID int64) error {
	delete(s.guests, bookingID)
	return nil
}

func (s *fakeBookingStore) GetGuests(ctx context.Context, bookingID int64) ([]*model.BookingGuest, error) {
	return s.guests[bookingID], nil
}

type fakeDepartureStore struct {
	departures map[int64]*model.Departure
	bookings   *fakeBookingStore
}

func newFakeDepartureStore(bookings *fakeBookingStore) *fakeDepartureStore {
	return &fakeDepartureStore{
		departures: make(map[int64]*model.Departure),
		bookings:   bookings,
	}
}

func (s *fakeDepartureStore) GetByID(ctx context.Context, id int64) (*model.Departure, error) {
	d, ok := s.departures[id]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (s *fakeDepartureStore) GetByTourAndDate(ctx context.Context, tourID int64, date time.Time) (*model.Departure, error) {
	for _, d := range s.departures {
		if d.TourID == tourID && sameDay(d.DepartureDate, date) {
			cp := *d
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *fakeDepartureStore) ListAvailableFrom(ctx context.Context, tourID int64, from time.Time) ([]*model.Departure, error) {
	var out []*model.Departure
	for _, d := range s.departures {
		if d.TourID == tourID && !d.DepartureDate.Before(from) &&
			(d.Status == model.DepartureStatusAvailable || d.Status == model.DepartureStatusAlmostFull) {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakeDepartureStore) Recompute(ctx context.Context, q base.Queryer, departureID int64) (*model.Departure, error) {
	d, ok := s.departures[departureID]
	if !ok {
		return nil, errors.New("departure not found")
	}

	sum := 0
	for _, b := range s.bookings.bookings {
		if b.DepartureID != nil && *b.DepartureID == departureID &&
			b.Status != model.BookingStatusCancelled && b.DeletedAt == nil {
			sum += b.NumberOfGuests
		}
	}

	d.BookedGuests = sum
	d.Status = model.DeriveDepartureStatus(sum, d.MaxGuests, d.Status)
	cp := *d
	return &cp, nil
}

func (s *fakeDepartureStore) ListUpcomingIDs(ctx context.Context, from time.Time) ([]int64, error) {
	var out []int64
	for id, d := range s.departures {
		if !d.DepartureDate.Before(from) &&
			d.Status != model.DepartureStatusCancelled && d.Status != model.DepartureStatusCompleted {
			out = append(out, id)
		}
	}
	return out, nil
}

type fakeGuideStore struct {
	tourGuides []*model.TourGuide
	busy       map[int64]map[string]bool // guide_id -> дата YYYY-MM-DD -> занят
}

func newFakeGuideStore() *fakeGuideStore {
	return &fakeGuideStore{busy: make(map[int64]map[string]bool)}
}

func (s *fakeGuideStore) addGuide(tourID, guideID int64, isDefault bool, rating float64) {
	s.tourGuides = append(s.tourGuides, &model.TourGuide{
		TourID:    tourID,
		GuideID:   guideID,
		IsDefault: isDefault,
		Guide:     &model.Guide{ID: guideID, Rating: rating, IsActive: true},
	})
}

func (s *fakeGuideStore) markBusy(guideID int64, date time.Time) {
	if s.busy[guideID] == nil {
		s.busy[guideID] = make(map[string]bool)
	}
	s.busy[guideID][date.Format("2006-01-02")] = true
}

func (s *fakeGuideStore) ListByTour(ctx context.Context, tourID int64) ([]*model.TourGuide, error) {
	var out []*model.TourGuide
	for _, tg := range s.tourGuides {
		if tg.TourID == tourID {
			out = append(out, tg)
		}
	}
	return out, nil
}

func (s *fakeGuideStore) IsAssignedToTour(ctx context.Context, guideID, tourID int64) (bool, error) {
	for _, tg := range s.tourGuides {
		if tg.TourID == tourID && tg.GuideID == guideID {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeGuideStore) IsAvailableOn(ctx context.Context, guideID int64, date time.Time) (bool, error) {
	return !s.busy[guideID][date.Format("2006-01-02")], nil
}

func (s *fakeGuideStore) DefaultForTour(ctx context.Context, tourID int64) (*model.TourGuide, error) {
	var best *model.TourGuide
	for _, tg := range s.tourGuides {
		if tg.TourID != tourID {
			continue
		}
		if best == nil || (tg.IsDefault && !best.IsDefault) ||
			(tg.IsDefault == best.IsDefault && tg.GuideID < best.GuideID) {
			best = tg
		}
	}
	return best, nil
}

type fakePointsStore struct {
	nextID  int64
	entries []*model.PointsHistory
}

func (s *fakePointsStore) Append(ctx context.Context, q base.Queryer, entry *model.PointsHistory) error {
	s.nextID++
	entry.ID = s.nextID
	entry.CreatedAt = time.Now()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *fakePointsStore) HasEarnedForBooking(ctx context.Context, q base.Queryer, bookingCode string) (bool, error) {
	for _, e := range s.entries {
		if e.TransactionType == model.PointsEarned && e.BookingCode != nil && *e.BookingCode == bookingCode {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakePointsStore) ListByUser(ctx context.Context, userID int64) ([]*model.PointsHistory, error) {
	var out []*model.PointsHistory
	for _, e := range s.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *fakePointsStore) SumByUser(ctx context.Context, userID int64) (int, error) {
	sum := 0
	for _, e := range s.entries {
		if e.UserID == userID {
			sum += e.Points
		}
	}
	return sum, nil
}

type fakeAuditSink struct {
	entries []*model.AuditLog
}

func (s *fakeAuditSink) Insert(ctx context.Context, entry *model.AuditLog) error {
	s.entries = append(s.entries, entry)
	return nil
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
