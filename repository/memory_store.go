package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"hotel-pms/models"
)

// MemoryStore keeps everything in process memory. Transactions are
// serialized and rolled back by restoring a snapshot. It backs
// DB_DRIVER=memory for local runs and the service tests.
type MemoryStore struct {
	mu   *sync.Mutex
	data *memoryData
	inTx bool
}

type memoryData struct {
	seq        uint
	categories map[uint]models.Category
	rooms      map[uint]models.Room
	bookings   map[uint]models.Booking
	banquets   map[uint]models.BanquetBooking
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		mu: &sync.Mutex{},
		data: &memoryData{
			categories: map[uint]models.Category{},
			rooms:      map[uint]models.Room{},
			bookings:   map[uint]models.Booking{},
			banquets:   map[uint]models.BanquetBooking{},
		},
	}
}

func (d *memoryData) nextID() uint {
	d.seq++
	return d.seq
}

func (d *memoryData) clone() *memoryData {
	cp := &memoryData{
		seq:        d.seq,
		categories: make(map[uint]models.Category, len(d.categories)),
		rooms:      make(map[uint]models.Room, len(d.rooms)),
		bookings:   make(map[uint]models.Booking, len(d.bookings)),
		banquets:   make(map[uint]models.BanquetBooking, len(d.banquets)),
	}
	for k, v := range d.categories {
		cp.categories[k] = v
	}
	for k, v := range d.rooms {
		cp.rooms[k] = v
	}
	for k, v := range d.bookings {
		cp.bookings[k] = cloneBooking(v)
	}
	for k, v := range d.banquets {
		cp.banquets[k] = cloneBanquet(v)
	}
	return cp
}

func cloneBooking(b models.Booking) models.Booking {
	b.Rooms = append([]models.BookingRoom(nil), b.Rooms...)
	for i := range b.Rooms {
		if b.Rooms[i].ExtraBedStartDate != nil {
			t := *b.Rooms[i].ExtraBedStartDate
			b.Rooms[i].ExtraBedStartDate = &t
		}
	}
	b.AdvancePayments = append(b.AdvancePayments[:0:0], b.AdvancePayments...)
	b.StatusHistory = append(b.StatusHistory[:0:0], b.StatusHistory...)
	b.ExtensionHistory = append(b.ExtensionHistory[:0:0], b.ExtensionHistory...)
	b.AmendmentHistory = append(b.AmendmentHistory[:0:0], b.AmendmentHistory...)
	return b
}

func cloneBanquet(b models.BanquetBooking) models.BanquetBooking {
	b.MenuItems = append(b.MenuItems[:0:0], b.MenuItems...)
	b.AdvancePayments = append(b.AdvancePayments[:0:0], b.AdvancePayments...)
	return b
}

// acquire takes the store lock unless the caller already holds it through
// a transaction.
func (s *MemoryStore) acquire(ctx context.Context) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, translate(err)
	}
	if s.inTx {
		return func() {}, nil
	}
	s.mu.Lock()
	return s.mu.Unlock, nil
}

func (s *MemoryStore) Categories() CategoryRepository { return &memCategoryRepo{s: s} }
func (s *MemoryStore) Rooms() RoomRepository          { return &memRoomRepo{s: s} }
func (s *MemoryStore) Bookings() BookingRepository    { return &memBookingRepo{s: s} }
func (s *MemoryStore) Banquets() BanquetRepository    { return &memBanquetRepo{s: s} }

func (s *MemoryStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	if err := ctx.Err(); err != nil {
		return translate(err)
	}
	if s.inTx {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(&MemoryStore{mu: s.mu, data: s.data, inTx: true}); err != nil {
		*s.data = *snapshot
		return err
	}
	return nil
}

func (s *MemoryStore) Close() error { return nil }

// ---- categories ----

type memCategoryRepo struct{ s *MemoryStore }

func (r *memCategoryRepo) nameTaken(name string, exceptID uint) bool {
	for id, c := range r.s.data.categories {
		if id != exceptID && c.Name == name {
			return true
		}
	}
	return false
}

func (r *memCategoryRepo) Create(ctx context.Context, c *models.Category) error {
	release, err := r.s.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if r.nameTaken(c.Name, 0) {
		return ErrDuplicate
	}
	now := time.Now().UTC()
	c.ID = r.s.data.nextID()
	c.CreatedAt, c.UpdatedAt = now, now
	r.s.data.categories[c.ID] = *c
	return nil
}

func (r *memCategoryRepo) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	release, err := r.s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	c, ok := r.s.data.categories[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (r *memCategoryRepo) List(ctx context.Context) ([]models.Category, error) {
	release, err := r.s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	out := make([]models.Category, 0, len(r.s.data.categories))
	for _, c := range r.s.data.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memCategoryRepo) Update(ctx context.Context, c *models.Category) error {
	release, err := r.s.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if _, ok := r.s.data.categories[c.ID]; !ok {
		return ErrNotFound
	}
	if r.nameTaken(c.Name, c.ID) {
		return ErrDuplicate
	}
	c.UpdatedAt = time.Now().UTC()
	r.s.data.categories[c.ID] = *c
	return nil
}

func (r *memCategoryRepo) Delete(ctx context.Context, id uint) error {
	release, err := r.s.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if _, ok := r.s.data.categories[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.data.categories, id)
	return nil
}

// ---- rooms ----

type memRoomRepo struct{ s *MemoryStore }

func roomMatches(room models.Room, f RoomFilter) bool {
	if f.CategoryID != 0 && room.CategoryID != f.CategoryID {
		return false
	}
	if len(f.Statuses) == 0 {
		return true
	}
	for _, st := range f.Statuses {
		if room.Status == st {
			return true
		}
	}
	return false
}

func (r *memRoomRepo) selectRooms(keep func(models.Room) bool) []models.Room {
	out := []models.Room{}
	for _, room := range r.s.data.rooms {
		if keep(room) {
			out = append(out, room)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoomNumber < out[j].RoomNumber })
	return out
}

func (r *memRoomRepo) numberTaken(number string, exceptID uint) bool {
	for id, room := range r.s.data.rooms {
		if id != exceptID && room.RoomNumber == number {
			return true
		}
	}
	return false
}

func (r *memRoomRepo) Create(ctx context.Context, room *models.Room) error {
	release, err := r.s.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if r.numberTaken(room.RoomNumber, 0) {
		return ErrDuplicate
	}
	if room.Status == "" {
		room.Status = models.RoomAvailable
	}
	now := time.Now().UTC()
	room.ID = r.s.data.nextID()
	room.CreatedAt, room.UpdatedAt = now, now
	r.s.data.rooms[room.ID] = *room
	return nil
}

func (r *memRoomRepo) GetByID(ctx context.Context, id uint) (*models.Room, error) {
	release, err := r.s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	room, ok := r.s.data.rooms[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &room, nil
}

func (r *memRoomRepo) List(ctx context.Context, filter RoomFilter) ([]models.Room, error) {
	release, err := r.s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	return r.selectRooms(func(room models.Room) bool { return roomMatches(room, filter) }), nil
}

func (r *memRoomRepo) LockByNumbers(ctx context.Context, numbers []string) ([]models.Room, error) {
	if len(numbers) == 0 {
		return nil, nil
	}
	release, err := r.s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	want := make(map[string]bool, len(numbers))
	for _, n := range numbers {
		want[n] = true
	}
	return r.selectRooms(func(room models.Room) bool { return want[room.RoomNumber] }), nil
}

func (r *memRoomRepo) LockByFilter(ctx context.Context, filter RoomFilter) ([]models.Room, error) {
	return r.List(ctx, filter)
}

func (r *memRoomRepo) Update(ctx context.Context, room *models.Room) error {
	release, err := r.s.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if _, ok := r.s.data.rooms[room.ID]; !ok {
		return ErrNotFound
	}
	if r.numberTaken(room.RoomNumber, room.ID) {
		return ErrDuplicate
	}
	room.UpdatedAt = time.Now().UTC()
	r.s.data.rooms[room.ID] = *room
	return nil
}

func (r *memRoomRepo) SetStatus(ctx context.Context, number string, status models.RoomStatus) error {
	release, err := r.s.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	for id, room := range r.s.data.rooms {
		if room.RoomNumber == number {
			room.Status = status
			room.UpdatedAt = time.Now().UTC()
			r.s.data.rooms[id] = room
			return nil
		}
	}
	return ErrNotFound
}

func (r *memRoomRepo) Delete(ctx context.Context, id uint) error {
	release, err := r.s.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if _, ok := r.s.data.rooms[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.data.rooms, id)
	return nil
}

// ---- bookings ----

type memBookingRepo struct{ s *MemoryStore }

func (r *memBookingRepo) stored(id uint) (*models.Booking, error) {
	b, ok := r.s.data.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneBooking(b)
	sort.SliceStable(out.Rooms, func(i, j int) bool { return out.Rooms[i].Position < out.Rooms[j].Position })
	return &out, nil
}

func (r *memBookingRepo) assignRoomIDs(bookingID uint, rooms []models.BookingRoom) {
	for i := range rooms {
		rooms[i].ID = r.s.data.nextID()
		rooms[i].BookingID = bookingID
	}
}

func (r *memBookingRepo) Create(ctx context.Context, b *models.Booking) error {
	release, err := r.s.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	for _, existing := range r.s.data.bookings {
		if existing.GRCNumber == b.GRCNumber {
			return ErrDuplicate
		}
	}
	now := time.Now().UTC()
	b.ID = r.s.data.nextID()
	b.CreatedAt, b.UpdatedAt = now, now
	r.assignRoomIDs(b.ID, b.Rooms)
	r.s.data.bookings[b.ID] = cloneBooking(*b)
	return nil
}

func (r *memBookingRepo) GetByID(ctx context.Context, id uint) (*models.Booking, error) {
	release, err := r.s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	return r.stored(id)
}

func (r *memBookingRepo) LockByID(ctx context.Context, id uint) (*models.Booking, error) {
	return r.GetByID(ctx, id)
}

func (r *memBookingRepo) List(ctx context.Context, includeInactive bool) ([]models.Booking, error) {
	release, err := r.s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	out := []models.Booking{}
	for id, b := range r.s.data.bookings {
		if !includeInactive && !b.IsActive {
			continue
		}
		cp, _ := r.stored(id)
		out = append(out, *cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *memBookingRepo) Save(ctx context.Context, b *models.Booking) error {
	release, err := r.s.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	existing, ok := r.s.data.bookings[b.ID]
	if !ok {
		return ErrNotFound
	}
	for id, other := range r.s.data.bookings {
		if id != b.ID && other.GRCNumber == b.GRCNumber {
			return ErrDuplicate
		}
	}
	b.UpdatedAt = time.Now().UTC()
	next := cloneBooking(*b)
	next.Rooms = existing.Rooms
	r.s.data.bookings[b.ID] = next
	return nil
}

func (r *memBookingRepo) ReplaceRooms(ctx context.Context, bookingID uint, rooms []models.BookingRoom) error {
	release, err := r.s.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	b, ok := r.s.data.bookings[bookingID]
	if !ok {
		return ErrNotFound
	}
	r.assignRoomIDs(bookingID, rooms)
	b.Rooms = append([]models.BookingRoom(nil), rooms...)
	r.s.data.bookings[bookingID] = b
	return nil
}

func (r *memBookingRepo) Delete(ctx context.Context, id uint) error {
	release, err := r.s.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if _, ok := r.s.data.bookings[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.data.bookings, id)
	return nil
}

func (r *memBookingRepo) GRCExists(ctx context.Context, grc string) (bool, error) {
	release, err := r.s.acquire(ctx)
	if err != nil {
		return false, err
	}
	defer release()

	for _, b := range r.s.data.bookings {
		if b.GRCNumber == grc {
			return true, nil
		}
	}
	return false, nil
}

func (r *memBookingRepo) FindClaims(ctx context.Context, q ClaimQuery) ([]RoomClaim, error) {
	release, err := r.s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	var want map[string]bool
	if q.RoomNumbers != nil {
		want = make(map[string]bool, len(q.RoomNumbers))
		for _, n := range q.RoomNumbers {
			want[n] = true
		}
	}
	dated := !q.CheckIn.IsZero() && !q.CheckOut.IsZero()

	claims := []RoomClaim{}
	for _, b := range r.s.data.bookings {
		if !b.HoldsRooms() || b.ID == q.ExcludeBookingID {
			continue
		}
		if dated && !models.StayOverlaps(b.CheckInDate, b.CheckOutDate, q.CheckIn, q.CheckOut) {
			continue
		}
		for _, room := range b.Rooms {
			if want != nil && !want[room.RoomNumber] {
				continue
			}
			claims = append(claims, RoomClaim{
				BookingID:    b.ID,
				GRCNumber:    b.GRCNumber,
				RoomNumber:   room.RoomNumber,
				CheckInDate:  b.CheckInDate,
				CheckOutDate: b.CheckOutDate,
			})
		}
	}
	sort.Slice(claims, func(i, j int) bool {
		if claims[i].RoomNumber != claims[j].RoomNumber {
			return claims[i].RoomNumber < claims[j].RoomNumber
		}
		return claims[i].BookingID < claims[j].BookingID
	})
	return claims, nil
}

// ---- banquets ----

type memBanquetRepo struct{ s *MemoryStore }

func (r *memBanquetRepo) Create(ctx context.Context, b *models.BanquetBooking) error {
	release, err := r.s.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	for _, existing := range r.s.data.banquets {
		if existing.ReferenceNumber == b.ReferenceNumber {
			return ErrDuplicate
		}
	}
	now := time.Now().UTC()
	b.ID = r.s.data.nextID()
	b.CreatedAt, b.UpdatedAt = now, now
	r.s.data.banquets[b.ID] = cloneBanquet(*b)
	return nil
}

func (r *memBanquetRepo) GetByID(ctx context.Context, id uint) (*models.BanquetBooking, error) {
	release, err := r.s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	b, ok := r.s.data.banquets[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneBanquet(b)
	return &out, nil
}

func (r *memBanquetRepo) LockByID(ctx context.Context, id uint) (*models.BanquetBooking, error) {
	return r.GetByID(ctx, id)
}

func (r *memBanquetRepo) List(ctx context.Context, includeInactive bool) ([]models.BanquetBooking, error) {
	release, err := r.s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	out := []models.BanquetBooking{}
	for _, b := range r.s.data.banquets {
		if includeInactive || b.IsActive {
			out = append(out, cloneBanquet(b))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EventDate.Equal(out[j].EventDate) {
			return out[i].EventDate.Before(out[j].EventDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *memBanquetRepo) Save(ctx context.Context, b *models.BanquetBooking) error {
	release, err := r.s.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if _, ok := r.s.data.banquets[b.ID]; !ok {
		return ErrNotFound
	}
	b.UpdatedAt = time.Now().UTC()
	r.s.data.banquets[b.ID] = cloneBanquet(*b)
	return nil
}

func (r *memBanquetRepo) ReferenceExists(ctx context.Context, ref string) (bool, error) {
	release, err := r.s.acquire(ctx)
	if err != nil {
		return false, err
	}
	defer release()

	for _, b := range r.s.data.banquets {
		if b.ReferenceNumber == ref {
			return true, nil
		}
	}
	return false, nil
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*GormStore)(nil)
)
