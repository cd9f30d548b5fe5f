package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"hotel-pms/apperror"
	"hotel-pms/cache"
	"hotel-pms/models"
	"hotel-pms/queue"
	"hotel-pms/repository"
)

// BookingService runs the booking lifecycle. Every multi-row change happens
// in one store transaction with the affected room rows locked.
type BookingService struct {
	Store  repository.Store
	Cache  cache.AvailabilityCache
	Events queue.Publisher
	Log    *logrus.Logger
	Now    func() time.Time

	grc *referenceGenerator
}

func NewBookingService(store repository.Store, c cache.AvailabilityCache, events queue.Publisher, log *logrus.Logger) *BookingService {
	return &BookingService{
		Store:  store,
		Cache:  c,
		Events: events,
		Log:    log,
		Now:    time.Now,
		grc:    newReferenceGenerator(grcPrefix),
	}
}

type SelectedRoom struct {
	RoomNumber        string
	CustomRate        decimal.Decimal
	ExtraBed          bool
	ExtraBedStartDate *time.Time
}

type CreateBookingInput struct {
	CategoryID      uint
	SelectedRooms   []SelectedRoom
	Count           int
	CheckInDate     time.Time
	CheckOutDate    time.Time
	Guest           models.GuestDetails
	TaxableAmount   decimal.Decimal
	CGSTPercent     decimal.Decimal
	SGSTPercent     decimal.Decimal
	ExtraBedCharge  decimal.Decimal
	AdvancePayments []models.AdvancePayment
}

type UpdateBookingInput struct {
	GuestName     *string
	ContactNumber *string
	Email         *string
	Address       *string
	IDProofType   *string
	IDProofNumber *string
	CompanyName   *string
	GSTNumber     *string
	Notes         *string
	Adults        *int
	Children      *int

	// RoomNumbers replaces the room assignment when non-nil.
	RoomNumbers    []string
	TaxableAmount  *decimal.Decimal
	ExtraBedCharge *decimal.Decimal
	CGSTPercent    *decimal.Decimal
	SGSTPercent    *decimal.Decimal

	Status        *models.BookingStatus
	StatusHistory []models.StatusChange
}

// retaxes reports whether the patch touches any pricing input.
func (in UpdateBookingInput) retaxes() bool {
	return in.TaxableAmount != nil || in.ExtraBedCharge != nil || in.CGSTPercent != nil || in.SGSTPercent != nil
}

// RoomReleaseResult reports a checkout or cancellation. Rooms are released
// one by one and failures only show up as a lower RoomsReleased.
type RoomReleaseResult struct {
	Booking       *models.Booking `json:"booking"`
	RoomsReleased int             `json:"roomsReleased"`
	TotalRooms    int             `json:"totalRooms"`
}

func validateStay(in, out time.Time) error {
	if in.IsZero() || out.IsZero() {
		return apperror.Validation("checkInDate and checkOutDate are required")
	}
	if !out.After(in) {
		return apperror.Validation("checkOutDate must be after checkInDate")
	}
	return nil
}

func validatePayments(payments []models.AdvancePayment) error {
	for i, p := range payments {
		if p.Amount.IsNegative() {
			return apperror.Validation("advance payment %d has a negative amount", i+1)
		}
	}
	return nil
}

func duplicateNumber(numbers []string) (string, bool) {
	seen := make(map[string]bool, len(numbers))
	for _, n := range numbers {
		if seen[n] {
			return n, true
		}
		seen[n] = true
	}
	return "", false
}

func conflictError(claims []repository.RoomClaim) error {
	first := claims[0]
	return apperror.Conflict("room %s is already booked under %s for overlapping dates", first.RoomNumber, first.GRCNumber).
		WithDetails(map[string]any{"conflicts": claims})
}

// CreateBooking books either the explicitly selected rooms or the first
// Count free rooms of the category.
func (s *BookingService) CreateBooking(ctx context.Context, in CreateBookingInput, actor Actor) (*models.Booking, error) {
	if err := validateStay(in.CheckInDate, in.CheckOutDate); err != nil {
		return nil, err
	}
	if in.CategoryID == 0 {
		return nil, apperror.Validation("categoryId is required")
	}
	if len(in.SelectedRooms) == 0 && in.Count <= 0 {
		return nil, apperror.Validation("either selectedRooms or a positive count is required")
	}
	if strings.TrimSpace(in.Guest.GuestName) == "" {
		return nil, apperror.Validation("guestName is required")
	}
	if in.TaxableAmount.IsNegative() || in.ExtraBedCharge.IsNegative() {
		return nil, apperror.Validation("amounts must not be negative")
	}
	if err := validatePayments(in.AdvancePayments); err != nil {
		return nil, err
	}
	numbers := make([]string, 0, len(in.SelectedRooms))
	for _, r := range in.SelectedRooms {
		n := strings.TrimSpace(r.RoomNumber)
		if n == "" {
			return nil, apperror.Validation("selected rooms need a roomNumber")
		}
		numbers = append(numbers, n)
	}
	if dup, ok := duplicateNumber(numbers); ok {
		return nil, apperror.Validation("room %s is selected twice", dup)
	}

	checkIn, checkOut := models.DateOnly(in.CheckInDate), models.DateOnly(in.CheckOutDate)
	now := s.Now().UTC()
	var booking *models.Booking

	err := s.Store.Transaction(ctx, func(tx repository.Store) error {
		category, err := tx.Categories().GetByID(ctx, in.CategoryID)
		if err != nil {
			return storeErr(err, "category")
		}

		var rooms []models.BookingRoom
		if len(in.SelectedRooms) > 0 {
			rooms, err = s.claimSelectedRooms(ctx, tx, in.SelectedRooms, checkIn, checkOut)
		} else {
			rooms, err = s.claimRoomsFromCategory(ctx, tx, in.CategoryID, in.Count, checkIn, checkOut)
		}
		if err != nil {
			return err
		}

		b := &models.Booking{
			CategoryID:     in.CategoryID,
			Rooms:          rooms,
			CheckInDate:    checkIn,
			CheckOutDate:   checkOut,
			Days:           models.NightsBetween(checkIn, checkOut),
			GuestDetails:   in.Guest,
			CGSTRate:       ResolveTaxRate(in.CGSTPercent),
			SGSTRate:       ResolveTaxRate(in.SGSTPercent),
			ExtraBedCharge: models.RoundMoney(in.ExtraBedCharge),
			Status:         models.StatusBooked,
			IsActive:       true,
			CreatedBy:      actor.Name(),
			CategoryName:   category.Name,
		}
		b.StatusHistory = append(b.StatusHistory, models.StatusChange{Status: models.StatusBooked, ChangedAt: now, ChangedBy: actor.Name()})
		for _, p := range in.AdvancePayments {
			if p.Date.IsZero() {
				p.Date = now
			}
			b.AdvancePayments = append(b.AdvancePayments, p)
		}

		base := in.TaxableAmount
		if !base.IsPositive() {
			base = RoomCharges(rooms, b.Days)
		}
		b.ExtraBedTotal = ExtraBedTotal(rooms, b.ExtraBedCharge, checkIn, checkOut)
		b.TaxableAmount = base.Add(b.ExtraBedTotal)
		applyTax(b)

		if _, err := s.grc.generate(ctx, tx.Bookings().GRCExists, func(ref string) error {
			b.GRCNumber = ref
			return tx.Bookings().Create(ctx, b)
		}); err != nil {
			return classify(err, "create booking")
		}

		for _, r := range rooms {
			if err := tx.Rooms().SetStatus(ctx, r.RoomNumber, models.RoomBooked); err != nil {
				return classify(err, "mark room booked")
			}
		}
		booking = b
		return nil
	})
	if err != nil {
		return nil, classify(err, "create booking")
	}

	s.Log.WithFields(logrus.Fields{
		"grc":   booking.GRCNumber,
		"rooms": booking.RoomNumbers(),
		"rate":  booking.Rate.String(),
		"actor": actor.Name(),
	}).Info("booking created")
	s.afterWrite(ctx, queue.EventBookingCreated, booking, actor)
	return booking, nil
}

// claimSelectedRooms locks the requested rooms and checks each is available
// and free for the stay.
func (s *BookingService) claimSelectedRooms(ctx context.Context, tx repository.Store, selected []SelectedRoom, checkIn, checkOut time.Time) ([]models.BookingRoom, error) {
	numbers := make([]string, len(selected))
	for i, r := range selected {
		numbers[i] = strings.TrimSpace(r.RoomNumber)
	}

	locked, err := tx.Rooms().LockByNumbers(ctx, numbers)
	if err != nil {
		return nil, classify(err, "lock rooms")
	}
	byNumber := make(map[string]models.Room, len(locked))
	for _, r := range locked {
		byNumber[r.RoomNumber] = r
	}
	for _, n := range numbers {
		room, ok := byNumber[n]
		if !ok {
			return nil, apperror.NotFound("room %s not found", n)
		}
		if room.Status != models.RoomAvailable {
			return nil, apperror.Conflict("room %s is not available (status %s)", n, room.Status)
		}
	}

	claims, err := tx.Bookings().FindClaims(ctx, repository.ClaimQuery{RoomNumbers: numbers, CheckIn: checkIn, CheckOut: checkOut})
	if err != nil {
		return nil, classify(err, "check room conflicts")
	}
	if len(claims) > 0 {
		return nil, conflictError(claims)
	}

	rooms := make([]models.BookingRoom, 0, len(selected))
	for i, sel := range selected {
		room := byNumber[numbers[i]]
		rate := room.Price
		if sel.CustomRate.IsPositive() {
			rate = sel.CustomRate
		}
		br := models.BookingRoom{
			RoomID:     room.ID,
			RoomNumber: room.RoomNumber,
			Position:   i,
			DailyRate:  models.RoundMoney(rate),
			ExtraBed:   sel.ExtraBed,
		}
		if sel.ExtraBed && sel.ExtraBedStartDate != nil {
			d := models.DateOnly(*sel.ExtraBedStartDate)
			br.ExtraBedStartDate = &d
		}
		rooms = append(rooms, br)
	}
	return rooms, nil
}

// claimRoomsFromCategory takes the first count available rooms of the
// category, by room number, that nobody holds for the stay.
func (s *BookingService) claimRoomsFromCategory(ctx context.Context, tx repository.Store, categoryID uint, count int, checkIn, checkOut time.Time) ([]models.BookingRoom, error) {
	candidates, err := tx.Rooms().LockByFilter(ctx, repository.RoomFilter{
		CategoryID: categoryID,
		Statuses:   []models.RoomStatus{models.RoomAvailable},
	})
	if err != nil {
		return nil, classify(err, "lock rooms")
	}

	numbers := make([]string, len(candidates))
	for i, r := range candidates {
		numbers[i] = r.RoomNumber
	}
	claimed := map[string]bool{}
	if len(numbers) > 0 {
		claims, err := tx.Bookings().FindClaims(ctx, repository.ClaimQuery{RoomNumbers: numbers, CheckIn: checkIn, CheckOut: checkOut})
		if err != nil {
			return nil, classify(err, "check room conflicts")
		}
		for _, c := range claims {
			claimed[c.RoomNumber] = true
		}
	}

	rooms := make([]models.BookingRoom, 0, count)
	for _, r := range candidates {
		if len(rooms) == count {
			break
		}
		if claimed[r.RoomNumber] {
			continue
		}
		rooms = append(rooms, models.BookingRoom{
			RoomID:     r.ID,
			RoomNumber: r.RoomNumber,
			Position:   len(rooms),
			DailyRate:  r.Price,
		})
	}
	if len(rooms) < count {
		return nil, apperror.NotFound("only %d of %d requested rooms are available in this category", len(rooms), count)
	}
	return rooms, nil
}

func (s *BookingService) GetBooking(ctx context.Context, id uint) (*models.Booking, error) {
	b, err := s.Store.Bookings().GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "booking")
	}
	names, err := s.categoryNames(ctx)
	if err != nil {
		return nil, err
	}
	b.CategoryName = categoryName(names, b.CategoryID, models.UnknownCategoryName)
	return b, nil
}

// ListBookings returns active bookings, or every booking when all is set.
func (s *BookingService) ListBookings(ctx context.Context, all bool) ([]models.Booking, error) {
	list, err := s.Store.Bookings().List(ctx, all)
	if err != nil {
		return nil, classify(err, "list bookings")
	}
	names, err := s.categoryNames(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		list[i].CategoryName = categoryName(names, list[i].CategoryID, models.UnknownCategoryName)
	}
	return list, nil
}

func (s *BookingService) categoryNames(ctx context.Context) (map[uint]string, error) {
	cats, err := s.Store.Categories().List(ctx)
	if err != nil {
		return nil, classify(err, "list categories")
	}
	names := make(map[uint]string, len(cats))
	for _, c := range cats {
		names[c.ID] = c.Name
	}
	return names, nil
}

func categoryName(names map[uint]string, id uint, fallback string) string {
	if n, ok := names[id]; ok {
		return n
	}
	return fallback
}

// UpdateBooking applies an allow-listed patch. Status changes go through the
// lifecycle table and supplied history entries are merged without duplicates.
func (s *BookingService) UpdateBooking(ctx context.Context, id uint, in UpdateBookingInput, actor Actor) (*models.Booking, error) {
	if in.RoomNumbers != nil {
		for i := range in.RoomNumbers {
			in.RoomNumbers[i] = strings.TrimSpace(in.RoomNumbers[i])
			if in.RoomNumbers[i] == "" {
				return nil, apperror.Validation("room numbers must not be empty")
			}
		}
		if len(in.RoomNumbers) == 0 {
			return nil, apperror.Validation("a booking needs at least one room")
		}
		if dup, ok := duplicateNumber(in.RoomNumbers); ok {
			return nil, apperror.Validation("room %s is listed twice", dup)
		}
	}
	for _, p := range []*decimal.Decimal{in.TaxableAmount, in.ExtraBedCharge} {
		if p != nil && p.IsNegative() {
			return nil, apperror.Validation("amounts must not be negative")
		}
	}
	for _, h := range in.StatusHistory {
		if !h.Status.IsValid() {
			return nil, apperror.Validation("statusHistory has unknown status %q", h.Status)
		}
	}

	var booking *models.Booking
	err := s.Store.Transaction(ctx, func(tx repository.Store) error {
		b, err := tx.Bookings().LockByID(ctx, id)
		if err != nil {
			return storeErr(err, "booking")
		}

		applyGuestPatch(&b.GuestDetails, in)

		var added, removed []string
		if in.RoomNumbers != nil {
			if !b.HoldsRooms() {
				return apperror.BusinessRule("rooms can only be changed on an active Booked or Checked In booking")
			}
			if added, removed, err = s.reassignRooms(ctx, tx, b, in.RoomNumbers); err != nil {
				return err
			}
		}

		if in.retaxes() {
			if in.TaxableAmount != nil {
				b.TaxableAmount = *in.TaxableAmount
			}
			if in.ExtraBedCharge != nil {
				b.ExtraBedCharge = models.RoundMoney(*in.ExtraBedCharge)
			}
			if in.CGSTPercent != nil {
				b.CGSTRate = ResolveTaxRate(*in.CGSTPercent)
			}
			if in.SGSTPercent != nil {
				b.SGSTRate = ResolveTaxRate(*in.SGSTPercent)
			}
			applyTax(b)
		}

		b.StatusHistory = mergeStatusHistory(b.StatusHistory, in.StatusHistory)

		closing := false
		if in.Status != nil && *in.Status != b.Status {
			if err := s.transition(b, *in.Status, actor); err != nil {
				return err
			}
			closing = !b.Status.IsOpen()
		}

		if err := tx.Bookings().Save(ctx, b); err != nil {
			return classify(err, "save booking")
		}
		if in.RoomNumbers != nil {
			if err := tx.Bookings().ReplaceRooms(ctx, b.ID, b.Rooms); err != nil {
				return classify(err, "save booking rooms")
			}
		}
		for _, n := range added {
			if err := tx.Rooms().SetStatus(ctx, n, models.RoomBooked); err != nil {
				return classify(err, "mark room booked")
			}
		}
		s.releaseRooms(ctx, tx, b.GRCNumber, removed)
		if closing {
			s.releaseRooms(ctx, tx, b.GRCNumber, b.RoomNumbers())
		}
		booking = b
		return nil
	})
	if err != nil {
		return nil, classify(err, "update booking")
	}

	s.afterWrite(ctx, queue.EventBookingUpdated, booking, actor)
	return booking, nil
}

func applyGuestPatch(g *models.GuestDetails, in UpdateBookingInput) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&g.GuestName, in.GuestName)
	set(&g.ContactNumber, in.ContactNumber)
	set(&g.Email, in.Email)
	set(&g.Address, in.Address)
	set(&g.IDProofType, in.IDProofType)
	set(&g.IDProofNumber, in.IDProofNumber)
	set(&g.CompanyName, in.CompanyName)
	set(&g.GSTNumber, in.GSTNumber)
	set(&g.Notes, in.Notes)
	if in.Adults != nil {
		g.Adults = *in.Adults
	}
	if in.Children != nil {
		g.Children = *in.Children
	}
}

// mergeStatusHistory appends incoming entries, skipping any whose
// (status, changedAt) pair is already recorded.
func mergeStatusHistory(existing, incoming []models.StatusChange) []models.StatusChange {
	type key struct {
		status models.BookingStatus
		at     int64
	}
	seen := make(map[key]bool, len(existing)+len(incoming))
	for _, h := range existing {
		seen[key{h.Status, h.ChangedAt.UnixNano()}] = true
	}
	out := existing
	for _, h := range incoming {
		k := key{h.Status, h.ChangedAt.UnixNano()}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, h)
	}
	return out
}

// reassignRooms swaps b's rooms for numbers, keeping per-room rates of rooms
// that stay. It returns the rooms to mark booked and the rooms to release.
func (s *BookingService) reassignRooms(ctx context.Context, tx repository.Store, b *models.Booking, numbers []string) (added, removed []string, err error) {
	current := make(map[string]models.BookingRoom, len(b.Rooms))
	for _, r := range b.Rooms {
		current[r.RoomNumber] = r
	}
	wanted := make(map[string]bool, len(numbers))
	for _, n := range numbers {
		wanted[n] = true
		if _, ok := current[n]; !ok {
			added = append(added, n)
		}
	}
	for _, r := range b.Rooms {
		if !wanted[r.RoomNumber] {
			removed = append(removed, r.RoomNumber)
		}
	}

	fresh := map[string]models.Room{}
	if len(added) > 0 {
		locked, err := tx.Rooms().LockByNumbers(ctx, added)
		if err != nil {
			return nil, nil, classify(err, "lock rooms")
		}
		for _, r := range locked {
			fresh[r.RoomNumber] = r
		}
		for _, n := range added {
			room, ok := fresh[n]
			if !ok {
				return nil, nil, apperror.NotFound("room %s not found", n)
			}
			if room.Status != models.RoomAvailable {
				return nil, nil, apperror.Conflict("room %s is not available (status %s)", n, room.Status)
			}
		}
		claims, err := tx.Bookings().FindClaims(ctx, repository.ClaimQuery{
			RoomNumbers:      added,
			CheckIn:          b.CheckInDate,
			CheckOut:         b.CheckOutDate,
			ExcludeBookingID: b.ID,
		})
		if err != nil {
			return nil, nil, classify(err, "check room conflicts")
		}
		if len(claims) > 0 {
			return nil, nil, conflictError(claims)
		}
	}

	rooms := make([]models.BookingRoom, 0, len(numbers))
	for i, n := range numbers {
		if r, ok := current[n]; ok {
			r.Position = i
			rooms = append(rooms, r)
			continue
		}
		room := fresh[n]
		rooms = append(rooms, models.BookingRoom{
			RoomID:     room.ID,
			RoomNumber: room.RoomNumber,
			Position:   i,
			DailyRate:  room.Price,
		})
	}
	b.Rooms = rooms
	return added, removed, nil
}

// transition moves b to status "to" or rejects the change. Cancelling also
// deactivates the booking.
func (s *BookingService) transition(b *models.Booking, to models.BookingStatus, actor Actor) error {
	if !to.IsValid() {
		return apperror.Validation("unknown booking status %q", to)
	}
	if !b.Status.CanTransitionTo(to) {
		return apperror.BusinessRule("booking %s is %s and cannot move to %s", b.GRCNumber, b.Status, to)
	}
	b.Status = to
	if to == models.StatusCancelled {
		b.IsActive = false
	}
	b.StatusHistory = append(b.StatusHistory, models.StatusChange{
		Status:    to,
		ChangedAt: s.Now().UTC(),
		ChangedBy: actor.Name(),
	})
	return nil
}

// releaseRooms marks rooms available one at a time. A missing room or a
// failed update is logged and skipped.
func (s *BookingService) releaseRooms(ctx context.Context, tx repository.Store, grc string, numbers []string) int {
	released := 0
	for _, n := range numbers {
		err := tx.Rooms().SetStatus(ctx, n, models.RoomAvailable)
		switch {
		case err == nil:
			released++
		case errors.Is(err, repository.ErrNotFound):
			s.Log.WithFields(logrus.Fields{"grc": grc, "room": n}).Warn("room to release not found, skipping")
		default:
			s.Log.WithFields(logrus.Fields{"grc": grc, "room": n}).WithError(err).Error("room release failed")
		}
	}
	return released
}

func (s *BookingService) CheckIn(ctx context.Context, id uint, actor Actor) (*models.Booking, error) {
	var booking *models.Booking
	err := s.Store.Transaction(ctx, func(tx repository.Store) error {
		b, err := tx.Bookings().LockByID(ctx, id)
		if err != nil {
			return storeErr(err, "booking")
		}
		if !b.IsActive {
			return apperror.BusinessRule("booking %s is cancelled", b.GRCNumber)
		}
		if err := s.transition(b, models.StatusCheckedIn, actor); err != nil {
			return err
		}
		if err := tx.Bookings().Save(ctx, b); err != nil {
			return classify(err, "save booking")
		}
		booking = b
		return nil
	})
	if err != nil {
		return nil, classify(err, "check in")
	}
	s.afterWrite(ctx, queue.EventBookingCheckedIn, booking, actor)
	return booking, nil
}

// CheckoutBooking closes a Checked In booking and frees its rooms.
func (s *BookingService) CheckoutBooking(ctx context.Context, id uint, actor Actor) (*RoomReleaseResult, error) {
	var result *RoomReleaseResult
	err := s.Store.Transaction(ctx, func(tx repository.Store) error {
		b, err := tx.Bookings().LockByID(ctx, id)
		if err != nil {
			return storeErr(err, "booking")
		}
		if b.Status != models.StatusCheckedIn {
			return apperror.BusinessRule("booking %s must be Checked In to check out, it is %s", b.GRCNumber, b.Status)
		}
		if err := s.transition(b, models.StatusCheckedOut, actor); err != nil {
			return err
		}
		if err := tx.Bookings().Save(ctx, b); err != nil {
			return classify(err, "save booking")
		}
		released := s.releaseRooms(ctx, tx, b.GRCNumber, b.RoomNumbers())
		result = &RoomReleaseResult{Booking: b, RoomsReleased: released, TotalRooms: len(b.Rooms)}
		return nil
	})
	if err != nil {
		return nil, classify(err, "checkout")
	}

	s.Log.WithFields(logrus.Fields{
		"grc":      result.Booking.GRCNumber,
		"released": result.RoomsReleased,
		"total":    result.TotalRooms,
	}).Info("booking checked out")
	s.afterWrite(ctx, queue.EventBookingCheckedOut, result.Booking, actor)
	return result, nil
}

// DeleteBooking soft-deletes: the booking goes inactive, is cancelled when
// its status allows, and its rooms are released. Repeating it is harmless
// and releases the rooms again.
func (s *BookingService) DeleteBooking(ctx context.Context, id uint, actor Actor) (*RoomReleaseResult, error) {
	var result *RoomReleaseResult
	err := s.Store.Transaction(ctx, func(tx repository.Store) error {
		b, err := tx.Bookings().LockByID(ctx, id)
		if err != nil {
			return storeErr(err, "booking")
		}
		b.IsActive = false
		if b.Status.CanTransitionTo(models.StatusCancelled) {
			if err := s.transition(b, models.StatusCancelled, actor); err != nil {
				return err
			}
		}
		if err := tx.Bookings().Save(ctx, b); err != nil {
			return classify(err, "save booking")
		}
		released := s.releaseRooms(ctx, tx, b.GRCNumber, b.RoomNumbers())
		result = &RoomReleaseResult{Booking: b, RoomsReleased: released, TotalRooms: len(b.Rooms)}
		return nil
	})
	if err != nil {
		return nil, classify(err, "cancel booking")
	}
	s.afterWrite(ctx, queue.EventBookingCancelled, result.Booking, actor)
	return result, nil
}

// PermanentlyDeleteBooking removes the booking row. Room statuses are not
// touched; release the rooms first.
func (s *BookingService) PermanentlyDeleteBooking(ctx context.Context, id uint, actor Actor) error {
	b, err := s.Store.Bookings().GetByID(ctx, id)
	if err != nil {
		return storeErr(err, "booking")
	}
	if err := s.Store.Bookings().Delete(ctx, id); err != nil {
		return storeErr(err, "booking")
	}
	s.Log.WithFields(logrus.Fields{"grc": b.GRCNumber, "actor": actor.Name()}).Warn("booking permanently deleted")
	s.afterWrite(ctx, queue.EventBookingDeleted, b, actor)
	return nil
}

// AddAdvancePayment records a payment and refreshes the balance.
func (s *BookingService) AddAdvancePayment(ctx context.Context, id uint, payment models.AdvancePayment, actor Actor) (*models.Booking, error) {
	if !payment.Amount.IsPositive() {
		return nil, apperror.Validation("payment amount must be positive")
	}
	if strings.TrimSpace(payment.Mode) == "" {
		return nil, apperror.Validation("payment mode is required")
	}
	if payment.Date.IsZero() {
		payment.Date = s.Now().UTC()
	}
	payment.Amount = models.RoundMoney(payment.Amount)

	var booking *models.Booking
	err := s.Store.Transaction(ctx, func(tx repository.Store) error {
		b, err := tx.Bookings().LockByID(ctx, id)
		if err != nil {
			return storeErr(err, "booking")
		}
		if !b.IsActive || b.Status == models.StatusCancelled {
			return apperror.BusinessRule("booking %s is cancelled", b.GRCNumber)
		}
		b.AdvancePayments = append(b.AdvancePayments, payment)
		b.RecomputeBalance()
		if err := tx.Bookings().Save(ctx, b); err != nil {
			return classify(err, "save booking")
		}
		booking = b
		return nil
	})
	if err != nil {
		return nil, classify(err, "add payment")
	}
	s.afterWrite(ctx, queue.EventPaymentAdded, booking, actor)
	return booking, nil
}

// afterWrite drops cached availability and publishes the event. Neither
// can fail the request.
func (s *BookingService) afterWrite(ctx context.Context, t queue.EventType, b *models.Booking, actor Actor) {
	s.Cache.Invalidate(ctx)
	if err := s.Events.Publish(ctx, queue.NewBookingEvent(t, b, actor.Name(), s.Now())); err != nil {
		s.Log.WithFields(logrus.Fields{"event": t, "grc": b.GRCNumber}).WithError(err).Warn("event publish failed")
	}
}
