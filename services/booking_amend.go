package services

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"hotel-pms/apperror"
	"hotel-pms/models"
	"hotel-pms/queue"
	"hotel-pms/repository"
)

const (
	// MaxAmendments is the lifetime amendment allowance of a booking.
	MaxAmendments = 3
	// AmendmentNotice is how long before check-out an amendment must be made.
	AmendmentNotice = 24 * time.Hour
)

type ExtendBookingInput struct {
	ExtendedCheckOut time.Time
	Reason           string
	AdditionalAmount decimal.Decimal
	PaymentMode      string
	ApprovedBy       string
}

type AmendBookingInput struct {
	NewCheckOutDate time.Time
	Reason          string
}

// checkStayFree locks b's rooms and fails with a conflict when another open
// booking holds any of them between from and to.
func checkStayFree(ctx context.Context, tx repository.Store, b *models.Booking, from, to time.Time) error {
	numbers := b.RoomNumbers()
	if _, err := tx.Rooms().LockByNumbers(ctx, numbers); err != nil {
		return classify(err, "lock rooms")
	}
	claims, err := tx.Bookings().FindClaims(ctx, repository.ClaimQuery{
		RoomNumbers:      numbers,
		CheckIn:          from,
		CheckOut:         to,
		ExcludeBookingID: b.ID,
	})
	if err != nil {
		return classify(err, "check room conflicts")
	}
	if len(claims) > 0 {
		return conflictError(claims)
	}
	return nil
}

// ExtendBooking pushes check-out later. AdditionalAmount is added to the
// grand total as given; it is not taxed again and survives later repricing.
func (s *BookingService) ExtendBooking(ctx context.Context, id uint, in ExtendBookingInput, actor Actor) (*models.Booking, error) {
	if in.ExtendedCheckOut.IsZero() {
		return nil, apperror.Validation("extendedCheckOut is required")
	}
	if in.AdditionalAmount.IsNegative() {
		return nil, apperror.Validation("additionalAmount must not be negative")
	}
	newOut := models.DateOnly(in.ExtendedCheckOut)

	var booking *models.Booking
	err := s.Store.Transaction(ctx, func(tx repository.Store) error {
		b, err := tx.Bookings().LockByID(ctx, id)
		if err != nil {
			return storeErr(err, "booking")
		}
		if !b.IsActive {
			return apperror.BusinessRule("booking %s is not active", b.GRCNumber)
		}
		if !b.Status.IsOpen() {
			return apperror.BusinessRule("booking %s is %s and cannot be extended", b.GRCNumber, b.Status)
		}
		if !newOut.After(b.CheckOutDate) {
			return apperror.Validation("extendedCheckOut must be after the current check-out %s", b.CheckOutDate.Format(models.DateLayout))
		}
		if err := checkStayFree(ctx, tx, b, b.CheckOutDate, newOut); err != nil {
			return err
		}

		b.ExtensionHistory = append(b.ExtensionHistory, models.ExtensionRecord{
			PreviousCheckOut: b.CheckOutDate,
			NewCheckOut:      newOut,
			Reason:           strings.TrimSpace(in.Reason),
			AdditionalAmount: models.RoundMoney(in.AdditionalAmount),
			PaymentMode:      in.PaymentMode,
			ApprovedBy:       in.ApprovedBy,
			ExtendedAt:       s.Now().UTC(),
		})
		b.CheckOutDate = newOut
		b.Days = models.NightsBetween(b.CheckInDate, newOut)
		settleRate(b, taxedTotal(b))

		if err := tx.Bookings().Save(ctx, b); err != nil {
			return classify(err, "save booking")
		}
		booking = b
		return nil
	})
	if err != nil {
		return nil, classify(err, "extend booking")
	}

	s.Log.WithFields(logrus.Fields{
		"grc":      booking.GRCNumber,
		"checkOut": booking.CheckOutDate.Format(models.DateLayout),
		"added":    in.AdditionalAmount.String(),
	}).Info("booking extended")
	s.afterWrite(ctx, queue.EventBookingExtended, booking, actor)
	return booking, nil
}

// AmendBookingStay moves check-out (earlier or later) and reprices the stay.
func (s *BookingService) AmendBookingStay(ctx context.Context, id uint, in AmendBookingInput, actor Actor) (*models.Booking, error) {
	if in.NewCheckOutDate.IsZero() {
		return nil, apperror.Validation("newCheckOutDate is required")
	}
	newOut := models.DateOnly(in.NewCheckOutDate)

	var booking *models.Booking
	err := s.Store.Transaction(ctx, func(tx repository.Store) error {
		b, err := tx.Bookings().LockByID(ctx, id)
		if err != nil {
			return storeErr(err, "booking")
		}
		if len(b.AmendmentHistory) >= MaxAmendments {
			return apperror.LimitExceeded("booking %s has already been amended %d times", b.GRCNumber, MaxAmendments)
		}
		if !b.IsActive {
			return apperror.BusinessRule("booking %s is not active", b.GRCNumber)
		}
		if b.Status == models.StatusCheckedOut || b.Status == models.StatusCancelled {
			return apperror.BusinessRule("booking %s is %s and cannot be amended", b.GRCNumber, b.Status)
		}
		if s.Now().Add(AmendmentNotice).After(b.CheckOutDate) {
			return apperror.LimitExceeded("amendments must be made at least 24 hours before check-out")
		}
		newDays := models.NightsBetween(b.CheckInDate, newOut)
		if newDays <= 0 {
			return apperror.Validation("newCheckOutDate must be after check-in %s", b.CheckInDate.Format(models.DateLayout))
		}
		if err := checkStayFree(ctx, tx, b, b.CheckInDate, newOut); err != nil {
			return err
		}

		adj := ComputeAmendment(b, newDays)
		b.AmendmentHistory = append(b.AmendmentHistory, models.AmendmentRecord{
			PreviousCheckOut:   b.CheckOutDate,
			NewCheckOut:        newOut,
			PreviousDays:       b.Days,
			NewDays:            newDays,
			RateAdjustment:     adj.RateAdjustment,
			ExtraBedAdjustment: adj.ExtraBedAdjustment,
			AmendmentFee:       adj.AmendmentFee,
			Reason:             strings.TrimSpace(in.Reason),
			AmendedBy:          actor.Name(),
			AmendedAt:          s.Now().UTC(),
		})
		b.CheckOutDate = newOut
		b.Days = newDays
		b.TaxableAmount = adj.Tax.TaxableAmount
		b.CGSTAmount = adj.Tax.CGSTAmount
		b.SGSTAmount = adj.Tax.SGSTAmount
		settleRate(b, adj.Tax.Total)

		if err := tx.Bookings().Save(ctx, b); err != nil {
			return classify(err, "save booking")
		}
		booking = b
		return nil
	})
	if err != nil {
		return nil, classify(err, "amend booking")
	}

	s.Log.WithFields(logrus.Fields{
		"grc":        booking.GRCNumber,
		"checkOut":   booking.CheckOutDate.Format(models.DateLayout),
		"amendments": len(booking.AmendmentHistory),
	}).Info("booking amended")
	s.afterWrite(ctx, queue.EventBookingAmended, booking, actor)
	return booking, nil
}
