package services

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"hotel-pms/apperror"
	"hotel-pms/models"
	"hotel-pms/queue"
	"hotel-pms/repository"
)

type BanquetService struct {
	Store  repository.Store
	Events queue.Publisher
	Log    *logrus.Logger
	Now    func() time.Time

	refs *referenceGenerator
}

func NewBanquetService(store repository.Store, events queue.Publisher, log *logrus.Logger) *BanquetService {
	return &BanquetService{
		Store:  store,
		Events: events,
		Log:    log,
		Now:    time.Now,
		refs:   newReferenceGenerator(banquetPrefix),
	}
}

type BanquetInput struct {
	GuestName       *string
	ContactNumber   *string
	EventDate       *time.Time
	HallName        *string
	Pax             *int
	MenuItems       []string
	RatePerPlate    *decimal.Decimal
	CGSTPercent     *decimal.Decimal
	SGSTPercent     *decimal.Decimal
	AdvancePayments []models.AdvancePayment
}

// price recomputes taxable, tax, total and balance from pax and plate rate.
func priceBanquet(b *models.BanquetBooking) {
	b.TaxableAmount = models.RoundMoney(b.RatePerPlate.Mul(decimal.NewFromInt(int64(b.Pax))))
	tax := ComputeTax(b.TaxableAmount, b.CGSTRate, b.SGSTRate)
	b.CGSTAmount = tax.CGSTAmount
	b.SGSTAmount = tax.SGSTAmount
	b.Total = tax.Total
	b.RecomputeBalance()
}

func (s *BanquetService) Create(ctx context.Context, in BanquetInput, actor Actor) (*models.BanquetBooking, error) {
	if in.GuestName == nil || strings.TrimSpace(*in.GuestName) == "" {
		return nil, apperror.Validation("guestName is required")
	}
	if in.EventDate == nil || in.EventDate.IsZero() {
		return nil, apperror.Validation("eventDate is required")
	}
	if in.Pax == nil || *in.Pax <= 0 {
		return nil, apperror.Validation("pax must be positive")
	}
	if in.RatePerPlate == nil || in.RatePerPlate.IsNegative() {
		return nil, apperror.Validation("ratePerPlate is required and must not be negative")
	}
	if err := validatePayments(in.AdvancePayments); err != nil {
		return nil, err
	}

	now := s.Now().UTC()
	b := &models.BanquetBooking{
		GuestName:    strings.TrimSpace(*in.GuestName),
		EventDate:    models.DateOnly(*in.EventDate),
		Pax:          *in.Pax,
		MenuItems:    in.MenuItems,
		RatePerPlate: models.RoundMoney(*in.RatePerPlate),
		CGSTRate:     DefaultTaxRate,
		SGSTRate:     DefaultTaxRate,
		IsActive:     true,
		CreatedBy:    actor.Name(),
	}
	if in.ContactNumber != nil {
		b.ContactNumber = strings.TrimSpace(*in.ContactNumber)
	}
	if in.HallName != nil {
		b.HallName = strings.TrimSpace(*in.HallName)
	}
	if in.CGSTPercent != nil {
		b.CGSTRate = ResolveTaxRate(*in.CGSTPercent)
	}
	if in.SGSTPercent != nil {
		b.SGSTRate = ResolveTaxRate(*in.SGSTPercent)
	}
	for _, p := range in.AdvancePayments {
		if p.Date.IsZero() {
			p.Date = now
		}
		b.AdvancePayments = append(b.AdvancePayments, p)
	}
	priceBanquet(b)

	if _, err := s.refs.generate(ctx, s.Store.Banquets().ReferenceExists, func(ref string) error {
		b.ReferenceNumber = ref
		return s.Store.Banquets().Create(ctx, b)
	}); err != nil {
		return nil, classify(err, "create banquet")
	}

	s.Log.WithFields(logrus.Fields{"ref": b.ReferenceNumber, "pax": b.Pax, "total": b.Total.String()}).Info("banquet booked")
	s.publish(ctx, queue.EventBanquetCreated, b, actor)
	return b, nil
}

func (s *BanquetService) Get(ctx context.Context, id uint) (*models.BanquetBooking, error) {
	b, err := s.Store.Banquets().GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "banquet booking")
	}
	return b, nil
}

func (s *BanquetService) List(ctx context.Context, all bool) ([]models.BanquetBooking, error) {
	list, err := s.Store.Banquets().List(ctx, all)
	if err != nil {
		return nil, classify(err, "list banquets")
	}
	return list, nil
}

// Update patches a banquet. Staff may change the menu at most
// MaxStaffMenuEdits times; admins are not limited.
func (s *BanquetService) Update(ctx context.Context, id uint, in BanquetInput, actor Actor) (*models.BanquetBooking, error) {
	if in.Pax != nil && *in.Pax <= 0 {
		return nil, apperror.Validation("pax must be positive")
	}
	if in.RatePerPlate != nil && in.RatePerPlate.IsNegative() {
		return nil, apperror.Validation("ratePerPlate must not be negative")
	}
	if err := validatePayments(in.AdvancePayments); err != nil {
		return nil, err
	}

	var banquet *models.BanquetBooking
	err := s.Store.Transaction(ctx, func(tx repository.Store) error {
		b, err := tx.Banquets().LockByID(ctx, id)
		if err != nil {
			return storeErr(err, "banquet booking")
		}
		if in.MenuItems != nil && !slices.Equal(in.MenuItems, []string(b.MenuItems)) {
			if !actor.IsAdmin() {
				if b.MenuEditCount >= models.MaxStaffMenuEdits {
					return apperror.Forbidden("the menu has already been edited %d times; ask an admin to change it", models.MaxStaffMenuEdits)
				}
				b.MenuEditCount++
			}
			b.MenuItems = in.MenuItems
		}
		if in.GuestName != nil {
			if strings.TrimSpace(*in.GuestName) == "" {
				return apperror.Validation("guestName must not be empty")
			}
			b.GuestName = strings.TrimSpace(*in.GuestName)
		}
		if in.ContactNumber != nil {
			b.ContactNumber = strings.TrimSpace(*in.ContactNumber)
		}
		if in.HallName != nil {
			b.HallName = strings.TrimSpace(*in.HallName)
		}
		if in.EventDate != nil && !in.EventDate.IsZero() {
			b.EventDate = models.DateOnly(*in.EventDate)
		}
		if in.Pax != nil {
			b.Pax = *in.Pax
		}
		if in.RatePerPlate != nil {
			b.RatePerPlate = models.RoundMoney(*in.RatePerPlate)
		}
		if in.CGSTPercent != nil {
			b.CGSTRate = ResolveTaxRate(*in.CGSTPercent)
		}
		if in.SGSTPercent != nil {
			b.SGSTRate = ResolveTaxRate(*in.SGSTPercent)
		}
		if in.AdvancePayments != nil {
			now := s.Now().UTC()
			payments := make([]models.AdvancePayment, 0, len(in.AdvancePayments))
			for _, p := range in.AdvancePayments {
				if p.Date.IsZero() {
					p.Date = now
				}
				payments = append(payments, p)
			}
			b.AdvancePayments = payments
		}
		priceBanquet(b)

		if err := tx.Banquets().Save(ctx, b); err != nil {
			return classify(err, "save banquet")
		}
		banquet = b
		return nil
	})
	if err != nil {
		return nil, classify(err, "update banquet")
	}
	s.publish(ctx, queue.EventBanquetUpdated, banquet, actor)
	return banquet, nil
}

func (s *BanquetService) publish(ctx context.Context, t queue.EventType, b *models.BanquetBooking, actor Actor) {
	if err := s.Events.Publish(ctx, queue.NewBanquetEvent(t, b, actor.Name(), s.Now())); err != nil {
		s.Log.WithFields(logrus.Fields{"event": t, "ref": b.ReferenceNumber}).WithError(err).Warn("event publish failed")
	}
}
