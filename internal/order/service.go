package order

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/velmore/clothes-shop-backend/internal/realtime"
)

var (
	ErrFullNameRequired = errors.New("full name is required")
	ErrAddressRequired  = errors.New("address is required")
	ErrInvalidPhone     = errors.New("invalid phone number")
)

// phonePattern: leading +7 country code followed by exactly ten digits.
var phonePattern = regexp.MustCompile(`^\+7\d{10}$`)

// Service owns the checkout workflow and the order status machine.
type Service struct {
	repo   Repository
	events *realtime.Broker
}

func NewService(repo Repository, events *realtime.Broker) *Service {
	return &Service{repo: repo, events: events}
}

// ValidateRecipient runs the local checks performed before anything is
// written: non-empty full name and address, phone matching the fixed
// +7XXXXXXXXXX pattern.
func ValidateRecipient(rec Recipient) error {
	if strings.TrimSpace(rec.FullName) == "" {
		return ErrFullNameRequired
	}
	if strings.TrimSpace(rec.Address) == "" {
		return ErrAddressRequired
	}
	if !phonePattern.MatchString(rec.Phone) {
		return ErrInvalidPhone
	}
	return nil
}

// Checkout converts the user's cart into an order. Validation happens
// first; the conversion itself (total from live prices, price freeze per
// line, cart cleared) is one atomic repository operation.
func (s *Service) Checkout(userID uuid.UUID, rec Recipient) (Order, error) {
	if err := ValidateRecipient(rec); err != nil {
		return Order{}, err
	}

	ord, err := s.repo.CreateFromCart(userID, rec, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return Order{}, err
	}

	s.publish(realtime.EventInsert, ord)
	return ord, nil
}

// ListMine returns the caller's orders newest-first, annotated with derived
// order numbers.
func (s *Service) ListMine(userID uuid.UUID) ([]Order, error) {
	orders, err := s.repo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	annotateNumbers(orders)
	return orders, nil
}

// ListAll returns every order newest-first with derived numbers, optionally
// filtered by a numeric substring match against those numbers. The numbers
// are a recency rank, not a stored identifier: deleting an old order shifts
// every number after it.
func (s *Service) ListAll(numberQuery string) ([]Order, error) {
	orders, err := s.repo.ListAll()
	if err != nil {
		return nil, err
	}
	annotateNumbers(orders)

	digits := stripNonDigits(numberQuery)
	if digits == "" {
		return orders, nil
	}

	filtered := make([]Order, 0, len(orders))
	for _, ord := range orders {
		if strings.Contains(strconv.Itoa(ord.Number), digits) {
			filtered = append(filtered, ord)
		}
	}
	return filtered, nil
}

// UpdateStatus persists an admin status change after checking the
// transition graph against the order's current state.
func (s *Service) UpdateStatus(id uuid.UUID, status Status) (Order, error) {
	if !status.Valid() {
		return Order{}, ErrInvalidStatus
	}

	current, err := s.repo.GetByID(id)
	if err != nil {
		return Order{}, err
	}
	if !CanTransition(current.Status, status) {
		return Order{}, ErrInvalidTransition
	}

	updated, err := s.repo.UpdateStatus(id, status)
	if err != nil {
		return Order{}, err
	}

	s.publish(realtime.EventUpdate, updated)
	return updated, nil
}

// annotateNumbers assigns the 1-based recency rank over a newest-first
// list: the oldest order gets 1, the newest gets len(orders).
func annotateNumbers(orders []Order) {
	for i := range orders {
		orders[i].Number = len(orders) - i
	}
}

func stripNonDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (s *Service) publish(t realtime.EventType, ord Order) {
	if s.events == nil {
		return
	}
	s.events.Publish(realtime.Event{Table: "orders", Type: t, UserID: ord.UserID, Payload: ord})
}
