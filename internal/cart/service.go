package cart

import (
	"github.com/google/uuid"

	"github.com/velmore/clothes-shop-backend/internal/realtime"
)

// Service orchestrates cart operations and broadcasts line changes so UI
// badges stay current across the user's open sessions.
type Service struct {
	repo   Repository
	events *realtime.Broker
}

func NewService(repo Repository, events *realtime.Broker) *Service {
	return &Service{repo: repo, events: events}
}

// AddLine resolves (or lazily creates) the user's cart and inserts a line.
// A zero quantity defaults to one; an existing line for the same
// (product, size) is rejected rather than silently duplicated.
func (s *Service) AddLine(userID uuid.UUID, productID int, size string, quantity int) (Line, error) {
	if quantity == 0 {
		quantity = 1
	}

	c, err := s.repo.GetOrCreateCart(userID)
	if err != nil {
		return Line{}, err
	}

	line, err := s.repo.AddLine(c.ID, productID, size, quantity)
	if err != nil {
		return Line{}, err
	}

	s.publish(realtime.EventInsert, userID, line)
	return line, nil
}

// RemoveLine deletes the matching line. A missing cart or line is a no-op.
func (s *Service) RemoveLine(userID uuid.UUID, productID int, size string) error {
	c, err := s.repo.GetCartByUser(userID)
	if err != nil {
		if err == ErrCartNotFound {
			return nil
		}
		return err
	}

	if err := s.repo.RemoveLine(c.ID, productID, size); err != nil {
		return err
	}

	s.publish(realtime.EventDelete, userID, Line{CartID: c.ID, ProductID: productID, Size: size})
	return nil
}

// List returns the user's lines joined with live product data plus the
// subtotal. A user with no cart yet simply sees an empty view.
func (s *Service) List(userID uuid.UUID) (View, error) {
	c, err := s.repo.GetCartByUser(userID)
	if err != nil {
		if err == ErrCartNotFound {
			return View{Items: []Line{}}, nil
		}
		return View{}, err
	}

	lines, err := s.repo.ListLines(c.ID)
	if err != nil {
		return View{}, err
	}

	var subtotal float64
	for _, l := range lines {
		subtotal += float64(l.Quantity) * l.Product.Price
	}
	return View{Items: lines, Subtotal: subtotal}, nil
}

func (s *Service) publish(t realtime.EventType, userID uuid.UUID, line Line) {
	if s.events == nil {
		return
	}
	s.events.Publish(realtime.Event{Table: "cart_items", Type: t, UserID: userID, Payload: line})
}
