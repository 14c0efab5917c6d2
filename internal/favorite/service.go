package favorite

import (
	"github.com/google/uuid"

	"github.com/velmore/clothes-shop-backend/internal/realtime"
)

// Service implements toggle semantics over the favourites relation and
// pushes changes to the owning user's other sessions.
type Service struct {
	repo   Repository
	events *realtime.Broker
}

func NewService(repo Repository, events *realtime.Broker) *Service {
	return &Service{repo: repo, events: events}
}

// Toggle removes the favourite when present, inserts it otherwise, and
// reports whether the product is a favourite afterwards. Two toggles in a
// row always land back on the starting state.
func (s *Service) Toggle(userID uuid.UUID, productID int) (bool, error) {
	exists, err := s.repo.Exists(userID, productID)
	if err != nil {
		return false, err
	}

	fav := Favorite{UserID: userID, ProductID: productID}
	if exists {
		if err := s.repo.Remove(userID, productID); err != nil {
			return false, err
		}
		s.publish(realtime.EventDelete, fav)
		return false, nil
	}

	if err := s.repo.Add(userID, productID); err != nil {
		return false, err
	}
	s.publish(realtime.EventInsert, fav)
	return true, nil
}

// List returns the user's favourites joined with product display fields.
func (s *Service) List(userID uuid.UUID) ([]FavoriteProduct, error) {
	return s.repo.List(userID)
}

func (s *Service) publish(t realtime.EventType, fav Favorite) {
	if s.events == nil {
		return
	}
	s.events.Publish(realtime.Event{Table: "favourites", Type: t, UserID: fav.UserID, Payload: fav})
}
