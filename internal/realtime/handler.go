package realtime

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/velmore/clothes-shop-backend/internal/user"
)

// Handler exposes the broker over WebSocket so browser sessions keep their
// order and favourites views live without polling.
type Handler struct {
	broker *Broker
}

func NewHandler(b *Broker) *Handler {
	return &Handler{broker: b}
}

// RegisterProtectedRoutes mounts the per-user stream; RegisterAdminRoutes
// mounts the all-orders stream. Both expect the JWT middleware to have run.
func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/ws/user", h.upgrade, websocket.New(h.streamUser))
}

func (h *Handler) RegisterAdminRoutes(app *fiber.App, gate fiber.Handler) {
	app.Get("/ws/admin/orders", gate, h.upgrade, websocket.New(h.streamAdminOrders))
}

// upgrade stashes the caller's identity in locals before the connection is
// hijacked, because JWT claims are no longer reachable afterwards.
func (h *Handler) upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	c.Locals("realtime_user_id", userID)
	return c.Next()
}

// streamUser pushes the caller's own favourites and cart-line changes.
func (h *Handler) streamUser(conn *websocket.Conn) {
	userID, ok := conn.Locals("realtime_user_id").(uuid.UUID)
	if !ok {
		conn.Close()
		return
	}
	h.stream(conn, Filter{Tables: []string{"favourites", "cart_items"}, UserID: &userID})
}

// streamAdminOrders pushes every order change to a subscribed admin session.
func (h *Handler) streamAdminOrders(conn *websocket.Conn) {
	h.stream(conn, Filter{Tables: []string{"orders"}})
}

func (h *Handler) stream(conn *websocket.Conn, f Filter) {
	defer conn.Close()

	events, cancel := h.broker.Subscribe(f)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
