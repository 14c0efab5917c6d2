package order

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/velmore/clothes-shop-backend/internal/user"
)

// Handler exposes checkout and order listing to customers, and status
// management plus the unfiltered listing to admins.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/v1/checkout", h.checkout)
	app.Get("/api/v1/orders", h.getMyOrders)
}

func (h *Handler) RegisterAdminRoutes(app *fiber.App, gate fiber.Handler) {
	app.Get("/api/v1/admin/orders", gate, h.getAllOrders)
	app.Patch("/api/v1/admin/orders/:id/status", gate, h.updateStatus)
}

func (h *Handler) checkout(c *fiber.Ctx) error {
	rec := new(Recipient)
	if err := c.BodyParser(rec); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	ord, err := h.service.Checkout(userID, *rec)
	if err != nil {
		switch err {
		case ErrFullNameRequired, ErrAddressRequired, ErrInvalidPhone:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
		case ErrCartNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "cart not found"})
		case ErrCartEmpty:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "cart is empty"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(ord)
}

func (h *Handler) getMyOrders(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	orders, err := h.service.ListMine(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(orders)
}

func (h *Handler) getAllOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListAll(c.Query("number"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(orders)
}

type statusRequest struct {
	Status Status `json:"status"`
}

func (h *Handler) updateStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid order id"})
	}

	payload := new(statusRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	updated, err := h.service.UpdateStatus(id, payload.Status)
	if err != nil {
		switch err {
		case ErrNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "order not found"})
		case ErrInvalidStatus:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "unknown order status"})
		case ErrInvalidTransition:
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"message": "status transition not allowed"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}

	return c.JSON(updated)
}
