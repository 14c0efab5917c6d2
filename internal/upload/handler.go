package upload

import (
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// allowedExtensions is the product-image allow-list.
var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
}

// Handler stores uploaded product images under generated names and hands
// back the public URL they are served from.
type Handler struct {
	dir        string
	publicPath string
}

// NewHandler takes the on-disk directory files are written to and the URL
// prefix they are exposed under (wired to app.Static in main).
func NewHandler(dir, publicPath string) *Handler {
	return &Handler{dir: dir, publicPath: publicPath}
}

func (h *Handler) RegisterAdminRoutes(app *fiber.App, gate fiber.Handler) {
	app.Post("/upload", gate, h.uploadImage)
}

func (h *Handler) uploadImage(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "file is required"})
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "only png, jpg, jpeg and webp images are supported"})
	}

	name := uuid.NewString() + ext
	if err := c.SaveFile(file, filepath.Join(h.dir, name)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"url": h.publicPath + "/" + name})
}
