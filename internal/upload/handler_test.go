package upload

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func newTestApp(t *testing.T) (*fiber.App, string) {
	t.Helper()
	dir := t.TempDir()
	app := fiber.New()
	NewHandler(dir, "/uploads").RegisterAdminRoutes(app, func(c *fiber.Ctx) error { return c.Next() })
	return app, dir
}

func multipartUpload(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func TestUploadImage(t *testing.T) {
	app, dir := newTestApp(t)

	body, contentType := multipartUpload(t, "coat.webp", []byte("fake image bytes"))
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var payload struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.HasPrefix(payload.URL, "/uploads/") || !strings.HasSuffix(payload.URL, ".webp") {
		t.Fatalf("unexpected url %q", payload.URL)
	}
	// the generated name must not be the client's filename
	if strings.Contains(payload.URL, "coat") {
		t.Fatalf("client filename leaked into %q", payload.URL)
	}

	name := strings.TrimPrefix(payload.URL, "/uploads/")
	saved, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("saved file: %v", err)
	}
	if string(saved) != "fake image bytes" {
		t.Fatal("saved content differs from the upload")
	}
}

func TestUploadRejectsUnknownExtensions(t *testing.T) {
	app, _ := newTestApp(t)

	for _, filename := range []string{"malware.exe", "notes.txt", "vector.svg", "noext"} {
		body, contentType := multipartUpload(t, filename, []byte("x"))
		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", contentType)

		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", filename, resp.StatusCode)
		}
	}
}

func TestUploadRequiresFile(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/upload", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
