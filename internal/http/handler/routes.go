package handler

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"

	"filegate/internal/auth"
	"filegate/internal/http/middleware"
	"filegate/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app. All file
// endpoints sit behind RequireAuth; health probes and metrics do not.
func RegisterRoutes(app *fiber.App, db *sql.DB, svc service.FileService, verifier auth.Verifier) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	files := app.Group("/files", middleware.RequireAuth(verifier))
	files.Post("/upload", UploadFile(svc))
	files.Post("/sign", SignFile(svc))
	files.Post("/delete", DeleteFile(svc))
}

// HealthCheck reports readiness by pinging the database.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a plain liveness endpoint.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

type uploadResponse struct {
	Success  bool   `json:"success"`
	FileKey  string `json:"fileKey"`
	FileName string `json:"fileName"`
	FileSize int64  `json:"fileSize"`
	FileType string `json:"fileType"`
}

// UploadFile handles POST /files/upload (multipart/form-data, field name: file).
//
// @Summary Upload a supporting document
// @Accept mpfd
// @Produce json
// @Param file formData file true "document payload"
// @Success 200 {object} uploadResponse
// @Router /files/upload [post]
func UploadFile(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := middleware.IdentityFromCtx(c)
		if !ok {
			return writeError(c, fiber.StatusUnauthorized, "AUTH_REQUIRED", "authorization token is required")
		}

		// A userId form field may be present but is never trusted; the key is
		// built from the verified token identity only.
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		up, err := svc.Upload(c.UserContext(), service.UploadInput{
			Reader:      f,
			FileName:    fh.Filename,
			ContentType: ct,
			Size:        fh.Size,
			Owner:       identity,
		})
		if err != nil {
			return writeServiceError(c, err)
		}

		return c.JSON(uploadResponse{
			Success:  true,
			FileKey:  up.FileKey,
			FileName: up.FileName,
			FileSize: up.Size,
			FileType: up.ContentType,
		})
	}
}

type signRequest struct {
	FileKey   string `json:"fileKey"`
	FileName  string `json:"fileName"`
	ExpiresIn int    `json:"expiresIn"`
	Download  bool   `json:"download"`
}

type signResponse struct {
	Success   bool   `json:"success"`
	SignedURL string `json:"signedUrl"`
	ExpiresIn int    `json:"expiresIn"`
}

// SignFile handles POST /files/sign.
//
// @Summary Issue a time-boxed signed access URL
// @Accept json
// @Produce json
// @Param request body signRequest true "sign request"
// @Success 200 {object} signResponse
// @Router /files/sign [post]
func SignFile(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := middleware.IdentityFromCtx(c)
		if !ok {
			return writeError(c, fiber.StatusUnauthorized, "AUTH_REQUIRED", "authorization token is required")
		}

		var req signRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be valid JSON")
		}

		link, err := svc.Sign(c.UserContext(), service.SignInput{
			FileKey:   req.FileKey,
			FileName:  req.FileName,
			ExpiresIn: req.ExpiresIn,
			Download:  req.Download,
			Caller:    identity,
		})
		if err != nil {
			return writeServiceError(c, err)
		}

		return c.JSON(signResponse{
			Success:   true,
			SignedURL: link.URL,
			ExpiresIn: link.ExpiresIn,
		})
	}
}

type deleteRequest struct {
	FileKey string `json:"fileKey"`
}

type deleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	FileKey string `json:"fileKey"`
	UserID  string `json:"userId"`
}

// DeleteFile handles POST /files/delete.
//
// @Summary Delete an owned document
// @Accept json
// @Produce json
// @Param request body deleteRequest true "delete request"
// @Success 200 {object} deleteResponse
// @Router /files/delete [post]
func DeleteFile(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := middleware.IdentityFromCtx(c)
		if !ok {
			return writeError(c, fiber.StatusUnauthorized, "AUTH_REQUIRED", "authorization token is required")
		}

		var req deleteRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be valid JSON")
		}

		if err := svc.Delete(c.UserContext(), req.FileKey, identity); err != nil {
			return writeServiceError(c, err)
		}

		return c.JSON(deleteResponse{
			Success: true,
			Message: "file deleted",
			FileKey: req.FileKey,
			UserID:  identity.ID,
		})
	}
}
