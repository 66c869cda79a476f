package ingestionapi

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/careerlens/careerlens/pkg/auth"
	"github.com/careerlens/careerlens/pkg/fsx"
	"github.com/careerlens/careerlens/pkg/kernel"
	"github.com/careerlens/careerlens/talent/ingestion"
	"github.com/careerlens/careerlens/talent/ingestion/ingestionsrv"
)

type ImportHandlers struct {
	service    *ingestionsrv.Service
	fileSystem fsx.FileSystem
}

func NewImportHandlers(service *ingestionsrv.Service, fileSystem fsx.FileSystem) *ImportHandlers {
	return &ImportHandlers{
		service:    service,
		fileSystem: fileSystem,
	}
}

func (h *ImportHandlers) RegisterRoutes(app *fiber.App, authMiddleware fiber.Handler) {
	imports := app.Group("/api/v1/imports", authMiddleware)

	imports.Post("/", h.UploadResume)         // Upload and queue (ASYNC)
	imports.Get("/:id", h.GetImportStatus)    // Poll job status
	imports.Get("/", h.ListImports)           // Import history
	imports.Post("/sync", h.UploadResumeSync) // Upload and wait (small files, tooling)
}

// UploadResume accepts a resume upload and queues it for processing
// POST /api/v1/imports
func (h *ImportHandlers) UploadResume(c *fiber.Ctx) error {
	userID, ok := auth.GetUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	req, filePath, err := h.storeUpload(c, userID)
	if err != nil {
		return err
	}

	status, err := h.service.ImportResumeAsync(c.Context(), *req)
	if err != nil {
		// Queueing failed, drop the stored file
		_ = h.fileSystem.DeleteFile(c.Context(), filePath)
		return err
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message":    "Resume upload successful, processing started",
		"import":     status,
		"status_url": fmt.Sprintf("/api/v1/imports/%s", status.ImportID),
	})
}

// UploadResumeSync accepts a resume upload and runs the pipeline inline
// POST /api/v1/imports/sync
func (h *ImportHandlers) UploadResumeSync(c *fiber.Ctx) error {
	userID, ok := auth.GetUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	req, filePath, err := h.storeUpload(c, userID)
	if err != nil {
		return err
	}

	result, err := h.service.ImportResume(c.Context(), *req)
	if err != nil {
		_ = h.fileSystem.DeleteFile(c.Context(), filePath)
		return err
	}

	return c.JSON(result)
}

// GetImportStatus polls one import job
// GET /api/v1/imports/:id
func (h *ImportHandlers) GetImportStatus(c *fiber.Ctx) error {
	userID, ok := auth.GetUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	importID := kernel.ImportID(c.Params("id"))
	if importID.IsEmpty() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid import ID",
		})
	}

	status, err := h.service.GetImportStatus(c.Context(), importID, userID)
	if err != nil {
		return err
	}
	return c.JSON(status)
}

// ListImports lists the authenticated user's import history
// GET /api/v1/imports?page=1&page_size=20
func (h *ImportHandlers) ListImports(c *fiber.Ctx) error {
	userID, ok := auth.GetUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	pagination := kernel.PaginationOptions{
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("page_size", 20),
	}

	imports, err := h.service.ListImports(c.Context(), userID, pagination)
	if err != nil {
		return err
	}
	return c.JSON(imports)
}

// storeUpload validates the multipart upload, writes it to storage and
// returns the ready-to-queue request. Every failure comes back as an
// error for the global handler to shape.
func (h *ImportHandlers) storeUpload(c *fiber.Ctx, userID kernel.UserID) (*ingestion.ImportRequest, string, error) {
	file, err := c.FormFile("file")
	if err != nil {
		return nil, "", fiber.NewError(fiber.StatusBadRequest, "file is required")
	}

	if file.Size > ingestionsrv.MaxFileSize {
		return nil, "", ingestion.ErrFileTooLarge().
			WithDetail("size", file.Size).
			WithDetail("max_size", ingestionsrv.MaxFileSize)
	}

	mimeType := file.Header.Get("Content-Type")
	if _, ok := ingestion.DetectFormat(mimeType, file.Filename); !ok {
		return nil, "", ingestion.ErrUnsupportedFormat().
			WithDetail("detected_type", mimeType).
			WithDetail("file_extension", filepath.Ext(file.Filename))
	}

	uploaded, err := file.Open()
	if err != nil {
		return nil, "", ingestion.ErrRegistry.NewWithCause(ingestion.CodeFileReadFailed, err)
	}
	defer uploaded.Close()

	data, err := io.ReadAll(uploaded)
	if err != nil {
		return nil, "", ingestion.ErrRegistry.NewWithCause(ingestion.CodeFileReadFailed, err)
	}

	// uploads/{user_id}/{year}/{month}/{uuid}{ext}
	now := time.Now()
	filePath := fmt.Sprintf("uploads/%s/%d/%02d/%s%s",
		userID, now.Year(), now.Month(), uuid.NewString(), filepath.Ext(file.Filename))

	if err := h.fileSystem.WriteFile(c.Context(), filePath, data, mimeType); err != nil {
		return nil, "", ingestion.ErrRegistry.NewWithCause(ingestion.CodeFileReadFailed, err).
			WithMessage("Failed to store uploaded file").
			WithDetail("file_path", filePath)
	}

	return &ingestion.ImportRequest{
		OwnerID:  userID,
		FilePath: filePath,
		FileName: file.Filename,
		MIMEType: mimeType,
	}, filePath, nil
}
