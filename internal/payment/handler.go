package payment

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"foodifusion/internal/llm"
)

const formField = "payment_screenshot"

// multipartOverhead is the room left for boundaries and part headers on top
// of the screenshot limit.
const multipartOverhead = 64 << 10

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// POST /payments/verify
func (h *Handler) Verify(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.service.receiver.maxBytes+multipartOverhead)

	header, err := c.FormFile(formField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusBadRequest, Result{Message: h.invalidFileMessage()})
			return
		}
		c.JSON(http.StatusBadRequest, Result{Message: "No file uploaded or an upload error occurred."})
		return
	}

	file, err := header.Open()
	if err != nil {
		h.logger.Error("failed to open multipart file", "error", err)
		c.JSON(http.StatusInternalServerError, Result{Message: "Failed to save uploaded file."})
		return
	}
	defer file.Close()

	res, err := h.service.VerifyUpload(c.Request.Context(), c.GetString("sessionID"), Upload{
		File:         file,
		Filename:     header.Filename,
		DeclaredType: header.Header.Get("Content-Type"),
		Size:         header.Size,
	})

	switch {
	case err == nil:
		c.JSON(http.StatusOK, res)
	case errors.Is(err, llm.ErrNotConfigured):
		c.JSON(http.StatusServiceUnavailable, Result{Message: "AI service is not configured."})
	case errors.Is(err, ErrInvalidUpload):
		c.JSON(http.StatusBadRequest, Result{Message: h.invalidFileMessage()})
	case errors.Is(err, ErrServiceUnavailable):
		c.JSON(http.StatusBadGateway, Result{Message: "AI service error. Please try again later."})
	default:
		h.logger.Error("payment verification failed", "session_id", c.GetString("sessionID"), "error", err)
		c.JSON(http.StatusInternalServerError, Result{Message: "Failed to save uploaded file."})
	}
}

func (h *Handler) invalidFileMessage() string {
	return fmt.Sprintf("Invalid file. Please upload a valid image (JPG, PNG, GIF) under %dMB.", h.service.receiver.MaxMB())
}
