// Package api exposes the extraction pipeline over HTTP.
package api

import (
	"bytes"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/mmtuentertainment/PayPlan-sub009/internal/extract"
	"github.com/mmtuentertainment/PayPlan-sub009/internal/models"
	"github.com/mmtuentertainment/PayPlan-sub009/internal/writer"
)

// Version reported by the health endpoint and response envelopes.
const Version = "1.0.0"

// ExtractRequest is the JSON body accepted by the extract endpoints.
type ExtractRequest struct {
	Text        string            `json:"text"`
	Timezone    string            `json:"timezone"`
	DateLocale  models.DateLocale `json:"dateLocale,omitempty"`
	BypassCache bool              `json:"bypassCache,omitempty"`
}

// ExtractResponse is the JSON envelope from POST /api/extract.
type ExtractResponse struct {
	Success           bool              `json:"success"`
	Error             string            `json:"error,omitempty"`
	Items             []models.Item     `json:"items"`
	Issues            []models.Issue    `json:"issues"`
	DuplicatesRemoved int               `json:"duplicatesRemoved"`
	DateLocale        models.DateLocale `json:"dateLocale,omitempty"`
	Count             int               `json:"count"`
	TotalDue          float64           `json:"totalDue"`
	Version           string            `json:"version,omitempty"`
}

// Handler holds the HTTP handlers for the API.
type Handler struct {
	svc *extract.Service
	log *zap.Logger
}

// NewHandler builds a Handler around an extraction service. A nil logger
// is replaced with a no-op logger.
func NewHandler(svc *extract.Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{svc: svc, log: log}
}

// Register sets up the HTTP routes.
func (h *Handler) Register(app *fiber.App) {
	app.Get("/api/health", h.HandleHealth)
	app.Post("/api/extract", h.HandleExtract)
	app.Post("/api/extract/csv", h.HandleExtractCSV)
}

// HandleHealth reports service liveness and version.
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"engine":  "fiber",
		"version": Version,
	})
}

// HandleExtract runs the pipeline over a pasted text and returns the
// structured result.
func (h *Handler) HandleExtract(c *fiber.Ctx) error {
	res, err := h.runExtraction(c)
	if err != nil {
		return h.writeError(c, statusForError(err), err)
	}

	var totalDue float64
	for _, item := range res.Items {
		totalDue += item.Amount
	}

	return c.JSON(ExtractResponse{
		Success:           true,
		Items:             res.Items,
		Issues:            res.Issues,
		DuplicatesRemoved: res.DuplicatesRemoved,
		DateLocale:        res.DateLocale,
		Count:             len(res.Items),
		TotalDue:          totalDue,
		Version:           Version,
	})
}

// HandleExtractCSV runs the pipeline and returns the items as CSV.
func (h *Handler) HandleExtractCSV(c *fiber.Ctx) error {
	res, err := h.runExtraction(c)
	if err != nil {
		return h.writeError(c, statusForError(err), err)
	}

	var buf bytes.Buffer
	w := &writer.CSVWriter{IncludeHeader: true}
	if err := w.Write(&buf, res); err != nil {
		return h.writeError(c, fiber.StatusInternalServerError, errors.New("CSV generation failed"))
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="payplan.csv"`)
	return c.Send(buf.Bytes())
}

func (h *Handler) runExtraction(c *fiber.Ctx) (*models.ExtractionResult, error) {
	var req ExtractRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, errBadRequest
	}
	if req.Text == "" {
		return nil, errMissingText
	}
	if req.Timezone == "" {
		req.Timezone = "UTC"
	}

	res, err := h.svc.Extract(req.Text, req.Timezone, models.Options{
		DateLocale:  req.DateLocale,
		BypassCache: req.BypassCache,
	})
	if err != nil {
		return nil, err
	}

	h.log.Info("extraction completed",
		zap.Int("items", len(res.Items)),
		zap.Int("issues", len(res.Issues)),
		zap.Int("duplicatesRemoved", res.DuplicatesRemoved),
	)
	return res, nil
}

var (
	errBadRequest  = errors.New("request body must be JSON with a text field")
	errMissingText = errors.New("no text provided; use the text field")
)

// statusForError maps input-rejection errors to client statuses;
// everything else is a server error.
func statusForError(err error) int {
	switch {
	case errors.Is(err, extract.ErrInputTooLarge):
		return fiber.StatusRequestEntityTooLarge
	case errors.Is(err, extract.ErrNoSignal),
		errors.Is(err, errBadRequest),
		errors.Is(err, errMissingText):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func (h *Handler) writeError(c *fiber.Ctx, status int, err error) error {
	h.log.Warn("extraction request rejected", zap.Int("status", status), zap.Error(err))
	return c.Status(status).JSON(ExtractResponse{
		Success: false,
		Error:   err.Error(),
		Items:   []models.Item{},
		Issues:  []models.Issue{},
	})
}
