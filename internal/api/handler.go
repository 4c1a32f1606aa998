package api

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/insightdelivered/releve-converter/internal/buildinfo"
	"github.com/insightdelivered/releve-converter/internal/converter"
	"github.com/insightdelivered/releve-converter/internal/extractor"
	"github.com/insightdelivered/releve-converter/internal/logger"
	"github.com/insightdelivered/releve-converter/internal/models"
	"github.com/insightdelivered/releve-converter/internal/writer"
)

// Uploads larger than this are rejected.
const maxUploadSize = 32 << 20

// ConvertResponse is the JSON response from the /api/convert endpoint.
type ConvertResponse struct {
	Success        bool                 `json:"success"`
	Error          string               `json:"error,omitempty"`
	RunID          string               `json:"runId,omitempty"`
	Account        string               `json:"account,omitempty"`
	StatementMonth string               `json:"statementMonth,omitempty"`
	Count          int                  `json:"count"`
	Balance        *models.Balance      `json:"balance,omitempty"`
	Transactions   []models.Transaction `json:"transactions"`
	Uncategorized  int                  `json:"uncategorized"`
	Warnings       []models.Warning     `json:"warnings,omitempty"`
	CSV            string               `json:"csv,omitempty"`
}

// PageExtractor reads the fragment pages of an uploaded document.
type PageExtractor func(data io.ReaderAt, size int64) ([][]string, error)

// Handler holds the HTTP handlers for the API.
type Handler struct {
	Converter *converter.Converter
	Extract   PageExtractor
	Log       zerolog.Logger
}

// NewHandler returns a Handler extracting uploads with the PDF reader.
func NewHandler(conv *converter.Converter, log zerolog.Logger) *Handler {
	return &Handler{Converter: conv, Extract: extractor.ReadPages, Log: log}
}

// NewApp builds the fiber application with all routes registered.
func (h *Handler) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "releve-converter",
		BodyLimit:             maxUploadSize,
		DisableStartupMessage: true,
	})
	h.RegisterRoutes(app)
	return app
}

// RegisterRoutes sets up the HTTP routes.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type",
	}))
	app.Use(h.withLogger)
	app.Get("/api/health", h.HandleHealth)
	app.Post("/api/convert", h.HandleConvert)
}

func (h *Handler) withLogger(c *fiber.Ctx) error {
	reqLog := h.Log.With().Str("request_id", uuid.NewString()).Logger()
	c.SetUserContext(logger.WithContext(c.UserContext(), reqLog))
	err := c.Next()
	reqLog.Info().
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", c.Response().StatusCode()).
		Msg("request")
	return err
}

// HandleHealth reports liveness and the build version.
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

// HandleConvert converts one uploaded statement PDF. The statement file
// naming convention applies to the upload's file name, or to the optional
// "name" form field when present.
func (h *Handler) HandleConvert(c *fiber.Ctx) error {
	log := logger.FromContext(c.UserContext())

	fh, err := c.FormFile("file")
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "No file uploaded. Use form field 'file'.")
	}
	if !strings.HasSuffix(strings.ToLower(fh.Filename), ".pdf") {
		return writeError(c, fiber.StatusBadRequest, "Only PDF files are supported.")
	}

	name := filepath.Base(fh.Filename)
	if override := c.FormValue("name"); override != "" {
		name = filepath.Base(override)
	}

	f, err := fh.Open()
	if err != nil {
		return writeError(c, fiber.StatusInternalServerError, "Failed to read uploaded file.")
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return writeError(c, fiber.StatusInternalServerError, "Failed to read uploaded file.")
	}

	pages, err := h.Extract(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		log.Warn().Err(err).Str("file", name).Msg("extraction failed")
		return writeError(c, fiber.StatusUnprocessableEntity, fmt.Sprintf("PDF extraction failed: %v", err))
	}

	stmt, warnings, err := h.Converter.ConvertPages(name, pages)
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, err.Error())
	}
	report := h.Converter.Categorize(stmt.Transactions)
	warnings = append(warnings, report.Warnings()...)

	var csvBuf bytes.Buffer
	w := &writer.CSVWriter{Categorized: true}
	if err := w.Write(&csvBuf, stmt.Transactions); err != nil {
		return writeError(c, fiber.StatusInternalServerError, fmt.Sprintf("CSV generation failed: %v", err))
	}

	txns := stmt.Transactions
	if txns == nil {
		txns = []models.Transaction{}
	}

	return c.JSON(ConvertResponse{
		Success:        true,
		RunID:          uuid.NewString(),
		Account:        stmt.Account,
		StatementMonth: fmt.Sprintf("%04d-%02d", stmt.Year, stmt.Month),
		Count:          len(txns),
		Balance:        &stmt.Balance,
		Transactions:   txns,
		Uncategorized:  report.Count(),
		Warnings:       warnings,
		CSV:            csvBuf.String(),
	})
}

func writeError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(ConvertResponse{
		Success:      false,
		Error:        msg,
		Transactions: []models.Transaction{},
	})
}
