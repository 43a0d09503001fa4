// Package server exposes the bills backend consumed by the client:
// list, multipart create and JSON update, mirroring the capability
// surface of the store interfaces.
package server

import (
	"errors"
	"io"
	"math"
	"net/http"

	"github.com/billedhq/expense-client/internal/attachment"
	"github.com/billedhq/expense-client/internal/domain/entity"
	"github.com/billedhq/expense-client/internal/repository"
	"github.com/billedhq/expense-client/internal/storage"
	"github.com/billedhq/expense-client/pkg/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler handles bill API requests
type Handler struct {
	repo      *repository.BillRepository
	receipts  *storage.ReceiptStorage
	validator *attachment.Validator
	logger    *zap.Logger
}

// NewHandler creates a new bills handler
func NewHandler(repo *repository.BillRepository, receipts *storage.ReceiptStorage, logger *zap.Logger) *Handler {
	return &Handler{
		repo:      repo,
		receipts:  receipts,
		validator: attachment.NewValidator(),
		logger:    logger,
	}
}

// Register mounts the bill routes on the engine
func (h *Handler) Register(engine *gin.Engine) {
	engine.GET("/bills", h.List)
	engine.POST("/bills", h.Create)
	engine.PUT("/bills/:id", h.Update)
	engine.Static("/images", h.receipts.Dir())
}

// billPayload is the wire shape of a bill. Amount and vat are pointers so
// the lenient client serialization (null for unparseable input) round-trips.
type billPayload struct {
	ID         string   `json:"id,omitempty"`
	Email      string   `json:"email"`
	Type       string   `json:"type"`
	Name       string   `json:"name"`
	Date       string   `json:"date"`
	Amount     *float64 `json:"amount"`
	Vat        *float64 `json:"vat"`
	Pct        int      `json:"pct"`
	Commentary string   `json:"commentary"`
	FileURL    string   `json:"fileUrl"`
	FileName   string   `json:"fileName"`
	Status     string   `json:"status"`
}

func toPayload(bill entity.Bill) billPayload {
	return billPayload{
		ID:         bill.ID,
		Email:      bill.Email,
		Type:       bill.Type,
		Name:       bill.Name,
		Date:       bill.Date,
		Amount:     numberPtr(bill.Amount),
		Vat:        numberPtr(bill.Vat),
		Pct:        bill.Pct,
		Commentary: bill.Commentary,
		FileURL:    bill.FileURL,
		FileName:   bill.FileName,
		Status:     bill.Status.String(),
	}
}

func (p billPayload) toBill() entity.Bill {
	return entity.Bill{
		ID:         p.ID,
		Email:      p.Email,
		Type:       p.Type,
		Name:       p.Name,
		Date:       p.Date,
		Amount:     numberValue(p.Amount),
		Vat:        numberValue(p.Vat),
		Pct:        p.Pct,
		Commentary: p.Commentary,
		FileURL:    p.FileURL,
		FileName:   p.FileName,
		Status:     entity.Status(p.Status),
	}
}

func numberPtr(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

func numberValue(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}

// List returns all stored bills
func (h *Handler) List(c *gin.Context) {
	bills, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list bills", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list bills"})
		return
	}

	payload := make([]billPayload, 0, len(bills))
	for _, bill := range bills {
		payload = append(payload, toPayload(bill))
	}
	c.JSON(http.StatusOK, payload)
}

// Create accepts the multipart attachment upload, stores the blob and opens
// a pending bill record for it. The response carries fileUrl and key as a
// pair; neither exists without the other.
func (h *Handler) Create(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file"})
		return
	}
	defer file.Close()

	email := c.Request.FormValue("email")
	if err := utils.ValidateEmail(email); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email"})
		return
	}

	candidate := entity.AttachmentCandidate{
		FileName:  header.Filename,
		Extension: attachment.ExtensionOf(header.Filename),
	}
	if !h.validator.IsAcceptable(candidate) {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": attachment.RejectionMessage})
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("Failed to read uploaded file", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file"})
		return
	}

	key := repository.NewKey()
	fileURL, err := h.receipts.Save(c.Request.Context(), key, header.Filename, content)
	if err != nil {
		h.logger.Error("Failed to store receipt", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store receipt"})
		return
	}

	bill := entity.Bill{
		ID:       key,
		Email:    email,
		Amount:   math.NaN(),
		Vat:      math.NaN(),
		Pct:      20,
		FileURL:  fileURL,
		FileName: header.Filename,
		Status:   entity.StatusPending,
	}
	if err := h.repo.Create(c.Request.Context(), &bill); err != nil {
		h.logger.Error("Failed to create bill record", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create bill"})
		return
	}

	h.logger.Info("Bill opened",
		zap.String("key", key),
		zap.String("email", email),
		zap.String("file_name", header.Filename))

	c.JSON(http.StatusOK, gin.H{
		"fileUrl": fileURL,
		"key":     key,
	})
}

// Update writes the submitted bill fields onto the record named by the id
func (h *Handler) Update(c *gin.Context) {
	id := c.Param("id")

	var payload billPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid bill payload"})
		return
	}

	bill := payload.toBill()
	bill.ID = id
	bill.Name = utils.SanitizeString(bill.Name)
	bill.Commentary = utils.SanitizeString(bill.Commentary)

	if err := h.repo.Update(c.Request.Context(), &bill); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "bill not found"})
			return
		}
		h.logger.Error("Failed to update bill", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update bill"})
		return
	}

	stored, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to reload bill", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reload bill"})
		return
	}
	c.JSON(http.StatusOK, toPayload(*stored))
}
