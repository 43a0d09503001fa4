// Package api implements the persistence service capability surface over
// HTTP: multipart create, JSON update and JSON list against the bills
// backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/billedhq/expense-client/internal/domain/entity"
	"github.com/billedhq/expense-client/internal/store"
	"go.uber.org/zap"
)

// Config holds API client settings
type Config struct {
	// BaseURL is the backend root, e.g. http://localhost:5678
	BaseURL string

	// Timeout is the per-call timeout
	Timeout time.Duration
}

// Client talks to the bills backend. It implements store.Store.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new API client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Bills returns the bills capability
func (c *Client) Bills() store.BillsClient {
	return &billsClient{client: c}
}

type billsClient struct {
	client *Client
}

// List retrieves all bill records
func (b *billsClient) List(ctx context.Context) ([]entity.Bill, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.client.baseURL+"/bills", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build list request: %w", err)
	}

	resp, err := b.client.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bills: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b.client.logger.Warn("List bills failed", zap.Int("status", resp.StatusCode))
		return nil, store.NewTransportError(resp.StatusCode)
	}

	var bills []entity.Bill
	if err := json.NewDecoder(resp.Body).Decode(&bills); err != nil {
		return nil, fmt.Errorf("failed to decode bill list: %w", err)
	}
	return bills, nil
}

// Create uploads the attachment as multipart form data (file blob + owner
// email) and returns the stored fileUrl/key pair.
func (b *billsClient) Create(ctx context.Context, input store.CreateInput) (entity.UploadResult, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, input.FileName))
	contentType := input.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return entity.UploadResult{}, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := part.Write(input.Content); err != nil {
		return entity.UploadResult{}, fmt.Errorf("failed to write file part: %w", err)
	}
	if err := writer.WriteField("email", input.Email); err != nil {
		return entity.UploadResult{}, fmt.Errorf("failed to write email field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return entity.UploadResult{}, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.client.baseURL+"/bills", &body)
	if err != nil {
		return entity.UploadResult{}, fmt.Errorf("failed to build create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	for k, v := range input.Headers {
		req.Header.Set(k, v)
	}

	resp, err := b.client.httpClient.Do(req)
	if err != nil {
		return entity.UploadResult{}, fmt.Errorf("failed to upload attachment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b.client.logger.Warn("Create bill failed", zap.Int("status", resp.StatusCode))
		return entity.UploadResult{}, store.NewTransportError(resp.StatusCode)
	}

	var result entity.UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return entity.UploadResult{}, fmt.Errorf("failed to decode upload result: %w", err)
	}
	return result, nil
}

// Update writes the assembled bill fields onto the record named by the
// selector.
func (b *billsClient) Update(ctx context.Context, input store.UpdateInput) (entity.Bill, error) {
	payload, err := json.Marshal(billPayload(input.Bill))
	if err != nil {
		return entity.Bill{}, fmt.Errorf("failed to serialize bill: %w", err)
	}

	url := fmt.Sprintf("%s/bills/%s", b.client.baseURL, input.Selector)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(payload))
	if err != nil {
		return entity.Bill{}, fmt.Errorf("failed to build update request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.httpClient.Do(req)
	if err != nil {
		return entity.Bill{}, fmt.Errorf("failed to update bill: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b.client.logger.Warn("Update bill failed",
			zap.String("selector", input.Selector),
			zap.Int("status", resp.StatusCode))
		return entity.Bill{}, store.NewTransportError(resp.StatusCode)
	}

	var updated entity.Bill
	if err := json.NewDecoder(resp.Body).Decode(&updated); err != nil {
		return entity.Bill{}, fmt.Errorf("failed to decode updated bill: %w", err)
	}
	return updated, nil
}

// billPayload converts a bill to its wire shape. NaN amounts travel as JSON
// null, matching the lenient serialization the form has always used.
func billPayload(bill entity.Bill) map[string]interface{} {
	payload := map[string]interface{}{
		"email":      bill.Email,
		"type":       bill.Type,
		"name":       bill.Name,
		"date":       bill.Date,
		"amount":     numberOrNull(bill.Amount),
		"vat":        numberOrNull(bill.Vat),
		"pct":        bill.Pct,
		"commentary": bill.Commentary,
		"fileUrl":    bill.FileURL,
		"fileName":   bill.FileName,
		"status":     bill.Status,
	}
	if bill.ID != "" {
		payload["id"] = bill.ID
	}
	return payload
}

func numberOrNull(v float64) interface{} {
	if math.IsNaN(v) {
		return nil
	}
	return v
}
