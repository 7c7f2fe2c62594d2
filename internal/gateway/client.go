// Package gateway is the HTTP client for the collection-operations backend.
// It owns endpoint paths, request encoding and response decoding; all
// interpretation of the returned data lives in the engine and the domain
// packages.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/colops/console/internal/config"
	"github.com/colops/console/internal/domain/digest"
	"github.com/colops/console/internal/domain/escalation"
	"github.com/colops/console/internal/domain/reconcile"
	"github.com/colops/console/internal/monitoring/logging"
	"github.com/colops/console/pkg/errors"
)

// Gateway is the backend capability consumed by the engine and the reminder
// service.  Declared here so callers can substitute a mock in tests.
type Gateway interface {
	// LatestAutoEvent fetches the newest alert with side effects applied:
	// the backend writes exact matches to the ledger before responding.
	LatestAutoEvent(ctx context.Context) (*reconcile.Event, error)

	// LatestPreviewEvent fetches the newest alert without applying anything.
	LatestPreviewEvent(ctx context.Context) (*reconcile.Event, error)

	// PendingOperations lists operations awaiting a confirm/cancel decision.
	PendingOperations(ctx context.Context) ([]reconcile.PendingOperation, error)

	// Confirm applies the pending operation to the ledger.
	Confirm(ctx context.Context, id int64) error

	// Cancel discards the pending operation.
	Cancel(ctx context.Context, id int64) error

	// Upload submits receipt images for OCR extraction and matching.
	Upload(ctx context.Context, files []UploadFile) (*reconcile.UploadResult, error)

	// PaymentsLog returns the newest limit entries of the applied-payments
	// history.
	PaymentsLog(ctx context.Context, limit int) ([]reconcile.PaymentLogEntry, error)

	// UnpaidInvoices lists invoices eligible for reminder tracking.
	UnpaidInvoices(ctx context.Context) ([]escalation.Invoice, error)

	// ToggleReminder turns tracking on or off for the invoice at row.
	ToggleReminder(ctx context.Context, row int, active bool) error

	// PauseReminder pauses or resumes tracking for the invoice at row.
	PauseReminder(ctx context.Context, row int, paused bool) error

	// SendReminder sends the currently awaited reminder stage for row.
	SendReminder(ctx context.Context, row int) error

	// DigestSchedule fetches the daily digest delivery configuration.
	DigestSchedule(ctx context.Context) (*digest.Schedule, error)

	// UpdateDigestSchedule stores a new digest delivery configuration.
	UpdateDigestSchedule(ctx context.Context, s digest.Schedule) error

	// DigestPreview renders the digest as it would be sent now.
	DigestPreview(ctx context.Context) (*digest.Preview, error)

	// SendDigestNow dispatches the digest immediately, outside the schedule.
	SendDigestNow(ctx context.Context) error
}

// UploadFile is one file of a manual upload batch.
type UploadFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// Client implements Gateway over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     logging.Logger
}

// NewClient builds a Client from cfg.  The base URL is normalized to carry no
// trailing slash.
func NewClient(cfg config.GatewayConfig, logger logging.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.Named("gateway"),
	}
}

// latestEvent handles both alert endpoints: they share shape and the 404
// convention, differing only in whether the backend applies exact matches.
func (c *Client) latestEvent(ctx context.Context, path string) (*reconcile.Event, error) {
	var ev reconcile.Event
	found, err := c.doJSON(ctx, http.MethodGet, path, nil, &ev)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &ev, nil
}

// LatestAutoEvent implements Gateway.
func (c *Client) LatestAutoEvent(ctx context.Context) (*reconcile.Event, error) {
	return c.latestEvent(ctx, "/api/outlook-to-excel-payments")
}

// LatestPreviewEvent implements Gateway.
func (c *Client) LatestPreviewEvent(ctx context.Context) (*reconcile.Event, error) {
	return c.latestEvent(ctx, "/api/outlook-payments-preview")
}

// PendingOperations implements Gateway.
func (c *Client) PendingOperations(ctx context.Context) ([]reconcile.PendingOperation, error) {
	var out struct {
		Pending []reconcile.PendingOperation `json:"pending"`
	}
	if _, err := c.doJSON(ctx, http.MethodGet, "/api/pending-operations", nil, &out); err != nil {
		return nil, err
	}
	return out.Pending, nil
}

// Confirm implements Gateway.
func (c *Client) Confirm(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/api/operations/%d/confirm", id)
	_, err := c.doJSON(ctx, http.MethodPost, path, nil, nil)
	return err
}

// Cancel implements Gateway.
func (c *Client) Cancel(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/api/operations/%d/cancel", id)
	_, err := c.doJSON(ctx, http.MethodPost, path, nil, nil)
	return err
}

// Upload implements Gateway.  Files go out as one multipart form under the
// repeated field name "images".
func (c *Client) Upload(ctx context.Context, files []UploadFile) (*reconcile.UploadResult, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, f := range files {
		part, err := mw.CreateFormFile("images", f.Name)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "gateway: building multipart body")
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "gateway: building multipart body")
		}
	}
	if err := mw.Close(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "gateway: building multipart body")
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/process-images", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var res reconcile.UploadResult
	if _, err := c.do(req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// PaymentsLog implements Gateway.
func (c *Client) PaymentsLog(ctx context.Context, limit int) ([]reconcile.PaymentLogEntry, error) {
	path := "/api/payments-log?limit=" + strconv.Itoa(limit)
	var out struct {
		Entries []reconcile.PaymentLogEntry `json:"entries"`
	}
	if _, err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Entries, nil
}

// UnpaidInvoices implements Gateway.
func (c *Client) UnpaidInvoices(ctx context.Context) ([]escalation.Invoice, error) {
	var out struct {
		Invoices []escalation.Invoice `json:"invoices"`
	}
	if _, err := c.doJSON(ctx, http.MethodGet, "/api/unpaid-invoices", nil, &out); err != nil {
		return nil, err
	}
	return out.Invoices, nil
}

// ToggleReminder implements Gateway.
func (c *Client) ToggleReminder(ctx context.Context, row int, active bool) error {
	path := fmt.Sprintf("/api/invoices/%d/reminder", row)
	_, err := c.doJSON(ctx, http.MethodPost, path, map[string]bool{"active": active}, nil)
	return err
}

// PauseReminder implements Gateway.
func (c *Client) PauseReminder(ctx context.Context, row int, paused bool) error {
	path := fmt.Sprintf("/api/invoices/%d/reminder-pause", row)
	_, err := c.doJSON(ctx, http.MethodPost, path, map[string]bool{"paused": paused}, nil)
	return err
}

// SendReminder implements Gateway.
func (c *Client) SendReminder(ctx context.Context, row int) error {
	path := fmt.Sprintf("/api/invoices/%d/reminder-send", row)
	_, err := c.doJSON(ctx, http.MethodPost, path, nil, nil)
	return err
}

// DigestSchedule implements Gateway.  A 404 means no schedule has been
// stored yet; callers fall back to their defaults.
func (c *Client) DigestSchedule(ctx context.Context) (*digest.Schedule, error) {
	var s digest.Schedule
	found, err := c.doJSON(ctx, http.MethodGet, "/api/digest/schedule", nil, &s)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &s, nil
}

// UpdateDigestSchedule implements Gateway.
func (c *Client) UpdateDigestSchedule(ctx context.Context, s digest.Schedule) error {
	_, err := c.doJSON(ctx, http.MethodPut, "/api/digest/schedule", s, nil)
	return err
}

// DigestPreview implements Gateway.
func (c *Client) DigestPreview(ctx context.Context) (*digest.Preview, error) {
	var p digest.Preview
	if _, err := c.doJSON(ctx, http.MethodGet, "/api/digest/preview", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SendDigestNow implements Gateway.
func (c *Client) SendDigestNow(ctx context.Context) error {
	_, err := c.doJSON(ctx, http.MethodPost, "/api/digest/send", nil, nil)
	return err
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "gateway: building request")
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	return req, nil
}

// doJSON issues a request with an optional JSON body and decodes a JSON
// response into dest (when dest is non-nil).  The returned bool is false only
// for the benign-404 case, where no error is reported.
func (c *Client) doJSON(ctx context.Context, method, path string, body, dest interface{}) (bool, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return false, errors.Wrap(err, errors.ErrCodeSerialization, "gateway: encoding request body")
		}
		reader = bytes.NewReader(raw)
	}

	req, err := c.newRequest(ctx, method, path, reader)
	if err != nil {
		return false, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, dest)
}

func (c *Client) do(req *http.Request, dest interface{}) (bool, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeGatewayUnavailable, "gateway: request failed")
	}
	defer resp.Body.Close()

	// GET 404 means "nothing new", not an error.  Mutations never get this
	// treatment: a 404 on a confirm/cancel is a stale reference.
	if resp.StatusCode == http.StatusNotFound && req.Method == http.MethodGet {
		io.Copy(io.Discard, resp.Body)
		return false, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false, c.responseError(req, resp)
	}

	if dest == nil {
		io.Copy(io.Discard, resp.Body)
		return true, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return false, errors.Wrap(err, errors.ErrCodeGatewayResponse, "gateway: decoding response")
	}
	return true, nil
}

// responseError maps a non-2xx response to an AppError, reading the backend's
// error detail when it provides one.
func (c *Client) responseError(req *http.Request, resp *http.Response) error {
	detail := readErrorDetail(resp.Body)

	code := errors.ErrCodeGatewayResponse
	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusConflict {
		code = errors.ErrCodeStaleReference
	}

	c.logger.Warn("gateway request rejected",
		logging.String("method", req.Method),
		logging.String("path", req.URL.Path),
		logging.Int("status", resp.StatusCode),
		logging.String("detail", detail),
	)

	msg := fmt.Sprintf("gateway: %s %s returned HTTP %d", req.Method, req.URL.Path, resp.StatusCode)
	return errors.New(code, msg).WithDetail(detail)
}

// readErrorDetail extracts {"detail": ...} or {"error": ...} from an error
// body, falling back to the raw text, truncated to keep logs sane.
func readErrorDetail(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var payload struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	if json.Unmarshal(raw, &payload) == nil {
		if payload.Detail != "" {
			return payload.Detail
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return strings.TrimSpace(string(raw))
}
