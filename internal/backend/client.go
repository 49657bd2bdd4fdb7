// Package backend is the HTTP client the settings page uses to reach the API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/slackbot-settings/internal/api/dto"
	"github.com/spec-kit/slackbot-settings/internal/domain"
)

const maxErrorBody = 4 << 10

// UploadFile is one Slack export to send.
type UploadFile struct {
	Name    string
	Content io.Reader
}

// UploadRequest drives POST /api/db. Zero dates mean no delete range.
type UploadRequest struct {
	Files      []UploadFile
	DeleteFrom time.Time
	DeleteTo   time.Time
}

// Client talks to the settings API.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient builds a client rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// FetchStaff returns the stored roster.
func (c *Client) FetchStaff(ctx context.Context) ([]domain.StaffMember, error) {
	var body []dto.StaffMember
	if err := c.do(ctx, "fetch staff", http.MethodGet, "/api/staff", "", nil, &body); err != nil {
		return nil, err
	}
	members := make([]domain.StaffMember, 0, len(body))
	for _, m := range body {
		members = append(members, domain.StaffMember{ID: m.ID, Name: m.Name, AccountID: m.AccountID, Tasks: m.Tasks})
	}
	return members, nil
}

// ReplaceStaff sends the complete roster. The backend drops anything not sent.
func (c *Client) ReplaceStaff(ctx context.Context, members []domain.StaffMember) error {
	payload := make([]dto.StaffMember, 0, len(members))
	for _, m := range members {
		payload = append(payload, dto.StaffMember{ID: m.ID, Name: m.Name, AccountID: m.AccountID, Tasks: m.Tasks})
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode roster: %w", err)
	}
	return c.do(ctx, "replace staff", http.MethodPost, "/api/staff", "application/json", bytes.NewReader(raw), nil)
}

// FetchStorage returns the storage panel numbers.
func (c *Client) FetchStorage(ctx context.Context) (dto.StorageStatsResponse, error) {
	var stats dto.StorageStatsResponse
	err := c.do(ctx, "fetch storage", http.MethodGet, "/api/db", "", nil, &stats)
	return stats, err
}

// UploadExports posts export files and an optional delete range as one form.
func (c *Client) UploadExports(ctx context.Context, req UploadRequest) (dto.UpdateDataResponse, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range req.Files {
		part, err := w.CreateFormFile("jsonExport", f.Name)
		if err != nil {
			return dto.UpdateDataResponse{}, fmt.Errorf("build upload: %w", err)
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return dto.UpdateDataResponse{}, fmt.Errorf("read %s: %w", f.Name, err)
		}
	}
	if !req.DeleteFrom.IsZero() || !req.DeleteTo.IsZero() {
		if err := w.WriteField("deleteFrom", formatDate(req.DeleteFrom)); err != nil {
			return dto.UpdateDataResponse{}, fmt.Errorf("build upload: %w", err)
		}
		if err := w.WriteField("deleteTo", formatDate(req.DeleteTo)); err != nil {
			return dto.UpdateDataResponse{}, fmt.Errorf("build upload: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return dto.UpdateDataResponse{}, fmt.Errorf("build upload: %w", err)
	}

	var result dto.UpdateDataResponse
	err := c.do(ctx, "update data", http.MethodPost, "/api/db", w.FormDataContentType(), &buf, &result)
	return result, err
}

func (c *Client) do(ctx context.Context, op, method, path, contentType string, body io.Reader, out any) error {
	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return &NetworkError{Op: op, URL: url, Err: err}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("backend request failed", zap.String("op", op), zap.String("url", url), zap.Error(err))
		return &NetworkError{Op: op, URL: url, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("backend request",
		zap.String("op", op),
		zap.String("method", method),
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return rejected(op, resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &NetworkError{Op: op, URL: url, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func rejected(op string, resp *http.Response) *RejectedError {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	rerr := &RejectedError{Op: op, StatusCode: resp.StatusCode, Body: string(raw)}

	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(raw, &envelope) == nil {
		rerr.Code = envelope.Error.Code
		rerr.Message = envelope.Error.Message
	}
	return rerr
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}
