package wiki

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/stackmill/wikimport/internal/logging"
)

const (
	// DefaultTimeout bounds a single wiki API request.
	DefaultTimeout = 30 * time.Second
	// DefaultRetryAttempts bounds transient retries per request.
	DefaultRetryAttempts = 3
)

// HTTPConfig configures the REST client.
type HTTPConfig struct {
	BaseURL       string
	TokenID       string
	TokenSecret   string
	Timeout       time.Duration
	RetryAttempts int
	Logger        logging.Logger
}

// HTTPClient implements Client against a BookStack-compatible REST API.
// Authentication uses the token header scheme; transient failures (429 and
// 5xx) are retried a bounded number of times, anything else surfaces
// immediately as an APIError.
type HTTPClient struct {
	baseURL     string
	tokenID     string
	tokenSecret string
	httpClient  *http.Client
	attempts    int
	logger      logging.Logger
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient builds a REST client from the supplied configuration.
func NewHTTPClient(cfg HTTPConfig) *HTTPClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	attempts := cfg.RetryAttempts
	if attempts <= 0 {
		attempts = DefaultRetryAttempts
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOp()
	}

	return &HTTPClient{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		tokenID:     cfg.TokenID,
		tokenSecret: cfg.TokenSecret,
		httpClient:  &http.Client{Timeout: timeout},
		attempts:    attempts,
		logger:      logger,
	}
}

func (c *HTTPClient) CreateBook(ctx context.Context, title string) (int, error) {
	var out idResponse
	payload := map[string]any{"name": title}
	if err := c.doJSON(ctx, http.MethodPost, "/api/books", payload, &out); err != nil {
		return 0, err
	}
	return out.ID, nil
}

func (c *HTTPClient) CreateChapter(ctx context.Context, bookID int, title string) (int, error) {
	var out idResponse
	payload := map[string]any{"book_id": bookID, "name": title}
	if err := c.doJSON(ctx, http.MethodPost, "/api/chapters", payload, &out); err != nil {
		return 0, err
	}
	return out.ID, nil
}

func (c *HTTPClient) CreatePage(ctx context.Context, req CreatePageRequest) (int, error) {
	payload := map[string]any{
		"name":     req.Title,
		"markdown": req.Markdown,
	}
	if len(req.Tags) > 0 {
		payload["tags"] = req.Tags
	}
	switch {
	case req.BookID > 0:
		payload["book_id"] = req.BookID
	case req.ChapterID > 0:
		payload["chapter_id"] = req.ChapterID
	default:
		return 0, errors.New("wiki: create page requires a book or chapter id")
	}

	var out idResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/pages", payload, &out); err != nil {
		return 0, err
	}
	return out.ID, nil
}

func (c *HTTPClient) UpdatePage(ctx context.Context, bookID, pageID int, req UpdatePageRequest) error {
	payload := map[string]any{
		"book_id":  bookID,
		"name":     req.Title,
		"markdown": req.Markdown,
	}
	if len(req.Tags) > 0 {
		payload["tags"] = req.Tags
	}
	return c.doJSON(ctx, http.MethodPut, "/api/pages/"+strconv.Itoa(pageID), payload, nil)
}

func (c *HTTPClient) CreateAttachment(ctx context.Context, filename string, content io.Reader, pageID int) (int, error) {
	// Buffer the upload so transient retries can resend the same bytes.
	var form bytes.Buffer
	writer := multipart.NewWriter(&form)
	if err := writer.WriteField("name", filename); err != nil {
		return 0, fmt.Errorf("wiki: build attachment form: %w", err)
	}
	if err := writer.WriteField("uploaded_to", strconv.Itoa(pageID)); err != nil {
		return 0, fmt.Errorf("wiki: build attachment form: %w", err)
	}
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return 0, fmt.Errorf("wiki: build attachment form: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return 0, fmt.Errorf("wiki: read attachment %s: %w", filename, err)
	}
	if err := writer.Close(); err != nil {
		return 0, fmt.Errorf("wiki: build attachment form: %w", err)
	}

	var out idResponse
	err = c.do(ctx, http.MethodPost, "/api/attachments", writer.FormDataContentType(), form.Bytes(), &out)
	if err != nil {
		return 0, err
	}
	return out.ID, nil
}

func (c *HTTPClient) ListBooks(ctx context.Context) ([]Book, error) {
	var out struct {
		Data []Book `json:"data"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/books", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

type idResponse struct {
	ID int `json:"id"`
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, payload, out any) error {
	var body []byte
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("wiki: marshal request: %w", err)
		}
		body = encoded
	}
	return c.do(ctx, method, path, "application/json", body, out)
}

// do executes one API call with bounded transient retries. The request body
// is rebuilt from the buffered bytes on every attempt.
func (c *HTTPClient) do(ctx context.Context, method, path, contentType string, body []byte, out any) error {
	url := c.baseURL + path

	return retry.Do(
		func() error {
			var reader io.Reader
			if body != nil {
				reader = bytes.NewReader(body)
			}

			req, err := http.NewRequestWithContext(ctx, method, url, reader)
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("wiki: build request: %w", err))
			}
			req.Header.Set("Authorization", "Token "+c.tokenID+":"+c.tokenSecret)
			req.Header.Set("Accept", "application/json")
			if body != nil {
				req.Header.Set("Content-Type", contentType)
			}

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return fmt.Errorf("wiki: %s %s: %w", method, path, err)
			}
			defer func() { _ = resp.Body.Close() }()

			data, err := io.ReadAll(resp.Body)
			if err != nil {
				return fmt.Errorf("wiki: read response: %w", err)
			}

			if resp.StatusCode < 200 || resp.StatusCode > 299 {
				apiErr := &APIError{
					StatusCode: resp.StatusCode,
					Message:    apiMessage(data),
				}
				if transient(resp.StatusCode) {
					c.logger.Warn("transient wiki error, retrying", "status", resp.StatusCode, "path", path)
					return apiErr
				}
				return retry.Unrecoverable(apiErr)
			}

			if out == nil {
				return nil
			}
			if err := json.Unmarshal(data, out); err != nil {
				return retry.Unrecoverable(fmt.Errorf("wiki: parse response: %w", err))
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(c.attempts)),
		retry.Delay(500*time.Millisecond),
		retry.LastErrorOnly(true),
	)
}

func transient(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// apiMessage extracts the error message envelope when present, falling back
// to the raw body.
func apiMessage(data []byte) string {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	return strings.TrimSpace(string(data))
}
