// Package backend talks to the business assistant's HTTP API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/sakhi/internal/common"
	"github.com/Veraticus/sakhi/internal/model"
	"github.com/Veraticus/sakhi/internal/session"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Endpoint paths.
const (
	PathConfirmItems = "/api/chat/confirm-items"
	PathExpenses     = "/api/expenses"
	PathInventory    = "/api/inventory"
	PathChatText     = "/api/chat/text"
	PathChatImage    = "/api/chat/image"
	PathChatHistory  = "/api/chat/history"
)

// Defaults applied by NewClient.
const (
	DefaultLanguage = "en"
	DefaultTimeout  = 30 * time.Second
)

const maxErrorBody = 4096

// Config holds client settings.
type Config struct {
	BaseURL           string
	Language          string
	Retry             common.RetryOptions
	Timeout           time.Duration
	RequestsPerSecond float64
}

// Client is an HTTP client for the business backend.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	tokens     session.TokenSource
	baseURL    string
	language   string
	retry      common.RetryOptions
}

// NewClient creates a client. A nil token source sends unauthenticated requests.
func NewClient(cfg Config, tokens session.TokenSource) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("%w: backend base URL", common.ErrMissingConfig)
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("%w: backend base URL %q: %w", common.ErrInvalidConfig, base, err)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	if tokens == nil {
		tokens = session.StaticToken("")
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(limit, 1),
		tokens:     tokens,
		baseURL:    base,
		language:   cfg.Language,
		retry:      cfg.Retry,
	}, nil
}

// Language is the language sent with extraction and expense requests.
func (c *Client) Language() string {
	return c.language
}

// ConfirmItems submits every clarified item in a single batch call.
func (c *Client) ConfirmItems(ctx context.Context, items []ConfirmItem) (ConfirmResponse, error) {
	var resp ConfirmResponse
	body, err := json.Marshal(confirmRequest{Items: items})
	if err != nil {
		return resp, fmt.Errorf("failed to encode confirm request: %w", err)
	}
	raw, err := c.do(ctx, http.MethodPost, PathConfirmItems, "application/json", body)
	if err != nil {
		return resp, err
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return resp, fmt.Errorf("failed to decode confirm response: %w", err)
	}
	if resp.Success != nil && !*resp.Success {
		return resp, &RejectedError{Path: PathConfirmItems, Message: resp.Message}
	}
	return resp, nil
}

// CreateExpense records one expense entry.
func (c *Client) CreateExpense(ctx context.Context, req ExpenseRequest) (LedgerResponse, error) {
	if req.Category == "" {
		req.Category = ExpenseCategory
	}
	return c.postLedger(ctx, PathExpenses, req)
}

// CreateInventoryItem records one inventory item.
func (c *Client) CreateInventoryItem(ctx context.Context, req InventoryRequest) (LedgerResponse, error) {
	if req.Unit == "" {
		req.Unit = model.DefaultUnit
	}
	return c.postLedger(ctx, PathInventory, req)
}

func (c *Client) postLedger(ctx context.Context, path string, payload any) (LedgerResponse, error) {
	var resp LedgerResponse
	body, err := json.Marshal(payload)
	if err != nil {
		return resp, fmt.Errorf("failed to encode request: %w", err)
	}
	raw, err := c.do(ctx, http.MethodPost, path, "application/json", body)
	if err != nil {
		return resp, err
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return resp, fmt.Errorf("failed to decode response: %w", err)
	}
	resp.Raw = raw
	if !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = resp.Message
		}
		return resp, &RejectedError{Path: path, Message: msg}
	}
	return resp, nil
}

// ProcessText sends a chat message and returns whatever the assistant extracted.
func (c *Client) ProcessText(ctx context.Context, message, chatMode string) (model.Extraction, error) {
	if chatMode == "" {
		chatMode = ChatModeGeneral
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := [][2]string{{"message", message}, {"language", c.language}, {"chat_mode", chatMode}}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return model.Extraction{}, fmt.Errorf("failed to write form field %s: %w", f[0], err)
		}
	}
	if err := w.Close(); err != nil {
		return model.Extraction{}, fmt.Errorf("failed to close form: %w", err)
	}

	return c.extract(ctx, PathChatText, w.FormDataContentType(), buf.Bytes())
}

// ProcessImage uploads a receipt image for OCR.
func (c *Client) ProcessImage(ctx context.Context, filename string, image io.Reader) (model.Extraction, error) {
	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename)))
	if !strings.HasPrefix(contentType, "image/") {
		return model.Extraction{}, common.NewUserError(
			fmt.Sprintf("%s is not an image", filepath.Base(filename)), nil)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image_file"; filename=%q`, filepath.Base(filename)))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return model.Extraction{}, fmt.Errorf("failed to create image part: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return model.Extraction{}, fmt.Errorf("failed to read image: %w", err)
	}
	if err := w.WriteField("language", c.language); err != nil {
		return model.Extraction{}, fmt.Errorf("failed to write form field language: %w", err)
	}
	if err := w.Close(); err != nil {
		return model.Extraction{}, fmt.Errorf("failed to close form: %w", err)
	}

	return c.extract(ctx, PathChatImage, w.FormDataContentType(), buf.Bytes())
}

func (c *Client) extract(ctx context.Context, path, contentType string, body []byte) (model.Extraction, error) {
	raw, err := c.do(ctx, http.MethodPost, path, contentType, body)
	if err != nil {
		return model.Extraction{}, err
	}
	var resp extractionResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return model.Extraction{}, fmt.Errorf("failed to decode extraction: %w", err)
	}
	return resp.toModel(), nil
}

// ChatHistory returns the most recent backend chat messages.
func (c *Client) ChatHistory(ctx context.Context, limit int) ([]HistoryMessage, error) {
	path := PathChatHistory
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	raw, err := c.do(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return nil, err
	}
	var resp historyResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode history: %w", err)
	}
	if !resp.Success {
		return nil, &RejectedError{Path: PathChatHistory, Message: "history unavailable"}
	}
	return resp.Messages, nil
}

// do performs a request, retrying only rate-limited replies. The body is
// replayed from memory on each attempt.
func (c *Client) do(ctx context.Context, method, path, contentType string, body []byte) ([]byte, error) {
	var out []byte
	err := common.WithRetry(ctx, func() error {
		raw, err := c.once(ctx, method, path, contentType, body)
		if err != nil {
			return err
		}
		out = raw
		return nil
	}, c.retry)
	return out, err
}

func (c *Client) once(ctx context.Context, method, path, contentType string, body []byte) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get access token: %w", err)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	slog.Debug("Backend request", "method", method, "path", path, "request_id", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// %v keeps transport timeouts out of the retry path.
		return nil, fmt.Errorf("%w: %v", common.ErrBackendUnavailable, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			slog.Warn("Failed to close response body", "error", cerr)
		}
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(raw) > maxErrorBody {
			raw = raw[:maxErrorBody]
		}
		return nil, &APIError{
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
			RetryAfter: retryAfter(resp.Header, time.Now()),
		}
	}
	return raw, nil
}
