// Package client is the access library for the file gateway. It hides token
// acquisition and endpoint mechanics from calling code: every call fetches the
// current session token fresh from its TokenSource, so a token refreshed
// elsewhere in the application is picked up automatically on the next call.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

// TokenSource supplies the caller's current session token. Implementations
// should return the live token, not a cached copy; the client never stores it.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenFunc adapts a function to the TokenSource interface.
type TokenFunc func(ctx context.Context) (string, error)

func (f TokenFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

// ErrSessionExpired matches gateway responses carrying the session-expired
// code. Callers should treat it as a signal to force re-authentication.
var ErrSessionExpired = errors.New("session expired")

// APIError is a typed failure returned by the gateway.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gateway error %d (%s): %s", e.Status, e.Code, e.Message)
}

// Is reports ErrSessionExpired for responses tagged with the session code.
func (e *APIError) Is(target error) bool {
	return target == ErrSessionExpired && e.Code == "SESSION_EXPIRED"
}

// Upload is the result of a successful upload.
type Upload struct {
	FileKey     string `json:"fileKey"`
	FileName    string `json:"fileName"`
	Size        int64  `json:"fileSize"`
	ContentType string `json:"fileType"`
}

// DefaultMaxUploadSize mirrors the server-side cap; the client rejects larger
// files before sending the payload. Defense in depth only, the server
// revalidates.
const DefaultMaxUploadSize int64 = 50 << 20

// defaultAllowedTypes mirrors the server allow-list.
var defaultAllowedTypes = []string{
	"application/pdf",
	"image/jpeg",
	"image/jpg",
	"image/png",
	"image/gif",
	"image/webp",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"text/plain",
}

// Client talks to one gateway instance. Safe for concurrent use; calls are
// independent and each fetches its own token.
type Client struct {
	baseURL       string
	tokens        TokenSource
	httpClient    *http.Client
	uploadClient  *http.Client
	maxUploadSize int64
	allowedTypes  []string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client used for sign and delete calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithUploadTimeout bounds the upload call. The default is proportional to
// the 50 MB cap on a slow link.
func WithUploadTimeout(d time.Duration) Option {
	return func(c *Client) { c.uploadClient = &http.Client{Timeout: d} }
}

// WithMaxUploadSize overrides the client-side size pre-check.
func WithMaxUploadSize(n int64) Option {
	return func(c *Client) { c.maxUploadSize = n }
}

// New creates a Client for the gateway at baseURL.
func New(baseURL string, tokens TokenSource, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("gateway base url is required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("token source is required")
	}
	c := &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		tokens:        tokens,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		uploadClient:  &http.Client{Timeout: 10 * time.Minute},
		maxUploadSize: DefaultMaxUploadSize,
		allowedTypes:  defaultAllowedTypes,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// UploadFile sends one file to the gateway and returns the generated key and
// echoed attributes. userID rides along as a form field for compatibility;
// the server derives ownership from the token, never from this field.
func (c *Client) UploadFile(ctx context.Context, r io.Reader, fileName string, size int64, contentType, userID string) (*Upload, error) {
	if r == nil {
		return nil, fmt.Errorf("file reader is required")
	}
	if size > c.maxUploadSize {
		return nil, fmt.Errorf("file exceeds the maximum allowed size of %d MB", c.maxUploadSize>>20)
	}
	if !c.typeAllowed(contentType) {
		return nil, fmt.Errorf("file type %q is not supported", contentType)
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch session token: %w", err)
	}

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	if userID != "" {
		if err := mw.WriteField("userId", userID); err != nil {
			return nil, fmt.Errorf("build multipart body: %w", err)
		}
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, fileName))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("build multipart body: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("build multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/files/upload", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out Upload
	if err := c.do(c.uploadClient, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ViewURL returns a signed URL serving the object inline.
func (c *Client) ViewURL(ctx context.Context, fileKey string, expiresIn int) (string, error) {
	return c.sign(ctx, signRequest{FileKey: fileKey, ExpiresIn: expiresIn})
}

// DownloadURL returns a signed URL forcing a save dialog under fileName.
func (c *Client) DownloadURL(ctx context.Context, fileKey, fileName string, expiresIn int) (string, error) {
	return c.sign(ctx, signRequest{FileKey: fileKey, FileName: fileName, ExpiresIn: expiresIn, Download: true})
}

// DeleteFile removes a file. Session-expiry errors propagate so callers can
// force a re-login; any other failure degrades to false so bulk delete flows
// keep going.
func (c *Client) DeleteFile(ctx context.Context, fileKey string) (bool, error) {
	var out struct {
		FileKey string `json:"fileKey"`
	}
	err := c.postJSON(ctx, "/files/delete", map[string]string{"fileKey": fileKey}, &out)
	if err != nil {
		if errors.Is(err, ErrSessionExpired) {
			return false, err
		}
		return false, nil
	}
	return true, nil
}

type signRequest struct {
	FileKey   string `json:"fileKey"`
	FileName  string `json:"fileName,omitempty"`
	ExpiresIn int    `json:"expiresIn,omitempty"`
	Download  bool   `json:"download,omitempty"`
}

func (c *Client) sign(ctx context.Context, req signRequest) (string, error) {
	var out struct {
		SignedURL string `json:"signedUrl"`
		ExpiresIn int    `json:"expiresIn"`
	}
	if err := c.postJSON(ctx, "/files/sign", req, &out); err != nil {
		return "", err
	}
	return out.SignedURL, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("fetch session token: %w", err)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	return c.do(c.httpClient, req, out)
}

// do executes the request and decodes the gateway envelope. Any response with
// success=false (or a non-200 status) becomes a typed *APIError.
func (c *Client) do(hc *http.Client, req *http.Request, out any) error {
	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var envelope struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
		Code    string `json:"code"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return &APIError{Status: resp.StatusCode, Code: "BAD_RESPONSE", Message: "gateway returned a non-JSON response"}
	}
	if resp.StatusCode != http.StatusOK || !envelope.Success {
		return &APIError{Status: resp.StatusCode, Code: envelope.Code, Message: envelope.Error}
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) typeAllowed(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	for _, allowed := range c.allowedTypes {
		if ct == allowed {
			return true
		}
	}
	return false
}
