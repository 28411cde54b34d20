// Package sportapi is the client of the remote sport backend: records,
// statistics, image recognition and user sessions.
package sportapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/slamweb/slam/internal/domain/recognition"
	"github.com/slamweb/slam/internal/domain/sport"
	"github.com/slamweb/slam/internal/domain/stats"
	"github.com/slamweb/slam/pkg/logger"
	"github.com/slamweb/slam/pkg/metrics"
)

const (
	defaultTimeout       = 15 * time.Second
	defaultAITimeout     = 300 * time.Second
	defaultImportTimeout = 120 * time.Second
	defaultAvatarTimeout = 60 * time.Second
	defaultRetryBase     = time.Second
	maxResponseBytes     = 32 << 20
)

// Client talks to the backend below its base URL, e.g. http://host/api. It
// keeps the session cookie in its own jar, so one Client is one signed-in user.
type Client struct {
	base          *url.URL
	http          *http.Client
	timeout       time.Duration
	aiTimeout     time.Duration
	importTimeout time.Duration
	avatarTimeout time.Duration
	maxRetries    int
	retryBase     time.Duration
	log           logger.Logger
	now           func() time.Time
}

// UserInfo is the profile of the signed-in user.
type UserInfo struct {
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
}

// New creates a client for baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}
	c := &Client{
		base:          u,
		http:          &http.Client{},
		timeout:       defaultTimeout,
		aiTimeout:     defaultAITimeout,
		importTimeout: defaultImportTimeout,
		avatarTimeout: defaultAvatarTimeout,
		maxRetries:    2,
		retryBase:     defaultRetryBase,
		log:           logger.Nop(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("cookie jar: %w", err)
		}
		hc := *c.http
		hc.Jar = jar
		c.http = &hc
	}
	return c, nil
}

// request describes one backend call. Only GETs are retried; bodies are
// kept as bytes so a retry can resend them.
type request struct {
	op          string
	method      string
	path        string
	query       url.Values
	body        []byte
	contentType string
	timeout     time.Duration
	fallbackKey string
}

func (c *Client) jsonRequest(op, path string, v any) (request, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return request{}, fmt.Errorf("%s: encode body: %w", op, err)
	}
	return request{op: op, method: http.MethodPost, path: path, body: body, contentType: "application/json"}, nil
}

// do runs r and returns the raw 2xx body. Failures are classified into the
// package sentinels, and every call is recorded as a remote call metric.
func (c *Client) do(ctx context.Context, r request) ([]byte, error) {
	start := time.Now()
	body, err := c.send(ctx, r)
	metrics.RecordRemoteCall(r.op, resultLabel(err), float64(time.Since(start).Milliseconds()))
	if err != nil {
		c.log.Warn(ctx, "remote call failed",
			logger.String("operation", r.op),
			logger.String("path", r.path),
			logger.Duration("elapsed", time.Since(start)),
			logger.Error(err))
		return nil, err
	}
	c.log.Debug(ctx, "remote call", logger.String("operation", r.op), logger.Duration("elapsed", time.Since(start)))
	return body, nil
}

func (c *Client) send(ctx context.Context, r request) ([]byte, error) {
	if err := c.checkSession(); err != nil {
		return nil, err
	}
	timeout := r.timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	target := c.base.JoinPath(r.path)
	if len(r.query) > 0 {
		target.RawQuery = r.query.Encode()
	}
	retries := 0
	if r.method == http.MethodGet {
		retries = c.maxRetries
	}
	reqID := uuid.NewString()

	resp, err := sendWithExpRetry(ctx, func() (*http.Response, error) {
		var body io.Reader
		if r.body != nil {
			body = bytes.NewReader(r.body)
		}
		req, err := http.NewRequestWithContext(ctx, r.method, target.String(), body)
		if err != nil {
			return nil, err
		}
		if r.contentType != "" {
			req.Header.Set("Content-Type", r.contentType)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Request-Id", reqID)
		return c.http.Do(req)
	}, retryable, retries, c.retryBase)
	if err != nil {
		return nil, classifyTransport(ctx, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, classifyTransport(ctx, err)
	}
	if err := classifyStatus(resp.StatusCode, raw, r.fallbackKey); err != nil {
		if errors.Is(err, ErrUnauthorized) {
			c.clearSession()
		}
		return nil, err
	}
	return raw, nil
}

func classifyTransport(ctx context.Context, err error) error {
	var nerr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &nerr) && nerr.Timeout():
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	case errors.Is(err, context.Canceled) && ctx.Err() != nil:
		return err
	default:
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
}

func classifyStatus(status int, body []byte, fallbackKey string) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrUnauthorized, messageOf(body))
	case status == http.StatusGatewayTimeout:
		return fmt.Errorf("%w: gateway timeout", ErrTimeout)
	case status >= 500:
		return fmt.Errorf("%w: status %d", ErrServerBusy, status)
	}
	re := parseEnvelope(body).remoteError(status, fallbackKey)
	if re.Message == "" {
		re.Message = http.StatusText(status)
	}
	return re
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrServerBusy):
		return "busy"
	case errors.Is(err, ErrRemote):
		return "remote"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "network"
	}
}

// envelope is the {success, error} wrapper of mutating endpoints. error is a
// string on most endpoints and an object on the recognition endpoint.
type envelope struct {
	Success   bool            `json:"success"`
	Error     json.RawMessage `json:"error"`
	RequestID string          `json:"request_id"`
}

type errorObject struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
}

func parseEnvelope(body []byte) envelope {
	var env envelope
	_ = json.Unmarshal(body, &env)
	return env
}

func (e envelope) remoteError(status int, fallbackKey string) *RemoteError {
	re := &RemoteError{Status: status, RequestID: e.RequestID, Key: fallbackKey}
	if len(e.Error) == 0 {
		return re
	}
	var s string
	if err := json.Unmarshal(e.Error, &s); err == nil {
		re.Message = s
		return re
	}
	var obj errorObject
	if err := json.Unmarshal(e.Error, &obj); err == nil {
		re.Code, re.Message, re.Details = obj.Code, obj.Message, obj.Details
	}
	return re
}

func messageOf(body []byte) string {
	if re := parseEnvelope(body).remoteError(0, ""); re.Message != "" {
		return re.Message
	}
	return "session rejected"
}

// ack runs r and requires a {success:true} envelope.
func (c *Client) ack(ctx context.Context, r request) error {
	raw, err := c.do(ctx, r)
	if err != nil {
		return err
	}
	env := parseEnvelope(raw)
	if !env.Success {
		return env.remoteError(http.StatusOK, r.fallbackKey)
	}
	return nil
}

// List returns one page of the user's records, newest first. A body that is
// not an array is treated as an empty page.
func (c *Client) List(ctx context.Context, page, size int) ([]sport.Sport, error) {
	raw, err := c.do(ctx, request{
		op:     "list",
		method: http.MethodGet,
		path:   "/sport/list",
		query:  url.Values{"page": {strconv.Itoa(page)}, "size": {strconv.Itoa(size)}},
	})
	if err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return []sport.Sport{}, nil
	}
	var out []sport.Sport
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, fmt.Errorf("%w: list: %v", ErrDecode, err)
	}
	return out, nil
}

// Insert stores a new record.
func (c *Client) Insert(ctx context.Context, s *sport.Sport) error {
	r, err := c.jsonRequest("insert", "/sport/insert", s)
	if err != nil {
		return err
	}
	r.fallbackKey = "errors.submitFailed"
	return c.ack(ctx, r)
}

// Update replaces the record with s.ID.
func (c *Client) Update(ctx context.Context, s *sport.Sport) error {
	r, err := c.jsonRequest("update", "/sport/update", s)
	if err != nil {
		return err
	}
	r.fallbackKey = "errors.submitFailed"
	return c.ack(ctx, r)
}

// Delete removes the record with id.
func (c *Client) Delete(ctx context.Context, id int64) error {
	r, err := c.jsonRequest("delete", "/sport/delete", map[string]int64{"id": id})
	if err != nil {
		return err
	}
	r.fallbackKey = "errors.deleteFailed"
	return c.ack(ctx, r)
}

// Import uploads a vendor export file.
func (c *Client) Import(ctx context.Context, file []byte, filename, vendor string) error {
	body, ct, err := buildMultipart(func(w *multipart.Writer) error {
		if err := writeFilePart(w, "file", filename, "", file); err != nil {
			return err
		}
		return w.WriteField("vendor", vendor)
	})
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	return c.ack(ctx, request{
		op:          "import",
		method:      http.MethodPost,
		path:        "/sport/import",
		body:        body,
		contentType: ct,
		timeout:     c.importTimeout,
		fallbackKey: "errors.uploadFailed",
	})
}

// Stats fetches the summary of one statistics window.
func (c *Client) Stats(ctx context.Context, q stats.Query) (*stats.Summary, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	v := url.Values{"kind": {string(q.Kind)}, "year": {strconv.Itoa(q.Year)}}
	if q.Month > 0 {
		v.Set("month", strconv.Itoa(q.Month))
	}
	if q.Week > 0 {
		v.Set("week", strconv.Itoa(q.Week))
	}
	raw, err := c.do(ctx, request{op: "stats", method: http.MethodGet, path: "/sport/stats", query: v})
	if err != nil {
		return nil, err
	}
	var out stats.Summary
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: stats: %v", ErrDecode, err)
	}
	return &out, nil
}

type recognizeResponse struct {
	envelope
	Data *sport.Sport `json:"data"`
}

// Recognize uploads images as "image" parts and returns the extracted record.
func (c *Client) Recognize(ctx context.Context, images []recognition.Image) (recognition.Result, error) {
	body, ct, err := buildMultipart(func(w *multipart.Writer) error {
		for i, img := range images {
			name := img.Name
			if name == "" {
				name = fmt.Sprintf("image-%d", i+1)
			}
			if err := writeFilePart(w, "image", name, img.ContentType, img.Data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return recognition.Result{}, fmt.Errorf("recognize: %w", err)
	}
	raw, err := c.do(ctx, request{
		op:          "recognize",
		method:      http.MethodPost,
		path:        "/ai/image-parse",
		body:        body,
		contentType: ct,
		timeout:     c.aiTimeout,
		fallbackKey: "errors.recognizeFailed",
	})
	if err != nil {
		return recognition.Result{}, err
	}
	var resp recognizeResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return recognition.Result{}, fmt.Errorf("%w: recognize: %v", ErrDecode, err)
	}
	if !resp.Success {
		return recognition.Result{RequestID: resp.RequestID}, resp.remoteError(http.StatusOK, "errors.recognizeFailed")
	}
	return recognition.Result{Sport: resp.Data, RequestID: resp.RequestID}, nil
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, name, password, nickname string) error {
	r, err := c.jsonRequest("register", "/user/register", map[string]string{
		"name": name, "password": password, "nickname": nickname,
	})
	if err != nil {
		return err
	}
	r.fallbackKey = "errors.registerFailed"
	return c.ack(ctx, r)
}

// Login signs in; the backend answers with the session cookie.
func (c *Client) Login(ctx context.Context, name, password string) error {
	r, err := c.jsonRequest("login", "/user/login", map[string]string{"name": name, "password": password})
	if err != nil {
		return err
	}
	r.fallbackKey = "errors.loginFailed"
	return c.ack(ctx, r)
}

// Logout ends the session. The local cookie is dropped even when the backend
// call fails.
func (c *Client) Logout(ctx context.Context) error {
	defer c.clearSession()
	return c.ack(ctx, request{op: "logout", method: http.MethodPost, path: "/user/logout", fallbackKey: "errors.logoutFailed"})
}

// Info returns the signed-in user's profile.
func (c *Client) Info(ctx context.Context) (UserInfo, error) {
	raw, err := c.do(ctx, request{op: "info", method: http.MethodGet, path: "/user/info"})
	if err != nil {
		return UserInfo{}, err
	}
	var out UserInfo
	if err := json.Unmarshal(raw, &out); err != nil {
		return UserInfo{}, fmt.Errorf("%w: info: %v", ErrDecode, err)
	}
	return out, nil
}

// UploadAvatar replaces the user's avatar and returns its new URL.
func (c *Client) UploadAvatar(ctx context.Context, data []byte, filename string) (string, error) {
	body, ct, err := buildMultipart(func(w *multipart.Writer) error {
		return writeFilePart(w, "file", filename, "", data)
	})
	if err != nil {
		return "", fmt.Errorf("avatar: %w", err)
	}
	raw, err := c.do(ctx, request{
		op:          "avatar",
		method:      http.MethodPost,
		path:        "/user/avatar/upload",
		body:        body,
		contentType: ct,
		timeout:     c.avatarTimeout,
		fallbackKey: "errors.uploadFailed",
	})
	if err != nil {
		return "", err
	}
	var resp struct {
		envelope
		Avatar *string `json:"avatar"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("%w: avatar: %v", ErrDecode, err)
	}
	if !resp.Success || resp.Avatar == nil {
		return "", resp.remoteError(http.StatusOK, "errors.uploadFailed")
	}
	return *resp.Avatar, nil
}

func buildMultipart(fill func(*multipart.Writer) error) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := fill(w); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func writeFilePart(w *multipart.Writer, field, filename, contentType string, data []byte) error {
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = part.Write(data)
	return err
}
