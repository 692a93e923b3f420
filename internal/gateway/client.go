package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"stibap_portal/pkg/logger"
	"stibap_portal/pkg/monitoring"
	"stibap_portal/pkg/tracing"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// TokenSource 由会话存储实现，网关只读取当前令牌
type TokenSource interface {
	Token() string
}

type Client struct {
	http   *resty.Client
	tokens TokenSource

	mu      sync.RWMutex
	baseURL string
}

func NewClient(baseURL string, timeout time.Duration, tokens TokenSource) *Client {
	rc := resty.New()
	if timeout > 0 {
		rc.SetTimeout(timeout)
	}
	return &Client{
		http:    rc,
		tokens:  tokens,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// SetBaseURL 配置热更新时切换后端地址
func (c *Client) SetBaseURL(baseURL string) {
	c.mu.Lock()
	c.baseURL = strings.TrimRight(baseURL, "/")
	c.mu.Unlock()
}

func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

// Upload multipart 上传的文件部分
type Upload struct {
	Field    string
	Filename string
	Reader   io.Reader
}

type RequestOptions struct {
	Method string
	Query  url.Values
	Body   interface{}
	// Auth 需要 Bearer 令牌；无会话时本地直接失败
	Auth bool
	// Endpoint 指标与日志使用的路由模板，如 /api/courses/{id}
	Endpoint string
	Upload   *Upload
}

// Envelope 后端统一返回体 {success, data, error|detail}
type Envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`

	Raw    []byte `json:"-"`
	Status int    `json:"-"`
}

func (e *Envelope) failureMessage() string {
	for _, raw := range []json.RawMessage{e.Error, e.Detail} {
		if msg := rawText(raw); msg != "" {
			return msg
		}
	}
	return e.Message
}

// rawText 字符串直接返回，其余结构（如校验错误数组）返回紧凑JSON
func rawText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

// Request 所有后端调用的唯一出口
func (c *Client) Request(ctx context.Context, path string, opts RequestOptions) (*Envelope, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = path
	}

	var token string
	if opts.Auth {
		if c.tokens != nil {
			token = c.tokens.Token()
		}
		if token == "" {
			monitoring.ObserveGateway(endpoint, method, string(KindUnauthenticated), 0)
			return nil, unauthenticatedError(endpoint)
		}
	}

	ctx, span := tracing.Start(ctx, "gateway "+method+" "+endpoint,
		attribute.String("http.method", method),
		attribute.String("gateway.endpoint", endpoint),
	)

	requestID := uuid.NewString()
	headers := map[string]string{
		"X-Request-ID": requestID,
		"Accept":       "application/json",
	}
	tracing.Inject(ctx, headers)

	req := c.http.R().SetContext(ctx).SetHeaders(headers)
	if token != "" {
		req.SetAuthToken(token)
	}
	if len(opts.Query) > 0 {
		req.SetQueryParamsFromValues(opts.Query)
	}
	if opts.Upload != nil {
		req.SetFileReader(opts.Upload.Field, opts.Upload.Filename, opts.Upload.Reader)
	} else {
		req.SetHeader("Content-Type", "application/json")
		if opts.Body != nil {
			req.SetBody(opts.Body)
		}
	}

	start := time.Now()
	resp, err := req.Execute(method, c.BaseURL()+path)
	elapsed := time.Since(start)

	env, gerr := decodeResponse(endpoint, resp, err)
	outcome := "ok"
	if gerr != nil {
		outcome = string(gerr.Kind)
		logger.L().Warn("Backend request failed",
			zap.String("endpoint", endpoint),
			zap.String("method", method),
			zap.Int("status", gerr.Status),
			zap.String("request_id", requestID),
			zap.String("error", gerr.Message),
			zap.NamedError("cause", gerr.Cause),
		)
	}
	monitoring.ObserveGateway(endpoint, method, outcome, elapsed)

	if gerr != nil {
		tracing.End(span, gerr)
		return nil, gerr
	}
	tracing.End(span, nil)
	return env, nil
}

func decodeResponse(endpoint string, resp *resty.Response, err error) (*Envelope, *Error) {
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode()
		}
		return nil, transportError(endpoint, status, err)
	}

	status := resp.StatusCode()
	body := resp.Body()

	// 2xx 空返回体（如 204）视为成功
	if status >= 200 && status < 300 && len(bytes.TrimSpace(body)) == 0 {
		return &Envelope{Status: status}, nil
	}

	env := &Envelope{Raw: body, Status: status}
	parseErr := json.Unmarshal(body, env)
	// 数组等非对象响应也是合法的2xx返回体，保留在 Raw
	if parseErr != nil && !json.Valid(body) {
		return nil, transportError(endpoint, status, parseErr)
	}

	if status < 200 || status >= 300 {
		msg := env.failureMessage()
		if parseErr != nil || msg == "" {
			return nil, transportError(endpoint, status, nil)
		}
		return nil, applicationError(endpoint, status, msg)
	}

	if env.Success != nil && !*env.Success {
		return nil, applicationError(endpoint, status, env.failureMessage())
	}

	return env, nil
}

// decodeData 把 data 字段解码为目标类型；data 为空或 null 时返回零值
func decodeData[T any](env *Envelope) (T, error) {
	var out T
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return out, transportError("", env.Status, err)
	}
	return out, nil
}

// decodeRaw 解码整个返回体，用于不带 data 字段的接口
func decodeRaw[T any](env *Envelope) (T, error) {
	var out T
	if len(env.Raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(env.Raw, &out); err != nil {
		return out, transportError("", env.Status, err)
	}
	return out, nil
}

func pathEscape(s string) string {
	return url.PathEscape(s)
}
