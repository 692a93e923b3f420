package gateway

import (
	"context"
	"encoding/json"
	"stibap_portal/internal/model"
	"stibap_portal/pkg/logger"
	"stibap_portal/pkg/monitoring"
	"stibap_portal/pkg/tracing"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	RPCRegisterUser   = "register_user"
	RPCLoginUser      = "login_user"
	RPCVerifySession  = "verify_session"
	RPCLogoutUser     = "logout_user"
	RPCChangePassword = "change_password"
)

// AuthRPC 数据库侧认证函数，密码学全部在服务端完成
type AuthRPC struct {
	http   *resty.Client
	url    string
	apiKey string
}

func NewAuthRPC(baseURL, apiKey string, timeout time.Duration) *AuthRPC {
	rc := resty.New()
	if timeout > 0 {
		rc.SetTimeout(timeout)
	}
	return &AuthRPC{
		http:   rc,
		url:    strings.TrimRight(baseURL, "/"),
		apiKey: apiKey,
	}
}

func (r *AuthRPC) RegisterUser(ctx context.Context, email, password, fullName string) (*model.AuthResponse, error) {
	return r.call(ctx, RPCRegisterUser, map[string]interface{}{
		"p_email":     email,
		"p_password":  password,
		"p_full_name": fullName,
	})
}

func (r *AuthRPC) LoginUser(ctx context.Context, email, password, ipAddress, userAgent string) (*model.AuthResponse, error) {
	params := map[string]interface{}{
		"p_email":    email,
		"p_password": password,
	}
	// 未知的客户端信息以 null 传递
	if ipAddress != "" {
		params["p_ip_address"] = ipAddress
	} else {
		params["p_ip_address"] = nil
	}
	if userAgent != "" {
		params["p_user_agent"] = userAgent
	} else {
		params["p_user_agent"] = nil
	}
	return r.call(ctx, RPCLoginUser, params)
}

func (r *AuthRPC) VerifySession(ctx context.Context, token string) (*model.AuthResponse, error) {
	return r.call(ctx, RPCVerifySession, map[string]interface{}{"p_session_token": token})
}

func (r *AuthRPC) LogoutUser(ctx context.Context, token string) (*model.AuthResponse, error) {
	return r.call(ctx, RPCLogoutUser, map[string]interface{}{"p_session_token": token})
}

func (r *AuthRPC) ChangePassword(ctx context.Context, token, oldPassword, newPassword string) (*model.AuthResponse, error) {
	return r.call(ctx, RPCChangePassword, map[string]interface{}{
		"p_session_token": token,
		"p_old_password":  oldPassword,
		"p_new_password":  newPassword,
	})
}

// call 返回 success=true 的结果；success=false 转为应用错误
func (r *AuthRPC) call(ctx context.Context, fn string, params map[string]interface{}) (*model.AuthResponse, error) {
	endpoint := "rpc/" + fn
	ctx, span := tracing.Start(ctx, "authrpc "+fn, attribute.String("rpc.function", fn))

	headers := map[string]string{
		"apikey":        r.apiKey,
		"Authorization": "Bearer " + r.apiKey,
		"Content-Type":  "application/json",
		"X-Request-ID":  uuid.NewString(),
	}
	tracing.Inject(ctx, headers)

	start := time.Now()
	resp, err := r.http.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetBody(params).
		Post(r.url + "/rest/v1/rpc/" + fn)
	elapsed := time.Since(start)

	result, gerr := decodeAuthResponse(endpoint, resp, err)
	outcome := "ok"
	if gerr != nil {
		outcome = string(gerr.Kind)
		logger.L().Warn("Auth RPC failed",
			zap.String("function", fn),
			zap.Int("status", gerr.Status),
			zap.String("error", gerr.Message),
			zap.NamedError("cause", gerr.Cause),
		)
		tracing.End(span, gerr)
	} else {
		tracing.End(span, nil)
	}
	monitoring.ObserveGateway(endpoint, "POST", outcome, elapsed)

	if gerr != nil {
		return nil, gerr
	}
	return result, nil
}

func decodeAuthResponse(endpoint string, resp *resty.Response, err error) (*model.AuthResponse, *Error) {
	if err != nil {
		return nil, transportError(endpoint, 0, err)
	}
	status := resp.StatusCode()
	body := resp.Body()

	// RPC 可能返回对象，也可能返回包含对象的JSON字符串
	var quoted string
	if json.Unmarshal(body, &quoted) == nil {
		body = []byte(quoted)
	}

	var result model.AuthResponse
	if parseErr := json.Unmarshal(body, &result); parseErr != nil {
		return nil, transportError(endpoint, status, parseErr)
	}

	if status < 200 || status >= 300 {
		if msg := authFailureMessage(&result, body); msg != "" {
			return nil, applicationError(endpoint, status, msg)
		}
		return nil, transportError(endpoint, status, nil)
	}
	if !result.Success {
		return nil, applicationError(endpoint, status, authFailureMessage(&result, body))
	}
	return &result, nil
}

func authFailureMessage(result *model.AuthResponse, body []byte) string {
	if result.Error != "" {
		return result.Error
	}
	if result.Message != "" {
		return result.Message
	}
	// PostgREST 错误体 {code, message, details, hint}
	var pgErr struct {
		Details string `json:"details"`
		Hint    string `json:"hint"`
	}
	if json.Unmarshal(body, &pgErr) == nil && pgErr.Details != "" {
		return pgErr.Details
	}
	return ""
}
