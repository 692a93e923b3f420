package gateway

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindTransport       Kind = "transport"
	KindApplication     Kind = "application"
	KindUnauthenticated Kind = "unauthenticated"
	KindValidation      Kind = "validation"
)

const (
	MsgNetworkError     = "network error"
	MsgNotAuthenticated = "not authenticated"
	MsgRequestFailed    = "request failed"
)

// Error 网关边界上的唯一错误类型，下游只依赖 Kind 和 Message
type Error struct {
	Kind     Kind
	Status   int
	Message  string
	Endpoint string
	Cause    error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is 按 Kind 比较，支持 errors.Is(err, gateway.ErrUnauthenticated)
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

var (
	ErrTransport       = &Error{Kind: KindTransport}
	ErrApplication     = &Error{Kind: KindApplication}
	ErrUnauthenticated = &Error{Kind: KindUnauthenticated}
	ErrValidation      = &Error{Kind: KindValidation}
)

func transportError(endpoint string, status int, cause error) *Error {
	return &Error{Kind: KindTransport, Status: status, Message: MsgNetworkError, Endpoint: endpoint, Cause: cause}
}

func applicationError(endpoint string, status int, message string) *Error {
	if message == "" {
		message = MsgRequestFailed
	}
	return &Error{Kind: KindApplication, Status: status, Message: message, Endpoint: endpoint}
}

func unauthenticatedError(endpoint string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: MsgNotAuthenticated, Endpoint: endpoint}
}

// ValidationError 客户端前置校验失败，未发出任何网络请求
func ValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// AsError 非网关错误统一视为传输失败
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr
	}
	return &Error{Kind: KindTransport, Message: MsgNetworkError, Cause: err}
}

func KindOf(err error) Kind {
	if gerr := AsError(err); gerr != nil {
		return gerr.Kind
	}
	return ""
}

func (e *Error) GoString() string {
	return fmt.Sprintf("gateway.Error{Kind:%s Status:%d Message:%q Endpoint:%s}", e.Kind, e.Status, e.Message, e.Endpoint)
}

// NotAuthenticated 无会话时的本地短路错误
func NotAuthenticated() *Error {
	return &Error{Kind: KindUnauthenticated, Message: MsgNotAuthenticated}
}
