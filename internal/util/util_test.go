package util

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenExpiryReadsJWTExp(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": exp.Unix()}).SignedString([]byte("whatever"))
	require.NoError(t, err)

	got, ok := TokenExpiry(token)
	assert.True(t, ok)
	assert.True(t, got.Equal(exp))
}

func TestTokenExpiryOpaqueToken(t *testing.T) {
	_, ok := TokenExpiry("3f0c9a1e-opaque-session")
	assert.False(t, ok)

	_, ok = TokenExpiry("a.b.c")
	assert.False(t, ok)
}

type signUpForm struct {
	Email           string `validate:"required,email"`
	Password        string `validate:"required,min=6"`
	ConfirmPassword string `validate:"eqfield=Password"`
}

func TestValidateStructMessages(t *testing.T) {
	err := ValidateStruct(signUpForm{Email: "a@b.co", Password: "secret1", ConfirmPassword: "secret2"})
	require.Error(t, err)
	assert.Equal(t, "Passwords do not match", err.Error())

	err = ValidateStruct(signUpForm{Email: "nope", Password: "123", ConfirmPassword: "123"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid email address")
	assert.Contains(t, err.Error(), ErrPasswordTooShort.Error())

	assert.NoError(t, ValidateStruct(signUpForm{Email: "a@b.co", Password: "secret1", ConfirmPassword: "secret1"}))
}

func TestResponseCarriesSuccessAndRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ok", func(c *gin.Context) { Success(c, gin.H{"id": "c1"}) })
	r.GET("/fail", func(c *gin.Context) { ErrorWithData(c, http.StatusBadGateway, "network error", gin.H{"state": "error"}) })
	r.GET("/redirect", func(c *gin.Context) { Redirect(c, LoginPath) })

	serve := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set(RequestIDHeader, "req-1")
		r.ServeHTTP(w, req)
		return w
	}

	w := serve("/ok")
	assert.JSONEq(t, `{"success":true,"code":200,"message":"success","data":{"id":"c1"},"request_id":"req-1"}`, w.Body.String())

	w = serve("/fail")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.JSONEq(t, `{"success":false,"code":502,"message":"network error","data":{"state":"error"},"request_id":"req-1"}`, w.Body.String())

	w = serve("/redirect")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, LoginPath, w.Header().Get("Location"))
	assert.JSONEq(t, `{"success":false,"code":302,"message":"redirect","data":{"location":"/login"},"request_id":"req-1"}`, w.Body.String())
}
