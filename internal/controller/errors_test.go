package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"stibap_portal/internal/gateway"
	"stibap_portal/internal/model"
	"stibap_portal/internal/service"
	"stibap_portal/internal/util"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"forbidden", util.ErrForbidden, http.StatusForbidden, "Forbidden"},
		{"no session", util.ErrNoSession, http.StatusUnauthorized, gateway.MsgNotAuthenticated},
		{"unit not found", util.ErrUnitNotFound, http.StatusNotFound, util.ErrUnitNotFound.Error()},
		{"already completed", util.ErrUnitAlreadyCompleted, http.StatusConflict, util.ErrUnitAlreadyCompleted.Error()},
		{"stale", fmt.Errorf("dashboard: %w", util.ErrStaleResult), http.StatusConflict, util.ErrStaleResult.Error()},
		{"validation", gateway.ValidationError("title is required"), http.StatusBadRequest, "title is required"},
		{"unauthenticated", gateway.NotAuthenticated(), http.StatusUnauthorized, gateway.MsgNotAuthenticated},
		{"application 404", &gateway.Error{Kind: gateway.KindApplication, Status: 404, Message: "Course not found"}, http.StatusNotFound, "Course not found"},
		{"application 200", &gateway.Error{Kind: gateway.KindApplication, Status: 200, Message: "Invalid credentials"}, http.StatusUnprocessableEntity, "Invalid credentials"},
		{"transport", &gateway.Error{Kind: gateway.KindTransport, Message: gateway.MsgNetworkError}, http.StatusBadGateway, gateway.MsgNetworkError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, message := statusFor(tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.message, message)
		})
	}
}

type outlineDown struct{}

func (outlineDown) Course(ctx context.Context, courseID string) (*model.Course, error) {
	return nil, errors.New("unused")
}

func (outlineDown) CourseOutline(ctx context.Context, courseID string) (*model.Outline, error) {
	return nil, &gateway.Error{Kind: gateway.KindTransport, Message: gateway.MsgNetworkError}
}

func (outlineDown) CourseProgress(ctx context.Context, courseID string) (*model.CourseProgress, error) {
	return &model.CourseProgress{}, nil
}

func (outlineDown) CompleteUnit(ctx context.Context, courseID, unitID string) error {
	return nil
}

func TestPlayerOpenReturnsErrorView(t *testing.T) {
	gin.SetMode(gin.TestMode)
	pc := NewPlayerController(service.NewOutlineService(outlineDown{}, nil))

	r := gin.New()
	r.POST("/player/courses/:courseId/open", pc.Open)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/player/courses/c1/open", nil))

	assert.Equal(t, http.StatusBadGateway, w.Code)

	var body struct {
		Message string             `json:"message"`
		Data    service.PlayerView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, gateway.MsgNetworkError, body.Message)
	assert.Equal(t, service.PlayerError, body.Data.State)
	assert.Equal(t, "c1", body.Data.CourseID)
	assert.Empty(t, body.Data.Modules)
}
