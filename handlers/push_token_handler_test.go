package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MixtapeHQ/mixtape-backend/internal/store"
	"github.com/MixtapeHQ/mixtape-backend/logger"
	"github.com/MixtapeHQ/mixtape-backend/middleware"
	"github.com/MixtapeHQ/mixtape-backend/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.IsTest = true
	gin.SetMode(gin.TestMode)
	m.Run()
}

type mockPushTokenStore struct {
	mock.Mock
}

func (m *mockPushTokenStore) RegisterToken(ctx context.Context, userID, token string, platform types.Platform) (*types.PushToken, error) {
	args := m.Called(ctx, userID, token, platform)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.PushToken), args.Error(1)
}

func (m *mockPushTokenStore) ListTokens(ctx context.Context, userID string) ([]*types.PushToken, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*types.PushToken), args.Error(1)
}

func (m *mockPushTokenStore) DeleteToken(ctx context.Context, userID, tokenID string) error {
	args := m.Called(ctx, userID, tokenID)
	return args.Error(0)
}

func (m *mockPushTokenStore) InvalidateToken(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

// asUser injects an authenticated user the way the auth middleware does.
func asUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(string(middleware.UserIDKey), userID)
		ctx := context.WithValue(c.Request.Context(), middleware.UserIDKey, userID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func newTokenRouter(userID string, h *PushTokenHandler) *gin.Engine {
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.Use(asUser(userID))
	r.POST("/v1/users/push-tokens", h.RegisterPushToken)
	r.GET("/v1/users/push-tokens", h.ListPushTokens)
	r.DELETE("/v1/users/push-tokens/:tokenId", h.DeletePushToken)
	return r
}

func TestRegisterPushToken(t *testing.T) {
	s := new(mockPushTokenStore)
	s.On("RegisterToken", mock.Anything, "user-1", "ExponentPushToken[abc]", types.PlatformIOS).
		Return(&types.PushToken{ID: "tok-1", UserID: "user-1", Token: "ExponentPushToken[abc]", Platform: types.PlatformIOS}, nil)

	r := newTokenRouter("user-1", NewPushTokenHandler(s))

	body, _ := json.Marshal(types.RegisterPushTokenRequest{Token: "ExponentPushToken[abc]", Platform: "ios"})
	req := httptest.NewRequest(http.MethodPost, "/v1/users/push-tokens", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var got types.PushToken
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "tok-1", got.ID)
	s.AssertExpectations(t)
}

func TestRegisterPushToken_InvalidBody(t *testing.T) {
	r := newTokenRouter("user-1", NewPushTokenHandler(new(mockPushTokenStore)))

	req := httptest.NewRequest(http.MethodPost, "/v1/users/push-tokens",
		bytes.NewReader([]byte(`{"token": "x", "platform": "web"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp types.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "VALIDATION_ERROR", resp.Type)
}

func TestListPushTokens(t *testing.T) {
	s := new(mockPushTokenStore)
	s.On("ListTokens", mock.Anything, "user-1").Return([]*types.PushToken{
		{ID: "tok-1", UserID: "user-1", Token: "ExponentPushToken[a]", Platform: types.PlatformIOS},
	}, nil)

	r := newTokenRouter("user-1", NewPushTokenHandler(s))

	req := httptest.NewRequest(http.MethodGet, "/v1/users/push-tokens", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "tok-1")
}

func TestDeletePushToken(t *testing.T) {
	s := new(mockPushTokenStore)
	s.On("DeleteToken", mock.Anything, "user-1", "tok-1").Return(nil)

	r := newTokenRouter("user-1", NewPushTokenHandler(s))

	req := httptest.NewRequest(http.MethodDelete, "/v1/users/push-tokens/tok-1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	s.AssertExpectations(t)
}

func TestDeletePushToken_NotFound(t *testing.T) {
	s := new(mockPushTokenStore)
	s.On("DeleteToken", mock.Anything, "user-1", "tok-unknown").Return(store.ErrNotFound)

	r := newTokenRouter("user-1", NewPushTokenHandler(s))

	req := httptest.NewRequest(http.MethodDelete, "/v1/users/push-tokens/tok-unknown", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeletePushToken_StoreFailure(t *testing.T) {
	s := new(mockPushTokenStore)
	s.On("DeleteToken", mock.Anything, "user-1", "tok-1").Return(fmt.Errorf("connection refused"))

	r := newTokenRouter("user-1", NewPushTokenHandler(s))

	req := httptest.NewRequest(http.MethodDelete, "/v1/users/push-tokens/tok-1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
