package httpkit

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"leadflow_backend/platform/apperr"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type testJWTConfig struct{ secret string }

func (c testJWTConfig) GetJWTAccessSecret() string       { return c.secret }
func (c testJWTConfig) GetAccessTokenTTL() time.Duration { return time.Minute }

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthEngine(cfg testJWTConfig) *gin.Engine {
	engine := gin.New()
	engine.Use(AuthRequired(cfg))
	engine.GET("/me", func(c *gin.Context) {
		id := GetIdentity(c)
		c.JSON(http.StatusOK, gin.H{"userId": id.UserID(), "privileged": id.IsPrivileged()})
	})
	engine.GET("/admin", RequireAnyRole(RoleTeamLead, RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return engine
}

func TestAuthRequiredAcceptsIssuedToken(t *testing.T) {
	cfg := testJWTConfig{secret: "s3cret"}
	userID := uuid.New()
	token, err := IssueAccessToken(cfg, userID, []string{RoleTeamLead}, time.Now())
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	newAuthEngine(cfg).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var body struct {
		UserID     uuid.UUID `json:"userId"`
		Privileged bool      `json:"privileged"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.UserID != userID || !body.Privileged {
		t.Fatalf("unexpected identity %+v", body)
	}
}

func TestAuthRequiredRejectsWrongSecretAndMissingToken(t *testing.T) {
	token, err := IssueAccessToken(testJWTConfig{secret: "other"}, uuid.New(), nil, time.Now())
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	engine := newAuthEngine(testJWTConfig{secret: "s3cret"})

	for _, header := range []string{"", "Bearer " + token, "Basic abc"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		engine.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want 401", header, rec.Code)
		}
	}
}

func TestAuthRequiredRejectsExpiredToken(t *testing.T) {
	cfg := testJWTConfig{secret: "s3cret"}
	token, err := IssueAccessToken(cfg, uuid.New(), nil, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	newAuthEngine(cfg).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAnyRoleForbidsBOE(t *testing.T) {
	cfg := testJWTConfig{secret: "s3cret"}
	token, _ := IssueAccessToken(cfg, uuid.New(), []string{RoleBOE}, time.Now())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	newAuthEngine(cfg).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestHandleErrorMapsKinds(t *testing.T) {
	tests := []struct {
		err       error
		status    int
		retryable bool
	}{
		{apperr.Unprocessable("same status"), http.StatusUnprocessableEntity, false},
		{apperr.RetryableConflict("stale"), http.StatusConflict, true},
		{apperr.Validation("bad status"), http.StatusBadRequest, false},
		{errors.New("db down"), http.StatusInternalServerError, false},
	}

	for _, tc := range tests {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		if !HandleError(c, tc.err) {
			t.Fatalf("expected HandleError to handle %v", tc.err)
		}
		if rec.Code != tc.status {
			t.Errorf("%v: status = %d, want %d", tc.err, rec.Code, tc.status)
		}
		var body ErrorResponse
		_ = json.Unmarshal(rec.Body.Bytes(), &body)
		if body.Retryable != tc.retryable {
			t.Errorf("%v: retryable = %v, want %v", tc.err, body.Retryable, tc.retryable)
		}
	}
}
