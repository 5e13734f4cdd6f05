package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/authcore/account-service/internal/core/domain"
)

type stubAccountService struct {
	loginFn         func(ctx context.Context, username, password string) (*domain.Session, error)
	registerFn      func(ctx context.Context, username, email, password string) (*domain.Account, error)
	verifyFn        func(ctx context.Context, username, token string) (*domain.Session, error)
	resendFn        func(ctx context.Context, username string) error
	requestResetFn  func(ctx context.Context, username string) error
	checkResetFn    func(ctx context.Context, username, token string) error
	completeResetFn func(ctx context.Context, username, token, password, confirm string) (*domain.Session, error)
}

func (s *stubAccountService) Login(ctx context.Context, username, password string) (*domain.Session, error) {
	return s.loginFn(ctx, username, password)
}

func (s *stubAccountService) Register(ctx context.Context, username, email, password string) (*domain.Account, error) {
	return s.registerFn(ctx, username, email, password)
}

func (s *stubAccountService) Verify(ctx context.Context, username, token string) (*domain.Session, error) {
	return s.verifyFn(ctx, username, token)
}

func (s *stubAccountService) ResendVerification(ctx context.Context, username string) error {
	return s.resendFn(ctx, username)
}

func (s *stubAccountService) RequestReset(ctx context.Context, username string) error {
	return s.requestResetFn(ctx, username)
}

func (s *stubAccountService) CheckResetToken(ctx context.Context, username, token string) error {
	return s.checkResetFn(ctx, username, token)
}

func (s *stubAccountService) CompleteReset(ctx context.Context, username, token, password, confirm string) (*domain.Session, error) {
	return s.completeResetFn(ctx, username, token, password, confirm)
}

// invoke runs a handler the way api.NewRouter wires it: returned errors are
// rendered by an error handler before the recorder is inspected.
func invoke(t *testing.T, h echo.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h(c); err != nil {
		errorRenderer(err, c)
	}
	return rec
}

// errorRenderer is a minimal stand-in for api.NewHTTPErrorHandler, kept local
// to avoid an import cycle between the handler and api packages.
func errorRenderer(err error, c echo.Context) {
	code := http.StatusInternalServerError
	msg := "internal server error"
	switch {
	case isHTTPError(err):
		he := err.(*echo.HTTPError)
		code = he.Code
		msg = he.Message.(string)
	case err == domain.ErrInvalidCredentials:
		code, msg = http.StatusUnauthorized, "invalid username or password"
	case err == domain.ErrInvalidKey:
		code, msg = http.StatusUnauthorized, "invalid key"
	case err == domain.ErrPasswordMismatch:
		code, msg = http.StatusBadRequest, "passwords do not match"
	case err == domain.ErrUserNotFound:
		code, msg = http.StatusNotFound, "invalid username"
	case err == domain.ErrResetDisabled:
		code, msg = http.StatusNotFound, "not found"
	default:
		if _, ok := err.(*domain.UserExistsError); ok {
			code, msg = http.StatusConflict, err.Error()
		}
	}
	_ = c.JSON(code, map[string]string{"error": msg})
}

func isHTTPError(err error) bool {
	_, ok := err.(*echo.HTTPError)
	return ok
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubAccountService{
		registerFn: func(_ context.Context, username, email, password string) (*domain.Account, error) {
			if username != "alice" || email != "a@example.com" || password != "secret" {
				t.Fatalf("unexpected args: %s %s %s", username, email, password)
			}
			return &domain.Account{Username: username, Email: email}, nil
		},
	}
	h := NewAuthHandler(stub)

	rec := invoke(t, h.Register, jsonRequest(http.MethodPost, "/auth/register",
		`{"username":"alice","email":"a@example.com","password":"secret"}`))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["username"] != "alice" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if resp["email_verified"] != false {
		t.Fatalf("new account must report unverified: %+v", resp)
	}
}

func TestAuthHandler_Register_Conflict(t *testing.T) {
	stub := &stubAccountService{
		registerFn: func(_ context.Context, username, _, _ string) (*domain.Account, error) {
			return nil, &domain.UserExistsError{Username: username}
		},
	}
	h := NewAuthHandler(stub)

	rec := invoke(t, h.Register, jsonRequest(http.MethodPost, "/auth/register",
		`{"username":"bob","email":"b@example.com","password":"pw"}`))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "bob") {
		t.Fatalf("conflict response must name the username: %s", rec.Body.String())
	}
}

func TestAuthHandler_Register_BadPayload(t *testing.T) {
	stub := &stubAccountService{
		registerFn: func(_ context.Context, _, _, _ string) (*domain.Account, error) {
			t.Fatalf("service must not be called")
			return nil, nil
		},
	}
	h := NewAuthHandler(stub)

	for name, body := range map[string]string{
		"not json":      "not-json",
		"missing email": `{"username":"alice","password":"pw"}`,
		"bad email":     `{"username":"alice","email":"nope","password":"pw"}`,
	} {
		rec := invoke(t, h.Register, jsonRequest(http.MethodPost, "/auth/register", body))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", name, rec.Code)
		}
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	stub := &stubAccountService{
		loginFn: func(_ context.Context, username, password string) (*domain.Session, error) {
			if username != "alice" || password != "secret" {
				t.Fatalf("unexpected args: %s %s", username, password)
			}
			return &domain.Session{Username: "alice", Token: "token123"}, nil
		},
	}
	h := NewAuthHandler(stub)

	rec := invoke(t, h.Login, jsonRequest(http.MethodPost, "/auth/login",
		`{"username":"alice","password":"secret"}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "token123" || resp["username"] != "alice" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	stub := &stubAccountService{
		loginFn: func(_ context.Context, _, _ string) (*domain.Session, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(stub)

	rec := invoke(t, h.Login, jsonRequest(http.MethodPost, "/auth/login",
		`{"username":"alice","password":"bad"}`))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthHandler_Login_NeedsVerification(t *testing.T) {
	stub := &stubAccountService{
		loginFn: func(_ context.Context, _, _ string) (*domain.Session, error) {
			return nil, domain.ErrNotVerified
		},
	}
	h := NewAuthHandler(stub)

	rec := invoke(t, h.Login, jsonRequest(http.MethodPost, "/auth/login",
		`{"username":"alice","password":"pw"}`))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	// The username rides along for the resend sub-flow.
	if resp["username"] != "alice" {
		t.Fatalf("needs-verification response must carry the username: %+v", resp)
	}
}

func TestAuthHandler_Verify(t *testing.T) {
	stub := &stubAccountService{
		verifyFn: func(_ context.Context, username, token string) (*domain.Session, error) {
			if token == "good" {
				return &domain.Session{Username: username, Token: "jwt"}, nil
			}
			return nil, domain.ErrInvalidKey
		},
	}
	h := NewAuthHandler(stub)

	rec := invoke(t, h.Verify, httptest.NewRequest(http.MethodGet, "/auth/verify?username=alice&key=good", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = invoke(t, h.Verify, httptest.NewRequest(http.MethodGet, "/auth/verify?username=alice&key=stale", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	rec = invoke(t, h.Verify, httptest.NewRequest(http.MethodGet, "/auth/verify?username=alice", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing key: expected 400, got %d", rec.Code)
	}
}

func TestAuthHandler_ResendVerification(t *testing.T) {
	var got string
	stub := &stubAccountService{
		resendFn: func(_ context.Context, username string) error {
			got = username
			return nil
		},
	}
	h := NewAuthHandler(stub)

	rec := invoke(t, h.ResendVerification, jsonRequest(http.MethodPost, "/auth/verify/resend",
		`{"username":"alice"}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got != "alice" {
		t.Fatalf("expected resend for alice, got %q", got)
	}
}

func TestAuthHandler_RequestReset(t *testing.T) {
	stub := &stubAccountService{
		requestResetFn: func(_ context.Context, username string) error {
			if username == "ghost" {
				return domain.ErrUserNotFound
			}
			return nil
		},
	}
	h := NewAuthHandler(stub)

	rec := invoke(t, h.RequestReset, jsonRequest(http.MethodPost, "/auth/reset", `{"username":"alice"}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	// Documented behavior: unknown usernames are reported on this path.
	rec = invoke(t, h.RequestReset, jsonRequest(http.MethodPost, "/auth/reset", `{"username":"ghost"}`))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAuthHandler_CompleteReset(t *testing.T) {
	stub := &stubAccountService{
		completeResetFn: func(_ context.Context, username, token, password, confirm string) (*domain.Session, error) {
			if password != confirm {
				return nil, domain.ErrPasswordMismatch
			}
			if token != "good" {
				return nil, domain.ErrInvalidKey
			}
			return &domain.Session{Username: username, Token: "jwt"}, nil
		},
	}
	h := NewAuthHandler(stub)

	rec := invoke(t, h.CompleteReset, jsonRequest(http.MethodPost, "/auth/reset/confirm",
		`{"username":"alice","key":"good","password1":"new","password2":"new"}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = invoke(t, h.CompleteReset, jsonRequest(http.MethodPost, "/auth/reset/confirm",
		`{"username":"alice","key":"good","password1":"one","password2":"two"}`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("mismatch: expected 400, got %d", rec.Code)
	}

	rec = invoke(t, h.CompleteReset, jsonRequest(http.MethodPost, "/auth/reset/confirm",
		`{"username":"alice","key":"stale","password1":"new","password2":"new"}`))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("stale key: expected 401, got %d", rec.Code)
	}
}

func TestAuthHandler_ResetDisabled(t *testing.T) {
	stub := &stubAccountService{
		requestResetFn: func(_ context.Context, _ string) error { return domain.ErrResetDisabled },
		checkResetFn:   func(_ context.Context, _, _ string) error { return domain.ErrResetDisabled },
		completeResetFn: func(_ context.Context, _, _, _, _ string) (*domain.Session, error) {
			return nil, domain.ErrResetDisabled
		},
	}
	h := NewAuthHandler(stub)

	rec := invoke(t, h.RequestReset, jsonRequest(http.MethodPost, "/auth/reset", `{"username":"alice"}`))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("request: expected 404, got %d", rec.Code)
	}
	rec = invoke(t, h.CheckReset, httptest.NewRequest(http.MethodGet, "/auth/reset/confirm?username=alice&key=tok", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("check: expected 404, got %d", rec.Code)
	}
	rec = invoke(t, h.CompleteReset, jsonRequest(http.MethodPost, "/auth/reset/confirm",
		`{"username":"alice","key":"tok","password1":"pw","password2":"pw"}`))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("complete: expected 404, got %d", rec.Code)
	}
}
