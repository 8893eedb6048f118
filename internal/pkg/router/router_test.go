package router

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/gotp/internal/pkg/config"
	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"github.com/shandysiswandi/gotp/internal/pkg/validator"
)

type fixedID string

func (f fixedID) Generate() string { return string(f) }

type waitError struct{ wait time.Duration }

func (e *waitError) Error() string { return "wait" }
func (e *waitError) RetryAfter() time.Duration { return e.wait }
func (e *waitError) ErrorData() map[string]any { return map[string]any{"remaining_seconds": 3} }

func newTestRouter(t *testing.T, yaml string) *Router {
	t.Helper()
	cfg, err := config.NewViperFromBytes("yaml", []byte(yaml))
	require.NoError(t, err)
	return NewRouter(Config{Config: cfg, UUID: fixedID("cid-1"), Instrument: instrument.NewNoop()})
}

func serve(r http.Handler, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRouter_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "not found",
			err:        goerror.NewBusiness("No active code", goerror.CodeNotFound),
			wantStatus: http.StatusNotFound,
			wantCode:   "ERROR_CODE_NOT_FOUND",
		},
		{
			name:       "mismatch",
			err:        goerror.NewBusiness("Code does not match", goerror.CodeMismatch),
			wantStatus: http.StatusBadRequest,
			wantCode:   "ERROR_CODE_MISMATCH",
		},
		{
			name:       "service unavailable",
			err:        goerror.NewServerWrap(errors.New("down"), "Unavailable", goerror.CodeServiceUnavailable),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "ERROR_CODE_SERVICE_UNAVAILABLE",
		},
		{
			name:       "bad gateway",
			err:        goerror.NewServerWrap(errors.New("500"), "Downstream failed", goerror.CodeBadGateway),
			wantStatus: http.StatusBadGateway,
			wantCode:   "ERROR_CODE_BAD_GATEWAY",
		},
		{
			name:       "plain error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(t, "app: {}")
			r.GET("/api/v1/fail", func(*Request) (any, error) { return nil, tt.err })

			rec := serve(r, http.MethodGet, "/api/v1/fail", "", nil)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "cid-1", rec.Header().Get(HeaderCorrelationID))

			var body errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Code)
		})
	}
}

func TestRouter_ErrorDataAndRetryAfter(t *testing.T) {
	r := newTestRouter(t, "app: {}")
	r.POST("/api/v1/wait", func(*Request) (any, error) {
		return nil, goerror.NewBusinessWrap(&waitError{wait: 2500 * time.Millisecond}, "Please wait", goerror.CodeTooManyRequest)
	})

	rec := serve(r, http.MethodPost, "/api/v1/wait", "{}", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "3", rec.Header().Get("Retry-After"))

	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Please wait", body.Message)
	assert.InDelta(t, 3, body.Data["remaining_seconds"], 0)
}

func TestRouter_ValidationFields(t *testing.T) {
	r := newTestRouter(t, "app: {}")
	r.POST("/api/v1/validate", func(*Request) (any, error) {
		return nil, goerror.NewInvalidInput(validator.V10ValidationError{"identifier": "identifier is required"})
	})

	rec := serve(r, http.MethodPost, "/api/v1/validate", "{}", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, map[string]string{"identifier": "identifier is required"}, body.Error)
}

func TestRouter_SuccessAndDecode(t *testing.T) {
	type in struct {
		Name string `json:"name"`
	}

	r := newTestRouter(t, "app: {}")
	r.POST("/api/v1/echo/:id", func(req *Request) (any, error) {
		var body in
		if err := req.DecodeBody(&body); err != nil {
			return nil, err
		}
		return map[string]string{"id": req.GetParam("id"), "name": body.Name}, nil
	})

	rec := serve(r, http.MethodPost, "/api/v1/echo/42", `{"name":"ada"}`, map[string]string{HeaderCorrelationID: "from-client"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "from-client", rec.Header().Get(HeaderCorrelationID))
	assert.JSONEq(t, `{"message":"request has been successfully","data":{"id":"42","name":"ada"}}`, rec.Body.String())

	rec = serve(r, http.MethodPost, "/api/v1/echo/42", `{"name":"ada","extra":1}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_Maintenance(t *testing.T) {
	r := newTestRouter(t, `
app:
  maintenance:
    endpoints: /api/v1/blocked
`)
	ok := func(*Request) (any, error) { return map[string]bool{"ok": true}, nil }
	r.GET("/api/v1/blocked", ok)
	r.GET("/api/v1/open", ok)

	assert.Equal(t, http.StatusServiceUnavailable, serve(r, http.MethodGet, "/api/v1/blocked", "", nil).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/api/v1/open", "", nil).Code)
}

func TestRouter_AdminKey(t *testing.T) {
	r := newTestRouter(t, `
app:
  admin:
    api_key: s3cret
`)
	r.POST("/api/v1/admin", func(*Request) (any, error) { return map[string]bool{"ok": true}, nil }, r.Admin())

	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodPost, "/api/v1/admin", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodPost, "/api/v1/admin", "", map[string]string{HeaderAdminKey: "nope"}).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/api/v1/admin", "", map[string]string{HeaderAdminKey: "s3cret"}).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/api/v1/admin", "", map[string]string{"Authorization": "Bearer s3cret"}).Code)
}

func TestRouter_Recover(t *testing.T) {
	r := newTestRouter(t, "app: {}")
	r.GET("/api/v1/panic", func(*Request) (any, error) { panic("kaboom") })

	rec := serve(r, http.MethodGet, "/api/v1/panic", "", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal server error")
}

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { order = append(order, "handler") }), mw("a"), nil, mw("b"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"a", "b", "handler"}, order)
}
