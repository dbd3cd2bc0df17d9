package webserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/planpicker/app/identity"
	"github.com/m3rciful/planpicker/core/metrics"
)

const testToken = "123456:TEST-token"

var testNow = time.Unix(1700000060, 0)

func signedInitData(authDate int64) string {
	v := url.Values{}
	v.Set("user", `{"id":42,"first_name":"Ada"}`)
	v.Set("auth_date", strconv.FormatInt(authDate, 10))
	v.Set("chat_type", "private")
	v.Set("hash", identity.Sign(v, testToken))
	return v.Encode()
}

func newTestServer(t *testing.T, upstream *url.URL, m *metrics.Metrics) *Server {
	t.Helper()
	return New(Options{
		Upstream:       upstream,
		BotToken:       testToken,
		InitDataMaxAge: time.Hour,
		Metrics:        m,
		Now:            func() time.Time { return testNow },
	})
}

func decode(t *testing.T, body io.Reader) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.NewDecoder(body).Decode(&resp))
	return resp
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"OK"}`, rec.Body.String())
}

func TestVerify(t *testing.T) {
	s := newTestServer(t, nil, nil)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantError  string
	}{
		{
			name:       "valid",
			body:       `{"init_data":` + strconv.Quote(signedInitData(1700000000)) + `}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "invalid json",
			body:       "not json",
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid request body",
		},
		{
			name:       "missing init data",
			body:       `{}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "field InitData is a required field",
		},
		{
			name:       "unsigned",
			body:       `{"init_data":"auth_date=1700000000"}`,
			wantStatus: http.StatusUnauthorized,
			wantError:  identity.ErrSignatureMissing.Error(),
		},
		{
			name:       "expired",
			body:       `{"init_data":` + strconv.Quote(signedInitData(1600000000)) + `}`,
			wantStatus: http.StatusUnauthorized,
			wantError:  identity.ErrExpired.Error(),
		},
		{
			name:       "malformed",
			body:       `{"init_data":"a=%zz"}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/initdata/verify", strings.NewReader(tt.body))
			s.Handler().ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			resp := decode(t, rec.Body)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, StatusOK, resp.Status)
				data, ok := resp.Data.(map[string]any)
				require.True(t, ok)
				assert.Equal(t, float64(1700000000), data["auth_date"])
				user, ok := data["user"].(map[string]any)
				require.True(t, ok)
				assert.Equal(t, float64(42), user["id"])
				return
			}
			assert.Equal(t, StatusError, resp.Status)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, resp.Error)
			}
		})
	}
}

func TestProxyStripsPrefix(t *testing.T) {
	var gotPath, gotBody string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"user_registered":true}`))
	}))
	defer upstream.Close()

	target, err := url.Parse(upstream.URL)
	require.NoError(t, err)
	m := metrics.New()
	s := newTestServer(t, target, m)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/backend/users", bytes.NewBufferString(`{"user_id":1}`))
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/backend/users", gotPath)
	assert.Equal(t, `{"user_id":1}`, gotBody)
	assert.JSONEq(t, `{"user_registered":true}`, rec.Body.String())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProxyRequests.WithLabelValues("2xx")))
}

func TestProxyUpstreamDown(t *testing.T) {
	target, err := url.Parse("http://127.0.0.1:1")
	require.NoError(t, err)
	m := metrics.New()
	s := newTestServer(t, target, m)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/backend/users", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "upstream unavailable", decode(t, rec.Body).Error)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProxyRequests.WithLabelValues("5xx")))
}

func TestWithoutUpstreamAPIIsNotFound(t *testing.T) {
	s := newTestServer(t, nil, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/backend/users", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	m := metrics.New()
	m.IncSwipe("left", "moved")
	s := newTestServer(t, nil, m)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "swipes_total")
}

func TestStartShutdown(t *testing.T) {
	s := New(Options{Listen: "127.0.0.1:0"})
	require.NoError(t, s.Start(context.Background()))
	addr := s.Addr()
	require.NotEmpty(t, addr)

	resp, err := http.Get("http://" + addr + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, s.Shutdown(context.Background()))
	require.NoError(t, s.Shutdown(context.Background()))
}
