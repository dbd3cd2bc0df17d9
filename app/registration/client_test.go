package registration

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/planpicker/app/identity"
)

func boolPtr(v bool) *bool { return &v }

func TestNewRequestNullsAbsentFields(t *testing.T) {
	req := NewRequest(&identity.InitData{User: &identity.User{ID: 7}})

	raw, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"user_id": 7,
		"first_name": null,
		"last_name": null,
		"language_code": null,
		"is_premium": null,
		"allows_write_to_pm": null,
		"auth_date": null,
		"chat_instance": null,
		"chat_type": null
	}`, string(raw))
}

func TestNewRequestCopiesSnapshot(t *testing.T) {
	auth := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	req := NewRequest(&identity.InitData{
		User: &identity.User{
			ID:              42,
			FirstName:       "Ada",
			LastName:        "Lovelace",
			LanguageCode:    "en",
			IsPremium:       boolPtr(false),
			AllowsWriteToPM: boolPtr(true),
		},
		AuthDate:     auth,
		ChatInstance: "-8800",
		ChatType:     "private",
	})

	raw, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"user_id": 42,
		"first_name": "Ada",
		"last_name": "Lovelace",
		"language_code": "en",
		"is_premium": false,
		"allows_write_to_pm": true,
		"auth_date": "2024-05-01T12:00:00Z",
		"chat_instance": "-8800",
		"chat_type": "private"
	}`, string(raw))
}

func TestClientRegisterPostsJSON(t *testing.T) {
	var gotMethod, gotPath, gotType string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath, gotType = r.Method, r.URL.Path, r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"user_registered":true,"user_subscription_plan":"pro"}`)
	}))
	defer srv.Close()

	res, err := NewClient(srv.URL+"/", nil).Register(context.Background(), Request{UserID: 42})
	require.NoError(t, err)
	assert.Equal(t, Result{UserRegistered: true, UserSubscriptionPlan: "pro"}, res)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, UsersPath, gotPath)
	assert.Equal(t, "application/json", gotType)
	assert.EqualValues(t, 42, gotBody["user_id"])
}

func TestClientRegisterFailures(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		kind   error
	}{
		{name: "rejected", status: http.StatusInternalServerError, body: `{"error":"boom"}`, kind: ErrBackendRejected},
		{name: "bad request", status: http.StatusBadRequest, body: ``, kind: ErrBackendRejected},
		{name: "not json", status: http.StatusOK, body: `<html>`, kind: ErrMalformedResponse},
		{name: "wrong shape", status: http.StatusOK, body: `{"user_registered":"yes"}`, kind: ErrMalformedResponse},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, nil).Register(context.Background(), Request{UserID: 1})
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.kind)

			var regErr *Error
			require.ErrorAs(t, err, &regErr)
			assert.Equal(t, tc.status, regErr.Status)
		})
	}
}

func TestClientRegisterUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, nil).Register(context.Background(), Request{UserID: 1})
	assert.ErrorIs(t, err, ErrBackendUnreachable)
	assert.Equal(t, "Could not reach the backend. Please try again later.", Message(err))
}

func TestErrorCodeAndMessage(t *testing.T) {
	assert.Equal(t, "MISSING_IDENTITY", newError(ErrMissingIdentity, 0, nil).Code())
	assert.Equal(t, "BACKEND_REJECTED", newError(ErrBackendRejected, 502, nil).Code())
	assert.Equal(t, "backend rejected: status 502", newError(ErrBackendRejected, 502, nil).Error())
	assert.Equal(t, "An unexpected error occurred.", Message(assert.AnError))
	assert.Equal(t, "UNKNOWN", outcome(assert.AnError))
	assert.Equal(t, "OK", outcome(nil))
}
