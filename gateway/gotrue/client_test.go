package gotrue

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	landing "github.com/goliatone/go-landing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignInWithPassword(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ada@example.com", body["email"])
		assert.Equal(t, "secret", body["password"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "access",
			"refresh_token": "refresh",
			"token_type":    "bearer",
			"expires_in":    3600,
		})
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL + "/auth/v1/", APIKey: "anon-key"})

	session, err := client.SignInWithPassword(context.Background(), "ada@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "access", session.AccessToken)
	assert.Equal(t, "refresh", session.RefreshToken)
	assert.Equal(t, 3600, session.ExpiresIn)
	assert.False(t, session.IsEmpty())
}

func TestSignInWithPasswordSurfacesProviderMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error":             "invalid_grant",
			"error_description": "Invalid login credentials",
		})
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL})

	session, err := client.SignInWithPassword(context.Background(), "ada@example.com", "wrong")
	require.Error(t, err)
	assert.Nil(t, session)
	assert.Equal(t, "Invalid login credentials", landing.GatewayMessage(err))

	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr))
	assert.Equal(t, goerrors.CategoryAuth, richErr.Category)
	assert.Equal(t, "INVALID_GRANT", richErr.TextCode)
}

func TestSignUpSendsDisplayName(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/signup", r.URL.Path)
		assert.Equal(t, "https://arena.example.com/login", r.URL.Query().Get("redirect_to"))

		var body signUpRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ada@example.com", body.Email)
		assert.Equal(t, "secret", body.Password)
		assert.Equal(t, "Ada", body.Data.DisplayName)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1f7c","email":"ada@example.com"}`))
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL, EmailRedirectURL: "https://arena.example.com/login"})

	err := client.SignUp(context.Background(), "ada@example.com", "secret", landing.SignUpMetadata{DisplayName: "Ada"})
	require.NoError(t, err)
}

func TestSignUpMessageShapes(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{name: "msg", status: http.StatusUnprocessableEntity, body: `{"code":422,"msg":"User already registered"}`, message: "User already registered"},
		{name: "message", status: http.StatusBadRequest, body: `{"message":"Password should be at least 6 characters"}`, message: "Password should be at least 6 characters"},
		{name: "empty body", status: http.StatusTooManyRequests, body: ``, message: http.StatusText(http.StatusTooManyRequests)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			err := New(Config{BaseURL: server.URL}).SignUp(context.Background(), "ada@example.com", "secret", landing.SignUpMetadata{})
			require.Error(t, err)
			assert.Equal(t, tc.message, landing.GatewayMessage(err))
		})
	}
}

func TestResendVerificationEmail(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/resend", r.URL.Path)

		var body resendRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "signup", body.Type)
		assert.Equal(t, "ada@example.com", body.Email)

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	err := New(Config{BaseURL: server.URL}).ResendVerificationEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestUnreachableGateway(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := New(Config{BaseURL: url}).SignInWithPassword(context.Background(), "ada@example.com", "secret")
	require.Error(t, err)

	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr))
	assert.Equal(t, goerrors.CategoryOperation, richErr.Category)
}

func TestCancelledContextStopsRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not reach the server")
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := New(Config{BaseURL: server.URL}).ResendVerificationEmail(ctx, "ada@example.com")
	require.Error(t, err)
}
