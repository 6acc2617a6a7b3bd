package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/api/v1/auth/login", r.URL.Path)
			require.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, "ana@school.edu", body["email"])
			require.Equal(t, "hunter2", body["password"])

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"user": {"id": "u-1", "email": "ana@school.edu", "firstName": "Ana", "role": "teacher"},
				"accessToken": "at-1",
				"refreshToken": "rt-1"
			}`))
		}))
		defer srv.Close()

		client := New(Config{BaseURL: srv.URL})

		res, err := client.Login(t.Context(), "ana@school.edu", "hunter2")
		require.NoError(t, err)
		assert.Equal(t, "u-1", res.User.ID)
		assert.Equal(t, "at-1", res.AccessToken)
		assert.Equal(t, "rt-1", res.RefreshToken)
	})

	t.Run("bad credentials", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		client := New(Config{BaseURL: srv.URL})

		_, err := client.Login(t.Context(), "ana@school.edu", "wrong")
		require.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("incomplete response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"accessToken": "at-1"}`))
		}))
		defer srv.Close()

		client := New(Config{BaseURL: srv.URL})

		_, err := client.Login(t.Context(), "ana@school.edu", "hunter2")
		require.Error(t, err)
	})
}

func TestCheckSession(t *testing.T) {
	t.Run("live session", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "Bearer at-1", r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`{"isAuthenticated": true, "user": {"id": "u-1", "role": "student"}}`))
		}))
		defer srv.Close()

		client := New(Config{BaseURL: srv.URL})

		check, err := client.CheckSession(t.Context(), "at-1")
		require.NoError(t, err)
		assert.True(t, check.Authenticated)
		require.NotNil(t, check.User)
		assert.Equal(t, "u-1", check.User.ID)
	})

	t.Run("dead session", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"isAuthenticated": false}`))
		}))
		defer srv.Close()

		client := New(Config{BaseURL: srv.URL})

		check, err := client.CheckSession(t.Context(), "at-stale")
		require.NoError(t, err)
		assert.False(t, check.Authenticated)
		assert.Nil(t, check.User)
	})
}

func TestRefresh(t *testing.T) {
	t.Run("rotates tokens", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, "rt-1", body["refreshToken"])

			_, _ = w.Write([]byte(`{"accessToken": "at-2", "refreshToken": "rt-2"}`))
		}))
		defer srv.Close()

		client := New(Config{BaseURL: srv.URL})

		res, err := client.Refresh(t.Context(), "rt-1")
		require.NoError(t, err)
		assert.Equal(t, "at-2", res.AccessToken)
		assert.Equal(t, "rt-2", res.RefreshToken)
	})

	t.Run("revoked refresh token", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer srv.Close()

		client := New(Config{BaseURL: srv.URL})

		_, err := client.Refresh(t.Context(), "rt-revoked")
		require.ErrorIs(t, err, ErrUnauthenticated)
	})
}

func TestLogoutAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/auth/logout-all", r.URL.Path)
		require.Equal(t, "Bearer at-1", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL})

	require.NoError(t, client.LogoutAll(t.Context(), "at-1"))
}

func TestServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": "database unavailable"}`))
	}))
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL})

	_, err := client.CheckSession(t.Context(), "at-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database unavailable")
	assert.NotErrorIs(t, err, ErrUnauthenticated)
}
