package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetJSONDecodesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"message":"ok","data":{"id":"1","name":"Keyboard"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nil)
	var out struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, c.GetJSON(context.Background(), "/api/products/1", &out))
	assert.Equal(t, "Keyboard", out.Name)
}

func TestGetJSONDecodesBareBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"1"},{"id":"2"}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nil)
	var out []struct {
		ID string `json:"id"`
	}
	require.NoError(t, c.GetJSON(context.Background(), "/api/products", &out))
	assert.Len(t, out, 2)
}

func TestFourXXBecomesAppError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"success":false,"message":"invalid credentials"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nil)
	err := c.PostJSON(context.Background(), "/api/login", map[string]string{"email": "a@b.c"}, nil)
	var ae *AppError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, http.StatusUnauthorized, ae.Status)
	assert.Equal(t, "invalid credentials", ae.Message)
}

func TestFiveXXBecomesTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nil)
	err := c.GetJSON(context.Background(), "/api/products", nil)
	var te *TransportError
	assert.ErrorAs(t, err, &te)
}

func TestDownServerBecomesTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // immediately unreachable

	c := NewClient(srv.URL, 200*time.Millisecond, nil)
	err := c.GetJSON(context.Background(), "/api/products", nil)
	var te *TransportError
	assert.ErrorAs(t, err, &te)
}

func TestFallbackOnTransportFailureOnly(t *testing.T) {
	ctx := context.Background()

	// transport failure: local result substitutes silently
	got, err := Fallback(ctx,
		func(context.Context) (string, error) {
			return "", &TransportError{Op: "GET /x", Err: errors.New("dial refused")}
		},
		func(context.Context) (string, error) { return "local", nil },
	)
	require.NoError(t, err)
	assert.Equal(t, "local", got)

	// application rejection: propagates, local never consulted
	_, err = Fallback(ctx,
		func(context.Context) (string, error) {
			return "", &AppError{Status: 401, Message: "invalid credentials"}
		},
		func(context.Context) (string, error) {
			t.Fatal("local path must not run on an application rejection")
			return "", nil
		},
	)
	var ae *AppError
	assert.ErrorAs(t, err, &ae)

	// remote success: local never consulted
	got, err = Fallback(ctx,
		func(context.Context) (string, error) { return "remote", nil },
		func(context.Context) (string, error) {
			t.Fatal("local path must not run on remote success")
			return "", nil
		},
	)
	require.NoError(t, err)
	assert.Equal(t, "remote", got)
}
