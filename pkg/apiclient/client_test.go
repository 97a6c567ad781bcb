package apiclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRequestDecodesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/clients", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":42,"name":"Solaria GmbH"}}`))
	}))
	defer srv.Close()

	client := New(srv.URL, nil)
	env, err := client.Get(context.Background(), "/clients")
	require.NoError(t, err)
	require.True(t, env.Success)

	var payload struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, env.DecodeData(&payload))
	require.Equal(t, int64(42), payload.ID)
	require.Equal(t, "Solaria GmbH", payload.Name)
}

func TestRequestSendsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	client := New(srv.URL, func() string { return "token-abc" })
	_, err := client.Get(context.Background(), "/users")
	require.NoError(t, err)
	require.Equal(t, "Bearer token-abc", gotAuth)
}

func TestRequestOmitsAuthorizationWhenAnonymous(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	client := New(srv.URL, func() string { return "" })
	_, err := client.Get(context.Background(), "/auth/login")
	require.NoError(t, err)
	require.Empty(t, gotAuth)
}

func TestRequestMapsAuthStatuses(t *testing.T) {
	status := http.StatusUnauthorized
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	defer srv.Close()

	client := New(srv.URL, nil)

	_, err := client.Get(context.Background(), "/users")
	require.ErrorIs(t, err, ErrUnauthorized)

	status = http.StatusForbidden
	_, err = client.Delete(context.Background(), "/users/1")
	require.ErrorIs(t, err, ErrForbidden)
}

func TestRequestBusinessFailureIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"success":false,"message":"validation failed","errors":{"email":["email is required"]}}`))
	}))
	defer srv.Close()

	client := New(srv.URL, nil)
	env, err := client.Post(context.Background(), "/users", map[string]string{"name": "x"})
	require.NoError(t, err)
	require.False(t, env.Success)
	require.Equal(t, "validation failed", env.Message)
	require.Equal(t, []string{"email is required"}, env.Errors["email"])
}

func TestRequestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // server already gone

	client := New(srv.URL, nil)
	_, err := client.Get(context.Background(), "/users")
	require.ErrorIs(t, err, ErrTransport)
}

func TestDecodeListNormalizesBothShapes(t *testing.T) {
	type row struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}

	bare := Envelope{Success: true, Data: []byte(`[{"id":1,"name":"Alpha"},{"id":2,"name":"Beta"}]`)}
	var fromArray []row
	require.NoError(t, bare.DecodeList(&fromArray))
	require.Len(t, fromArray, 2)
	require.Equal(t, "Beta", fromArray[1].Name)

	paged := Envelope{Success: true, Data: []byte(`{"items":[{"id":3,"name":"Gamma"}],"pagination":{"page":1,"per_page":20,"total":1}}`)}
	var fromPage []row
	require.NoError(t, paged.DecodeList(&fromPage))
	require.Len(t, fromPage, 1)
	require.Equal(t, int64(3), fromPage[0].ID)

	empty := Envelope{Success: true, Data: []byte(`{"items":[],"pagination":{"page":1,"per_page":20,"total":0}}`)}
	var fromEmpty []row
	require.NoError(t, empty.DecodeList(&fromEmpty))
	require.Empty(t, fromEmpty)

	var missing Envelope
	require.Error(t, missing.DecodeList(&fromEmpty))
}

func TestRequestUnparsableBodyIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>bad gateway</html>`))
	}))
	defer srv.Close()

	client := New(srv.URL, nil)
	_, err := client.Get(context.Background(), "/users")
	require.ErrorIs(t, err, ErrTransport)
}
