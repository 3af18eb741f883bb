package datacite

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	client, err := NewClient(ClientConfig{
		BaseURL:  baseURL,
		Username: "REPO.TEST",
		Password: "test-password",
		Logger:   hclog.NewNullLogger(),
	})
	require.NoError(t, err)
	return client
}

func TestClient_CreateOrUpdate_Created(t *testing.T) {
	payload := []byte(`{"data":{"type":"dois","attributes":{"doi":"10.5438/0012"}}}`)

	// Create a mock HTTP server that accepts the create
	var requestCount int
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount++

		// Verify request
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/dois", r.URL.Path)
		assert.Equal(t, "application/vnd.api+json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/vnd.api+json", r.Header.Get("Accept"))

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "REPO.TEST", user)
		assert.Equal(t, "test-password", pass)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, payload, body)

		w.Header().Set("Content-Type", "application/vnd.api+json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"id":"10.5438/0012","type":"dois"}}`))
	}))
	defer mockServer.Close()

	client := newTestClient(t, mockServer.URL)

	outcome, err := client.CreateOrUpdate(context.Background(), "10.5438/0012", payload)
	require.NoError(t, err)

	assert.True(t, outcome.Created)
	assert.False(t, outcome.Updated)
	require.NotNil(t, outcome.Response)
	assert.Equal(t, http.StatusCreated, outcome.Response.StatusCode)

	// An accepted create must not be followed by an update
	assert.Equal(t, 1, requestCount)
}

func TestClient_CreateOrUpdate_FallsBackToUpdate(t *testing.T) {
	payload := []byte(`{"data":{"type":"dois","attributes":{"doi":"10.5438/0012"}}}`)

	// Create a mock HTTP server that rejects the create as a duplicate
	// and accepts the follow-up update
	var requests []string
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.Method+" "+r.URL.Path)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, payload, body)

		switch r.Method {
		case "POST":
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"errors":[{"status":"422","title":"This DOI has already been taken"}]}`))
		case "PUT":
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"data":{"id":"10.5438/0012","type":"dois"}}`))
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	}))
	defer mockServer.Close()

	client := newTestClient(t, mockServer.URL)

	outcome, err := client.CreateOrUpdate(context.Background(), "10.5438/0012", payload)
	require.NoError(t, err)

	assert.False(t, outcome.Created)
	assert.True(t, outcome.Updated)
	require.NotNil(t, outcome.Response)
	assert.Equal(t, http.StatusOK, outcome.Response.StatusCode)

	// Exactly one create and one update, with the DOI slash unescaped in
	// the update path
	require.Len(t, requests, 2)
	assert.Equal(t, "POST /dois", requests[0])
	assert.Equal(t, "PUT /dois/10.5438/0012", requests[1])
}

func TestClient_CreateOrUpdate_CreateRejected(t *testing.T) {
	// Create a mock HTTP server that rejects the create with a non-422
	// status; no update must follow
	var requestCount int
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount++
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"errors":[{"status":"500","title":"Internal Server Error"}]}`))
	}))
	defer mockServer.Close()

	client := newTestClient(t, mockServer.URL)

	outcome, err := client.CreateOrUpdate(context.Background(), "10.5438/0012", []byte(`{}`))
	require.NoError(t, err)

	assert.False(t, outcome.Created)
	assert.False(t, outcome.Updated)
	require.NotNil(t, outcome.Response)
	assert.Equal(t, http.StatusInternalServerError, outcome.Response.StatusCode)
	assert.Equal(t, 1, requestCount)
}

func TestClient_CreateOrUpdate_UpdateRejected(t *testing.T) {
	// Create a mock HTTP server where the create collides and the update
	// is rejected too
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case "POST":
			w.WriteHeader(http.StatusUnprocessableEntity)
		case "PUT":
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"errors":[{"status":"404","title":"The resource you are looking for doesn't exist."}]}`))
		}
	}))
	defer mockServer.Close()

	client := newTestClient(t, mockServer.URL)

	outcome, err := client.CreateOrUpdate(context.Background(), "10.5438/0012", []byte(`{}`))
	require.NoError(t, err)

	assert.False(t, outcome.Created)
	assert.False(t, outcome.Updated)
	require.NotNil(t, outcome.Response)
	assert.Equal(t, http.StatusNotFound, outcome.Response.StatusCode)

	errs := outcome.Response.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, "The resource you are looking for doesn't exist.", errs[0].Title)
}

func TestClient_CreateOrUpdate_TransportError(t *testing.T) {
	// Point the client at a server that is no longer listening
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	mockServer.Close()

	client := newTestClient(t, mockServer.URL)

	outcome, err := client.CreateOrUpdate(context.Background(), "10.5438/0012", []byte(`{}`))
	require.Error(t, err)

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, "create", reqErr.Op)
	assert.Equal(t, Outcome{}, outcome)
}

func TestClient_Update(t *testing.T) {
	payload := []byte(`{"data":{"type":"dois","attributes":{"event":"hide"}}}`)

	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "PUT", r.Method)
		assert.Equal(t, "/dois/10.5438/0012", r.URL.Path)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, payload, body)

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"data":{"id":"10.5438/0012","type":"dois"}}`))
	}))
	defer mockServer.Close()

	client := newTestClient(t, mockServer.URL)

	resp, err := client.Update(context.Background(), "10.5438/0012", payload)
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.True(t, resp.OK())
}

func TestClient_Delete(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "DELETE", r.Method)
		assert.Equal(t, "/dois/10.5438/0012", r.URL.Path)
		assert.Empty(t, r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer mockServer.Close()

	client := newTestClient(t, mockServer.URL)

	deleted, resp, err := client.Delete(context.Background(), "10.5438/0012")
	require.NoError(t, err)
	assert.True(t, deleted)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestClient_Delete_Refused(t *testing.T) {
	// Findable DOIs cannot be deleted; the API answers 403
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"errors":[{"status":"403","title":"Only draft DOIs can be deleted."}]}`))
	}))
	defer mockServer.Close()

	client := newTestClient(t, mockServer.URL)

	deleted, resp, err := client.Delete(context.Background(), "10.5438/0012")
	require.NoError(t, err)
	assert.False(t, deleted)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestClient_Delete_TransportError(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	mockServer.Close()

	client := newTestClient(t, mockServer.URL)

	deleted, resp, err := client.Delete(context.Background(), "10.5438/0012")
	require.Error(t, err)
	assert.False(t, deleted)
	assert.Nil(t, resp)
}

func TestClient_Retrieve(t *testing.T) {
	record := `{"data":{"id":"10.5438/0012","type":"dois","attributes":{"doi":"10.5438/0012"}}}`

	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/dois/10.5438/0012", r.URL.Path)
		w.Header().Set("Content-Type", "application/vnd.api+json")
		w.Write([]byte(record))
	}))
	defer mockServer.Close()

	client := newTestClient(t, mockServer.URL)

	resp, err := client.Retrieve(context.Background(), "10.5438/0012")
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, record, string(resp.Body))

	var payload Payload
	require.NoError(t, resp.Decode(&payload))
	assert.Equal(t, "10.5438/0012", payload.Data.ID)
}

func TestClient_Retrieve_NotFound(t *testing.T) {
	// Any non-2xx answer is reported as an absent record, not an error
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"errors":[{"status":"404","title":"The resource you are looking for doesn't exist."}]}`))
	}))
	defer mockServer.Close()

	client := newTestClient(t, mockServer.URL)

	resp, err := client.Retrieve(context.Background(), "10.5438/9999")
	require.NoError(t, err)
	assert.Nil(t, resp)
}

func TestClient_Retrieve_ServerError(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer mockServer.Close()

	client := newTestClient(t, mockServer.URL)

	resp, err := client.Retrieve(context.Background(), "10.5438/0012")
	require.NoError(t, err)
	assert.Nil(t, resp)
}

func TestClient_Retrieve_TransportError(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	mockServer.Close()

	client := newTestClient(t, mockServer.URL)

	resp, err := client.Retrieve(context.Background(), "10.5438/0012")
	require.Error(t, err)
	assert.Nil(t, resp)

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, "retrieve", reqErr.Op)
}

func TestClient_Heartbeat(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/heartbeat", r.URL.Path)
		w.Write([]byte("OK"))
	}))
	defer mockServer.Close()

	client := newTestClient(t, mockServer.URL)
	require.NoError(t, client.Heartbeat(context.Background()))
}

func TestClient_Heartbeat_Unavailable(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer mockServer.Close()

	client := newTestClient(t, mockServer.URL)

	err := client.Heartbeat(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestNewClient_Validation(t *testing.T) {
	tests := []struct {
		name    string
		config  ClientConfig
		wantErr error
	}{
		{
			name: "valid config",
			config: ClientConfig{
				Username: "REPO.TEST",
				Password: "test-password",
			},
		},
		{
			name: "missing username",
			config: ClientConfig{
				Password: "test-password",
			},
			wantErr: ErrMissingCredentials,
		},
		{
			name: "missing password",
			config: ClientConfig{
				Username: "REPO.TEST",
			},
			wantErr: ErrMissingCredentials,
		},
		{
			name:    "missing both",
			config:  ClientConfig{},
			wantErr: ErrMissingCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.config)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, client)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, client)
			assert.Equal(t, DefaultBaseURL, client.baseURL)
		})
	}
}

func TestNewClient_RejectsBadScheme(t *testing.T) {
	_, err := NewClient(ClientConfig{
		BaseURL:  "ftp://api.datacite.org",
		Username: "REPO.TEST",
		Password: "test-password",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http or https")
}

func TestNewClient_TrimsTrailingSlash(t *testing.T) {
	client, err := NewClient(ClientConfig{
		BaseURL:  "https://api.test.datacite.org/",
		Username: "REPO.TEST",
		Password: "test-password",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://api.test.datacite.org", client.baseURL)
}

func TestResponse_OK(t *testing.T) {
	assert.True(t, (&Response{StatusCode: 200}).OK())
	assert.True(t, (&Response{StatusCode: 204}).OK())
	assert.False(t, (&Response{StatusCode: 301}).OK())
	assert.False(t, (&Response{StatusCode: 422}).OK())
	assert.False(t, (*Response)(nil).OK())
}

func TestResponse_Errors(t *testing.T) {
	resp := &Response{
		StatusCode: 422,
		Body:       []byte(`{"errors":[{"status":"422","title":"This DOI has already been taken","detail":"doi"}]}`),
	}

	errs := resp.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, "422", errs[0].Status)
	assert.Equal(t, "This DOI has already been taken", errs[0].Title)
	assert.Equal(t, "This DOI has already been taken: doi", errs[0].String())

	// Bodies that are not JSONAPI error documents yield nothing
	assert.Nil(t, (&Response{Body: []byte("upstream timeout")}).Errors())
	assert.Nil(t, (&Response{}).Errors())
	assert.Nil(t, (*Response)(nil).Errors())
}
