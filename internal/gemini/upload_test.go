package gemini

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(ts *httptest.Server) *Client {
	c := NewClientWithConfig(Config{
		APIKey:  "test-key",
		BaseURL: ts.URL + "/v1beta",
	})
	c.httpClient.Transport = ts.Client().Transport
	return c
}

func TestClient_Upload(t *testing.T) {
	var gotBody string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 1. Initiate
		if r.Method == "POST" && r.URL.Path == "/upload/v1beta/files" {
			if r.Header.Get("X-Goog-Upload-Protocol") != "resumable" {
				t.Errorf("Expected resumable protocol header")
			}
			if r.Header.Get("X-Goog-Upload-Command") != "start" {
				t.Errorf("Expected start command")
			}
			if r.Header.Get("X-Goog-Upload-Header-Content-Type") != "video/mp4" {
				t.Errorf("Expected declared content type, got %q", r.Header.Get("X-Goog-Upload-Header-Content-Type"))
			}
			body, _ := io.ReadAll(r.Body)
			gotBody = string(body)
			w.Header().Set("X-Goog-Upload-URL", "http://"+r.Host+"/upload_session")
			w.WriteHeader(http.StatusOK)
			return
		}

		// 2. Transfer
		if r.Method == "POST" && r.URL.Path == "/upload_session" {
			if r.Header.Get("X-Goog-Upload-Command") != "upload, finalize" {
				t.Errorf("Expected finalize command")
			}
			if r.Header.Get("X-Goog-Upload-Offset") != "0" {
				t.Errorf("Expected zero offset")
			}
			payload, _ := io.ReadAll(r.Body)
			if string(payload) != "fake video bytes" {
				t.Errorf("Payload mismatch: %q", payload)
			}
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"file": {"name": "files/ev-abc", "uri": "https://svc/files/ev-abc", "mimeType": "video/mp4", "state": "PROCESSING"}}`))
			return
		}

		t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
	}))
	defer ts.Close()

	client := newTestClient(ts)

	file, err := client.Upload(context.Background(), []byte("fake video bytes"), "video/mp4", "checkout.mp4", "files/ev-abc")
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if file.Name != "files/ev-abc" {
		t.Errorf("Expected name files/ev-abc, got %s", file.Name)
	}
	if file.State != FileStateProcessing {
		t.Errorf("Expected PROCESSING, got %s", file.State)
	}
	if gotBody != `{"file":{"displayName":"checkout.mp4","name":"files/ev-abc"}}` {
		t.Errorf("Unexpected initiate body: %s", gotBody)
	}
}

func TestClient_Upload_InitiateFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "boom"}`))
	}))
	defer ts.Close()

	client := newTestClient(ts)

	_, err := client.Upload(context.Background(), []byte("x"), "video/mp4", "a.mp4", "")
	var ue *UploadError
	if !errors.As(err, &ue) {
		t.Fatalf("Expected UploadError, got %v", err)
	}
	if ue.Phase != PhaseInitiate || ue.Status != http.StatusInternalServerError {
		t.Errorf("Unexpected error detail: %+v", ue)
	}
}

func TestClient_Upload_Conflict(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error": "already exists"}`))
	}))
	defer ts.Close()

	client := newTestClient(ts)

	_, err := client.Upload(context.Background(), []byte("x"), "video/mp4", "a.mp4", "files/ev-dupe")
	var ce *ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("Expected ConflictError, got %v", err)
	}
	if ce.ResourceName != "files/ev-dupe" {
		t.Errorf("Unexpected resource name: %s", ce.ResourceName)
	}
}

func TestClient_Upload_TransferFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/upload/v1beta/files" {
			w.Header().Set("X-Goog-Upload-URL", "http://"+r.Host+"/upload_session")
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream unavailable"))
	}))
	defer ts.Close()

	client := newTestClient(ts)

	_, err := client.Upload(context.Background(), []byte("x"), "video/mp4", "a.mp4", "")
	var ue *UploadError
	if !errors.As(err, &ue) {
		t.Fatalf("Expected UploadError, got %v", err)
	}
	if ue.Phase != PhaseTransfer || ue.Status != http.StatusBadGateway {
		t.Errorf("Unexpected error detail: %+v", ue)
	}
	if ue.Body != "upstream unavailable" {
		t.Errorf("Expected service error body, got %q", ue.Body)
	}
}

func TestClient_Upload_NoSessionURL(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	client := newTestClient(ts)

	_, err := client.Upload(context.Background(), []byte("x"), "video/mp4", "a.mp4", "")
	if err == nil {
		t.Fatal("Expected error when no session URL returned")
	}
}
