package report

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewClient(srv.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	client.minSize = 4
	return client
}

func TestRasterizeSendsScreenshotForm(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/forms/chromium/screenshot/html" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(4 << 10); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.FormValue("format"); got != "jpeg" {
			t.Fatalf("format = %q", got)
		}
		if got := r.FormValue("quality"); got != "95" {
			t.Fatalf("quality = %q", got)
		}
		_, _ = w.Write([]byte("JPEGDATA"))
	})

	data, err := client.Rasterize(context.Background(), "<html></html>")
	if err != nil {
		t.Fatalf("rasterize: %v", err)
	}
	if !bytes.Equal(data, []byte("JPEGDATA")) {
		t.Fatalf("unexpected payload %q", data)
	}
}

func TestSubmitRetriesServerErrors(t *testing.T) {
	var calls int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("%PDF-1.4 content"))
	})

	data, err := client.RenderHTML(context.Background(), "<html></html>")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("unexpected payload %q", data)
	}
}

func TestSubmitDoesNotRetryClientErrors(t *testing.T) {
	var calls int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	})

	_, err := client.RenderHTML(context.Background(), "<html></html>")
	if !errors.Is(err, ErrInvalidResponse) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("client errors must not retry, got %d attempts", calls)
	}
}

func TestSubmitRejectsTinyArtefacts(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("x"))
	})

	_, err := client.Rasterize(context.Background(), "<html></html>")
	if !errors.Is(err, ErrTooSmall) {
		t.Fatalf("expected ErrTooSmall, got %v", err)
	}
}

func TestNewClientRequiresEndpoint(t *testing.T) {
	if _, err := NewClient("  "); err == nil {
		t.Fatal("expected error for blank endpoint")
	}
}
