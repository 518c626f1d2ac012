package snapshot

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestResolveDataURI(t *testing.T) {
	payload := []byte{0x01, 0x02, 0x03}
	uri := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(payload)
	data, err := Resolve(context.Background(), nil, uri)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if string(data) != string(payload) {
		t.Fatalf("unexpected bytes %v", data)
	}
}

func TestResolveBareBase64(t *testing.T) {
	payload := []byte("frame-bytes")
	data, err := Resolve(context.Background(), nil, base64.StdEncoding.EncodeToString(payload))
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if string(data) != string(payload) {
		t.Fatalf("unexpected bytes %q", data)
	}
}

func TestResolveUnpaddedBase64(t *testing.T) {
	payload := []byte("frame")
	data, err := Resolve(context.Background(), nil, base64.RawStdEncoding.EncodeToString(payload))
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if string(data) != string(payload) {
		t.Fatalf("unexpected bytes %q", data)
	}
}

func TestResolveHTTPURL(t *testing.T) {
	payload := []byte{0xff, 0xd8, 0xff}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	data, err := Resolve(context.Background(), server.Client(), server.URL+"/snapshot.jpg")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if string(data) != string(payload) {
		t.Fatalf("unexpected bytes %v", data)
	}
}

func TestResolveHTTPURLFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer server.Close()

	if _, err := Resolve(context.Background(), server.Client(), server.URL); err == nil {
		t.Fatal("expected resolve to fail on non-200")
	}
}

func TestResolveRejectsMalformedDataURI(t *testing.T) {
	if _, err := Resolve(context.Background(), nil, "data:image/jpeg;base64"); err == nil {
		t.Fatal("expected malformed data uri to fail")
	}
	if _, err := Resolve(context.Background(), nil, "data:image/jpeg,plain-payload"); err == nil {
		t.Fatal("expected non-base64 data uri to fail")
	}
}

func TestResolveRejectsGarbage(t *testing.T) {
	if _, err := Resolve(context.Background(), nil, "!!! not media !!!"); err == nil {
		t.Fatal("expected garbage reference to fail")
	}
	if _, err := Resolve(context.Background(), nil, "   "); err == nil {
		t.Fatal("expected empty reference to fail")
	}
}

func TestDataURLSniffsMime(t *testing.T) {
	jpegMagic := []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 0x4a, 0x46, 0x49, 0x46, 0x00}
	url := DataURL(jpegMagic)
	if !strings.HasPrefix(url, "data:image/jpeg;base64,") {
		t.Fatalf("expected jpeg data url, got %s", url)
	}
}
