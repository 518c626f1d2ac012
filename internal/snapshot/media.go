package snapshot

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxMediaBytes caps how much image data a single notification may carry.
const maxMediaBytes = 32 << 20

// Resolve turns a media reference into raw image bytes. References arrive in
// three forms: base64 data URIs, http(s) URLs, and bare base64 payloads.
func Resolve(ctx context.Context, client *http.Client, media string) ([]byte, error) {
	media = strings.TrimSpace(media)
	if media == "" {
		return nil, errors.New("no media reference")
	}
	switch {
	case strings.HasPrefix(media, "data:"):
		return decodeDataURI(media)
	case strings.HasPrefix(media, "http://"), strings.HasPrefix(media, "https://"):
		return fetchMediaURL(ctx, client, media)
	default:
		return decodeBase64(media)
	}
}

// DataURL encodes image bytes as a base64 data URL with a sniffed MIME type.
func DataURL(data []byte) string {
	mime := http.DetectContentType(data)
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func decodeDataURI(uri string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, errors.New("malformed data uri")
	}
	if !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("unsupported data uri encoding %q", meta)
	}
	return decodeBase64(payload)
}

func decodeBase64(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	data, err := base64.StdEncoding.DecodeString(payload)
	if err == nil {
		return data, nil
	}
	if data, rawErr := base64.RawStdEncoding.DecodeString(payload); rawErr == nil {
		return data, nil
	}
	return nil, fmt.Errorf("decode base64 media: %w", err)
}

func fetchMediaURL(ctx context.Context, client *http.Client, mediaURL string) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build media request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch media: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("media fetch returned %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxMediaBytes))
	if err != nil {
		return nil, fmt.Errorf("read media body: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("media fetch returned empty body")
	}
	return data, nil
}
