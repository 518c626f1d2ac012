package snapshot

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"strings"
	"testing"

	"lookout/internal/config"
	"lookout/internal/imaging"
	"lookout/internal/notifications"
)

type stubSource struct {
	frame        []byte
	err          error
	calls        int
	gotDetection string
	gotEvent     string
}

func (s *stubSource) DetectionInput(_ context.Context, detectionID, eventID string) ([]byte, error) {
	s.calls++
	s.gotDetection = detectionID
	s.gotEvent = eventID
	if s.err != nil {
		return nil, s.err
	}
	return s.frame, nil
}

func testJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 0x20, A: 0xff})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return buf.Bytes()
}

func eventWithMedia(t *testing.T, media string, options string) *notifications.Event {
	t.Helper()
	payload := `{"title":"Person Detected"`
	if options != "" {
		payload += `,"options":` + options
	}
	if media != "" {
		payload += `,"media":"` + media + `"`
	}
	payload += `}`
	event, err := notifications.ParseEvent([]byte(payload))
	if err != nil {
		t.Fatalf("ParseEvent returned error: %v", err)
	}
	return event
}

func newAssembler(mode string, source *stubSource) *Assembler {
	cfg := config.Default()
	cfg.Enhance.SnapshotMode = mode
	if source == nil {
		return NewAssembler(&cfg, nil, nil)
	}
	return NewAssembler(&cfg, source, nil)
}

func dataURLBytes(t *testing.T, url string) []byte {
	t.Helper()
	_, payload, ok := strings.Cut(url, ",")
	if !ok {
		t.Fatalf("malformed data url %q", url)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		t.Fatalf("decode data url: %v", err)
	}
	return data
}

const detectionOptions = `{"recordedEvent":{"id":"rec-7","data":{"detectionId":"det-1","sourceId":"cam-1"}}}`

func TestAssembleCroppedModeSkipsDetector(t *testing.T) {
	media := DataURL(testJPEG(t, 64, 48))
	source := &stubSource{err: errors.New("should not be called")}
	assembler := newAssembler(config.SnapshotModeCropped, source)

	images := assembler.Assemble(context.Background(), eventWithMedia(t, media, detectionOptions))
	if len(images) != 1 || images[0].Kind != KindCropped {
		t.Fatalf("expected single cropped image, got %v", images)
	}
	if source.calls != 0 {
		t.Fatalf("detector should not be consulted in cropped mode, got %d calls", source.calls)
	}
}

func TestAssembleBothOrdersFullFirst(t *testing.T) {
	media := DataURL(testJPEG(t, 64, 48))
	source := &stubSource{frame: testJPEG(t, 100, 60)}
	assembler := newAssembler(config.SnapshotModeBoth, source)

	images := assembler.Assemble(context.Background(), eventWithMedia(t, media, detectionOptions))
	if len(images) != 2 {
		t.Fatalf("expected full and cropped, got %v", images)
	}
	if images[0].Kind != KindFull || images[1].Kind != KindCropped {
		t.Fatalf("expected [full, cropped] order, got [%s, %s]", images[0].Kind, images[1].Kind)
	}
	if source.gotDetection != "det-1" {
		t.Fatalf("expected detection id det-1, got %q", source.gotDetection)
	}
	if source.gotEvent != "rec-7" {
		t.Fatalf("expected recorded event id rec-7, got %q", source.gotEvent)
	}
}

func TestAssembleFullModeUsesFullOnly(t *testing.T) {
	media := DataURL(testJPEG(t, 64, 48))
	source := &stubSource{frame: testJPEG(t, 100, 60)}
	assembler := newAssembler(config.SnapshotModeFull, source)

	images := assembler.Assemble(context.Background(), eventWithMedia(t, media, detectionOptions))
	if len(images) != 1 || images[0].Kind != KindFull {
		t.Fatalf("expected single full image, got %v", images)
	}
}

func TestAssembleFullModeFallsBackToCropped(t *testing.T) {
	media := DataURL(testJPEG(t, 64, 48))
	source := &stubSource{err: errors.New("device offline")}
	assembler := newAssembler(config.SnapshotModeFull, source)

	images := assembler.Assemble(context.Background(), eventWithMedia(t, media, detectionOptions))
	if len(images) != 1 || images[0].Kind != KindCropped {
		t.Fatalf("expected cropped fallback, got %v", images)
	}
}

func TestAssembleBothWithoutMediaReturnsFullOnly(t *testing.T) {
	source := &stubSource{frame: testJPEG(t, 100, 60)}
	assembler := newAssembler(config.SnapshotModeBoth, source)

	images := assembler.Assemble(context.Background(), eventWithMedia(t, "", detectionOptions))
	if len(images) != 1 || images[0].Kind != KindFull {
		t.Fatalf("expected full image only, got %v", images)
	}
}

func TestAssembleEmptySelectionIsNormal(t *testing.T) {
	assembler := newAssembler(config.SnapshotModeBoth, nil)
	images := assembler.Assemble(context.Background(), eventWithMedia(t, "", detectionOptions))
	if len(images) != 0 {
		t.Fatalf("expected empty selection, got %v", images)
	}
}

func TestAssembleSkipsFetchWithoutDetectionID(t *testing.T) {
	media := DataURL(testJPEG(t, 64, 48))
	source := &stubSource{frame: testJPEG(t, 100, 60)}
	assembler := newAssembler(config.SnapshotModeFull, source)

	images := assembler.Assemble(context.Background(), eventWithMedia(t, media, `{"subtitle":"Door"}`))
	if len(images) != 1 || images[0].Kind != KindCropped {
		t.Fatalf("expected cropped image, got %v", images)
	}
	if source.calls != 0 {
		t.Fatalf("detector should not be called without a detection id, got %d calls", source.calls)
	}
}

func TestAssembleResizesWideFullFrame(t *testing.T) {
	media := DataURL(testJPEG(t, 64, 48))
	source := &stubSource{frame: testJPEG(t, 1000, 400)}
	assembler := newAssembler(config.SnapshotModeFull, source)

	images := assembler.Assemble(context.Background(), eventWithMedia(t, media, detectionOptions))
	if len(images) != 1 || images[0].Kind != KindFull {
		t.Fatalf("expected full image, got %v", images)
	}
	width, height, err := imaging.Dimensions(dataURLBytes(t, images[0].DataURL))
	if err != nil {
		t.Fatalf("Dimensions returned error: %v", err)
	}
	if width != 384 || height != 154 {
		t.Fatalf("expected 384x154 resized frame, got %dx%d", width, height)
	}
}

func TestAssembleKeepsSmallFullFrameUnresized(t *testing.T) {
	media := DataURL(testJPEG(t, 64, 48))
	frame := testJPEG(t, 640, 360)
	source := &stubSource{frame: frame}
	assembler := newAssembler(config.SnapshotModeFull, source)

	images := assembler.Assemble(context.Background(), eventWithMedia(t, media, detectionOptions))
	if len(images) != 1 {
		t.Fatalf("expected one image, got %v", images)
	}
	if !bytes.Equal(dataURLBytes(t, images[0].DataURL), frame) {
		t.Fatal("expected small frame to pass through unresized")
	}
}
