package snapshot

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"lookout/internal/config"
	"lookout/internal/imaging"
	"lookout/internal/logging"
	"lookout/internal/notifications"
	"lookout/internal/services/detector"
)

// Image kinds, in the order providers see them.
const (
	KindFull    = "full"
	KindCropped = "cropped"
)

// Image is one encoded snapshot ready for a provider.
type Image struct {
	Kind    string
	DataURL string
}

// Assembler selects and prepares the images accompanying one inference
// request. The cropped image is whatever the event carried; the full frame
// is fetched from the originating detector only when the configured mode
// wants scene context.
type Assembler struct {
	mode    string
	quality int
	source  detector.Source
	client  *http.Client
	logger  *slog.Logger
}

// NewAssembler builds an assembler for the given snapshot mode. A nil
// detector source simply disables the full-frame path.
func NewAssembler(cfg *config.Config, source detector.Source, logger *slog.Logger) *Assembler {
	return &Assembler{
		mode:    cfg.Enhance.SnapshotMode,
		quality: imaging.DefaultQuality,
		source:  source,
		client:  &http.Client{Timeout: 15 * time.Second},
		logger:  logging.NewComponentLogger(logger, "snapshot"),
	}
}

// Assemble returns the ordered images for the event. Every acquisition
// failure degrades instead of erroring: an empty result is the normal signal
// to skip inference and forward the original notification.
func (a *Assembler) Assemble(ctx context.Context, event *notifications.Event) []Image {
	var cropped, full []byte

	g, groupCtx := errgroup.WithContext(ctx)
	if event.HasMedia() {
		g.Go(func() error {
			data, err := Resolve(groupCtx, a.client, event.Media)
			if err != nil {
				a.logger.Debug("cropped media unusable",
					logging.FieldEventID, event.ID,
					logging.Error(err))
				return nil
			}
			cropped = data
			return nil
		})
	}
	if a.wantsFullFrame() {
		g.Go(func() error {
			data, err := a.fetchFullFrame(groupCtx, event)
			if err != nil {
				a.logger.Debug("full frame unavailable",
					logging.FieldEventID, event.ID,
					logging.Error(err))
				return nil
			}
			full = data
			return nil
		})
	}
	_ = g.Wait()

	images := make([]Image, 0, 2)
	switch a.mode {
	case config.SnapshotModeFull, config.SnapshotModeBoth:
		if full != nil {
			images = append(images, Image{Kind: KindFull, DataURL: DataURL(full)})
		}
		if cropped != nil && (a.mode == config.SnapshotModeBoth || full == nil) {
			images = append(images, Image{Kind: KindCropped, DataURL: DataURL(cropped)})
		}
	default:
		if cropped != nil {
			images = append(images, Image{Kind: KindCropped, DataURL: DataURL(cropped)})
		}
	}
	return images
}

func (a *Assembler) wantsFullFrame() bool {
	return a.mode == config.SnapshotModeFull || a.mode == config.SnapshotModeBoth
}

// fetchFullFrame pulls the recorded frame for the event's detection and
// downsizes it per the width ladder. A resize failure keeps the original
// bytes: an oversized frame still beats no frame.
func (a *Assembler) fetchFullFrame(ctx context.Context, event *notifications.Event) ([]byte, error) {
	if a.source == nil {
		return nil, errors.New("no detector source configured")
	}
	detectionID := event.DetectionID()
	if detectionID == "" {
		return nil, errors.New("event carries no detection id")
	}
	frame, err := a.source.DetectionInput(ctx, detectionID, event.RecordedEventID())
	if err != nil {
		return nil, err
	}

	width, _, err := imaging.Dimensions(frame)
	if err != nil {
		return frame, nil
	}
	target := imaging.TargetWidth(width)
	if target == 0 {
		return frame, nil
	}
	resized, err := imaging.ResizeNearest(frame, target, a.quality)
	if err != nil {
		a.logger.Debug("full frame resize failed, sending original",
			logging.FieldEventID, event.ID,
			logging.Error(err))
		return frame, nil
	}
	return resized, nil
}
