package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lyzr/line-relay/cmd/relay/models"
	"github.com/lyzr/line-relay/common/clients"
	"github.com/lyzr/line-relay/common/logger"
	"github.com/lyzr/line-relay/common/messaging"
	"github.com/lyzr/line-relay/common/storage"
	"github.com/lyzr/line-relay/common/telemetry"
	"github.com/lyzr/line-relay/common/tts"
)

// Synthesizer turns text into audio
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, opts tts.Options) (*tts.Audio, error)
}

// DurationMeter measures audio play length
type DurationMeter interface {
	DurationMillis(data []byte) (int64, error)
}

// MediaStore persists media and derives its public URL
type MediaStore interface {
	Upload(ctx context.Context, bucket, key string, data []byte, contentType string, metadata map[string]string) (*storage.StoredObject, error)
	PublicURL(obj *storage.StoredObject) (string, bool)
}

// Messenger pushes ordered parts to a recipient
type Messenger interface {
	Push(ctx context.Context, recipient string, parts []messaging.Part) (*messaging.PushResult, error)
}

// TTSResult is the outcome of a TTS push
type TTSResult struct {
	Push       *messaging.PushResult
	AudioURL   string
	DurationMs int64
}

// ImageResult is the outcome of an image push
type ImageResult struct {
	Push     *messaging.PushResult
	ImageURL string
}

// PushService runs each push request as a strict sequence of external calls.
// No step is retried and a completed upload is never rolled back.
type PushService struct {
	store     MediaStore
	synth     Synthesizer
	meter     DurationMeter
	messenger Messenger
	keys      *KeyGenerator
	bucket    string
	log       *logger.Logger
	telemetry *telemetry.Telemetry
}

// NewPushService creates a new push service
func NewPushService(
	store MediaStore,
	synth Synthesizer,
	meter DurationMeter,
	messenger Messenger,
	keys *KeyGenerator,
	bucket string,
	log *logger.Logger,
	tel *telemetry.Telemetry,
) *PushService {
	return &PushService{
		store:     store,
		synth:     synth,
		meter:     meter,
		messenger: messenger,
		keys:      keys,
		bucket:    bucket,
		log:       log,
		telemetry: tel,
	}
}

// PushText sends a single text message
func (s *PushService) PushText(ctx context.Context, recipient, text string) (*messaging.PushResult, error) {
	if err := validateRecipient(recipient); err != nil {
		return nil, err
	}
	body := strings.TrimSpace(text)
	if body == "" {
		return nil, invalid("text", "text is required")
	}

	log := s.requestLogger(ctx, recipient)
	log.Info("pushing text message", "length", len(body))

	return s.push(ctx, recipient, []messaging.Part{messaging.Text{Body: body}})
}

// PushTTS synthesizes speech, stores it and pushes it as an audio message
func (s *PushService) PushTTS(ctx context.Context, recipient string, req models.TTSPushRequest) (*TTSResult, error) {
	if err := validateRecipient(recipient); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.TTS) == "" {
		return nil, invalid("tts", "tts text is required")
	}

	log := s.requestLogger(ctx, recipient)
	opts := req.SynthesisOptions()

	start := time.Now()
	audio, err := s.synth.Synthesize(ctx, req.TTS, opts)
	if err != nil {
		return nil, fmt.Errorf("synthesize: %w", err)
	}
	s.telemetry.RecordDuration("tts.synthesize", start)

	durationMs, err := s.meter.DurationMillis(audio.Data)
	if err != nil {
		return nil, &AudioError{Err: err}
	}
	log.Info("speech synthesized", "bytes", len(audio.Data), "duration_ms", durationMs)

	key := s.keys.MediaKey(PrefixTTS, audio.ContentType)
	obj, err := s.upload(ctx, key, audio.Data, audio.ContentType, map[string]string{
		"recipient": recipient,
		"kind":      PrefixTTS,
	})
	if err != nil {
		return nil, err
	}

	s.storeSidecar(ctx, log, models.SidecarRecord{
		Kind:        PrefixTTS,
		Recipient:   recipient,
		RequestID:   requestID(ctx),
		MediaKey:    obj.Key,
		ETag:        obj.ETag,
		ContentType: audio.ContentType,
		SizeBytes:   int64(len(audio.Data)),
		Caption:     caption(req.Text),
		TTSText:     req.TTS,
		TTSOptions:  &opts,
		DurationMs:  &durationMs,
		CreatedAt:   time.Now().UTC(),
	})

	audioURL, ok := s.store.PublicURL(obj)
	if !ok {
		return nil, ErrPublicURLUnavailable
	}

	parts := withCaption(req.Text, messaging.Audio{URL: audioURL, DurationMs: durationMs})
	result, err := s.push(ctx, recipient, parts)
	if err != nil {
		return nil, err
	}

	return &TTSResult{Push: result, AudioURL: audioURL, DurationMs: durationMs}, nil
}

// PushImage stores an uploaded image and pushes it as an image message
func (s *PushService) PushImage(ctx context.Context, recipient string, img models.ImageUpload, captionText string) (*ImageResult, error) {
	if err := validateRecipient(recipient); err != nil {
		return nil, err
	}
	if !strings.HasPrefix(strings.ToLower(img.ContentType), "image/") {
		return nil, invalid("image", fmt.Sprintf("content type %q is not an image", img.ContentType))
	}
	if len(img.Data) == 0 {
		return nil, invalid("image", "image is empty")
	}

	log := s.requestLogger(ctx, recipient)
	log.Info("pushing image", "bytes", len(img.Data), "content_type", img.ContentType)

	key := s.keys.MediaKey(PrefixImage, img.ContentType)
	obj, err := s.upload(ctx, key, img.Data, img.ContentType, map[string]string{
		"recipient": recipient,
		"kind":      PrefixImage,
	})
	if err != nil {
		return nil, err
	}

	s.storeSidecar(ctx, log, models.SidecarRecord{
		Kind:        PrefixImage,
		Recipient:   recipient,
		RequestID:   requestID(ctx),
		MediaKey:    obj.Key,
		ETag:        obj.ETag,
		ContentType: img.ContentType,
		SizeBytes:   int64(len(img.Data)),
		Caption:     caption(captionText),
		Filename:    img.Filename,
		CreatedAt:   time.Now().UTC(),
	})

	imageURL, ok := s.store.PublicURL(obj)
	if !ok {
		return nil, ErrPublicURLUnavailable
	}

	parts := withCaption(captionText, messaging.Image{URL: imageURL, PreviewURL: imageURL})
	result, err := s.push(ctx, recipient, parts)
	if err != nil {
		return nil, err
	}

	return &ImageResult{Push: result, ImageURL: imageURL}, nil
}

func (s *PushService) upload(ctx context.Context, key string, data []byte, contentType string, metadata map[string]string) (*storage.StoredObject, error) {
	start := time.Now()
	obj, err := s.store.Upload(ctx, s.bucket, key, data, contentType, metadata)
	if err != nil {
		return nil, fmt.Errorf("upload media: %w", err)
	}
	s.telemetry.RecordDuration("store.upload", start)
	return obj, nil
}

// storeSidecar uploads the metadata record for a media object. It is best
// effort: the push never references it, so a failure is logged and dropped.
func (s *PushService) storeSidecar(ctx context.Context, log *logger.Logger, record models.SidecarRecord) {
	key := SidecarKey(record.MediaKey)

	data, err := json.Marshal(record)
	if err == nil {
		_, err = s.store.Upload(ctx, s.bucket, key, data, "application/json", nil)
	}
	if err != nil {
		log.Warn("metadata sidecar upload failed, continuing", "key", key, "error", err)
		return
	}

	log.Debug("metadata sidecar stored", "key", key)
}

func (s *PushService) push(ctx context.Context, recipient string, parts []messaging.Part) (*messaging.PushResult, error) {
	start := time.Now()
	result, err := s.messenger.Push(ctx, recipient, parts)
	if err != nil {
		return nil, fmt.Errorf("push message: %w", err)
	}
	s.telemetry.RecordDuration("messaging.push", start)
	return result, nil
}

func (s *PushService) requestLogger(ctx context.Context, recipient string) *logger.Logger {
	return s.log.WithRequestID(requestID(ctx)).WithRecipient(recipient)
}

// withCaption puts the caption, when there is one, ahead of the media part
func withCaption(text string, media messaging.Part) []messaging.Part {
	if c := caption(text); c != "" {
		return []messaging.Part{messaging.Text{Body: c}, media}
	}
	return []messaging.Part{media}
}

func caption(text string) string {
	return strings.TrimSpace(text)
}

func validateRecipient(recipient string) error {
	if strings.TrimSpace(recipient) == "" {
		return invalid("userId", "recipient is required")
	}
	return nil
}

func requestID(ctx context.Context) string {
	id, _ := clients.GetRequestID(ctx)
	return id
}
