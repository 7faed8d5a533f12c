// Package eval turns a finished roleplay conversation into coaching
// feedback. The remote evaluation call is the only thing on the caller's
// critical path; artifact persistence runs on a background pool and media
// staging is cleaned up on every exit path.
package eval

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/pitchcoach/backend/internal/service/storage"
)

var (
	// ErrEmptyInput means there was nothing to evaluate; no remote call
	// was attempted.
	ErrEmptyInput = errors.New("nothing to evaluate")

	// ErrMediaStagingFailed means the audio could not be staged locally or
	// registered with the evaluation backend.
	ErrMediaStagingFailed = errors.New("media staging failed")

	// ErrEvaluationFailed means the remote evaluation call errored or
	// timed out. The wrapped cause is human-readable.
	ErrEvaluationFailed = errors.New("evaluation failed")
)

// MediaRef identifies audio registered with the evaluation backend.
type MediaRef struct {
	Name     string
	URI      string
	MIMEType string
}

// Generator is the generative-evaluation collaborator. Media must be
// uploaded before it can be referenced in Generate and should be deleted
// afterwards.
type Generator interface {
	UploadMedia(ctx context.Context, path, mimeType string) (*MediaRef, error)
	DeleteMedia(ctx context.Context, ref *MediaRef) error
	Generate(ctx context.Context, prompt string, media *MediaRef) (string, error)
}

// Service is the evaluation pipeline. Collaborators are injected once at
// startup; each Evaluate call is independent.
type Service struct {
	gen     Generator
	store   storage.ObjectStore
	pool    *storage.Pool
	timeout time.Duration
}

// New constructs the pipeline. store may be nil when no bucket is
// configured; artifacts are then not archived.
func New(gen Generator, store storage.ObjectStore, pool *storage.Pool, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &Service{gen: gen, store: store, pool: pool, timeout: timeout}
}

// Evaluate persists the transcript, runs one evaluation call against the
// backend, persists the resulting feedback under the same correlation
// timestamp, and returns it. Persistence never blocks or fails the caller.
func (s *Service) Evaluate(ctx context.Context, transcript string, audio []byte, audioMIME string) (string, error) {
	if strings.TrimSpace(transcript) == "" && len(audio) == 0 {
		return "", ErrEmptyInput
	}

	ts := storage.Timestamp()

	if strings.TrimSpace(transcript) != "" {
		s.persist("logs/"+ts+".txt", "text/plain; charset=utf-8", []byte(transcript))
	}

	var media *MediaRef
	if len(audio) > 0 {
		ref, err := s.stageMedia(ctx, audio, audioMIME)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrMediaStagingFailed, err)
		}
		media = ref
		defer func() {
			// The backend expires files on its own; deleting early is a courtesy.
			if err := s.gen.DeleteMedia(context.Background(), media); err != nil {
				log.Printf("[eval] release media %s failed: %v", media.Name, err)
			}
		}()
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	feedback, err := s.gen.Generate(callCtx, BuildPrompt(transcript, media != nil), media)
	if err != nil {
		log.Printf("[eval] evaluation call failed: %v", err)
		return "", fmt.Errorf("%w: %v", ErrEvaluationFailed, err)
	}

	s.persist("feedback/"+ts+".md", "text/markdown; charset=utf-8", []byte(feedback))

	return feedback, nil
}

// stageMedia writes the audio to a temp file, registers it with the
// backend, and removes the file before returning, success or not.
func (s *Service) stageMedia(ctx context.Context, audio []byte, mimeType string) (*MediaRef, error) {
	if mimeType == "" {
		mimeType = "audio/webm"
	}

	f, err := os.CreateTemp("", "pitchcoach-audio-*"+extFor(mimeType))
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.Write(audio); err != nil {
		f.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	ref, err := s.gen.UploadMedia(ctx, path, mimeType)
	if err != nil {
		return nil, fmt.Errorf("upload media: %w", err)
	}
	return ref, nil
}

func (s *Service) persist(key, contentType string, data []byte) {
	if s.store == nil || s.pool == nil {
		return
	}

	submitted := s.pool.Submit(func(ctx context.Context) {
		if err := s.store.Put(ctx, key, contentType, data); err != nil {
			log.Printf("[eval] persist %s failed: %v", key, err)
		}
	})
	if !submitted {
		log.Printf("[eval] persist %s dropped: background pool unavailable", key)
	}
}

func extFor(mimeType string) string {
	switch mimeType {
	case "audio/webm":
		return ".webm"
	case "audio/wav", "audio/x-wav":
		return ".wav"
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/ogg":
		return ".ogg"
	default:
		return ".bin"
	}
}
