package eval

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pitchcoach/backend/internal/service/storage"
)

type fakeGenerator struct {
	mu sync.Mutex

	response  string
	uploadErr error
	genErr    error

	uploads   int
	generates int
	deletes   int

	stagedPath string
	gotPrompt  string
	gotMedia   *MediaRef
}

func (g *fakeGenerator) UploadMedia(_ context.Context, path, mimeType string) (*MediaRef, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.uploads++
	g.stagedPath = path
	if g.uploadErr != nil {
		return nil, g.uploadErr
	}
	return &MediaRef{Name: "files/abc", URI: "https://files.example/abc", MIMEType: mimeType}, nil
}

func (g *fakeGenerator) DeleteMedia(context.Context, *MediaRef) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.deletes++
	return nil
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string, media *MediaRef) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.generates++
	g.gotPrompt = prompt
	g.gotMedia = media
	if g.genErr != nil {
		return "", g.genErr
	}
	return g.response, nil
}

func newTestService(gen *fakeGenerator) (*Service, *storage.MemoryStore, *storage.Pool) {
	store := storage.NewMemoryStore()
	pool := storage.NewPool(2, 8)
	return New(gen, store, pool, 5*time.Second), store, pool
}

func TestEvaluateEmptyInput(t *testing.T) {
	gen := &fakeGenerator{response: "feedback"}
	svc, store, pool := newTestService(gen)
	defer pool.Close()

	_, err := svc.Evaluate(context.Background(), "   ", nil, "")
	if !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
	if gen.uploads != 0 || gen.generates != 0 {
		t.Fatalf("no remote calls expected on empty input, got uploads=%d generates=%d", gen.uploads, gen.generates)
	}
	if len(store.Keys()) != 0 {
		t.Fatalf("no artifacts expected on empty input, got %v", store.Keys())
	}
}

func TestEvaluateSuccessPersistsBothArtifacts(t *testing.T) {
	gen := &fakeGenerator{response: "## Strengths\nClear pricing rationale."}
	svc, store, pool := newTestService(gen)

	transcript := "Hello, I'd like to discuss pricing."
	feedback, err := svc.Evaluate(context.Background(), transcript, nil, "")
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if feedback == "" {
		t.Fatal("expected non-empty feedback")
	}

	pool.Close()

	keys := store.Keys()
	if len(keys) != 2 {
		t.Fatalf("expected 2 stored artifacts, got %v", keys)
	}

	var logKey, feedbackKey string
	for _, k := range keys {
		switch {
		case strings.HasPrefix(k, "logs/"):
			logKey = k
		case strings.HasPrefix(k, "feedback/"):
			feedbackKey = k
		}
	}
	if logKey == "" || feedbackKey == "" {
		t.Fatalf("missing artifact pair: %v", keys)
	}

	logTS := strings.TrimSuffix(strings.TrimPrefix(logKey, "logs/"), ".txt")
	feedbackTS := strings.TrimSuffix(strings.TrimPrefix(feedbackKey, "feedback/"), ".md")
	if logTS != feedbackTS {
		t.Fatalf("artifact pair not correlated: %q vs %q", logTS, feedbackTS)
	}
	if _, err := time.Parse(storage.TimestampLayout, logTS); err != nil {
		t.Fatalf("correlation key %q is not a timestamp: %v", logTS, err)
	}

	logObj, _ := store.Get(logKey)
	if string(logObj.Data) != transcript {
		t.Fatalf("stored transcript differs: %q", logObj.Data)
	}
	if logObj.ContentType != "text/plain; charset=utf-8" {
		t.Fatalf("unexpected transcript content type %q", logObj.ContentType)
	}

	feedbackObj, _ := store.Get(feedbackKey)
	if string(feedbackObj.Data) != gen.response {
		t.Fatalf("stored feedback differs: %q", feedbackObj.Data)
	}
	if feedbackObj.ContentType != "text/markdown; charset=utf-8" {
		t.Fatalf("unexpected feedback content type %q", feedbackObj.ContentType)
	}

	if !strings.Contains(gen.gotPrompt, transcript) {
		t.Fatal("prompt does not include the transcript")
	}
}

func TestEvaluateBackendErrorSurfacedAndNotPersisted(t *testing.T) {
	gen := &fakeGenerator{genErr: errors.New("quota exceeded")}
	svc, store, pool := newTestService(gen)

	_, err := svc.Evaluate(context.Background(), "some pitch", nil, "")
	if !errors.Is(err, ErrEvaluationFailed) {
		t.Fatalf("expected ErrEvaluationFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("expected cause in error, got %q", err.Error())
	}

	pool.Close()

	for _, k := range store.Keys() {
		if strings.HasPrefix(k, "feedback/") {
			t.Fatalf("feedback must not be persisted on failure, found %s", k)
		}
	}
}

func TestEvaluateStagesAndReleasesMedia(t *testing.T) {
	gen := &fakeGenerator{response: "solid delivery"}
	svc, _, pool := newTestService(gen)
	defer pool.Close()

	audio := []byte{0x1a, 0x45, 0xdf, 0xa3}
	if _, err := svc.Evaluate(context.Background(), "pitch", audio, "audio/webm"); err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	if gen.gotMedia == nil || gen.gotMedia.URI == "" {
		t.Fatal("generate call missing media reference")
	}
	if gen.deletes != 1 {
		t.Fatalf("expected 1 media release, got %d", gen.deletes)
	}
	assertRemoved(t, gen.stagedPath)
}

func TestTempFileRemovedOnBackendError(t *testing.T) {
	gen := &fakeGenerator{genErr: errors.New("malformed media")}
	svc, _, pool := newTestService(gen)
	defer pool.Close()

	_, err := svc.Evaluate(context.Background(), "", []byte{0x01}, "audio/webm")
	if !errors.Is(err, ErrEvaluationFailed) {
		t.Fatalf("expected ErrEvaluationFailed, got %v", err)
	}
	if gen.deletes != 1 {
		t.Fatalf("media must be released on failure too, deletes=%d", gen.deletes)
	}
	assertRemoved(t, gen.stagedPath)
}

func TestUploadFailureIsMediaStaging(t *testing.T) {
	gen := &fakeGenerator{uploadErr: errors.New("file api down")}
	svc, _, pool := newTestService(gen)
	defer pool.Close()

	_, err := svc.Evaluate(context.Background(), "pitch", []byte{0x01, 0x02}, "audio/webm")
	if !errors.Is(err, ErrMediaStagingFailed) {
		t.Fatalf("expected ErrMediaStagingFailed, got %v", err)
	}
	if gen.generates != 0 {
		t.Fatalf("no generate call expected after staging failure, got %d", gen.generates)
	}
	assertRemoved(t, gen.stagedPath)
}

func assertRemoved(t *testing.T, path string) {
	t.Helper()
	if path == "" {
		t.Fatal("no staged path recorded")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("staged file %s still present (stat err: %v)", path, err)
	}
}

func TestBuildPromptMentionsAudio(t *testing.T) {
	withAudio := BuildPrompt("pitch", true)
	if !strings.Contains(withAudio, "recording") {
		t.Fatal("audio prompt should reference the attached recording")
	}

	withoutAudio := BuildPrompt("pitch", false)
	if strings.Contains(withoutAudio, "recording") {
		t.Fatal("text-only prompt should not reference a recording")
	}
}
