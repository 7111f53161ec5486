package audio

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"lessonlab/pkg/tracker"
	"lessonlab/pkg/tts"
)

type fakeClient struct {
	result  tts.Result
	err     error
	calls   int
	dialect string
}

func (f *fakeClient) Synthesize(ctx context.Context, text, dialect string) (tts.Result, error) {
	f.calls++
	f.dialect = dialect
	return f.result, f.err
}

func fixedHandle(c tts.Client) *tts.Handle {
	return tts.NewHandle(func(ctx context.Context, verify bool) (tts.Client, error) {
		return c, nil
	}, false)
}

func brokenHandle() *tts.Handle {
	return tts.NewHandle(func(ctx context.Context, verify bool) (tts.Client, error) {
		return nil, errors.New("service down")
	}, false)
}

func writeAudioFile(t *testing.T, name string, contents []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, contents, 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func TestAcquireRemoteAudio(t *testing.T) {
	path := writeAudioFile(t, "speech.wav", []byte("remote-bytes"))
	client := &fakeClient{result: tts.Result{Path: path}}
	p := New(fixedHandle(client), nil, 0)

	got, err := p.Acquire(context.Background(), "Grüezi", "Bern")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if string(got.Bytes) != "remote-bytes" {
		t.Errorf("Bytes = %q, want remote-bytes", got.Bytes)
	}
	if got.ContentType != "audio/wav" {
		t.Errorf("ContentType = %q, want audio/wav", got.ContentType)
	}
	if client.dialect != "Bern" {
		t.Errorf("dialect passed = %q, want Bern", client.dialect)
	}
	if _, err := os.Stat(path); err != nil {
		t.Error("non-temporary remote file must survive the request")
	}
}

func TestAcquireNormalizesDialect(t *testing.T) {
	path := writeAudioFile(t, "speech.wav", []byte("x"))
	client := &fakeClient{result: tts.Result{Path: path}}
	p := New(fixedHandle(client), nil, 0)

	if _, err := p.Acquire(context.Background(), "Hoi", "Elbonian"); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if client.dialect != "Zürich" {
		t.Errorf("dialect passed = %q, want Zürich", client.dialect)
	}
}

func TestAcquireDeletesTempRemoteFile(t *testing.T) {
	path := writeAudioFile(t, "speech.mp3", []byte("mp3-bytes"))
	client := &fakeClient{result: tts.Result{Path: path, Temp: true}}
	p := New(fixedHandle(client), nil, 0)

	got, err := p.Acquire(context.Background(), "Hoi", "Zürich")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if got.ContentType != "audio/mpeg" {
		t.Errorf("ContentType = %q, want audio/mpeg", got.ContentType)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("temporary remote file must be removed after reading")
	}
}

func TestAcquireFallsBackWhenClientUnavailable(t *testing.T) {
	tr := tracker.New()
	p := New(brokenHandle(), tr, 0)

	tonePath := writeAudioFile(t, "tone.wav", []byte("tone-bytes"))
	p.synthesize = func(text string) (string, error) { return tonePath, nil }

	got, err := p.Acquire(context.Background(), "Hoi", "Zürich")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if string(got.Bytes) != "tone-bytes" {
		t.Errorf("Bytes = %q, want tone-bytes", got.Bytes)
	}
	if _, err := os.Stat(tonePath); !os.IsNotExist(err) {
		t.Error("placeholder tone file must be removed after reading")
	}
	if got := tr.Snapshot()[trackerLabel].Fallbacks; got != 1 {
		t.Errorf("Fallbacks = %d, want 1", got)
	}
}

func TestAcquireFallsBackOnRemoteError(t *testing.T) {
	client := &fakeClient{err: errors.New("model crashed")}
	p := New(fixedHandle(client), nil, 0)

	tonePath := writeAudioFile(t, "tone.wav", []byte("tone-bytes"))
	p.synthesize = func(text string) (string, error) { return tonePath, nil }

	got, err := p.Acquire(context.Background(), "Hoi", "Zürich")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if string(got.Bytes) != "tone-bytes" {
		t.Errorf("Bytes = %q, want tone-bytes", got.Bytes)
	}
}

func TestAcquireFallsBackOnMissingRemoteFile(t *testing.T) {
	client := &fakeClient{result: tts.Result{Path: filepath.Join(t.TempDir(), "gone.wav")}}
	p := New(fixedHandle(client), nil, 0)

	tonePath := writeAudioFile(t, "tone.wav", []byte("tone-bytes"))
	p.synthesize = func(text string) (string, error) { return tonePath, nil }

	got, err := p.Acquire(context.Background(), "Hoi", "Zürich")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if string(got.Bytes) != "tone-bytes" {
		t.Errorf("Bytes = %q, want tone-bytes", got.Bytes)
	}
}

func TestAcquirePropagatesLocalIOFailure(t *testing.T) {
	p := New(brokenHandle(), nil, 0)
	p.synthesize = func(text string) (string, error) {
		return filepath.Join(t.TempDir(), "never-written.wav"), nil
	}

	if _, err := p.Acquire(context.Background(), "Hoi", "Zürich"); err == nil {
		t.Fatal("expected error when placeholder audio cannot be read")
	}
}

func TestAcquireRealPlaceholderTone(t *testing.T) {
	p := New(brokenHandle(), nil, 0)

	got, err := p.Acquire(context.Background(), "Grüezi mitenand", "Zürich")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if got.ContentType != "audio/wav" {
		t.Errorf("ContentType = %q, want audio/wav", got.ContentType)
	}
	if len(got.Bytes) < 44 {
		t.Errorf("payload of %d bytes is too small to be a WAV file", len(got.Bytes))
	}
}
