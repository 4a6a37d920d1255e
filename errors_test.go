package icadtone

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/TheGreatCodeholio/icad-tone-detection/audioio"
)

func TestWrapAudioLoadErrorNil(t *testing.T) {
	if err := WrapAudioLoadError(nil); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestWrapAudioLoadErrorGeneric(t *testing.T) {
	err := WrapAudioLoadError(errors.New("boom"))
	if err.Kind != KindAudioLoad {
		t.Errorf("Kind = %v, want %v", err.Kind, KindAudioLoad)
	}
}

func TestWrapAudioLoadErrorToolMissing(t *testing.T) {
	restorePath := os.Getenv("PATH")
	os.Setenv("PATH", "")
	defer os.Setenv("PATH", restorePath)

	_, loadErr := audioio.LoadBytes(context.Background(), []byte("not a wav and not any known container"))
	if loadErr == nil {
		t.Fatal("expected an error when ffmpeg is unavailable and input isn't WAV")
	}

	err := WrapAudioLoadError(loadErr)
	if err.Kind != KindExternalToolMissing {
		t.Errorf("Kind = %v, want %v", err.Kind, KindExternalToolMissing)
	}
}
