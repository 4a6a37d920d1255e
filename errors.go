package icadtone

import (
	"fmt"

	"github.com/TheGreatCodeholio/icad-tone-detection/audioio"
)

// Kind classifies the failure stage of an Error, per the engine's error
// handling design: AudioLoad, FrequencyExtraction, ToneDetection,
// ExternalToolMissing, and ConfigurationInvalid are the only kinds the
// engine ever surfaces to a caller.
type Kind string

const (
	KindAudioLoad            Kind = "audio_load"
	KindFrequencyExtraction  Kind = "frequency_extraction"
	KindToneDetection        Kind = "tone_detection"
	KindExternalToolMissing  Kind = "external_tool_missing"
	KindConfigurationInvalid Kind = "configuration_invalid"
)

// Error is the single error type the engine returns. It carries a Kind so
// callers can branch on failure stage without string matching, and wraps
// the underlying cause when there is one.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func errAudioLoad(message string, cause error) *Error {
	return newError(KindAudioLoad, message, cause)
}

func errFrequencyExtraction(message string, cause error) *Error {
	return newError(KindFrequencyExtraction, message, cause)
}

func errToneDetection(message string, cause error) *Error {
	return newError(KindToneDetection, message, cause)
}

func errExternalToolMissing(message string, cause error) *Error {
	return newError(KindExternalToolMissing, message, cause)
}

func errConfigurationInvalid(message string, cause error) *Error {
	return newError(KindConfigurationInvalid, message, cause)
}

// WrapAudioLoadError classifies an audioio load failure into the engine's
// typed Error, so callers loading a clip via audioio (the CLI and HTTP
// server both do, ahead of Engine.Analyze) get the same AudioLoad /
// ExternalToolMissing Kinds spec.md §7 documents for the engine itself.
// Returns nil for a nil err.
func WrapAudioLoadError(err error) *Error {
	if err == nil {
		return nil
	}
	if audioio.IsToolMissing(err) {
		return errExternalToolMissing("external audio transcoder unavailable", err)
	}
	return errAudioLoad("failed to load audio", err)
}
