package relay

import (
	"encoding/json"
	"unicode/utf8"
)

// Wire types for the BidiGenerateContent setup frame. Field names follow
// the Live API's snake_case JSON.
type setupMessage struct {
	Setup setupPayload `json:"setup"`
}

type setupPayload struct {
	Model             string           `json:"model"`
	SystemInstruction *contentBlock    `json:"system_instruction,omitempty"`
	GenerationConfig  generationConfig `json:"generation_config"`
}

type contentBlock struct {
	Parts []textPart `json:"parts"`
}

type textPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseModalities []string      `json:"response_modalities"`
	SpeechConfig       *speechConfig `json:"speech_config,omitempty"`
}

type speechConfig struct {
	VoiceConfig voiceConfig `json:"voice_config"`
}

type voiceConfig struct {
	PrebuiltVoiceConfig prebuiltVoiceConfig `json:"prebuilt_voice_config"`
}

type prebuiltVoiceConfig struct {
	VoiceName string `json:"voice_name"`
}

// buildSetup marshals the one-time handshake: model, persona instruction,
// audio-only responses, and the voice selector. The manager-level voice
// wins over the persona's.
func buildSetup(cfg Config, sc SessionConfig) ([]byte, error) {
	payload := setupPayload{
		Model: cfg.Model,
		GenerationConfig: generationConfig{
			ResponseModalities: []string{"AUDIO"},
		},
	}

	if sc.SystemInstruction != "" {
		payload.SystemInstruction = &contentBlock{
			Parts: []textPart{{Text: sc.SystemInstruction}},
		}
	}

	voice := cfg.Voice
	if voice == "" {
		voice = sc.Voice
	}
	if voice != "" {
		payload.GenerationConfig.SpeechConfig = &speechConfig{
			VoiceConfig: voiceConfig{
				PrebuiltVoiceConfig: prebuiltVoiceConfig{VoiceName: voice},
			},
		}
	}

	return json.Marshal(setupMessage{Setup: payload})
}

// looksTextual reports whether a binary payload is logically a text frame:
// valid UTF-8 shaped like a JSON document. Audio never matches.
func looksTextual(data []byte) bool {
	if len(data) == 0 || !utf8.Valid(data) {
		return false
	}
	for _, b := range data {
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		case '{', '[':
			return true
		default:
			return false
		}
	}
	return false
}
