package relay

import (
	"encoding/json"
	"testing"
)

func TestBuildSetupVoicePrecedence(t *testing.T) {
	cfg := testConfig()
	cfg.Voice = "Kore"

	raw, err := buildSetup(cfg, SessionConfig{SystemInstruction: "prompt", Voice: "Aoede"})
	if err != nil {
		t.Fatalf("buildSetup failed: %v", err)
	}

	var msg setupMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatalf("setup is not valid JSON: %v", err)
	}

	sc := msg.Setup.GenerationConfig.SpeechConfig
	if sc == nil || sc.VoiceConfig.PrebuiltVoiceConfig.VoiceName != "Kore" {
		t.Fatalf("deployment voice should win over persona voice")
	}
}

func TestBuildSetupAudioOnlyModality(t *testing.T) {
	raw, err := buildSetup(testConfig(), testSessionConfig())
	if err != nil {
		t.Fatalf("buildSetup failed: %v", err)
	}

	var msg setupMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatalf("setup is not valid JSON: %v", err)
	}

	mods := msg.Setup.GenerationConfig.ResponseModalities
	if len(mods) != 1 || mods[0] != "AUDIO" {
		t.Fatalf("expected AUDIO-only modalities, got %v", mods)
	}
}

func TestLooksTextual(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want bool
	}{
		{"json object", []byte(`{"setupComplete":{}}`), true},
		{"json array", []byte(`[1,2,3]`), true},
		{"leading whitespace", []byte("  \n\t{\"a\":1}"), true},
		{"plain text", []byte("hello"), false},
		{"empty", nil, false},
		{"pcm audio", []byte{0xff, 0xfe, 0x00, 0x80}, false},
		{"utf8 but not json", []byte("turn complete"), false},
	}

	for _, tc := range cases {
		if got := looksTextual(tc.data); got != tc.want {
			t.Errorf("%s: looksTextual = %v, want %v", tc.name, got, tc.want)
		}
	}
}
