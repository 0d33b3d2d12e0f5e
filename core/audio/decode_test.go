package audio

import (
	"testing"
	"time"
)

func TestDecodePCMUsesContentTypeParameters(t *testing.T) {
	clip := Clip{Data: make([]byte, 32001), ContentType: "audio/L16; rate=16000; channels=1"}

	decoded, err := Decode(clip)
	if err != nil {
		t.Fatalf("expected pcm decode to succeed, got %v", err)
	}
	if decoded.Encoding.SampleRate != 16000 {
		t.Fatalf("expected sample rate 16000, got %d", decoded.Encoding.SampleRate)
	}
	if len(decoded.PCM) != 32000 {
		t.Fatalf("expected trailing partial frame to be dropped, got %d bytes", len(decoded.PCM))
	}
	if decoded.Duration != time.Second {
		t.Fatalf("expected one second of audio, got %s", decoded.Duration)
	}
}

func TestDecodeRejectsEmptyClip(t *testing.T) {
	if _, err := Decode(Clip{}); err == nil {
		t.Fatalf("expected empty clip to fail decoding")
	}
}

func TestDecodeRejectsUnknownContentType(t *testing.T) {
	if _, err := Decode(Clip{Data: []byte{1, 2}, ContentType: "video/mp4"}); err == nil {
		t.Fatalf("expected unsupported content type to fail decoding")
	}
}

func TestDecodeRejectsGarbageMPEG(t *testing.T) {
	if _, err := Decode(Clip{Data: []byte("not an mp3 payload"), ContentType: ContentTypeMPEG}); err == nil {
		t.Fatalf("expected invalid mp3 to fail decoding")
	}
}

func TestClipExtensionFollowsMediaType(t *testing.T) {
	cases := map[string]string{
		"":                      "mp3",
		"audio/mpeg":            "mp3",
		"audio/wav":             "wav",
		"audio/L16; rate=24000": "pcm",
	}
	for contentType, expected := range cases {
		if got := (Clip{ContentType: contentType}).Extension(); got != expected {
			t.Fatalf("expected extension %q for %q, got %q", expected, contentType, got)
		}
	}
}

func TestEncodingInfoDurationHandlesStereo(t *testing.T) {
	encoding := EncodingInfo{SampleRate: 44100, Channels: 2, Format: EncodingLinear16}

	if got := encoding.Duration(44100 * 4 / 2); got != 500*time.Millisecond {
		t.Fatalf("expected 500ms, got %s", got)
	}
}
