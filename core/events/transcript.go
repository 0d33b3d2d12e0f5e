package events

const (
	// KindTranscriptInterim identifies provisional transcript text.
	KindTranscriptInterim Kind = "transcript.interim"
	// KindTranscriptFinal identifies finalized transcript text.
	KindTranscriptFinal Kind = "transcript.final"
)

// TranscriptInterim carries provisional transcript text.
type TranscriptInterim struct {
	Base
	Text string
}

// NewTranscriptInterim creates an interim transcript event.
func NewTranscriptInterim(text string) TranscriptInterim {
	return TranscriptInterim{Base: NewBase(KindTranscriptInterim), Text: text}
}

// TranscriptFinal carries finalized transcript text.
type TranscriptFinal struct {
	Base
	Text string
}

// NewTranscriptFinal creates a final transcript event.
func NewTranscriptFinal(text string) TranscriptFinal {
	return TranscriptFinal{Base: NewBase(KindTranscriptFinal), Text: text}
}
