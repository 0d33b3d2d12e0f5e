package events

const (
	// KindTranslationCompleted identifies a translation by the primary backend.
	KindTranslationCompleted Kind = "translation.completed"
	// KindTranslationDegraded identifies a translation produced by a fallback.
	KindTranslationDegraded Kind = "translation.degraded"
)

// Translation is the payload shared by translation events.
type Translation struct {
	SourceText     string
	TranslatedText string
	From           string
	To             string
	Source         string
}

// TranslationCompleted carries a translation by the primary backend.
type TranslationCompleted struct {
	Base
	Translation
}

// NewTranslationCompleted creates a translation completed event.
func NewTranslationCompleted(translation Translation) TranslationCompleted {
	return TranslationCompleted{Base: NewBase(KindTranslationCompleted), Translation: translation}
}

// TranslationDegraded carries a fallback translation and the backend error
// that caused it, when there was one.
type TranslationDegraded struct {
	Base
	Translation
	Err error
}

// NewTranslationDegraded creates a translation degraded event.
func NewTranslationDegraded(translation Translation, err error) TranslationDegraded {
	return TranslationDegraded{Base: NewBase(KindTranslationDegraded), Translation: translation, Err: err}
}
