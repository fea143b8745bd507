// Package translate wraps the external transliterate-and-translate call.
package translate

import "context"

// Status marks whether a translation came from the service or from the
// verbatim fallback.
type Status string

const (
	StatusOK       Status = "ok"
	StatusDegraded Status = "degraded"
)

// Result is the gateway output: the message rendered in a common script
// and translated into the target language. When Status is StatusDegraded
// both fields carry the original text unchanged.
type Result struct {
	CommonText     string
	TranslatedText string
	Status         Status
}

// Translator converts text into a common script and translates it into
// the target language. Implementations absorb upstream failures into a
// degraded Result instead of returning an error, so a send never fails
// because the translation backend is down.
type Translator interface {
	Translate(ctx context.Context, text, targetLang string) Result
}
