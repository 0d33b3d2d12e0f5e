package voices

import "github.com/koscakluka/linguaflow/internal/langtag"

// Pacing is the rate and pitch a platform voice speaks with, 1 is the
// platform's natural value.
type Pacing struct {
	Rate   float64
	Pitch  float64
	Volume float64
}

// PacingFor returns the pacing for language. Only the primary subtag is
// considered.
func PacingFor(language string) Pacing {
	switch langtag.Primary(language) {
	case "zh", "ja", "ko":
		return Pacing{Rate: 1.05, Pitch: 1.0, Volume: 1}
	case "de", "ru", "pl", "nl", "uk":
		return Pacing{Rate: 0.95, Pitch: 0.9, Volume: 1}
	default:
		return Pacing{Rate: 0.95, Pitch: 1.0, Volume: 1}
	}
}
