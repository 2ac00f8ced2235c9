package script

// Tunables holds every threshold and weight the detector uses.
// The zero value is not usable; start from DefaultTunables.
type Tunables struct {
	// DominantPct is the share of alphabetic characters (percent) a script
	// must exceed to be reported as the message script.
	DominantPct float64
	// MixedPct is the combined Devanagari+Latin share required for Mixed.
	MixedPct float64

	// LanguageFloor is the score a language must exceed to be reported.
	LanguageFloor int
	ExactWeight   int // whole-token lexicon hit
	LooseWeight   int // Latin substring hit
	NativeWeight  int // Devanagari substring hit
	StrongBoost   int // whole-text copula marker
	Boost         int // other whole-text markers

	// MinIndicators is the number of general romanized-Indic tokens that
	// must be exceeded to report RomanizedIndic without corroboration.
	MinIndicators int
	// MinPatterns is the number of distinct transliteration digraphs
	// required by HasTransliterationPattern.
	MinPatterns int
}

func DefaultTunables() Tunables {
	return Tunables{
		DominantPct:   70,
		MixedPct:      80,
		LanguageFloor: 2,
		ExactWeight:   2,
		LooseWeight:   1,
		NativeWeight:  2,
		StrongBoost:   3,
		Boost:         2,
		MinIndicators: 1,
		MinPatterns:   2,
	}
}

func (t Tunables) boostWeight(w string) int {
	if w == weightStrong {
		return t.StrongBoost
	}
	return t.Boost
}
