package script

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Detector classifies the script and Indic language of a message.
// A Detector is immutable and safe for concurrent use.
type Detector struct {
	lex *Lexicon
	tun Tunables
}

func New(lex *Lexicon, tun Tunables) *Detector {
	return &Detector{lex: lex, tun: tun}
}

func (d *Detector) Lexicon() *Lexicon   { return d.lex }
func (d *Detector) Tunables() Tunables { return d.tun }

type scriptCounts struct {
	devanagari, latin, arabic, cyrillic int
	total                               int
}

// alphabetic letters plus the vowel signs and anusvara that Unicode marks
// as Other_Alphabetic; viramas and nuktas are not counted.
func isAlphabetic(r rune) bool {
	return unicode.IsLetter(r) || unicode.Is(unicode.Other_Alphabetic, r)
}

func countScripts(text string) scriptCounts {
	var c scriptCounts
	for _, r := range text {
		if !isAlphabetic(r) {
			continue
		}
		c.total++
		switch {
		case r >= 0x0900 && r <= 0x097F:
			c.devanagari++
		case unicode.Is(unicode.Latin, r):
			c.latin++
		case r >= 0x0600 && r <= 0x06FF:
			c.arabic++
		case r >= 0x0400 && r <= 0x04FF:
			c.cyrillic++
		}
	}
	return c
}

func pct(n, total int) float64 {
	return float64(n) / float64(total) * 100
}

// DetectScript returns the dominant script of text, refined to Hindi or
// Marathi for Devanagari and romanized text when the evidence allows.
func (d *Detector) DetectScript(text string) Label {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Unknown
	}

	c := countScripts(trimmed)
	if c.total == 0 {
		return Unknown
	}

	devPct := pct(c.devanagari, c.total)
	latPct := pct(c.latin, c.total)

	switch {
	case devPct > d.tun.DominantPct:
		switch d.DetectIndicLanguage(trimmed) {
		case Marathi:
			return DevanagariMarathi
		case Hindi:
			return DevanagariHindi
		}
		return Devanagari

	case latPct > d.tun.DominantPct:
		switch d.DetectIndicLanguage(trimmed) {
		case Marathi:
			return RomanizedMarathi
		case Hindi:
			return RomanizedHindi
		}
		lower := toLower(trimmed)
		matches := 0
		for _, tok := range strings.Fields(lower) {
			if d.lex.IsIndicator(tok) {
				matches++
			}
		}
		if matches > d.tun.MinIndicators || (matches > 0 && d.HasTransliterationPattern(lower)) {
			return RomanizedIndic
		}
		return Latin

	case pct(c.arabic, c.total) > d.tun.DominantPct:
		return Arabic
	case pct(c.cyrillic, c.total) > d.tun.DominantPct:
		return Cyrillic
	case devPct+latPct > d.tun.MixedPct:
		return Mixed
	}
	return Unknown
}

// DetectIndicLanguage scores Hindi and Marathi evidence in text. Native
// markers are matched against the original casing, romanized ones against
// the lower-cased text.
func (d *Detector) DetectIndicLanguage(text string) Language {
	lower := toLower(text)
	orig := strings.Fields(text)
	low := strings.Fields(lower)
	n := min(len(orig), len(low))

	mr := d.lex.forLanguage(Marathi)
	hi := d.lex.forLanguage(Hindi)

	var marathiScore, hindiScore int
	for i := 0; i < n; i++ {
		marathiScore += d.tokenScore(mr, orig[i], low[i])
		hindiScore += d.tokenScore(hi, orig[i], low[i])
	}
	marathiScore += d.boostScore(mr, text, lower)
	hindiScore += d.boostScore(hi, text, lower)

	floor := d.tun.LanguageFloor
	switch {
	case marathiScore > hindiScore && marathiScore > floor:
		return Marathi
	case hindiScore > marathiScore && hindiScore > floor:
		return Hindi
	}
	return LanguageUnknown
}

func (d *Detector) tokenScore(ll *languageLexicon, orig, lower string) int {
	if _, ok := ll.words[orig]; ok {
		return d.tun.ExactWeight
	}
	if _, ok := ll.words[lower]; ok {
		return d.tun.ExactWeight
	}
	if containsAny(lower, ll.loose) {
		return d.tun.LooseWeight
	}
	if containsAny(orig, ll.native) {
		return d.tun.NativeWeight
	}
	return 0
}

func (d *Detector) boostScore(ll *languageLexicon, orig, lower string) int {
	score := 0
	for _, b := range ll.boosts {
		hit := true
		for _, group := range b.groups {
			if !containsAny(orig, group) && !containsAny(lower, group) {
				hit = false
				break
			}
		}
		if hit {
			score += d.tun.boostWeight(b.weight)
		}
	}
	return score
}

// transliterationPatterns are common Indic-to-Latin digraphs: long vowels
// and aspirated consonants.
var transliterationPatterns = []string{"aa", "ee", "oo", "ch", "th", "dh", "gh", "kh"}

// HasTransliterationPattern reports whether at least MinPatterns distinct
// digraphs occur in text.
func (d *Detector) HasTransliterationPattern(text string) bool {
	lower := toLower(text)
	matches := 0
	for _, p := range transliterationPatterns {
		if strings.Contains(lower, p) {
			matches++
		}
	}
	return matches >= d.tun.MinPatterns
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// Casers keep state, so one is built per call.
func toLower(s string) string {
	return cases.Lower(language.Und).String(s)
}
