package script

import "strings"

// Label is the script (and, for Indic text, language) detected in a message.
type Label string

const (
	Devanagari        Label = "devanagari"
	DevanagariHindi   Label = "devanagari_hindi"
	DevanagariMarathi Label = "devanagari_marathi"
	Latin             Label = "latin"
	RomanizedIndic    Label = "romanized_indic"
	RomanizedHindi    Label = "romanized_hindi"
	RomanizedMarathi  Label = "romanized_marathi"
	Arabic            Label = "arabic"
	Cyrillic          Label = "cyrillic"
	Mixed             Label = "mixed"
	Unknown           Label = "unknown"
)

// Labels lists every label in a stable order.
var Labels = []Label{
	Devanagari, DevanagariHindi, DevanagariMarathi,
	Latin, RomanizedIndic, RomanizedHindi, RomanizedMarathi,
	Arabic, Cyrillic, Mixed, Unknown,
}

// ParseLabel maps a stored label string back to a Label.
func ParseLabel(s string) (Label, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, l := range Labels {
		if string(l) == s {
			return l, true
		}
	}
	return Unknown, false
}

func (l Label) String() string { return string(l) }

// Language returns the Indic language carried by a compound label.
func (l Label) Language() Language {
	switch l {
	case DevanagariHindi, RomanizedHindi:
		return Hindi
	case DevanagariMarathi, RomanizedMarathi:
		return Marathi
	}
	return LanguageUnknown
}

// Language is the outcome of Hindi/Marathi disambiguation.
type Language string

const (
	LanguageUnknown Language = "unknown"
	Hindi           Language = "hindi"
	Marathi         Language = "marathi"
)

func (l Language) String() string { return string(l) }
