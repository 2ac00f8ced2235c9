package script

import "strings"

const instructionHeader = `
CRITICAL SCRIPT PRESERVATION RULE:
User input script detected: {label}
`

const (
	tplDevanagari = `
- User has written in DEVANAGARI script{hint}
- You MUST respond in DEVANAGARI script only
- DO NOT use Latin/Roman letters
- Use proper Devanagari characters: अ, आ, इ, ई, etc.
- Respond in the SAME LANGUAGE (Hindi/Marathi) as user input
`
	tplRomanized = `
- User has written in ROMANIZED/LATIN script (Hindi/Marathi in English letters){hint}
- You MUST respond in ROMANIZED/LATIN script only
- DO NOT use Devanagari characters
- Use English letters: a, aa, i, ee, o, oo, k, kh, g, gh, etc.
- Respond in the SAME LANGUAGE (Hindi/Marathi) as user input
- IMPORTANT: Understand that the user is speaking Hindi/Marathi but written in English letters
- Example for Hindi: "Aapko doctor se milna chahiye" NOT "आपको डॉक्टर से मिलना चाहिए"
- Example for Marathi: "Tumhala doctor kade jaave laagel" NOT "तुम्हाला डॉक्टर कडे जावे लागेल"
`
	tplLatin = `
- User has written in LATIN script (English/European languages)
- You MUST respond in LATIN script only
- Use English alphabet: a-z, A-Z
`
	tplArabic = `
- User has written in ARABIC script
- You MUST respond in ARABIC script only
- Use Arabic characters: ا, ب, ت, ث, etc.
`
	tplCyrillic = `
- User has written in CYRILLIC script
- You MUST respond in CYRILLIC script only
- Use Cyrillic characters: а, б, в, г, etc.
`
	tplMixed = `
- User has used MIXED scripts
- Respond primarily in the DOMINANT script of user input
- Try to maintain the same script balance as user input
`
	tplFallback = `
- Script detection unclear
- Respond in the same language and script style as user input
- DO NOT change the script type
`
)

var instructionTemplates = map[Label]string{
	Devanagari:        tplDevanagari,
	DevanagariHindi:   tplDevanagari,
	DevanagariMarathi: tplDevanagari,
	RomanizedIndic:    tplRomanized,
	RomanizedHindi:    tplRomanized,
	RomanizedMarathi:  tplRomanized,
	Latin:             tplLatin,
	Arabic:            tplArabic,
	Cyrillic:          tplCyrillic,
	Mixed:             tplMixed,
	Unknown:           tplFallback,
}

var languageHints = map[Label]string{
	DevanagariHindi:   "\n- Language detected as HINDI",
	DevanagariMarathi: "\n- Language detected as MARATHI",
	RomanizedHindi:    "\n- Language detected as HINDI in Roman script",
	RomanizedMarathi:  "\n- Language detected as MARATHI in Roman script",
}

// CreateInstruction returns the directive that tells the model to answer in
// the script (and language) of the user's message. The templates do not
// embed text; only the label and language hint are substituted.
func CreateInstruction(label Label, text string) string {
	body, ok := instructionTemplates[label]
	if !ok {
		body = tplFallback
	}
	r := strings.NewReplacer(
		"{label}", strings.ToUpper(string(label)),
		"{hint}", languageHints[label],
	)
	return r.Replace(instructionHeader + body)
}
