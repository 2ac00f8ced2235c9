package script

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed lexicon.yaml
var defaultLexiconYAML []byte

//go:embed lexicon.schema.json
var lexiconSchemaJSON []byte

const (
	weightStrong = "strong"
	weightNormal = "normal"
)

type lexiconFile struct {
	Version    int                     `json:"version"`
	Indicators []string                `json:"romanized_indic_indicators"`
	Languages  map[string]languageFile `json:"languages"`
}

type languageFile struct {
	Words  []string    `json:"words"`
	Loose  []string    `json:"loose"`
	Native []string    `json:"native"`
	Boosts []boostFile `json:"boosts"`
}

type boostFile struct {
	All    [][]string `json:"all"`
	Weight string     `json:"weight"`
}

// Lexicon is the read-only evidence table used by a Detector.
// It is built once by ParseLexicon and never mutated afterwards.
type Lexicon struct {
	version    int
	indicators map[string]struct{}
	languages  map[Language]*languageLexicon
}

type languageLexicon struct {
	words  map[string]struct{}
	loose  []string
	native []string
	boosts []boost
}

// boost fires when every group has at least one alternative present in the text.
type boost struct {
	groups [][]string
	weight string
}

func (l *Lexicon) Version() int { return l.version }

// IsIndicator reports whether tok is a general romanized Hindi/Marathi word.
func (l *Lexicon) IsIndicator(tok string) bool {
	_, ok := l.indicators[tok]
	return ok
}

func (l *Lexicon) forLanguage(lang Language) *languageLexicon {
	if ll, ok := l.languages[lang]; ok {
		return ll
	}
	return &languageLexicon{}
}

var (
	schemaOnce     sync.Once
	lexiconSchema  *jsonschema.Schema
	lexiconSchemaE error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("lexicon.schema.json", bytes.NewReader(lexiconSchemaJSON)); err != nil {
			lexiconSchemaE = fmt.Errorf("lexicon schema: %w", err)
			return
		}
		lexiconSchema, lexiconSchemaE = compiler.Compile("lexicon.schema.json")
	})
	return lexiconSchema, lexiconSchemaE
}

// ParseLexicon decodes and validates a YAML lexicon table.
func ParseLexicon(data []byte) (*Lexicon, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("lexicon: bad yaml: %w", err)
	}
	// yaml -> json so the schema validator and decoder see plain JSON values
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("lexicon: %w", err)
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("lexicon: %w", err)
	}

	schema, err := compiledSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(generic); err != nil {
		return nil, fmt.Errorf("lexicon does not match schema: %w", err)
	}

	var lf lexiconFile
	if err := json.Unmarshal(raw, &lf); err != nil {
		return nil, fmt.Errorf("lexicon: %w", err)
	}

	lex := &Lexicon{
		version:    lf.Version,
		indicators: toSet(lf.Indicators),
		languages:  make(map[Language]*languageLexicon, len(lf.Languages)),
	}
	for tag, f := range lf.Languages {
		ll := &languageLexicon{
			words:  toSet(f.Words),
			loose:  lowerAll(f.Loose),
			native: append([]string(nil), f.Native...),
		}
		for _, b := range f.Boosts {
			groups := make([][]string, 0, len(b.All))
			for _, g := range b.All {
				groups = append(groups, append([]string(nil), g...))
			}
			ll.boosts = append(ll.boosts, boost{groups: groups, weight: b.Weight})
		}
		lex.languages[Language(tag)] = ll
	}
	return lex, nil
}

// LoadLexicon reads a lexicon table from path; an empty path yields the
// built-in table.
func LoadLexicon(path string) (*Lexicon, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultLexicon()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("lexicon: %w", err)
	}
	return ParseLexicon(b)
}

var defaultLexicon = sync.OnceValues(func() (*Lexicon, error) {
	return ParseLexicon(defaultLexiconYAML)
})

// DefaultLexicon returns the built-in table, parsed once per process.
func DefaultLexicon() (*Lexicon, error) { return defaultLexicon() }

func toSet(words []string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.ToLower(s))
	}
	return out
}
