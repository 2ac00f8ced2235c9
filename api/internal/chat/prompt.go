package chat

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

//go:embed prompt/system.txt
var defaultSystemPrompt string

// LoadSystemPrompt returns <dir>/system.txt when present and non-empty,
// otherwise the built-in prompt.
func LoadSystemPrompt(dir string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return strings.TrimSpace(defaultSystemPrompt), nil
	}
	p := filepath.Join(dir, "system.txt")
	b, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return strings.TrimSpace(defaultSystemPrompt), nil
		}
		return "", fmt.Errorf("prompt %s: %w", p, err)
	}
	if s := strings.TrimSpace(string(b)); s != "" {
		return s, nil
	}
	return strings.TrimSpace(defaultSystemPrompt), nil
}
