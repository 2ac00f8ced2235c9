package chat

import (
	"strings"
)

var leakedPrefixes = []string{
	"SCRIPT PRESERVATION INSTRUCTION:",
	"CRITICAL SCRIPT PRESERVATION RULE:",
	"- User has written in",
	"- You MUST respond in",
	"- DO NOT use",
	"- Use English letters:",
	"- Example for",
}

func isLeakedDirective(line string) bool {
	for _, p := range leakedPrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	if strings.Contains(line, "User input script detected:") {
		return true
	}
	lower := strings.ToLower(line)
	if strings.Contains(lower, "script detected:") &&
		(strings.Contains(line, "ROMANIZED/LATIN") || strings.Contains(line, "DEVANAGARI")) {
		return true
	}
	return false
}

// CleanResponse drops directive lines the model echoed back, along with
// blank lines, and trims every remaining line.
func CleanResponse(text string) string {
	if text == "" {
		return text
	}
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || isLeakedDirective(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
