package chat

import (
	"errors"
	"strings"

	"medichat/api/internal/llm"
)

var ErrEmptyMessage = errors.New("message or image required")

// FriendlyError turns an engine or transport error into a message that is
// safe to show to the user.
func FriendlyError(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrEmptyMessage) {
		return "Message or image required"
	}
	if errors.Is(err, llm.ErrImagesUnsupported) {
		return "This engine cannot read images. Switch to gemini or gpt and try again. 🖼️"
	}
	s := strings.ToLower(err.Error())
	has := func(sub string) bool { return strings.Contains(s, sub) }

	switch {
	case has("429") && has("quota"):
		if has("free_tier") {
			return "Daily free usage limit reached. You can try again tomorrow or upgrade to a paid plan. 📊"
		}
		return "I'm currently experiencing high usage. Please try again in a few minutes. 🔄"
	case has("quota") || has("billing"):
		return "Service temporarily unavailable. Please try again later. ⏰"
	case has("authentication") || has("api key") || has("api_key") || has("401"):
		return "Service configuration issue. Please contact support. 🔧"
	case has("network") || has("connection") || has("timeout") || has("deadline exceeded"):
		return "Connection issue. Please check your internet and try again. 🌐"
	case has("rate limit") || has("429"):
		return "Too many requests. Please wait a moment before trying again. ⏳"
	case has("500") || has("server error"):
		return "Service temporarily down. Please try again in a few minutes. 🛠️"
	}
	return "Something went wrong. Please try again or contact support if the issue persists. 💬"
}
