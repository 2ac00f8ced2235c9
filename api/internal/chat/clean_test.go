package chat

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"medichat/api/internal/llm"
)

func TestCleanResponse(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "  Drink water.  \n\n  Rest well. ", "Drink water.\nRest well."},
		{
			"leaked header",
			"CRITICAL SCRIPT PRESERVATION RULE:\nUser input script detected: DEVANAGARI_HINDI\n- User has written in DEVANAGARI script\n- You MUST respond in DEVANAGARI script only\n- DO NOT use Latin/Roman letters\nआराम कीजिए।",
			"आराम कीजिए।",
		},
		{
			"old style header",
			"SCRIPT PRESERVATION INSTRUCTION:\nscript detected: ROMANIZED/LATIN\nAaram kijiye.",
			"Aaram kijiye.",
		},
		{
			"examples",
			"- Use English letters: a, aa\n- Example for Hindi: x\nok",
			"ok",
		},
		{"keeps ordinary bullets", "- Drink fluids\n- Rest", "- Drink fluids\n- Rest"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, CleanResponse(c.in))
		})
	}
}

func TestCleanChunk(t *testing.T) {
	assert.Equal(t, "Hello ", cleanChunk("Hello "))
	assert.Equal(t, "a\n\nb", cleanChunk("a\n- DO NOT use Devanagari characters\n\nb"))
	assert.Equal(t, "", cleanChunk("- You MUST respond in LATIN script only"))
}

func TestFriendlyError(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{ErrEmptyMessage, "Message or image required"},
		{fmt.Errorf("deepseek: %w", llm.ErrImagesUnsupported), "This engine cannot read images. Switch to gemini or gpt and try again. 🖼️"},
		{errors.New("googleapi: Error 429: quota exceeded for free_tier"), "Daily free usage limit reached. You can try again tomorrow or upgrade to a paid plan. 📊"},
		{errors.New("429 quota exceeded"), "I'm currently experiencing high usage. Please try again in a few minutes. 🔄"},
		{errors.New("billing not enabled"), "Service temporarily unavailable. Please try again later. ⏰"},
		{errors.New("invalid API key"), "Service configuration issue. Please contact support. 🔧"},
		{errors.New("context deadline exceeded"), "Connection issue. Please check your internet and try again. 🌐"},
		{errors.New("status 429"), "Too many requests. Please wait a moment before trying again. ⏳"},
		{errors.New("500 internal"), "Service temporarily down. Please try again in a few minutes. 🛠️"},
		{errors.New("weird"), "Something went wrong. Please try again or contact support if the issue persists. 💬"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, FriendlyError(c.err), "%v", c.err)
	}
}
