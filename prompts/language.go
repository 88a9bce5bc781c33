package prompts

import (
	"fmt"
	"strings"

	"github.com/abadojack/whatlanggo"
)

const (
	LanguageEnglish  = "en"
	LanguageJapanese = "ja"
	LanguageAuto     = "auto"
)

// Localize appends a reply-language directive to instructions.
// English needs none; auto follows the language detected in the prompt.
func Localize(instructions, language, prompt string) string {
	name := replyLanguage(language, prompt)
	if name == "" || name == "English" {
		return instructions
	}
	return fmt.Sprintf("%s\n\nAlways respond in %s.", instructions, name)
}

func replyLanguage(language, prompt string) string {
	switch strings.ToLower(language) {
	case LanguageJapanese:
		return "Japanese"
	case LanguageAuto:
		info := whatlanggo.Detect(prompt)
		if !info.IsReliable() {
			return ""
		}
		return info.Lang.String()
	default:
		return ""
	}
}
