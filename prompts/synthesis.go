package prompts

import (
	"fmt"
	"strings"
)

// Perspective is one labelled branch result fed to the synthesizer.
type Perspective struct {
	Label string
	Text  string
}

var counts = map[int]string{2: "two", 3: "three", 4: "four", 5: "five"}

// SynthesisInput lays out the original question followed by each perspective once, in order.
func SynthesisInput(prompt string, perspectives []Perspective) string {
	count, ok := counts[len(perspectives)]
	if !ok {
		count = fmt.Sprint(len(perspectives))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\nIntegrate the following %s perspectives to provide a balanced analysis.\n\n", count)
	fmt.Fprintf(&b, "Original question: %s\n", prompt)
	for _, p := range perspectives {
		fmt.Fprintf(&b, "\n%s:\n%s\n", p.Label, p.Text)
	}
	return b.String()
}

// GuidelineInput attaches the retrieved excerpts to the user question.
func GuidelineInput(question, excerpts string) string {
	return fmt.Sprintf("%s\n\n[Reference excerpts]\n%s", question, excerpts)
}
