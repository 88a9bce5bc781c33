package search

import (
	"boardroom/domain"
	"fmt"
	"strings"
)

const EmptyQueryNotice = "Search query is empty. Please enter a valid search term."

func NoResultsNotice(query string) string {
	return fmt.Sprintf("No references related to %q were found. Please try a different keyword.", query)
}

// Format renders passages for the guideline prompt, or the matching notice
// when there is nothing to show.
func Format(query string, passages []domain.Passage) string {
	if strings.TrimSpace(query) == "" {
		return EmptyQueryNotice
	}
	var blocks []string
	for _, p := range passages {
		if strings.TrimSpace(p.Content) == "" {
			continue
		}
		source := p.Source
		if source == "" {
			source = "Unknown"
		}
		blocks = append(blocks, fmt.Sprintf("File name: %s\nContent: %s\n", source, p.Content))
	}
	if len(blocks) == 0 {
		return NoResultsNotice(query)
	}
	return strings.Join(blocks, "\n---\n")
}
