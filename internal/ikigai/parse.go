package ikigai

import (
	"strings"

	"github.com/ikiguide/ikiguide/internal/logger"
)

// Sentinel prefixes the model places on special elements of the flat list.
const (
	// SummaryPrefix marks the single reflective summary element.
	SummaryPrefix = "SUMMARY:"
	// NoPathPrefix marks a "no path found" element, excluded from output.
	NoPathPrefix = "NO PATH:"
)

// Kind distinguishes the entry variants produced by the parser.
type Kind int

const (
	// KindPath is a numbered (title, description) suggestion.
	KindPath Kind = iota
	// KindSummary is the distinguished trailing synthesis entry.
	KindSummary
)

// Entry is one parsed result. A KindPath entry carries Title and
// Description; a KindSummary entry carries only Description.
type Entry struct {
	Kind        Kind
	Title       string
	Description string
}

// ParseEntries turns the flat generated sequence into structured entries.
//
// At most one element carries SummaryPrefix; its body becomes the final
// KindSummary entry. Elements carrying NoPathPrefix are dropped entirely.
// The remaining elements pair up two at a time as (title, description) in
// their original order. An unpaired trailing element is dropped.
func ParseEntries(paths []string) []Entry {
	summary := ""
	haveSummary := false

	var working []string
	for _, raw := range paths {
		elem := strings.TrimSpace(raw)
		switch {
		case elem == "":
			continue
		case strings.HasPrefix(elem, SummaryPrefix):
			if !haveSummary {
				summary = strings.TrimSpace(strings.TrimPrefix(elem, SummaryPrefix))
				haveSummary = true
			}
		case strings.HasPrefix(elem, NoPathPrefix):
			continue
		default:
			working = append(working, elem)
		}
	}

	var entries []Entry
	for i := 0; i+1 < len(working); i += 2 {
		entries = append(entries, Entry{
			Kind:        KindPath,
			Title:       working[i],
			Description: working[i+1],
		})
	}
	if len(working)%2 != 0 {
		logger.Debug().Str("element", working[len(working)-1]).Msg("dropping unpaired trailing element")
	}

	if haveSummary {
		entries = append(entries, Entry{Kind: KindSummary, Description: summary})
	}

	return entries
}
