// Package processo holds the identifiers searched on SUAP and the outcome
// recorded for each of them.
package processo

import "strings"

// NotFound is written in place of a link when a search yields nothing usable.
const NotFound = "Não encontrado"

// Outcome pairs an identifier with the link found for it, or NotFound.
type Outcome struct {
	Identifier string
	Link       string
}

// Missing builds the outcome for an identifier without a link.
func Missing(id string) Outcome {
	return Outcome{Identifier: id, Link: NotFound}
}

// Found reports whether the outcome carries a usable link. The NotFound
// sentinel and blank values never count as links.
func (o Outcome) Found() bool {
	link := strings.TrimSpace(o.Link)
	return link != "" && link != NotFound
}

// CountFound returns how many outcomes carry a link.
func CountFound(outcomes []Outcome) int {
	n := 0
	for _, o := range outcomes {
		if o.Found() {
			n++
		}
	}
	return n
}
