package suap

import "strings"

// Selectors are the CSS selectors the session relies on. Everything that
// depends on the portal's markup is listed here.
type Selectors struct {
	SearchInput  string
	SubmitButton string
	Results      string
	NoResults    string
	Rows         string
	// KeyCell is looked up inside each row; its first match holds the
	// process number.
	KeyCell string
	// Links are tried in order inside the matching row.
	Links []string
}

// DefaultSelectors matches the Django admin changelist served by SUAP.
func DefaultSelectors() Selectors {
	return Selectors{
		SearchInput:  "#searchbar",
		SubmitButton: "#button_filter",
		Results:      "#result_list",
		NoResults:    "#changelist .paginator",
		Rows:         "#result_list tbody tr",
		KeyCell:      "td",
		Links: []string{
			"th a.icon-view",
			`th a[href*="/processo_eletronico/processo/"]`,
			"th a",
		},
	}
}

// staleAttr marks the document a search was submitted from, so waits only
// match elements of the page that loads afterwards.
const staleAttr = "data-suaplinks-stale"

const markStaleJS = `(() => { document.documentElement.setAttribute('` + staleAttr + `', '1'); return true; })()`

// outcomeSelector matches either the results table or the no-results marker
// on a freshly loaded document.
func (s Selectors) outcomeSelector() string {
	prefix := "html:not([" + staleAttr + "])"
	return scopeSelector(prefix, s.Results) + ", " + scopeSelector(prefix, s.NoResults)
}

// scopeSelector prefixes every top-level alternative of a selector list.
func scopeSelector(prefix, list string) string {
	parts := splitSelectorList(list)
	for i, p := range parts {
		parts[i] = prefix + " " + p
	}
	return strings.Join(parts, ", ")
}

// splitSelectorList splits on commas outside brackets, parentheses and quotes.
func splitSelectorList(list string) []string {
	var (
		parts []string
		depth int
		quote rune
		start int
	)
	for i, r := range list {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '[' || r == '(':
			depth++
		case r == ']' || r == ')':
			if depth > 0 {
				depth--
			}
		case r == ',' && depth == 0:
			if p := strings.TrimSpace(list[start:i]); p != "" {
				parts = append(parts, p)
			}
			start = i + 1
		}
	}
	if p := strings.TrimSpace(list[start:]); p != "" {
		parts = append(parts, p)
	}
	return parts
}
