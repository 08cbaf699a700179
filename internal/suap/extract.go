package suap

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"
)

// Reasons a page yields no link.
var (
	ErrNoResults = errors.New("nenhuma linha na tabela de resultados")
	ErrNoMatch   = errors.New("processo não encontrado em nenhuma linha da tabela")
	ErrNoLink    = errors.New("nenhum link encontrado na linha do processo")
)

// ExtractLink finds the row whose key cell equals id and returns the first
// link of that row, resolved against pageURL.
func ExtractLink(html, pageURL, id string, sel Selectors) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("lendo HTML da página: %w", err)
	}

	rows := doc.Find(sel.Rows)
	if doc.Find(sel.Results).Length() == 0 || rows.Length() == 0 {
		return "", ErrNoResults
	}

	want := normalizeKey(id)
	var (
		href    string
		matched bool
	)
	rows.EachWithBreak(func(_ int, row *goquery.Selection) bool {
		cell := row.Find(sel.KeyCell).First()
		if cell.Length() == 0 || normalizeKey(cell.Text()) != want {
			return true
		}
		matched = true
		for _, candidate := range sel.Links {
			if v, ok := row.Find(candidate).First().Attr("href"); ok && strings.TrimSpace(v) != "" {
				href = strings.TrimSpace(v)
				return false
			}
		}
		return false
	})

	switch {
	case !matched:
		return "", ErrNoMatch
	case href == "":
		return "", ErrNoLink
	}
	return resolveLink(pageURL, href)
}

func resolveLink(pageURL, href string) (string, error) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("link inválido %q: %w", href, err)
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("endereço da página inválido %q: %w", pageURL, err)
	}
	return base.ResolveReference(ref).String(), nil
}

// normalizeKey collapses whitespace (including nbsp) and applies NFC so that
// table text and typed identifiers compare equal.
func normalizeKey(s string) string {
	return norm.NFC.String(strings.Join(strings.Fields(s), " "))
}
