// Package extract reads labeled attributes and result grids out of rendered portal pages.
package extract

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	// ResultRowSelector matches the rows of a PrimeFaces data table
	ResultRowSelector = ".ui-datatable-data tr, table[role='grid'] tbody tr"
	// EmptyRowClass marks the placeholder row PrimeFaces renders for no results
	EmptyRowClass = "ui-datatable-empty-message"
)

// NotAvailable is the portal's placeholder for an unset attribute
const NotAvailable = "N/A"

// Attributes collects every two-cell table row of the page as label → value.
// Labels are trimmed and upper-cased; empty and N/A values are skipped.
func Attributes(r io.Reader) (map[string]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse detail page: %w", err)
	}
	return attributesFromDocument(doc), nil
}

func attributesFromDocument(doc *goquery.Document) map[string]string {
	attrs := make(map[string]string)

	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.ChildrenFiltered("td")
		if cells.Length() < 2 {
			return
		}

		name := strings.ToUpper(cellText(cells.First()))
		value := cellText(cells.Eq(1))
		if name == "" || value == "" || value == NotAvailable {
			return
		}
		attrs[name] = value
	})

	return attrs
}

// ResultRows counts the data rows of a search result grid,
// ignoring the empty-message placeholder row.
func ResultRows(r io.Reader) (int, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return 0, fmt.Errorf("failed to parse result page: %w", err)
	}

	count := 0
	doc.Find(ResultRowSelector).Each(func(_ int, row *goquery.Selection) {
		if row.HasClass(EmptyRowClass) || row.Find("td."+EmptyRowClass).Length() > 0 {
			return
		}
		count++
	})
	return count, nil
}

// cellText collapses runs of whitespace, non-breaking spaces included
func cellText(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}
