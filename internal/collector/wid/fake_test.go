package wid

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"netmigration/widcollector/internal/browser"
)

const (
	testBaseURL  = "https://wid.example.test"
	testUser     = "operator"
	testPassword = "secret"
)

// fakeLauncher hands out fakePages backed by one shared portal state
type fakeLauncher struct {
	mu        sync.Mutex
	portal    *fakePortal
	launches  int
	launchErr error
	pages     []*fakePage
}

func newFakeLauncher(portal *fakePortal) *fakeLauncher {
	return &fakeLauncher{portal: portal}
}

func (l *fakeLauncher) Launch(ctx context.Context, opts browser.Options) (browser.Page, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.launches++
	if l.launchErr != nil {
		return nil, l.launchErr
	}
	p := &fakePage{portal: l.portal, fills: map[string]string{}}
	l.pages = append(l.pages, p)
	return p, nil
}

func (l *fakeLauncher) open() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, p := range l.pages {
		if !p.closed {
			n++
		}
	}
	return n
}

// fakePortal is the server side: matches per service number and the
// number of upcoming detail loads that render without attributes
type fakePortal struct {
	mu           sync.Mutex
	matches      map[string]int
	detailHTML   string
	emptyDetails int
	missingInput int
	noSubmit     bool
	// noMenu lands the login on the search form and hides the menu link
	noMenu       bool
	searches     []string
}

func newFakePortal() *fakePortal {
	detail, err := os.ReadFile("testdata/detail.html")
	if err != nil {
		panic(err)
	}
	return &fakePortal{matches: map[string]int{}, detailHTML: string(detail)}
}

type screen int

const (
	screenBlank screen = iota
	screenLogin
	screenHome
	screenSearch
	screenResults
	screenDetail
)

type fakePage struct {
	portal *fakePortal
	screen screen
	url    string
	fills  map[string]string
	query  string
	closed bool
}

func (p *fakePage) Goto(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.url = url + "/login.xhtml"
	p.screen = screenLogin
	return nil
}

func (p *fakePage) FillFirst(ctx context.Context, selectors, value string) error {
	p.portal.mu.Lock()
	defer p.portal.mu.Unlock()
	switch {
	case p.screen == screenLogin && (selectors == UsernameSelector || selectors == PasswordSelector):
	case p.screen == screenSearch && selectors == ServiceSelector:
		if p.portal.missingInput > 0 {
			p.portal.missingInput--
			return fmt.Errorf("%w: %s", browser.ErrNoMatch, selectors)
		}
		p.query = value
	default:
		return fmt.Errorf("%w: %s", browser.ErrNoMatch, selectors)
	}
	p.fills[selectors] = value
	return nil
}

func (p *fakePage) submit(selectors string) error {
	switch {
	case p.screen == screenLogin && selectors == PasswordSelector:
		if p.fills[UsernameSelector] == testUser && p.fills[PasswordSelector] == testPassword {
			p.url = testBaseURL + "/home.xhtml"
			p.screen = screenHome
			if p.portal.noMenu {
				p.url = testBaseURL + "/buscarIngenieria.xhtml"
				p.screen = screenSearch
			}
		}
	case p.screen == screenSearch && selectors == ServiceSelector:
		p.portal.searches = append(p.portal.searches, p.query)
		p.screen = screenResults
	default:
		return fmt.Errorf("%w: %s", browser.ErrNoMatch, selectors)
	}
	return nil
}

func (p *fakePage) ClickFirst(ctx context.Context, selectors string) error {
	p.portal.mu.Lock()
	defer p.portal.mu.Unlock()
	if p.portal.noSubmit {
		return fmt.Errorf("%w: %s", browser.ErrNoMatch, selectors)
	}
	switch selectors {
	case LoginSelector:
		return p.submit(PasswordSelector)
	case SearchSelector:
		return p.submit(ServiceSelector)
	}
	return fmt.Errorf("%w: %s", browser.ErrNoMatch, selectors)
}

func (p *fakePage) Press(ctx context.Context, selectors, key string) error {
	p.portal.mu.Lock()
	defer p.portal.mu.Unlock()
	if key != "Enter" {
		return nil
	}
	return p.submit(selectors)
}

func (p *fakePage) ClickText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.portal.mu.Lock()
	noMenu := p.portal.noMenu
	p.portal.mu.Unlock()

	switch {
	case text == SearchLinkText && noMenu:
	case text == SearchLinkText && p.screen >= screenHome:
		p.screen = screenSearch
		return nil
	case text == DetailTabText && p.screen == screenDetail:
		return nil
	}
	return fmt.Errorf("%w: %s", browser.ErrNoMatch, text)
}

func (p *fakePage) ClickRow(ctx context.Context, rowSelector string, index int, linkSelector string) error {
	if p.screen != screenResults {
		return fmt.Errorf("%w: %s", browser.ErrNoMatch, rowSelector)
	}
	p.screen = screenDetail
	return nil
}

func (p *fakePage) URL() string { return p.url }

func (p *fakePage) Content(ctx context.Context) (string, error) {
	p.portal.mu.Lock()
	defer p.portal.mu.Unlock()
	switch p.screen {
	case screenResults:
		return resultsPage(p.portal.matches[p.query]), nil
	case screenDetail:
		if p.portal.emptyDetails > 0 {
			p.portal.emptyDetails--
			data, err := os.ReadFile("testdata/empty_detail.html")
			return string(data), err
		}
		return p.portal.detailHTML, nil
	}
	return "<html><body></body></html>", nil
}

func (p *fakePage) Close() error {
	p.closed = true
	return nil
}

// resultsPage renders a PrimeFaces result grid with n rows
func resultsPage(n int) string {
	var b strings.Builder
	b.WriteString(`<html><body><div class="ui-datatable"><table role="grid"><thead><tr><th>Nro</th><th>Cliente</th></tr></thead><tbody class="ui-datatable-data">`)
	if n == 0 {
		b.WriteString(`<tr class="ui-widget-content ui-datatable-empty-message"><td colspan="2">No se encontraron registros.</td></tr>`)
	}
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, `<tr class="ui-widget-content"><td><a href="#">%d</a></td><td>Cliente %d</td></tr>`, 1000+i, i)
	}
	b.WriteString(`</tbody></table></div></body></html>`)
	return b.String()
}
