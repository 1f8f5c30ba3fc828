package document

import (
	"net/url"
	"strings"
)

// BaseURL returns the page's <base href>, if it has a valid absolute one.
// Saved pages commonly keep it, which lets relative links be resolved
// without knowing where the page was fetched from.
func (d *Document) BaseURL() (*url.URL, bool) {
	n, ok := d.FindFirst("base", Present("href"))
	if !ok {
		return nil, false
	}
	href, _ := n.Attr("href")
	base, err := url.Parse(strings.TrimSpace(href))
	if err != nil || !base.IsAbs() {
		return nil, false
	}
	return base, true
}

// ResolveLink makes href absolute against BaseURL. Fragment-only and
// javascript: links resolve to "". Other hrefs that cannot be resolved are
// returned trimmed.
func (d *Document) ResolveLink(href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(strings.ToLower(href), "javascript:") {
		return ""
	}

	link, err := url.Parse(href)
	if err != nil || link.IsAbs() {
		return href
	}

	base, ok := d.BaseURL()
	if !ok {
		return href
	}
	return base.ResolveReference(link).String()
}
