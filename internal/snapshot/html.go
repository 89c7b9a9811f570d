package snapshot

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// FromHTML collects page information from a static HTML document served at
// pageURL. Scripts injected at runtime are not seen, so the result is a lower
// bound of what a live page would report.
func FromHTML(pageURL string, r io.Reader, cookie string) (PageInfo, error) {
	root, err := html.Parse(r)
	if err != nil {
		return PageInfo{}, fmt.Errorf("failed to parse HTML: %w", err)
	}
	doc := goquery.NewDocumentFromNode(root)

	info := PageInfo{
		URL:           pageURL,
		Cookie:        cookie,
		ScriptSources: make([]string, 0),
	}

	scripts := doc.Find("script")
	info.ScriptCount = scripts.Length()
	scripts.Each(func(_ int, s *goquery.Selection) {
		if src, ok := s.Attr("src"); ok {
			info.ScriptSources = append(info.ScriptSources, src)
		}
	})

	info.PasswordFields = doc.Find("input").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.EqualFold(s.AttrOr("type", ""), "password")
	}).Length()

	return info, nil
}
