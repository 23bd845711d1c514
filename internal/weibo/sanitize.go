package weibo

import (
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// CleanText strips Weibo's description markup down to plain text. It is pure
// and total: any input yields some string.
//
// The pipeline order matters: surl-text spans (hashtag and link display text)
// are unwrapped while their boundary is still identifiable, url-icon spans
// (emoji placeholders) and image tags are dropped with their content, line
// breaks become spaces, every remaining tag is stripped keeping its text, and
// whitespace runs collapse to single spaces.
func CleanText(markup string) string {
	if markup == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return collapseWhitespace(markup)
	}

	doc.Find("span.surl-text").Each(func(_ int, s *goquery.Selection) {
		s.ReplaceWithHtml(html.EscapeString(s.Text()))
	})
	doc.Find("span.url-icon").Remove()
	doc.Find("img").Remove()
	doc.Find("br").Each(func(_ int, s *goquery.Selection) {
		s.ReplaceWithHtml(" ")
	})

	return collapseWhitespace(doc.Text())
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
