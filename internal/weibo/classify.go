package weibo

import (
	"fmt"
	"regexp"

	"github.com/drdon1234/weibo-parser/internal/media"
)

// dialectSignatures lists the URL signatures for each dialect in priority
// order. StandardPost is checked before MobilePost, which is checked before
// VideoShow: tv/show URLs share a path-fragment shape with status URLs, so
// the order is load-bearing and must not change.
var dialectSignatures = []struct {
	dialect  media.Dialect
	patterns []*regexp.Regexp
}{
	{media.StandardPost, []*regexp.Regexp{
		regexp.MustCompile(`weibo\.com/\d+/[A-Za-z0-9]+`),
		regexp.MustCompile(`weibo\.cn/status/\d+`),
	}},
	{media.MobilePost, []*regexp.Regexp{
		regexp.MustCompile(`m\.weibo\.cn/detail/\d+`),
	}},
	{media.VideoShow, []*regexp.Regexp{
		regexp.MustCompile(`video\.weibo\.com/show\?fid=`),
		regexp.MustCompile(`weibo\.com/tv/show/`),
	}},
}

// linkPatterns matches absolute Weibo URLs inside free text. Unlike Classify,
// link harvesting requires an explicit scheme and is not bound to the dialect
// priority rule.
var linkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`https?://weibo\.com/\d+/[A-Za-z0-9]+`),
	regexp.MustCompile(`https?://weibo\.cn/status/\d+`),
	regexp.MustCompile(`https?://m\.weibo\.cn/detail/\d+`),
	regexp.MustCompile(`https?://video\.weibo\.com/show\?fid=[\d:]+`),
	regexp.MustCompile(`https?://weibo\.com/tv/show/[\d:]+`),
}

// Classify maps a URL to the dialect that serves it. The first dialect with a
// matching signature wins; a URL matching no signature is unsupported.
func Classify(rawURL string) (media.Dialect, error) {
	for _, sig := range dialectSignatures {
		for _, p := range sig.patterns {
			if p.MatchString(rawURL) {
				return sig.dialect, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrUnsupportedURL, rawURL)
}

// CanParse reports whether the URL belongs to a known dialect.
func CanParse(rawURL string) bool {
	_, err := Classify(rawURL)
	return err == nil
}

// ExtractLinks scans free text for Weibo URLs of any dialect and returns the
// deduplicated matches in first-seen order.
func ExtractLinks(text string) []string {
	seen := make(map[string]struct{})
	var links []string
	for _, p := range linkPatterns {
		for _, m := range p.FindAllString(text, -1) {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			links = append(links, m)
		}
	}
	return links
}
