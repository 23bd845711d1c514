package weibo

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/drdon1234/weibo-parser/internal/media"
)

var (
	// pagePathRe takes the final path segment of a status URL. Both numeric
	// long-form ids and short alphanumeric ids use this rule; the two cannot
	// be told apart here.
	pagePathRe = regexp.MustCompile(`/([A-Za-z0-9]+)$`)

	// detailPathRe takes the numeric group after the /detail/ segment.
	detailPathRe = regexp.MustCompile(`/detail/(\d+)`)

	// compositeIDRe takes the first namespace:numeric pair in a tv/show URL.
	compositeIDRe = regexp.MustCompile(`/(\d+:\d+)`)
)

// ExtractID pulls the dialect-specific identifier out of a URL. The required
// shape is fixed per dialect; a mismatch is fatal for the call, no other
// dialect is tried.
func ExtractID(rawURL string, dialect media.Dialect) (string, error) {
	switch dialect {
	case media.StandardPost:
		m := pagePathRe.FindStringSubmatch(strings.TrimRight(rawURL, "/"))
		if m == nil {
			return "", fmt.Errorf("%w: no post id in %q", ErrInvalidID, rawURL)
		}
		return m[1], nil

	case media.MobilePost:
		m := detailPathRe.FindStringSubmatch(rawURL)
		if m == nil {
			return "", fmt.Errorf("%w: no blog id in %q", ErrInvalidID, rawURL)
		}
		return m[1], nil

	case media.VideoShow:
		if u, err := url.Parse(rawURL); err == nil {
			if fid := u.Query().Get("fid"); fid != "" {
				return fid, nil
			}
		}
		m := compositeIDRe.FindStringSubmatch(rawURL)
		if m == nil {
			return "", fmt.Errorf("%w: no video id in %q", ErrInvalidID, rawURL)
		}
		return m[1], nil
	}
	return "", fmt.Errorf("%w: unknown dialect %v", ErrInvalidID, dialect)
}
