package weibo

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/drdon1234/weibo-parser/internal/media"
)

// createdAtLayout is the fixed timestamp format the backend serves,
// e.g. "Thu Nov 13 21:18:29 +0800 2025".
const createdAtLayout = "Mon Jan 2 15:04:05 -0700 2006"

// normalizeStandard maps a desktop status payload to the canonical record.
func normalizeStandard(payload json.RawMessage, sourceURL string) (*media.ParsedMedia, error) {
	var st statusPayload
	if err := json.Unmarshal(payload, &st); err != nil {
		return nil, fmt.Errorf("decoding status payload: %w", err)
	}

	urls := extractStandardURLs(&st)
	if len(urls) == 0 {
		return nil, ErrNoMedia
	}

	return &media.ParsedMedia{
		SourceURL:   sourceURL,
		Kind:        detectKind(st.PicNum, urls),
		Author:      formatAuthor(st.User),
		Description: CleanText(firstNonEmpty(st.TextRaw, st.Text)),
		PublishedAt: formatTimestamp(st.CreatedAt),
		MediaURLs:   urls,
	}, nil
}

// normalizeMobile maps a $render_data element to the canonical record. Only
// the pics array and a video-typed page_info block apply on this dialect.
func normalizeMobile(payload json.RawMessage, sourceURL string) (*media.ParsedMedia, error) {
	var item renderItem
	if err := json.Unmarshal(payload, &item); err != nil {
		return nil, fmt.Errorf("decoding render data: %w", err)
	}
	st := item.Status
	if st == nil {
		return nil, fmt.Errorf("%w: render data has no status", ErrNoMedia)
	}

	var urls []string
	for i := range st.Pics {
		urls = appendMediaURL(urls, pickPicURL(&st.Pics[i]))
	}
	if st.PageInfo != nil && st.PageInfo.Type == "video" {
		urls = appendMediaURL(urls, firstMemberString(st.PageInfo.URLs))
	}
	if len(urls) == 0 {
		return nil, ErrNoMedia
	}

	return &media.ParsedMedia{
		SourceURL:   sourceURL,
		Kind:        detectKind(len(st.Pics), urls),
		Author:      formatAuthor(st.User),
		Description: CleanText(firstNonEmpty(st.TextRaw, st.Text)),
		PublishedAt: formatTimestamp(st.CreatedAt),
		MediaURLs:   urls,
	}, nil
}

// normalizeVideoShow maps a tv component payload to the canonical record.
// Exactly one URL comes from the playinfo urls map, and the kind is always
// Video regardless of any count signal.
func normalizeVideoShow(payload json.RawMessage, sourceURL string) (*media.ParsedMedia, error) {
	var resp playComponentResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, fmt.Errorf("decoding component payload: %w", err)
	}
	info := &resp.Data.Playinfo

	urls := appendMediaURL(nil, firstMemberString(info.URLs))
	if len(urls) == 0 {
		return nil, fmt.Errorf("%w: no video found", ErrNoMedia)
	}

	uid := string(info.AuthorID)
	if uid == "" && info.User != nil {
		uid = string(info.User.ID)
	}

	return &media.ParsedMedia{
		SourceURL:   sourceURL,
		Kind:        media.Video,
		Author:      formatAuthorParts(firstNonEmpty(info.Author, info.AuthorName), uid),
		Description: firstNonEmpty(info.Title, info.Content1),
		MediaURLs:   urls,
	}, nil
}

// extractStandardURLs tries every known media container of the status schema
// in priority order. Each non-empty source contributes its own items.
func extractStandardURLs(st *statusPayload) []string {
	var urls []string

	// Newest schema: one ordered list of typed media items.
	if st.MixMediaInfo != nil {
		for _, item := range st.MixMediaInfo.Items {
			switch item.Type {
			case "pic":
				var p picInfo
				if json.Unmarshal(item.Data, &p) == nil {
					urls = appendMediaURL(urls, pickPicURL(&p))
				}
			case "video":
				var v struct {
					MediaInfo *mediaInfo `json:"media_info"`
				}
				if json.Unmarshal(item.Data, &v) == nil && v.MediaInfo != nil {
					urls = appendMediaURL(urls, pickStreamURL(v.MediaInfo))
				}
			}
		}
	}

	// Standard schema: pic_infos object, member order is the gallery order.
	// A gif carrying a motion-video URL contributes that video instead of a still.
	_ = eachMember(st.PicInfos, func(_ string, raw json.RawMessage) error {
		var p picInfo
		if json.Unmarshal(raw, &p) != nil {
			return nil
		}
		if p.Type == "gif" && p.Video != "" {
			urls = appendMediaURL(urls, p.Video)
			return nil
		}
		urls = appendMediaURL(urls, pickPicURL(&p))
		return nil
	})

	// Plain pics array without the object wrapper.
	for i := range st.Pics {
		urls = appendMediaURL(urls, pickPicURL(&st.Pics[i]))
	}

	// Attached video: quality map first value, then media_info hd over sd.
	if st.PageInfo != nil {
		urls = appendMediaURL(urls, firstMemberString(st.PageInfo.URLs))
		if st.PageInfo.MediaInfo != nil {
			urls = appendMediaURL(urls, pickStreamURL(st.PageInfo.MediaInfo))
		}
	}

	// Legacy schema keyed by numeric quality; the highest key wins.
	if st.VideoInfo != nil {
		best, bestQuality := "", -1
		for key, detail := range st.VideoInfo.VideoDetails.VideoDetails {
			q, err := strconv.Atoi(key)
			if err != nil {
				continue
			}
			if q > bestQuality {
				bestQuality, best = q, detail.URL
			}
		}
		urls = appendMediaURL(urls, best)
	}

	return urls
}

// pickPicURL selects a still image's URL from its size variants in descending
// quality order before falling back to the generic url field.
func pickPicURL(p *picInfo) string {
	for _, v := range []*picVariant{p.Largest, p.Original, p.Large} {
		if v != nil && v.URL != "" {
			return v.URL
		}
	}
	return p.URL
}

// pickStreamURL prefers a high-definition URL over the standard stream.
func pickStreamURL(m *mediaInfo) string {
	return firstNonEmpty(m.HDURL, m.StreamURLHD, m.StreamURL)
}

// appendMediaURL appends a normalized URL, dropping empties.
func appendMediaURL(urls []string, u string) []string {
	if u == "" {
		return urls
	}
	return append(urls, normalizeMediaURL(u))
}

// normalizeMediaURL prefixes protocol-relative URLs with https.
func normalizeMediaURL(u string) string {
	if strings.HasPrefix(u, "//") {
		return "https:" + u
	}
	return u
}

// detectKind decides the media kind. An explicit image count above one always
// means a gallery; otherwise any video-looking URL makes the result a video.
func detectKind(picCount int, urls []string) media.Kind {
	if picCount > 1 {
		return media.Gallery
	}
	for _, u := range urls {
		lower := strings.ToLower(u)
		if strings.Contains(lower, "video") || strings.Contains(lower, ".mp4") {
			return media.Video
		}
	}
	return media.Image
}

// formatAuthor renders a user as "{screen_name}(uid:{id})".
func formatAuthor(u *userInfo) string {
	if u == nil {
		return ""
	}
	return formatAuthorParts(u.ScreenName, string(u.ID))
}

func formatAuthorParts(screenName, uid string) string {
	if screenName != "" && uid != "" {
		return fmt.Sprintf("%s(uid:%s)", screenName, uid)
	}
	return screenName
}

// formatTimestamp reformats the backend's fixed timestamp to YYYY-MM-DD.
// On any parse failure the raw value passes through unchanged; the fallback
// is deliberately lossy, not retried.
func formatTimestamp(createdAt string) string {
	if createdAt == "" {
		return ""
	}
	t, err := time.Parse(createdAtLayout, createdAt)
	if err != nil {
		return createdAt
	}
	return t.Format("2006-01-02")
}

// firstNonEmpty returns the first non-empty candidate.
func firstNonEmpty(candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return ""
}
