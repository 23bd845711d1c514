// Package media defines shared types for the weibo-parser application.
package media

import "encoding/json"

// Kind classifies what a parsed post ultimately contains.
type Kind int

const (
	Image Kind = iota
	Video
	Gallery
)

func (k Kind) String() string {
	switch k {
	case Image:
		return "image"
	case Video:
		return "video"
	case Gallery:
		return "gallery"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes a Kind as its lowercase name.
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// Dialect identifies which of Weibo's backend API shapes a URL belongs to.
// The set is closed; each URL maps to exactly one dialect or to none.
type Dialect int

const (
	// StandardPost covers weibo.com/{uid}/{post} and weibo.cn/status/{id} links,
	// served by the desktop ajax status API.
	StandardPost Dialect = iota

	// MobilePost covers m.weibo.cn/detail/{id} links, served as HTML with an
	// embedded $render_data JSON literal.
	MobilePost

	// VideoShow covers video.weibo.com/show?fid= and weibo.com/tv/show/ links,
	// served by the tv component API.
	VideoShow
)

func (d Dialect) String() string {
	switch d {
	case StandardPost:
		return "weibo.com"
	case MobilePost:
		return "m.weibo.cn"
	case VideoShow:
		return "video.weibo.com"
	default:
		return "unknown"
	}
}

// ParsedMedia is the canonical result produced for every dialect.
// A ParsedMedia is either fully populated or not returned at all;
// on success MediaURLs is never empty.
type ParsedMedia struct {
	SourceURL   string   `json:"url"`
	Kind        Kind     `json:"media_type"`
	Title       string   `json:"title"`      // reserved, always empty
	Author      string   `json:"author"`     // "{screen_name}(uid:{id})", screen name alone, or ""
	Description string   `json:"desc"`
	PublishedAt string   `json:"timestamp"`  // YYYY-MM-DD, raw source value, or ""
	VideoSize   *int64   `json:"video_size"` // reserved, always nil
	MediaURLs   []string `json:"media_urls"`
}
