package weibo

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// The backend serves three structurally different schemas. The structs below
// make the observed optional fields explicit so the normalizers can match on
// presence instead of chasing nil-coalescing chains.

// flexID accepts the uid fields Weibo serves sometimes as a JSON number and
// sometimes as a string.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

type userInfo struct {
	ID         flexID `json:"id"`
	ScreenName string `json:"screen_name"`
}

// picVariant is one size/quality rendition of a still image.
type picVariant struct {
	URL string `json:"url"`
}

// picInfo describes one image. A gif-typed image carrying a motion-video URL
// is always represented by that video instead of a still.
type picInfo struct {
	Type     string      `json:"type"`
	Video    string      `json:"video"`
	URL      string      `json:"url"`
	Largest  *picVariant `json:"largest"`
	Original *picVariant `json:"original"`
	Large    *picVariant `json:"large"`
}

// mediaInfo exposes a video's stream URLs, high definition preferred.
type mediaInfo struct {
	HDURL       string `json:"hd_url"`
	StreamURLHD string `json:"stream_url_hd"`
	StreamURL   string `json:"stream_url"`
}

// mixMediaInfo is the newest status schema: one ordered list of typed items.
type mixMediaInfo struct {
	Items []mixMediaItem `json:"items"`
}

type mixMediaItem struct {
	Type string          `json:"type"` // "pic" or "video"
	Data json.RawMessage `json:"data"`
}

// pageInfo carries an attached video: either a quality-label → URL map
// (document order matters, first value wins) or a media_info block.
type pageInfo struct {
	Type      string          `json:"type"`
	URLs      json.RawMessage `json:"urls"`
	MediaInfo *mediaInfo      `json:"media_info"`
}

// videoInfo is a legacy schema keyed by numeric quality.
type videoInfo struct {
	VideoDetails struct {
		VideoDetails map[string]struct {
			URL string `json:"url"`
		} `json:"video_details"`
	} `json:"video_details"`
}

// statusPayload is the unwrapped body of the desktop status API.
type statusPayload struct {
	User         *userInfo       `json:"user"`
	PicNum       int             `json:"pic_num"`
	CreatedAt    string          `json:"created_at"`
	TextRaw      string          `json:"text_raw"`
	Text         string          `json:"text"`
	MixMediaInfo *mixMediaInfo   `json:"mix_media_info"`
	PicInfos     json.RawMessage `json:"pic_infos"` // object; member order is the gallery order
	Pics         []picInfo       `json:"pics"`
	PageInfo     *pageInfo       `json:"page_info"`
	VideoInfo    *videoInfo      `json:"video_info"`
}

// renderItem is one element of the $render_data array embedded in the
// m.weibo.cn detail page.
type renderItem struct {
	Status *mobileStatus `json:"status"`
}

type mobileStatus struct {
	User      *userInfo `json:"user"`
	CreatedAt string    `json:"created_at"`
	TextRaw   string    `json:"text_raw"`
	Text      string    `json:"text"`
	Pics      []picInfo `json:"pics"`
	PageInfo  *pageInfo `json:"page_info"`
}

// playComponentResponse is the body of the tv component API.
type playComponentResponse struct {
	Data struct {
		Playinfo playInfo `json:"Component_Play_Playinfo"`
	} `json:"data"`
}

type playInfo struct {
	Title      string          `json:"title"`
	Content1   string          `json:"content1"`
	Author     string          `json:"author"`
	AuthorName string          `json:"author_name"`
	AuthorID   flexID          `json:"author_id"`
	User       *userInfo       `json:"user"`
	URLs       json.RawMessage `json:"urls"`
}

// errStopIteration signals an early, non-error exit from eachMember.
var errStopIteration = errors.New("stop iteration")

// eachMember calls fn for every member of a JSON object in document order.
// encoding/json maps randomize iteration order, but for several payloads the
// backend's member order is load-bearing, so the object is walked with a
// token decoder instead.
func eachMember(raw json.RawMessage, fn func(key string, value json.RawMessage) error) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decoding object: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decoding object key: %w", err)
		}
		key, _ := keyTok.(string)

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("decoding object value: %w", err)
		}
		if err := fn(key, value); err != nil {
			if errors.Is(err, errStopIteration) {
				return nil
			}
			return err
		}
	}
	return nil
}

// firstMemberString returns the first member value of a JSON object decoded
// as a string, preserving the order the backend returned.
func firstMemberString(raw json.RawMessage) string {
	var first string
	_ = eachMember(raw, func(_ string, value json.RawMessage) error {
		_ = json.Unmarshal(value, &first)
		return errStopIteration
	})
	return first
}
