package weibo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/drdon1234/weibo-parser/internal/httputil"
)

// renderDataRe isolates the JS array literal assigned to $render_data inside
// the m.weibo.cn detail page HTML.
var renderDataRe = regexp.MustCompile(`(?s)var \$render_data = (\[.*?\])\[0\]`)

// fetchStandard GETs the desktop status API. The payload's own success flag
// governs: a 200 with "ok":0 is still a failure, and some response shapes
// nest the real payload one level under a "data" key.
func (p *Parser) fetchStandard(id, sourceURL string, creds *CredentialSet) (json.RawMessage, error) {
	apiURL := fmt.Sprintf("%s?id=%s&locale=zh-CN&isGetLongText=true", p.statusAPI, url.QueryEscape(id))

	req, err := http.NewRequest(http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating status request: %w", err)
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Referer", sourceURL)
	req.Header.Set("Cookie", creds.Header())
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("Sec-Fetch-Site", "same-origin")
	req.Header.Set("Sec-Fetch-Mode", "cors")
	req.Header.Set("Sec-Fetch-Dest", "empty")
	req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9")
	if tok := creds.XSRFToken(); tok != "" {
		req.Header.Set("X-Xsrf-Token", tok)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status API returned %d", ErrFetchFailed, resp.StatusCode)
	}

	body, err := httputil.ReadBody(resp)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	var envelope struct {
		OK   *int            `json:"ok"`
		Msg  string          `json:"msg"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: decoding status response: %v", ErrFetchFailed, err)
	}
	if envelope.OK != nil && *envelope.OK == 0 {
		msg := envelope.Msg
		if msg == "" {
			msg = "unknown error"
		}
		return nil, fmt.Errorf("%w: %s", ErrFetchFailed, msg)
	}

	if data := bytes.TrimSpace(envelope.Data); len(data) > 0 && data[0] == '{' {
		return data, nil
	}
	return body, nil
}

// fetchMobile GETs the m.weibo.cn detail page and digs the payload out of the
// $render_data script. The three failure modes stay distinguishable for
// diagnostics: the literal can be missing, malformed, or an empty array.
func (p *Parser) fetchMobile(id string, creds *CredentialSet) (json.RawMessage, error) {
	detailURL := p.detailBase + id

	req, err := http.NewRequest(http.MethodGet, detailURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating detail request: %w", err)
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Referer", visitorReferer)
	req.Header.Set("Cookie", creds.Header())

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: detail page returned %d", ErrFetchFailed, resp.StatusCode)
	}

	body, err := httputil.ReadBody(resp)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	literal := findRenderData(body)
	if literal == "" {
		return nil, ErrRenderDataMissing
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(literal), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderDataMalformed, err)
	}
	if len(items) == 0 {
		return nil, ErrRenderDataEmpty
	}
	return items[0], nil
}

// findRenderData returns the $render_data array literal, narrowing the search
// to the script element that carries it when the page parses as HTML.
func findRenderData(page []byte) string {
	if doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page)); err == nil {
		var literal string
		doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := s.Text()
			if !strings.Contains(text, "$render_data") {
				return true
			}
			if m := renderDataRe.FindStringSubmatch(text); m != nil {
				literal = m[1]
				return false
			}
			return true
		})
		if literal != "" {
			return literal
		}
	}
	// Script content can be mangled by the HTML parser; fall back to the raw page.
	if m := renderDataRe.FindSubmatch(page); m != nil {
		return string(m[1])
	}
	return ""
}

// fetchVideoShow POSTs to the tv component API, naming the identifier as the
// playinfo object id and deriving the referer from the identifier itself.
func (p *Parser) fetchVideoShow(id string, creds *CredentialSet) (json.RawMessage, error) {
	apiURL := p.playAPI + "?page=" + url.QueryEscape("/tv/show/"+id)
	referer := fmt.Sprintf("https://weibo.com/tv/show/%s?from=old_pc_videoshow", id)

	payload, err := json.Marshal(map[string]map[string]string{
		"Component_Play_Playinfo": {"oid": id},
	})
	if err != nil {
		return nil, fmt.Errorf("encoding playinfo payload: %w", err)
	}
	form := url.Values{"data": {string(payload)}}

	req, err := http.NewRequest(http.MethodPost, apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating component request: %w", err)
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Referer", referer)
	req.Header.Set("Cookie", creds.Header())
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: component API returned %d", ErrFetchFailed, resp.StatusCode)
	}

	body, err := httputil.ReadBody(resp)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	return body, nil
}
