package weibo

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/drdon1234/weibo-parser/internal/media"
)

// stubSession returns fixed credentials without any network traffic.
type stubSession struct {
	creds *CredentialSet
	err   error
}

func (s *stubSession) Provision() (*CredentialSet, error) {
	return s.creds, s.err
}

func testCreds(cookies ...*http.Cookie) *CredentialSet {
	if len(cookies) == 0 {
		cookies = []*http.Cookie{{Name: "SUB", Value: "_2AkMeSxBBf8"}}
	}
	return &CredentialSet{cookies: cookies}
}

// testParser builds a Parser whose endpoints point at the given server.
func testParser(srv *httptest.Server) *Parser {
	p := New("")
	p.client = srv.Client()
	p.session = &stubSession{creds: testCreds()}
	p.statusAPI = srv.URL + "/ajax/statuses/show"
	p.detailBase = srv.URL + "/detail/"
	p.playAPI = srv.URL + "/tv/api/component"
	return p
}

func TestFetchStandard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("id"); got != "QdC5HtUjg" {
			t.Errorf("id param = %q, want QdC5HtUjg", got)
		}
		if got := r.URL.Query().Get("isGetLongText"); got != "true" {
			t.Errorf("isGetLongText param = %q, want true", got)
		}
		if got := r.Header.Get("Cookie"); !strings.Contains(got, "SUB=") {
			t.Errorf("cookie header = %q, want SUB cookie", got)
		}
		if got := r.Header.Get("Referer"); got != "https://weibo.com/1/QdC5HtUjg" {
			t.Errorf("referer = %q, want original post URL", got)
		}
		if got := r.Header.Get("X-Requested-With"); got != "XMLHttpRequest" {
			t.Errorf("x-requested-with = %q", got)
		}
		fmt.Fprint(w, `{"ok": 1, "pic_num": 1, "pic_infos": {"a": {"url": "https://wx1.sinaimg.cn/a.jpg"}}}`)
	}))
	defer srv.Close()

	p := testParser(srv)
	payload, err := p.fetchStandard("QdC5HtUjg", "https://weibo.com/1/QdC5HtUjg", testCreds())
	if err != nil {
		t.Fatalf("fetchStandard error = %v", err)
	}
	if !strings.Contains(string(payload), "pic_infos") {
		t.Errorf("payload = %s, want pic_infos present", payload)
	}
}

func TestFetchStandardSendsXSRFToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Xsrf-Token"); got != "tok123" {
			t.Errorf("x-xsrf-token = %q, want tok123", got)
		}
		fmt.Fprint(w, `{"ok": 1}`)
	}))
	defer srv.Close()

	creds := testCreds(
		&http.Cookie{Name: "SUB", Value: "s"},
		&http.Cookie{Name: "XSRF-TOKEN", Value: "tok123"},
	)

	p := testParser(srv)
	if _, err := p.fetchStandard("1", "https://weibo.com/1/1", creds); err != nil {
		t.Fatalf("fetchStandard error = %v", err)
	}
}

func TestFetchStandardErrorFlag(t *testing.T) {
	// Transport-level 200 with the payload's own error flag set is a failure.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ok": 0, "msg": "该微博已删除"}`)
	}))
	defer srv.Close()

	p := testParser(srv)
	_, err := p.fetchStandard("1", "https://weibo.com/1/1", testCreds())
	if !errors.Is(err, ErrFetchFailed) {
		t.Fatalf("error = %v, want ErrFetchFailed", err)
	}
	if !strings.Contains(err.Error(), "该微博已删除") {
		t.Errorf("error = %v, want backend message included", err)
	}
}

func TestFetchStandardUnwrapsData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ok": 1, "data": {"pic_num": 2, "marker": "nested"}}`)
	}))
	defer srv.Close()

	p := testParser(srv)
	payload, err := p.fetchStandard("1", "https://weibo.com/1/1", testCreds())
	if err != nil {
		t.Fatalf("fetchStandard error = %v", err)
	}
	if !strings.Contains(string(payload), "nested") || strings.Contains(string(payload), `"data"`) {
		t.Errorf("payload = %s, want unwrapped data object", payload)
	}
}

func TestFetchStandardBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	p := testParser(srv)
	if _, err := p.fetchStandard("1", "https://weibo.com/1/1", testCreds()); !errors.Is(err, ErrFetchFailed) {
		t.Errorf("error = %v, want ErrFetchFailed", err)
	}
}

func TestFetchMobile(t *testing.T) {
	page := `<html><head></head><body><script>
	var $render_data = [{"status": {"user": {"id": 7, "screen_name": "n"}, "pics": [{"url": "https://wx2.sinaimg.cn/1.jpg"}]}}][0] || {};
	</script></body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Referer"); got != "https://visitor.passport.weibo.cn/" {
			t.Errorf("referer = %q, want visitor passport", got)
		}
		fmt.Fprint(w, page)
	}))
	defer srv.Close()

	p := testParser(srv)
	payload, err := p.fetchMobile("5221716881314113", testCreds())
	if err != nil {
		t.Fatalf("fetchMobile error = %v", err)
	}
	if !strings.Contains(string(payload), "screen_name") {
		t.Errorf("payload = %s, want first render_data element", payload)
	}
}

func TestFetchMobileFailureModes(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{"literal missing", `<html><body>no data here</body></html>`, ErrRenderDataMissing},
		{"empty array", `<script>var $render_data = [][0] || {};</script>`, ErrRenderDataEmpty},
		{"malformed json", `<script>var $render_data = [{bad json}][0] || {};</script>`, ErrRenderDataMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			p := testParser(srv)
			_, err := p.fetchMobile("1", testCreds())
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFetchVideoShow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if got := r.URL.Query().Get("page"); got != "/tv/show/1034:5233218052358208" {
			t.Errorf("page param = %q", got)
		}
		if got := r.Header.Get("Referer"); got != "https://weibo.com/tv/show/1034:5233218052358208?from=old_pc_videoshow" {
			t.Errorf("referer = %q", got)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parsing form: %v", err)
		}
		if got := r.PostForm.Get("data"); got != `{"Component_Play_Playinfo":{"oid":"1034:5233218052358208"}}` {
			t.Errorf("data field = %q", got)
		}
		fmt.Fprint(w, `{"data": {"Component_Play_Playinfo": {"urls": {"hd": "//cdn/x.mp4"}}}}`)
	}))
	defer srv.Close()

	p := testParser(srv)
	payload, err := p.fetchVideoShow("1034:5233218052358208", testCreds())
	if err != nil {
		t.Fatalf("fetchVideoShow error = %v", err)
	}
	if !strings.Contains(string(payload), "Component_Play_Playinfo") {
		t.Errorf("payload = %s", payload)
	}
}

func TestProvision(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/visitor/genvisitor2":
			if err := r.ParseForm(); err != nil {
				t.Fatalf("parsing form: %v", err)
			}
			if got := r.PostForm.Get("cb"); got != "visitor_gray_callback" {
				t.Errorf("cb field = %q", got)
			}
			http.SetCookie(w, &http.Cookie{Name: "SUB", Value: "_2AkMe"})
			http.SetCookie(w, &http.Cookie{Name: "SUBP", Value: "0033W"})
			fmt.Fprint(w, `visitor_gray_callback({"retcode":20000000})`)
		case "/home":
			http.SetCookie(w, &http.Cookie{Name: "XSRF-TOKEN", Value: "tok456"})
		}
	}))
	defer srv.Close()

	v := &visitorSession{
		client:     srv.Client(),
		visitorURL: srv.URL + "/visitor/genvisitor2",
		homeURL:    srv.URL + "/home",
		userAgent:  "test-agent",
	}

	creds, err := v.Provision()
	if err != nil {
		t.Fatalf("Provision error = %v", err)
	}
	header := creds.Header()
	if !strings.Contains(header, "SUB=_2AkMe") || !strings.Contains(header, "SUBP=0033W") {
		t.Errorf("cookie header = %q, want both visitor cookies", header)
	}
	if creds.XSRFToken() != "tok456" {
		t.Errorf("XSRFToken = %q, want token from home page", creds.XSRFToken())
	}
}

func TestProvisionNoCookies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `visitor_gray_callback({})`)
	}))
	defer srv.Close()

	v := &visitorSession{client: srv.Client(), visitorURL: srv.URL, homeURL: srv.URL, userAgent: "ua"}
	if _, err := v.Provision(); !errors.Is(err, ErrNoCookies) {
		t.Errorf("error = %v, want ErrNoCookies", err)
	}
}

func TestProvisionToleratesMissingXSRF(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/visitor" {
			http.SetCookie(w, &http.Cookie{Name: "SUB", Value: "s"})
			return
		}
		// Home page sets no XSRF-TOKEN either.
	}))
	defer srv.Close()

	v := &visitorSession{
		client:     srv.Client(),
		visitorURL: srv.URL + "/visitor",
		homeURL:    srv.URL + "/home",
		userAgent:  "ua",
	}

	creds, err := v.Provision()
	if err != nil {
		t.Fatalf("Provision error = %v", err)
	}
	if creds.XSRFToken() != "" {
		t.Errorf("XSRFToken = %q, want empty", creds.XSRFToken())
	}
}

func TestParseEndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/ajax/statuses/show"):
			fmt.Fprint(w, `{
				"ok": 1,
				"user": {"id": 1566936885, "screen_name": "某人"},
				"pic_num": 2,
				"created_at": "Thu Nov 13 21:18:29 +0800 2025",
				"text_raw": "hello",
				"pic_infos": {
					"a": {"largest": {"url": "https://wx1.sinaimg.cn/a.jpg"}},
					"b": {"largest": {"url": "https://wx1.sinaimg.cn/b.jpg"}}
				}
			}`)
		case strings.HasPrefix(r.URL.Path, "/detail/"):
			fmt.Fprint(w, `<script>var $render_data = [{"status": {"user": {"id": 7, "screen_name": "m"}, "pics": [{"url": "https://wx2.sinaimg.cn/1.jpg"}]}}][0] || {};</script>`)
		case strings.HasPrefix(r.URL.Path, "/tv/api/component"):
			fmt.Fprint(w, `{"data": {"Component_Play_Playinfo": {"title": "v", "author": "a", "author_id": 9, "urls": {"hd": "//cdn/x.mp4"}}}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	p := testParser(srv)

	tests := []struct {
		name     string
		url      string
		wantKind media.Kind
		wantURLs int
	}{
		{"standard post", "https://weibo.com/1566936885/QdC5HtUjg", media.Gallery, 2},
		{"mobile post", "https://m.weibo.cn/detail/5221716881314113", media.Image, 1},
		{"video show", "https://video.weibo.com/show?fid=1034:5233218052358208", media.Video, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Parse(tt.url)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.url, err)
			}
			if got.SourceURL != tt.url {
				t.Errorf("SourceURL = %q, want input URL", got.SourceURL)
			}
			if got.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", got.Kind, tt.wantKind)
			}
			if len(got.MediaURLs) != tt.wantURLs {
				t.Errorf("len(MediaURLs) = %d, want %d", len(got.MediaURLs), tt.wantURLs)
			}
		})
	}
}

func TestParseShortCircuits(t *testing.T) {
	p := New("")

	if _, err := p.Parse("https://example.com/nope"); !errors.Is(err, ErrUnsupportedURL) {
		t.Errorf("error = %v, want ErrUnsupportedURL", err)
	}

	// Session failure stops the pipeline before any fetch.
	p.session = &stubSession{err: ErrNoCookies}
	if _, err := p.Parse("https://weibo.com/1/abc"); !errors.Is(err, ErrNoCookies) {
		t.Errorf("error = %v, want ErrNoCookies propagated", err)
	}
}
