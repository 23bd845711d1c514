// Package weibo resolves Weibo post URLs into normalized media metadata by
// reverse-engineered calls to the platform's private web APIs. Three URL
// dialects are understood; each maps to its own identifier rule, fetch
// sequence, and schema normalizer, all converging on one canonical record.
//
// The mapping is best-effort and brittle by nature: endpoint paths, parameter
// names, and the header set are load-bearing details of an undocumented
// surface and must be reproduced exactly.
package weibo

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/drdon1234/weibo-parser/internal/httputil"
	"github.com/drdon1234/weibo-parser/internal/media"
)

// defaultUserAgent mirrors the desktop browser the endpoints were captured with.
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/142.0.0.0 Safari/537.36 Edg/142.0.0.0"

// Terminal error kinds. All failures short-circuit the pipeline; nothing is
// retried and no partial result is ever returned.
var (
	ErrUnsupportedURL = errors.New("url matches no known weibo dialect")
	ErrInvalidID      = errors.New("malformed weibo identifier")
	ErrNoCookies      = errors.New("visitor endpoint returned no cookies")
	ErrFetchFailed    = errors.New("weibo api request failed")
	ErrNoMedia        = errors.New("no media found")

	// Distinguishable failure modes of the HTML-embedded payload.
	ErrRenderDataMissing   = errors.New("render data not found in detail page")
	ErrRenderDataMalformed = errors.New("render data is not valid json")
	ErrRenderDataEmpty     = errors.New("render data array is empty")
)

// Parser resolves Weibo URLs. Every Parse call is self-contained: it
// provisions its own visitor credentials and shares no mutable state, so
// concurrent calls need no coordination.
type Parser struct {
	client    *http.Client
	session   SessionProvider
	userAgent string

	statusAPI  string
	detailBase string
	playAPI    string
}

// New creates a Parser. An empty userAgent selects the captured default.
func New(userAgent string) *Parser {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	client := httputil.NewClient()
	return &Parser{
		client: client,
		session: &visitorSession{
			client:     client,
			visitorURL: visitorAPI,
			homeURL:    homeURL,
			userAgent:  userAgent,
		},
		userAgent:  userAgent,
		statusAPI:  "https://weibo.com/ajax/statuses/show",
		detailBase: "https://m.weibo.cn/detail/",
		playAPI:    "https://weibo.com/tv/api/component",
	}
}

// dialectOps binds a dialect to its fetch routine and normalizer. The table
// keeps the variant set closed and exhaustively checkable.
type dialectOps struct {
	fetch     func(p *Parser, id, sourceURL string, creds *CredentialSet) (json.RawMessage, error)
	normalize func(payload json.RawMessage, sourceURL string) (*media.ParsedMedia, error)
}

var dialectTable = map[media.Dialect]dialectOps{
	media.StandardPost: {
		fetch: func(p *Parser, id, sourceURL string, creds *CredentialSet) (json.RawMessage, error) {
			return p.fetchStandard(id, sourceURL, creds)
		},
		normalize: normalizeStandard,
	},
	media.MobilePost: {
		fetch: func(p *Parser, id, _ string, creds *CredentialSet) (json.RawMessage, error) {
			return p.fetchMobile(id, creds)
		},
		normalize: normalizeMobile,
	},
	media.VideoShow: {
		fetch: func(p *Parser, id, _ string, creds *CredentialSet) (json.RawMessage, error) {
			return p.fetchVideoShow(id, creds)
		},
		normalize: normalizeVideoShow,
	},
}

// Parse resolves one URL: classify, extract the identifier, provision a fresh
// visitor session, fetch the dialect's native payload, and normalize it. Any
// step's failure is the call's failure.
func (p *Parser) Parse(rawURL string) (*media.ParsedMedia, error) {
	dialect, err := Classify(rawURL)
	if err != nil {
		return nil, err
	}

	id, err := ExtractID(rawURL, dialect)
	if err != nil {
		return nil, err
	}

	creds, err := p.session.Provision()
	if err != nil {
		return nil, fmt.Errorf("provisioning visitor session: %w", err)
	}

	ops, ok := dialectTable[dialect]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedURL, rawURL)
	}

	payload, err := ops.fetch(p, id, rawURL, creds)
	if err != nil {
		return nil, fmt.Errorf("fetching %s payload: %w", dialect, err)
	}

	result, err := ops.normalize(payload, rawURL)
	if err != nil {
		return nil, fmt.Errorf("normalizing %s payload: %w", dialect, err)
	}
	return result, nil
}
