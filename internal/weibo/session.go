package weibo

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const (
	visitorAPI     = "https://visitor.passport.weibo.cn/visitor/genvisitor2"
	visitorReferer = "https://visitor.passport.weibo.cn/"
	homeURL        = "https://weibo.com"
	xsrfCookieName = "XSRF-TOKEN"
)

// CredentialSet is an opaque bundle of anonymous session cookies. A fresh set
// is provisioned per Parse call and discarded afterwards.
type CredentialSet struct {
	cookies []*http.Cookie
}

// Header formats the cookies for a Cookie request header.
func (c *CredentialSet) Header() string {
	pairs := make([]string, 0, len(c.cookies))
	for _, ck := range c.cookies {
		pairs = append(pairs, ck.Name+"="+ck.Value)
	}
	return strings.Join(pairs, "; ")
}

// XSRFToken returns the anti-forgery token value, or "" when absent.
func (c *CredentialSet) XSRFToken() string {
	for _, ck := range c.cookies {
		if ck.Name == xsrfCookieName {
			return ck.Value
		}
	}
	return ""
}

// SessionProvider obtains anonymous visitor credentials usable against the
// Weibo APIs.
type SessionProvider interface {
	Provision() (*CredentialSet, error)
}

// visitorSession provisions credentials from the visitor-token endpoint.
type visitorSession struct {
	client     *http.Client
	visitorURL string
	homeURL    string
	userAgent  string
}

// Provision posts to the visitor-token endpoint and collects every cookie set
// on the response. If the bundle lacks the XSRF-TOKEN some dialects want, one
// extra GET to the home page tries to acquire it; failure of that extra step
// is tolerated and the token header is simply omitted later.
func (v *visitorSession) Provision() (*CredentialSet, error) {
	form := url.Values{"cb": {"visitor_gray_callback"}}
	req, err := http.NewRequest(http.MethodPost, v.visitorURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating visitor request: %w", err)
	}
	req.Header.Set("User-Agent", v.userAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting visitor cookies: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("visitor endpoint returned status %d", resp.StatusCode)
	}

	cookies := resp.Cookies()
	if len(cookies) == 0 {
		return nil, ErrNoCookies
	}

	creds := &CredentialSet{cookies: cookies}
	if creds.XSRFToken() == "" {
		v.fetchXSRFToken(creds)
	}
	return creds, nil
}

// fetchXSRFToken visits the home page to pick up an XSRF-TOKEN cookie.
// Any failure leaves the credential set unchanged.
func (v *visitorSession) fetchXSRFToken(creds *CredentialSet) {
	req, err := http.NewRequest(http.MethodGet, v.homeURL, nil)
	if err != nil {
		return
	}
	req.Header.Set("User-Agent", v.userAgent)

	resp, err := v.client.Do(req)
	if err != nil {
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return
	}
	for _, ck := range resp.Cookies() {
		if ck.Name == xsrfCookieName {
			creds.cookies = append(creds.cookies, ck)
			return
		}
	}
}
