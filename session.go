package landing

import (
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-router"
)

const (
	DefaultSessionCookie  = "arena_session"
	DefaultRedirectCookie = "arena_redirect"
	defaultSessionTTL     = time.Hour
)

// SessionCookies stores the gateway session token and the route a visitor
// was sent away from.
type SessionCookies struct {
	Name         string
	RedirectName string
	Secure       bool
	// TTL is used when the gateway session does not report its lifetime
	TTL time.Duration
	now func() time.Time
}

func NewSessionCookies(name string, secure bool) *SessionCookies {
	if name == "" {
		name = DefaultSessionCookie
	}
	return &SessionCookies{
		Name:         name,
		RedirectName: DefaultRedirectCookie,
		Secure:       secure,
		TTL:          defaultSessionTTL,
		now:          time.Now,
	}
}

// Present reports whether the request carries a session. The token itself
// is never inspected.
func (s *SessionCookies) Present(ctx router.Context) bool {
	return ctx.Cookies(s.Name) != ""
}

func (s *SessionCookies) Set(ctx router.Context, session *Session) {
	ttl := s.TTL
	if session.ExpiresIn > 0 {
		ttl = time.Duration(session.ExpiresIn) * time.Second
	}
	s.cookie(ctx, s.Name, session.AccessToken, s.now().Add(ttl))
}

func (s *SessionCookies) Clear(ctx router.Context) {
	s.cookieDel(ctx, s.Name)
}

// SetRedirect remembers the current URL so login can return to it
func (s *SessionCookies) SetRedirect(ctx router.Context) {
	s.cookie(ctx, s.RedirectName, ctx.OriginalURL(), s.now().Add(time.Minute*5))
}

// GetRedirect returns the remembered URL or def, clearing the cookie. Only
// local paths are returned.
func (s *SessionCookies) GetRedirect(ctx router.Context, def string) string {
	r := ctx.Cookies(s.RedirectName)
	if r == "" {
		return def
	}
	s.cookieDel(ctx, s.RedirectName)

	if !isLocalPath(r) {
		return def
	}
	return r
}

func isLocalPath(target string) bool {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return false
	}
	u, err := url.Parse(target)
	if err != nil {
		return false
	}
	return u.Scheme == "" && u.Host == ""
}

func (s *SessionCookies) cookie(ctx router.Context, name, val string, expires time.Time) {
	ctx.Cookie(&router.Cookie{
		Name:     name,
		Value:    val,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   s.Secure,
		SameSite: "Lax",
	})
}

func (s *SessionCookies) cookieDel(ctx router.Context, name string) {
	s.cookie(ctx, name, "", s.now().Add(-time.Hour*(24*365)))
}
