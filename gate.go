package landing

import (
	"github.com/goliatone/go-router"
)

// LoginGate keeps visitors without a session out of protected routes. It
// holds no state of its own.
type LoginGate struct {
	Session *SessionCookies
	Routes  *ControllerRoutes
	View    string
	Logger  Logger
}

// Middleware lets requests with a session through. Anyone else gets the
// login required modal with a link to sign in and one to dismiss it.
func (g *LoginGate) Middleware() router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			if g.Session.Present(ctx) {
				return ctx.Next()
			}

			if g.Logger != nil {
				g.Logger.Debug("login required", "url", ctx.OriginalURL())
			}

			g.Session.SetRedirect(ctx)

			return ctx.Status(router.StatusUnauthorized).Render(g.View, MergeTemplateData(ctx, g.Routes, g.Session, router.ViewContext{
				"login_url":   g.Routes.Login,
				"dismiss_url": g.Routes.Home,
			}))
		}
	}
}
