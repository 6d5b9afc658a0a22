package landing

import (
	"maps"

	"github.com/goliatone/go-landing/middleware/csrf"
	"github.com/goliatone/go-router"
)

// TemplateRoutesKey is the view key holding the route paths
const TemplateRoutesKey = "routes"

// TemplateHelpers returns the values every landing view can rely on.
//
// In templates:
//
//	{{ csrf_field|safe }}
//	<a href="{{ routes.login }}">
//	{% if is_authenticated %}
func TemplateHelpers(ctx router.Context, routes *ControllerRoutes, session *SessionCookies) router.ViewContext {
	helpers := router.ViewContext{}
	maps.Copy(helpers, csrf.TemplateHelpers(ctx))

	if routes != nil {
		helpers[TemplateRoutesKey] = map[string]string{
			"home":      routes.Home,
			"login":     routes.Login,
			"signup":    routes.Signup,
			"resend":    joinRoutePath(routes.Signup, routes.Resend),
			"logout":    routes.Logout,
			"dashboard": routes.Dashboard,
		}
	}

	helpers["is_authenticated"] = session != nil && session.Present(ctx)

	return helpers
}

// MergeTemplateData layers data over the shared helpers. Keys in data win.
func MergeTemplateData(ctx router.Context, routes *ControllerRoutes, session *SessionCookies, data router.ViewContext) router.ViewContext {
	out := TemplateHelpers(ctx, routes, session)
	maps.Copy(out, data)
	return out
}
