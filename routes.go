package landing

import (
	"path"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// ViewRef names a view registered in a ViewRegistry
type ViewRef string

const (
	ViewHome      ViewRef = "home"
	ViewLogin     ViewRef = "login"
	ViewSignup    ViewRef = "signup"
	ViewResend    ViewRef = "signup.resend"
	ViewLogout    ViewRef = "logout"
	ViewDashboard ViewRef = "dashboard"
)

const routeNameSeparator = "."

// RouteEntry is a static path to view mapping. Children are mounted under
// the parent path.
type RouteEntry struct {
	Path      string
	Name      string
	View      ViewRef
	Protected bool
	Children  []RouteEntry
}

// ViewHandlers are the handlers bound to a view. Post is optional.
type ViewHandlers struct {
	Get  router.HandlerFunc
	Post router.HandlerFunc
}

// ViewRegistry resolves view references to handlers
type ViewRegistry map[ViewRef]ViewHandlers

// RouteNode is a resolved RouteEntry with its full path
type RouteNode struct {
	Path      string
	Name      string
	View      ViewRef
	Protected bool
	Handlers  ViewHandlers
	Children  []RouteNode
}

// Count returns the number of nodes in the subtree rooted at n
func (n RouteNode) Count() int {
	total := 1
	for _, child := range n.Children {
		total += child.Count()
	}
	return total
}

// BuildRouteTree resolves entries against views and returns one node per
// entry, children nested under their parent. It performs no I/O; an error
// means the route table itself is broken.
func BuildRouteTree(entries []RouteEntry, views ViewRegistry) ([]RouteNode, error) {
	return buildNodes("", "", entries, views)
}

func buildNodes(parentPath, parentName string, entries []RouteEntry, views ViewRegistry) ([]RouteNode, error) {
	nodes := make([]RouteNode, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))

	for _, entry := range entries {
		if strings.TrimSpace(entry.Path) == "" {
			return nil, ErrInvalidRoutePath.WithMetadata(map[string]any{
				"parent": parentPath,
				"view":   entry.View,
			})
		}

		full := joinRoutePath(parentPath, entry.Path)
		if _, ok := seen[full]; ok {
			return nil, ErrDuplicateRoute.WithMetadata(map[string]any{
				"path": full,
			})
		}
		seen[full] = struct{}{}

		handlers, ok := views[entry.View]
		if !ok || handlers.Get == nil {
			return nil, ErrUnresolvedView.WithMetadata(map[string]any{
				"path": full,
				"view": entry.View,
			})
		}

		name := entry.Name
		if name == "" {
			name = string(entry.View)
		}
		if parentName != "" {
			name = parentName + routeNameSeparator + name
		}

		node := RouteNode{
			Path:      full,
			Name:      name,
			View:      entry.View,
			Protected: entry.Protected,
			Handlers:  handlers,
		}

		if len(entry.Children) > 0 {
			children, err := buildNodes(full, name, entry.Children, views)
			if err != nil {
				return nil, err
			}
			node.Children = children
		}

		nodes = append(nodes, node)
	}

	return nodes, nil
}

func joinRoutePath(parent, child string) string {
	if parent == "" {
		return path.Clean("/" + child)
	}
	return path.Join(parent, child)
}

// MountRouteTree registers every node of the tree in app. Protected nodes
// are wrapped with the gate middleware.
func MountRouteTree[T any](app router.Router[T], nodes []RouteNode, gate router.MiddlewareFunc) {
	for _, node := range nodes {
		mws := []router.MiddlewareFunc{}
		if node.Protected && gate != nil {
			mws = append(mws, gate)
		}

		app.Get(node.Path, node.Handlers.Get, mws...).
			SetName(node.Name + ".get")

		if node.Handlers.Post != nil {
			app.Post(node.Path, node.Handlers.Post, mws...).
				SetName(node.Name + ".post")
		}

		MountRouteTree(app, node.Children, gate)
	}
}

// DefaultRouteTable is the route surface served by the landing app
func DefaultRouteTable(routes *ControllerRoutes) []RouteEntry {
	return []RouteEntry{
		{Path: routes.Home, Name: "home", View: ViewHome},
		{Path: routes.Login, Name: "sign-in", View: ViewLogin},
		{
			Path: routes.Signup,
			Name: "sign-up",
			View: ViewSignup,
			Children: []RouteEntry{
				{Path: routes.Resend, Name: "resend", View: ViewResend},
			},
		},
		{Path: routes.Logout, Name: "sign-out", View: ViewLogout},
		{Path: routes.Dashboard, Name: "dashboard", View: ViewDashboard, Protected: true},
	}
}

// IsRouteTableError reports whether err was raised while building a route tree
func IsRouteTableError(err error) bool {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return false
	}
	switch richErr.TextCode {
	case TextCodeUnresolvedView, TextCodeDuplicateRoute, TextCodeInvalidRoutePath:
		return true
	}
	return false
}
