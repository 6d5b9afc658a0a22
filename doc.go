// Package landing serves the public landing page and the authentication
// shell in front of a hosted identity provider.
//
// Routes:
//   - The route table is a static list of RouteEntry values. BuildRouteTree
//     resolves each entry against a ViewRegistry and fails on unknown views,
//     empty paths or sibling duplicates. MountRouteTree registers the result
//     on a go-router Router and wraps protected nodes in the LoginGate.
//
// Signup:
//   - SignupWizard moves from the identity step to the security step and
//     submits the draft through the AuthGateway. Wizard state travels with
//     the form, so every POST rebuilds it before applying an action. An
//     InflightGuard keeps a form from reaching the gateway twice at once.
//
// Verification:
//   - Countdown is the resend timer shown after signup. ResendCooldown
//     rebuilds it from the last resend stored in a ResendStore and rejects
//     resends while it is still running.
//
// Sessions are owned by the identity provider. The landing app only stores
// the access token in a cookie and checks for its presence.
package landing
