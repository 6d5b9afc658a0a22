package landing

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-featuregate/gate"
	"github.com/goliatone/go-featuregate/gate/guard"
)

// StaticFeatureGate resolves features from a fixed map. Unknown keys are
// enabled.
type StaticFeatureGate map[string]bool

func (g StaticFeatureGate) Enabled(ctx context.Context, key string, opts ...gate.ResolveOption) (bool, error) {
	enabled, ok := g[key]
	if !ok {
		return true, nil
	}
	return enabled, nil
}

func normalizeFeatureGateError(err error) error {
	if err == nil {
		return nil
	}

	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return err
	}

	return errors.Wrap(err, errors.CategoryAuthz, "Feature gate check failed").
		WithCode(errors.CodeForbidden)
}

func requireSignupGate(ctx context.Context, featureGate gate.FeatureGate) error {
	if featureGate == nil {
		return nil
	}
	return guard.Require(ctx, featureGate, gate.FeatureUsersSignup,
		guard.WithDisabledError(ErrSignupDisabled),
		guard.WithErrorMapper(normalizeFeatureGateError),
	)
}
