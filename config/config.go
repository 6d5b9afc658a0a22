package config

import (
	"net/http"
	"time"

	"github.com/caarlos0/env/v11"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-featuregate/gate"
	landing "github.com/goliatone/go-landing"
	"github.com/goliatone/go-landing/gateway/gotrue"
)

// Config holds the landing app settings, read from the environment.
type Config struct {
	Debug    bool     `env:"DEBUG" envDefault:"false" json:"debug"`
	HTTP     HTTP     `envPrefix:"HTTP_" json:"http"`
	Gateway  Gateway  `envPrefix:"AUTH_GATEWAY_" json:"gateway"`
	Session  Session  `envPrefix:"SESSION_" json:"session"`
	Routes   Routes   `envPrefix:"ROUTES_" json:"routes"`
	Database Database `envPrefix:"DATABASE_" json:"database"`
	CSRF     CSRF     `envPrefix:"CSRF_" json:"csrf"`
	Features Features `envPrefix:"FEATURES_" json:"features"`
}

type HTTP struct {
	Addr string `env:"ADDR" envDefault:":8572" json:"addr"`
}

type Gateway struct {
	URL              string        `env:"URL" envDefault:"http://localhost:9999" json:"url"`
	APIKey           string        `env:"API_KEY" json:"-"`
	EmailRedirectURL string        `env:"EMAIL_REDIRECT_URL" json:"email_redirect_url"`
	Timeout          time.Duration `env:"TIMEOUT" envDefault:"10s" json:"timeout"`
}

type Session struct {
	CookieName string `env:"COOKIE_NAME" envDefault:"arena_session" json:"cookie_name"`
	Secure     bool   `env:"SECURE" envDefault:"false" json:"secure"`
}

type Routes struct {
	Home      string `env:"HOME" envDefault:"/" json:"home"`
	Login     string `env:"LOGIN" envDefault:"/login" json:"login"`
	Signup    string `env:"SIGNUP" envDefault:"/signup" json:"signup"`
	Resend    string `env:"RESEND" envDefault:"/resend" json:"resend"`
	Logout    string `env:"LOGOUT" envDefault:"/logout" json:"logout"`
	Dashboard string `env:"DASHBOARD" envDefault:"/dashboard" json:"dashboard"`
}

type Database struct {
	DSN string `env:"DSN" envDefault:"file:landing.db?cache=shared" json:"dsn"`
}

type CSRF struct {
	SecureKey  string        `env:"SECURE_KEY" json:"-"`
	Expiration time.Duration `env:"EXPIRATION" envDefault:"2h" json:"expiration"`
}

type Features struct {
	Signup bool `env:"SIGNUP" envDefault:"true" json:"signup"`
}

// Load parses the environment into a Config and validates it
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate will run validation rules
func (c *Config) Validate() error {
	err := validation.Errors{
		"http.addr":                  validation.Validate(c.HTTP.Addr, validation.Required),
		"gateway.url":                validation.Validate(c.Gateway.URL, validation.Required, is.URL),
		"gateway.email_redirect_url": validation.Validate(c.Gateway.EmailRedirectURL, is.URL),
		"database.dsn":               validation.Validate(c.Database.DSN, validation.Required),
		"csrf.secure_key":            validation.Validate(c.CSRF.SecureKey, validation.Length(32, 0)),
		"routes.login":               validation.Validate(c.Routes.Login, validation.Required),
		"routes.dashboard":           validation.Validate(c.Routes.Dashboard, validation.Required),
	}.Filter()

	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid config").
			WithTextCode("CONFIG_INVALID").
			WithMetadata(map[string]any{"fields": landing.FormatValidationErrorToMap(err)})
	}

	return nil
}

// GetGateway returns the GoTrue client settings
func (c *Config) GetGateway() gotrue.Config {
	return gotrue.Config{
		BaseURL:          c.Gateway.URL,
		APIKey:           c.Gateway.APIKey,
		EmailRedirectURL: c.Gateway.EmailRedirectURL,
		HTTPClient:       &http.Client{Timeout: c.Gateway.Timeout},
	}
}

// GetRoutes returns the controller route paths
func (c *Config) GetRoutes() landing.ControllerRoutes {
	return landing.ControllerRoutes{
		Home:      c.Routes.Home,
		Login:     c.Routes.Login,
		Signup:    c.Routes.Signup,
		Resend:    c.Routes.Resend,
		Logout:    c.Routes.Logout,
		Dashboard: c.Routes.Dashboard,
	}
}

// GetFeatures returns the feature gate overrides
func (c *Config) GetFeatures() landing.StaticFeatureGate {
	return landing.StaticFeatureGate{
		gate.FeatureUsersSignup: c.Features.Signup,
	}
}

func (c *Config) GetCSRFKey() []byte {
	if c.CSRF.SecureKey == "" {
		return nil
	}
	return []byte(c.CSRF.SecureKey)
}
