package csrf

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// ErrTokenMismatch is returned for tokens that fail signature or client checks
var ErrTokenMismatch = goerrors.New("CSRF token mismatch", goerrors.CategoryAuthz).
	WithTextCode("CSRF_TOKEN_MISMATCH").
	WithCode(goerrors.CodeForbidden)

var ErrTokenMissing = goerrors.New("CSRF token missing", goerrors.CategoryBadInput).
	WithTextCode("CSRF_TOKEN_MISSING").
	WithCode(goerrors.CodeBadRequest)

var ErrTokenExpired = goerrors.New("CSRF token expired", goerrors.CategoryAuthz).
	WithTextCode("CSRF_TOKEN_EXPIRED").
	WithCode(goerrors.CodeForbidden)

// DefaultNonceLength is the number of random bytes in each token
const DefaultNonceLength = 16

// DefaultContextKey is the locals key holding the request token
const DefaultContextKey = "csrf_token"

// DefaultFormFieldName is the form field carrying the token
const DefaultFormFieldName = "_token"

// DefaultHeaderName is the header carrying the token for scripted requests
const DefaultHeaderName = "X-CSRF-Token"

// Config defines the configuration for CSRF middleware
type Config struct {
	// Skip defines a function to skip middleware
	Skip func(router.Context) bool

	NonceLength   int
	ContextKey    string
	FormFieldName string
	HeaderName    string

	// SecureKey signs tokens, at least 32 bytes. A random key is generated
	// when empty, which invalidates tokens on restart.
	SecureKey []byte

	// Expiration defines how long a token is accepted
	Expiration time.Duration

	SafeMethods  []string
	ErrorHandler router.ErrorHandler

	now func() time.Time
}

// New creates a stateless CSRF middleware. Every request gets a fresh signed
// token in locals; unsafe methods must send back a valid one.
func New(config ...Config) router.MiddlewareFunc {
	cfg := configDefault(config...)

	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return ctx.Next()
			}

			token, err := cfg.generate(ctx)
			if err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			ctx.Locals(cfg.ContextKey, token)
			ctx.Locals(cfg.ContextKey+"_field", cfg.FormFieldName)
			ctx.Locals(cfg.ContextKey+"_header", cfg.HeaderName)

			method := strings.ToUpper(ctx.Method())
			if slices.Contains(cfg.SafeMethods, method) {
				return ctx.Next()
			}

			if err := cfg.validate(ctx, cfg.extract(ctx)); err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			return ctx.Next()
		}
	}
}

func (cfg Config) generate(ctx router.Context) (string, error) {
	nonce := make([]byte, cfg.NonceLength)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "unable to generate CSRF nonce")
	}

	payload := fmt.Sprintf("%d:%s:%s", cfg.now().UTC().Unix(), hex.EncodeToString(nonce), clientKey(ctx))
	token := payload + ":" + hex.EncodeToString(cfg.sign(payload))
	return base64.RawURLEncoding.EncodeToString([]byte(token)), nil
}

func (cfg Config) validate(ctx router.Context, token string) error {
	if token == "" {
		return ErrTokenMissing
	}

	decoded, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return ErrTokenMismatch
	}

	parts := strings.Split(string(decoded), ":")
	if len(parts) != 4 {
		return ErrTokenMismatch
	}

	timestamp, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return ErrTokenMismatch
	}

	signature, err := hex.DecodeString(parts[3])
	if err != nil {
		return ErrTokenMismatch
	}

	if !hmac.Equal(signature, cfg.sign(strings.Join(parts[:3], ":"))) {
		return ErrTokenMismatch
	}

	if subtle.ConstantTimeCompare([]byte(parts[2]), []byte(clientKey(ctx))) != 1 {
		return ErrTokenMismatch
	}

	if cfg.now().UTC().After(time.Unix(timestamp, 0).Add(cfg.Expiration)) {
		return ErrTokenExpired
	}

	return nil
}

func (cfg Config) sign(payload string) []byte {
	mac := hmac.New(sha256.New, cfg.SecureKey)
	mac.Write([]byte(payload))
	return mac.Sum(nil)
}

func (cfg Config) extract(ctx router.Context) string {
	if token := ctx.FormValue(cfg.FormFieldName); token != "" {
		return token
	}
	return ctx.Header(cfg.HeaderName)
}

// clientKey binds a token to the client it was issued to
func clientKey(ctx router.Context) string {
	return "csrf_ip_" + ctx.IP()
}

func configDefault(config ...Config) Config {
	cfg := Config{}
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.NonceLength == 0 {
		cfg.NonceLength = DefaultNonceLength
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = DefaultContextKey
	}

	if cfg.FormFieldName == "" {
		cfg.FormFieldName = DefaultFormFieldName
	}

	if cfg.HeaderName == "" {
		cfg.HeaderName = DefaultHeaderName
	}

	if cfg.SafeMethods == nil {
		cfg.SafeMethods = []string{"GET", "HEAD", "OPTIONS", "TRACE"}
	}

	if cfg.Expiration == 0 {
		cfg.Expiration = 2 * time.Hour
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = defaultErrorHandler
	}

	if cfg.now == nil {
		cfg.now = time.Now
	}

	cfg.SecureKey = initializeSecureKey(cfg.SecureKey)

	return cfg
}

func defaultErrorHandler(ctx router.Context, err error) error {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.Code == goerrors.CodeBadRequest {
		return ctx.Status(router.StatusBadRequest).SendString(richErr.Message)
	}
	if goerrors.As(err, &richErr) && richErr.Category == goerrors.CategoryAuthz {
		return ctx.Status(router.StatusForbidden).SendString(richErr.Message)
	}
	return ctx.Status(router.StatusInternalServerError).SendString("CSRF validation error")
}

func initializeSecureKey(current []byte) []byte {
	if len(current) > 0 {
		if len(current) < 32 {
			panic(fmt.Errorf("csrf: secure key must be at least 32 bytes, got %d", len(current)))
		}
		return current
	}
	key := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		panic(fmt.Errorf("csrf: unable to initialize secure key: %w", err))
	}
	return key
}

// TemplateHelpers returns the view values for the token stored in ctx
func TemplateHelpers(ctx router.Context) map[string]any {
	token, _ := ctx.Locals(DefaultContextKey).(string)

	fieldName := DefaultFormFieldName
	if val, ok := ctx.Locals(DefaultContextKey + "_field").(string); ok && val != "" {
		fieldName = val
	}

	headerName := DefaultHeaderName
	if val, ok := ctx.Locals(DefaultContextKey + "_header").(string); ok && val != "" {
		headerName = val
	}

	return map[string]any{
		"csrf_token":       token,
		"csrf_field":       `<input type="hidden" name="` + fieldName + `" value="` + token + `">`,
		"csrf_meta":        `<meta name="csrf-token" content="` + token + `">`,
		"csrf_header_name": headerName,
	}
}
