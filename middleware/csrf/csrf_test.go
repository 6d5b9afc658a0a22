package csrf

import (
	"testing"
	"time"

	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestSecureKey() []byte {
	return []byte("0123456789abcdef0123456789abcdef")
}

func newMockContextWithBase(method, ip string) *router.MockContext {
	ctx := router.NewMockContext()
	ctx.On("Method").Return(method)
	ctx.On("IP").Return(ip)
	ctx.On("Locals", DefaultContextKey, mock.Anything).Return(nil)
	ctx.On("Locals", DefaultContextKey+"_field", mock.Anything).Return(nil)
	ctx.On("Locals", DefaultContextKey+"_header", mock.Anything).Return(nil)
	return ctx
}

func issueToken(t *testing.T, handler router.HandlerFunc, ip string) string {
	t.Helper()
	getCtx := newMockContextWithBase("GET", ip)
	require.NoError(t, handler(getCtx))
	require.True(t, getCtx.NextCalled)

	token, ok := getCtx.LocalsMock[DefaultContextKey].(string)
	require.True(t, ok)
	require.NotEmpty(t, token)
	return token
}

func TestStatelessTokenRoundTrip(t *testing.T) {
	handler := New(Config{
		SecureKey: newTestSecureKey(),
		ErrorHandler: func(ctx router.Context, err error) error {
			return err
		},
	})(func(ctx router.Context) error { return nil })

	token := issueToken(t, handler, "127.0.0.1")

	postCtx := newMockContextWithBase("POST", "127.0.0.1")
	postCtx.On("FormValue", DefaultFormFieldName).Return(token)

	require.NoError(t, handler(postCtx))
	require.True(t, postCtx.NextCalled)
}

func TestStatelessTokenFromHeader(t *testing.T) {
	handler := New(Config{
		SecureKey: newTestSecureKey(),
		ErrorHandler: func(ctx router.Context, err error) error {
			return err
		},
	})(func(ctx router.Context) error { return nil })

	token := issueToken(t, handler, "127.0.0.1")

	postCtx := newMockContextWithBase("POST", "127.0.0.1")
	postCtx.On("FormValue", DefaultFormFieldName).Return("")
	postCtx.HeadersM[DefaultHeaderName] = token

	require.NoError(t, handler(postCtx))
	require.True(t, postCtx.NextCalled)
}

func TestStatelessTokenRejectsTampering(t *testing.T) {
	var captured error
	handler := New(Config{
		SecureKey: newTestSecureKey(),
		ErrorHandler: func(ctx router.Context, err error) error {
			captured = err
			return err
		},
	})(func(ctx router.Context) error { return nil })

	issueToken(t, handler, "127.0.0.1")

	postCtx := newMockContextWithBase("POST", "127.0.0.1")
	postCtx.On("FormValue", DefaultFormFieldName).Return("tampered")

	require.Error(t, handler(postCtx))
	require.ErrorIs(t, captured, ErrTokenMismatch)
}

func TestStatelessTokenBoundToClient(t *testing.T) {
	handler := New(Config{
		SecureKey: newTestSecureKey(),
		ErrorHandler: func(ctx router.Context, err error) error {
			return err
		},
	})(func(ctx router.Context) error { return nil })

	token := issueToken(t, handler, "10.0.0.1")

	postCtx := newMockContextWithBase("POST", "10.0.0.2")
	postCtx.On("FormValue", DefaultFormFieldName).Return(token)

	require.ErrorIs(t, handler(postCtx), ErrTokenMismatch)
}

func TestStatelessTokenSignedWithOtherKey(t *testing.T) {
	issuer := New(Config{SecureKey: newTestSecureKey()})(func(ctx router.Context) error { return nil })
	token := issueToken(t, issuer, "127.0.0.1")

	verifier := New(Config{
		SecureKey: []byte("fedcba9876543210fedcba9876543210"),
		ErrorHandler: func(ctx router.Context, err error) error {
			return err
		},
	})(func(ctx router.Context) error { return nil })

	postCtx := newMockContextWithBase("POST", "127.0.0.1")
	postCtx.On("FormValue", DefaultFormFieldName).Return(token)

	require.ErrorIs(t, verifier(postCtx), ErrTokenMismatch)
}

func TestStatelessTokenExpiration(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	cfg := Config{
		SecureKey:  newTestSecureKey(),
		Expiration: time.Minute,
		ErrorHandler: func(ctx router.Context, err error) error {
			return err
		},
		now: func() time.Time { return now },
	}

	handler := New(cfg)(func(ctx router.Context) error { return nil })
	token := issueToken(t, handler, "127.0.0.1")

	now = now.Add(2 * time.Minute)

	postCtx := newMockContextWithBase("POST", "127.0.0.1")
	postCtx.On("FormValue", DefaultFormFieldName).Return(token)

	require.ErrorIs(t, handler(postCtx), ErrTokenExpired)
}

func TestShortSecureKeyPanics(t *testing.T) {
	require.Panics(t, func() {
		New(Config{SecureKey: []byte("short")})
	})
}

func TestTemplateHelpersUseLocals(t *testing.T) {
	ctx := router.NewMockContext()
	ctx.LocalsMock[DefaultContextKey] = "abc"
	ctx.LocalsMock[DefaultContextKey+"_field"] = "_csrf"

	helpers := TemplateHelpers(ctx)

	require.Equal(t, "abc", helpers["csrf_token"])
	require.Equal(t, `<input type="hidden" name="_csrf" value="abc">`, helpers["csrf_field"])
	require.Equal(t, DefaultHeaderName, helpers["csrf_header_name"])
}
