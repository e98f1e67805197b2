package web

import (
	"context"
	"testing"

	"github.com/goliatone/go-router"
	session "github.com/quizforge/go-session"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type backendFailure struct {
	status int
	detail string
}

func (e *backendFailure) Error() string   { return e.detail }
func (e *backendFailure) StatusCode() int { return e.status }
func (e *backendFailure) Detail() string  { return e.detail }

func newTestController(backend session.Backend) *Controller {
	manager := session.NewManager(backend, &memStore{})
	return NewController(WithManager(manager))
}

func TestLoginShowRendersForm(t *testing.T) {
	ctrl := newTestController(&stubBackend{})

	ctx := router.NewMockContext()
	ctx.On("Render", ctrl.Views.Login, mock.Anything).Return(nil)

	require.NoError(t, ctrl.LoginShow(ctx))
	ctx.AssertExpectations(t)
}

func TestLoginPostInvalidPayloadRendersValidation(t *testing.T) {
	ctrl := newTestController(&stubBackend{})

	ctx := router.NewMockContext()
	ctx.On("Bind", mock.Anything).Run(func(args mock.Arguments) {
		payload := args.Get(0).(*session.LoginPayload)
		payload.Email = "not-an-email"
		payload.Password = "hunter22"
	}).Return(nil)

	var rendered router.ViewContext
	ctx.On("Render", ctrl.Views.Login, mock.Anything).Run(func(args mock.Arguments) {
		rendered = args.Get(1).(router.ViewContext)
	}).Return(nil)

	require.NoError(t, ctrl.LoginPost(ctx))

	fields, ok := rendered["validation"].(map[string]string)
	require.True(t, ok)
	require.Contains(t, fields, "email")
	ctx.AssertExpectations(t)
}

func TestLoginPostSuccessRedirectsHome(t *testing.T) {
	ctrl := newTestController(&stubBackend{
		creds: &session.Credentials{AccessToken: "issued-token"},
		user:  &session.User{Email: "ada@example.com", Role: session.RoleUser},
	})

	ctx := router.NewMockContext()
	ctx.On("Bind", mock.Anything).Run(func(args mock.Arguments) {
		payload := args.Get(0).(*session.LoginPayload)
		payload.Email = "ada@example.com"
		payload.Password = "hunter22"
	}).Return(nil)
	ctx.On("Context").Return(context.Background())
	ctx.On("Redirect", "/", []int{router.StatusSeeOther}).Return(nil)

	require.NoError(t, ctrl.LoginPost(ctx))
	require.True(t, ctrl.Manager.Snapshot().Authenticated())
	ctx.AssertExpectations(t)
}

func TestLoginPostFailureRendersBackendDetail(t *testing.T) {
	ctrl := newTestController(&stubBackend{
		loginErr: &backendFailure{status: 401, detail: "Incorrect email or password"},
	})

	ctx := router.NewMockContext()
	ctx.On("Bind", mock.Anything).Run(func(args mock.Arguments) {
		payload := args.Get(0).(*session.LoginPayload)
		payload.Email = "ada@example.com"
		payload.Password = "wrong-password"
	}).Return(nil)
	ctx.On("Context").Return(context.Background())

	var rendered router.ViewContext
	ctx.On("Render", ctrl.Views.Login, mock.Anything).Run(func(args mock.Arguments) {
		rendered = args.Get(1).(router.ViewContext)
	}).Return(nil)

	require.NoError(t, ctrl.LoginPost(ctx))

	fields, ok := rendered["errors"].(map[string]string)
	require.True(t, ok)
	require.Equal(t, "Incorrect email or password", fields["authentication"])
	require.False(t, ctrl.Manager.Snapshot().Authenticated())
	ctx.AssertExpectations(t)
}

func TestVerifyEmailRendersOutcome(t *testing.T) {
	ctrl := newTestController(&stubBackend{})

	ctx := router.NewMockContext()
	ctx.ParamsM["token"] = "verify-token"
	ctx.On("Context").Return(context.Background())

	var rendered router.ViewContext
	ctx.On("Render", ctrl.Views.VerifyEmail, mock.Anything).Run(func(args mock.Arguments) {
		rendered = args.Get(1).(router.ViewContext)
	}).Return(nil)

	require.NoError(t, ctrl.VerifyEmail(ctx))
	require.Equal(t, true, rendered["verified"])
	ctx.AssertExpectations(t)
}

func TestVerifyEmailFailureSurfacesDetail(t *testing.T) {
	ctrl := newTestController(&stubBackend{
		verifyErr: &backendFailure{status: 422, detail: "Invalid or expired verification token"},
	})

	ctx := router.NewMockContext()
	ctx.ParamsM["token"] = "stale-token"
	ctx.On("Context").Return(context.Background())

	var rendered router.ViewContext
	ctx.On("Render", ctrl.Views.VerifyEmail, mock.Anything).Run(func(args mock.Arguments) {
		rendered = args.Get(1).(router.ViewContext)
	}).Return(nil)

	require.NoError(t, ctrl.VerifyEmail(ctx))
	require.Equal(t, false, rendered["verified"])
	require.Equal(t, "Invalid or expired verification token", rendered["error"])
	ctx.AssertExpectations(t)
}

func TestControllerRequiresManager(t *testing.T) {
	require.Panics(t, func() {
		NewController()
	})
}
