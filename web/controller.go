package web

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-router/flash"
	"github.com/quizforge/go-session"
)

// ControllerRoutes holds the mount points for the session pages.
type ControllerRoutes struct {
	Login          string
	Logout         string
	Register       string
	ForgotPassword string
	ResetPassword  string
	VerifyEmail    string
	Profile        string
	Unauthorized   string
}

// ControllerViews holds the template names rendered by the controller.
type ControllerViews struct {
	Login          string
	Register       string
	ForgotPassword string
	ResetPassword  string
	VerifyEmail    string
	Profile        string
	Unauthorized   string
}

// Controller serves the authentication pages on top of a session Manager.
type Controller struct {
	Debug        bool
	Logger       session.Logger
	Manager      *session.Manager
	Gate         *Gatekeeper
	Routes       *ControllerRoutes
	Views        *ControllerViews
	ErrorHandler router.ErrorHandler
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller) *Controller

// WithManager sets the session Manager driving the controller.
func WithManager(manager *session.Manager) ControllerOption {
	return func(c *Controller) *Controller {
		c.Manager = manager
		return c
	}
}

// WithGatekeeper wires the gatekeeper whose capture cookie feeds the
// post-login redirect.
func WithGatekeeper(gate *Gatekeeper) ControllerOption {
	return func(c *Controller) *Controller {
		c.Gate = gate
		return c
	}
}

// WithControllerLogger overrides the default logger.
func WithControllerLogger(logger session.Logger) ControllerOption {
	return func(c *Controller) *Controller {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

// WithDebug toggles payload dumps on the console.
func WithDebug(debug bool) ControllerOption {
	return func(c *Controller) *Controller {
		c.Debug = debug
		return c
	}
}

// NewController builds a Controller with default routes and view names.
func NewController(opts ...ControllerOption) *Controller {
	c := &Controller{
		Logger:       session.DefaultLogger(),
		ErrorHandler: defaultErrHandler,
		Routes: &ControllerRoutes{
			Login:          session.DefaultLoginPath,
			Logout:         "/logout",
			Register:       "/register",
			ForgotPassword: "/forgot-password",
			ResetPassword:  "/reset-password",
			VerifyEmail:    "/verify-email",
			Profile:        "/profile",
			Unauthorized:   session.DefaultUnauthorizedPath,
		},
		Views: &ControllerViews{
			Login:          "login",
			Register:       "register",
			ForgotPassword: "forgot_password",
			ResetPassword:  "reset_password",
			VerifyEmail:    "verify_email",
			Profile:        "profile",
			Unauthorized:   "unauthorized",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Manager == nil {
		panic("Missing session Manager in web controller...")
	}

	return c
}

// RegisterSessionRoutes mounts the controller's public pages plus the
// gatekeeper-protected profile pages.
func RegisterSessionRoutes[T any](app router.Router[T], opts ...ControllerOption) {

	controller := NewController(opts...)

	app.Get(controller.Routes.Login, controller.LoginShow).
		SetName("sign-in.get")
	app.Post(controller.Routes.Login, controller.LoginPost).
		SetName("sign-in.post")

	app.Get(controller.Routes.Logout, controller.LogOut).
		SetName("sign-out.get")

	app.Get(controller.Routes.Register, controller.RegistrationShow).
		SetName("register.get")
	app.Post(controller.Routes.Register, controller.RegistrationCreate).
		SetName("register.post")

	app.Get(controller.Routes.ForgotPassword, controller.ForgotPasswordShow).
		SetName("pwd-forgot.get")
	app.Post(controller.Routes.ForgotPassword, controller.ForgotPasswordPost).
		SetName("pwd-forgot.post")

	app.Get(fmt.Sprintf("%s/:token", controller.Routes.ResetPassword), controller.ResetPasswordForm).
		SetName("pwd-reset.get")
	app.Post(fmt.Sprintf("%s/:token", controller.Routes.ResetPassword), controller.ResetPasswordExecute).
		SetName("pwd-reset.post")

	app.Get(fmt.Sprintf("%s/:token", controller.Routes.VerifyEmail), controller.VerifyEmail).
		SetName("verify-email.get")

	app.Get(controller.Routes.Unauthorized, controller.Unauthorized).
		SetName("unauthorized.get")

	if controller.Gate != nil {
		app.Get(controller.Routes.Profile,
			controller.Gate.Protected()(controller.ProfileShow)).
			SetName("profile.get")
		app.Post(controller.Routes.Profile,
			controller.Gate.Protected()(controller.ProfileUpdate)).
			SetName("profile.post")
		app.Post(fmt.Sprintf("%s/password", controller.Routes.Profile),
			controller.Gate.Protected()(controller.PasswordChange)).
			SetName("profile-password.post")
	}
}

func (a *Controller) LoginShow(ctx router.Context) error {
	return ctx.Render(a.Views.Login, router.ViewContext{
		"errors": nil,
		"record": nil,
	})
}

func (a *Controller) LoginPost(ctx router.Context) error {
	payload := new(session.LoginPayload)
	errors := map[string]string{}

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("login parse payload: %v", err)
		return a.ErrorHandler(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return ctx.Render(a.Views.Login, router.ViewContext{
			"record":     payload,
			"validation": session.FormatValidationErrorToMap(err),
		})
	}

	if a.Debug {
		fmt.Println("======= SESSION LOGIN ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("============================")
	}

	if _, err := a.Manager.Login(ctx.Context(), payload.Email, payload.Password); err != nil {
		errors["authentication"] = session.ErrorDetail(err, session.FallbackLogin)
		return ctx.Render(a.Views.Login, router.ViewContext{
			"errors": errors,
			"record": payload,
		})
	}

	redirect := "/"
	if a.Gate != nil {
		redirect = a.Gate.GetRedirect(ctx, "/")
	}

	return ctx.Redirect(redirect, router.StatusSeeOther)
}

func (a *Controller) LogOut(ctx router.Context) error {
	a.Manager.Logout(ctx.Context())
	return ctx.Redirect("/", router.StatusTemporaryRedirect)
}

func (a *Controller) RegistrationShow(ctx router.Context) error {
	return ctx.Render(a.Views.Register, router.ViewContext{
		"errors": map[string]string{},
		"record": session.RegisterPayload{},
	})
}

func (a *Controller) RegistrationCreate(ctx router.Context) error {
	payload := new(session.RegisterPayload)

	if err := ctx.Bind(payload); err != nil {
		errors := map[string]string{}
		errors["form"] = "Failed to parse form"
		a.Logger.Error("register parse payload: %v", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error parsing body",
		}).Status(fiber.StatusBadRequest).Render(a.Views.Register, router.ViewContext{
			"errors": errors,
			"record": payload,
		})
	}

	if err := payload.Validate(); err != nil {
		errors := session.FormatValidationErrorToMap(err)
		a.Logger.Error("register validate payload: %v", err)

		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error validating payload",
		}).Render(a.Views.Register, router.ViewContext{
			"record":     payload,
			"validation": errors,
		})
	}

	if _, err := a.Manager.Register(ctx.Context(), *payload); err != nil {
		a.Logger.Error("register error: %v", err)

		return flash.WithError(ctx, router.ViewContext{
			"error_message":  session.ErrorDetail(err, session.FallbackRegister),
			"system_message": "Registration failed",
		}).Render(a.Views.Register, router.ViewContext{
			"record": payload,
			"errors": []string{session.ErrorDetail(err, session.FallbackRegister)},
		})
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "Account created, check your email to verify it",
	}).Redirect(a.Routes.Login, fiber.StatusSeeOther)
}

func (a *Controller) ForgotPasswordShow(ctx router.Context) error {
	return ctx.Render(a.Views.ForgotPassword, router.ViewContext{
		"errors": nil,
		"record": nil,
	})
}

func (a *Controller) ForgotPasswordPost(ctx router.Context) error {
	payload := new(session.RequestPasswordResetPayload)

	if err := ctx.Bind(payload); err != nil {
		errors := map[string]string{}
		errors["form"] = "Failed to parse form"
		a.Logger.Error("password reset parse payload: %v", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error parsing body",
		}).Status(fiber.StatusBadRequest).Render(a.Views.ForgotPassword, router.ViewContext{
			"errors": errors,
			"record": payload,
		})
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("password reset validate payload: %v", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error validating payload",
		}).Render(a.Views.ForgotPassword, router.ViewContext{
			"record":     payload,
			"validation": session.FormatValidationErrorToMap(err),
		})
	}

	if err := a.Manager.RequestPasswordReset(ctx.Context(), payload.Email); err != nil {
		a.Logger.Error("password reset request error: %v", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  session.ErrorDetail(err, session.FallbackRequestPasswordReset),
			"system_message": "Password reset request failed",
		}).Render(a.Views.ForgotPassword, router.ViewContext{
			"record": payload,
		})
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "If the address exists, a reset link is on its way",
	}).Redirect(a.Routes.Login, fiber.StatusSeeOther)
}

func (a *Controller) ResetPasswordForm(ctx router.Context) error {
	token := ctx.Param("token", "")
	return ctx.Render(a.Views.ResetPassword, router.ViewContext{
		"errors": nil,
		"token":  token,
	})
}

func (a *Controller) ResetPasswordExecute(ctx router.Context) error {
	token := ctx.Param("token")

	errors := map[string]string{}
	payload := new(session.ResetPasswordPayload)

	if err := ctx.Bind(payload); err != nil {
		errors["form"] = "Failed to parse form"
		a.Logger.Error("password reset parse payload: %v", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error parsing body",
		}).Status(fiber.StatusBadRequest).Render(a.Views.ResetPassword, router.ViewContext{
			"errors": errors,
			"token":  token,
		})
	}

	payload.Token = token

	if err := payload.Validate(); err != nil {
		a.Logger.Error("password reset validate payload: %v", err)
		errors = session.FormatValidationErrorToMap(err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error validating payload",
		}).Render(a.Views.ResetPassword, router.ViewContext{
			"record":     payload,
			"validation": errors,
			"token":      token,
		})
	}

	if err := a.Manager.ResetPassword(ctx.Context(), *payload); err != nil {
		errors["reset"] = session.ErrorDetail(err, session.FallbackResetPassword)
		return ctx.Render(a.Views.ResetPassword, router.ViewContext{
			"errors": errors,
			"token":  token,
		})
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "Password updated, you can sign in now",
	}).Redirect(a.Routes.Login, fiber.StatusSeeOther)
}

func (a *Controller) VerifyEmail(ctx router.Context) error {
	token := ctx.Param("token", "")

	if err := a.Manager.VerifyEmail(ctx.Context(), token); err != nil {
		return ctx.Render(a.Views.VerifyEmail, router.ViewContext{
			"verified": false,
			"error":    session.ErrorDetail(err, session.FallbackVerifyEmail),
		})
	}

	return ctx.Render(a.Views.VerifyEmail, router.ViewContext{
		"verified": true,
	})
}

func (a *Controller) ProfileShow(ctx router.Context) error {
	return ctx.Render(a.Views.Profile, router.ViewContext{
		"errors": nil,
		"record": a.Manager.CurrentUser(),
	})
}

func (a *Controller) ProfileUpdate(ctx router.Context) error {
	payload := new(session.ProfilePayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("profile parse payload: %v", err)
		return a.ErrorHandler(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return ctx.Render(a.Views.Profile, router.ViewContext{
			"record":     a.Manager.CurrentUser(),
			"validation": session.FormatValidationErrorToMap(err),
		})
	}

	if a.Debug {
		fmt.Println("======= PROFILE UPDATE ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("=============================")
	}

	user, err := a.Manager.UpdateProfile(ctx.Context(), *payload)
	if err != nil {
		errors := map[string]string{}
		errors["profile"] = session.ErrorDetail(err, session.FallbackUpdateProfile)
		return ctx.Render(a.Views.Profile, router.ViewContext{
			"errors": errors,
			"record": a.Manager.CurrentUser(),
		})
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "Profile updated",
	}).Render(a.Views.Profile, router.ViewContext{
		"record": user,
	})
}

func (a *Controller) PasswordChange(ctx router.Context) error {
	payload := new(session.ChangePasswordPayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("change password parse payload: %v", err)
		return a.ErrorHandler(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return ctx.Render(a.Views.Profile, router.ViewContext{
			"record":     a.Manager.CurrentUser(),
			"validation": session.FormatValidationErrorToMap(err),
		})
	}

	if err := a.Manager.ChangePassword(ctx.Context(), *payload); err != nil {
		errors := map[string]string{}
		errors["password"] = session.ErrorDetail(err, session.FallbackChangePassword)
		return ctx.Render(a.Views.Profile, router.ViewContext{
			"errors": errors,
			"record": a.Manager.CurrentUser(),
		})
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "Password changed",
	}).Render(a.Views.Profile, router.ViewContext{
		"record": a.Manager.CurrentUser(),
	})
}

func (a *Controller) Unauthorized(ctx router.Context) error {
	return ctx.Render(a.Views.Unauthorized, router.ViewContext{
		"record": a.Manager.CurrentUser(),
	})
}

func defaultErrHandler(c router.Context, err error) error {
	return c.Render("errors/500", router.ViewContext{
		"message": err.Error(),
	})
}
