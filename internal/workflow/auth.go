package workflow

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ljosc/discuss/internal/apiclient"
	"github.com/ljosc/discuss/internal/domain"
	internal_errors "github.com/ljosc/discuss/internal/errors"
	"github.com/ljosc/discuss/internal/logger"
	"github.com/ljosc/discuss/internal/metrics"
)

var (
	passwordRegex = regexp.MustCompile(`^[A-Za-z0-9!@#$%^&*-_,.]{8,}$`)
	emailRegex    = regexp.MustCompile("^[A-Za-z0-9!#$%&'*+-/=?^_`{|}~]+@[A-Za-z.]{2,}\\.[A-Za-z]{2,}$")
)

type Mode string

const (
	ModeLogin  Mode = "login"
	ModeSignup Mode = "signup"
)

func ParseMode(s string) Mode {
	if Mode(s) == ModeSignup {
		return ModeSignup
	}
	return ModeLogin
}

// Form is the login view's input. Switching mode starts from an empty Form.
type Form struct {
	Mode            Mode
	Email           string `validate:"required,forum_email"`
	Password        string `validate:"required"`
	ConfirmPassword string
}

type signupForm struct {
	Email           string `validate:"required,forum_email"`
	Password        string `validate:"required,forum_password"`
	ConfirmPassword string `validate:"required,eqfield=Password"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("forum_email", func(fl validator.FieldLevel) bool {
		return emailRegex.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("forum_password", func(fl validator.FieldLevel) bool {
		return passwordRegex.MatchString(fl.Field().String())
	})
	return v
}

// Validate blocks submission of malformed input before any request.
func (f Form) Validate() error {
	var err error
	if f.Mode == ModeSignup {
		err = validate.Struct(signupForm{Email: f.Email, Password: f.Password, ConfirmPassword: f.ConfirmPassword})
	} else {
		err = validate.Struct(f)
	}
	if err != nil {
		return internal_errors.Validation(string(f.Mode), err.Error())
	}
	return nil
}

func (f Form) CanSubmit() bool {
	return f.Validate() == nil
}

// AuthRemote is the unauthenticated part of the service.
type AuthRemote interface {
	Login(ctx context.Context, email, password string) (apiclient.LoginResponse, error)
	Signup(ctx context.Context, username, email, password string) error
}

// Sessions is the write side of the session: entering it on login and
// re-deriving it after credentials are cleared.
type Sessions interface {
	Login(creds domain.Credentials, profile *domain.Profile) error
	Check()
}

// CredentialClearer empties the credential store.
type CredentialClearer interface {
	ClearAll() error
}

type Auth struct {
	remote   AuthRemote
	sessions Sessions
	store    CredentialClearer
}

func NewAuth(remote AuthRemote, sessions Sessions, store CredentialClearer) *Auth {
	return &Auth{remote: remote, sessions: sessions, store: store}
}

// Submit runs login or signup depending on the form mode and returns
// the message to show.
func (a *Auth) Submit(ctx context.Context, f Form) (Message, error) {
	if err := f.Validate(); err != nil {
		return Message{}, err
	}
	if f.Mode == ModeSignup {
		return a.signup(ctx, f)
	}
	return a.login(ctx, f)
}

func (a *Auth) login(ctx context.Context, f Form) (Message, error) {
	resp, err := a.remote.Login(ctx, f.Email, f.Password)
	if err == nil {
		user := resp.User
		err = a.sessions.Login(resp.Credentials, &user)
	}
	metrics.WorkflowResult("login", err)
	if err != nil {
		logger.Log.Error("login failed", "component", "workflow", "error", err)
		return Message{Kind: Failure, Text: "Login failed!"}, fmt.Errorf("login: %w", err)
	}
	return Message{Kind: Success, Text: "Login successful"}, nil
}

func (a *Auth) signup(ctx context.Context, f Form) (Message, error) {
	username, _, _ := strings.Cut(f.Email, "@")
	err := a.remote.Signup(ctx, username, f.Email, f.Password)
	metrics.WorkflowResult("signup", err)
	if err != nil {
		logger.Log.Error("signup failed", "component", "workflow", "error", err)
		text := "Account already registered!"
		if internal_errors.Is(err, internal_errors.NetworkFailure) {
			text = "Registration failed: service unavailable"
		}
		return Message{Kind: Failure, Text: text}, fmt.Errorf("signup: %w", err)
	}
	return Message{Kind: Success, Text: "Registration successful"}, nil
}

// Logout clears every stored credential and re-derives the session at
// once, so the next navigation already sees LoggedOut.
func (a *Auth) Logout(ctx context.Context) error {
	err := a.store.ClearAll()
	if err != nil {
		logger.Log.Error("clearing credentials", "component", "workflow", "error", err)
	}
	a.sessions.Check()
	logger.Log.Info("logged out", "component", "workflow")
	return err
}
