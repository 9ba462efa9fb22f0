package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/internal/client/auth"
	"github.com/dmitrijs2005/sessionkeeper/internal/client/authstate"
	"github.com/dmitrijs2005/sessionkeeper/internal/client/models"
	"github.com/dmitrijs2005/sessionkeeper/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// now is swapped in tests that print subscription state.
var now = time.Now

func (a *App) routes() routeTable {
	return routeTable{
		"login":     {handler: a.Login, help: "log in with email and password"},
		"signup":    {handler: a.SignUp, help: "create an account"},
		"reset":     {handler: a.ResetPassword, help: "request a password reset email"},
		"logout":    {handler: a.Logout, requiresAuth: true, help: "log out and forget the stored session"},
		"whoami":    {handler: a.WhoAmI, requiresAuth: true, help: "show the current user"},
		"onboard":   {handler: a.Onboard, requiresAuth: true, help: "complete onboarding"},
		"profile":   {handler: a.Profile, requiresAuth: true, help: "edit the business profile"},
		"trial":     {handler: a.Trial, requiresAuth: true, help: "start the free trial"},
		"subscribe": {handler: a.Subscribe, requiresAuth: true, usage: "subscribe <semiannual|annual>", help: "buy a subscription"},
		"verify":    {handler: a.Verify, requiresAuth: true, usage: "verify <token>", help: "confirm the email address"},
		"resend":    {handler: a.Resend, requiresAuth: true, help: "resend the verification email"},
		"refresh":   {handler: a.Refresh, requiresAuth: true, help: "refresh the access token"},
	}
}

func (a *App) say(args ...any) {
	fmt.Fprintln(a.out, args...)
}

// report prints the outcome of a state operation and turns a failed
// Result into an error for the REPL.
func (a *App) report(res authstate.Result, success string) error {
	if !res.OK() {
		return errors.New(res.Error)
	}
	a.say(success)
	return nil
}

// optional returns nil for blank input so the field is left unchanged.
func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func (a *App) credentials() (string, string, error) {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return "", "", err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return "", "", err
	}
	defer common.WipeByteArray(password)
	return email, string(password), nil
}

// Login prompts for credentials and logs in through the auth state.
func (a *App) Login(ctx context.Context, _ []string) error {
	if a.isLoggedIn() {
		a.say("Already logged in, use logout first")
		return nil
	}
	email, password, err := a.credentials()
	if err != nil {
		return err
	}
	return a.report(a.state.Login(ctx, email, password), "Login successful")
}

// SignUp prompts for credentials plus optional full name and phone.
func (a *App) SignUp(ctx context.Context, _ []string) error {
	if a.isLoggedIn() {
		a.say("Already logged in, use logout first")
		return nil
	}
	email, password, err := a.credentials()
	if err != nil {
		return err
	}
	fullName, err := getSimpleText(a.reader, "Full name (optional)", a.out)
	if err != nil {
		return err
	}
	phone, err := getSimpleText(a.reader, "Phone (optional)", a.out)
	if err != nil {
		return err
	}

	res := a.state.SignUp(ctx, auth.SignUpRequest{
		Email:    email,
		Password: password,
		FullName: optional(fullName),
		Phone:    optional(phone),
	})
	if err := a.report(res, "Account created"); err != nil {
		return err
	}
	if a.state.EmailUnverified() {
		a.say("Check your inbox, then run: verify <token>")
	}
	return nil
}

// Logout always ends the session; a storage failure is only reported.
func (a *App) Logout(ctx context.Context, _ []string) error {
	res := a.state.Logout(ctx)
	if !res.OK() {
		a.say("Logged out, but the stored session could not be removed:", res.Error)
		return nil
	}
	a.say("Logged out")
	return nil
}

func (a *App) WhoAmI(_ context.Context, _ []string) error {
	u := a.state.User()
	if u == nil {
		return authstate.ErrNotLoggedIn
	}

	a.say("ID:        ", u.ID)
	a.say("Email:     ", u.Email, verifiedLabel(u))
	if u.FullName != nil {
		a.say("Name:      ", *u.FullName)
	}
	if u.Phone != nil {
		a.say("Phone:     ", *u.Phone)
	}
	if u.CompanyName != nil {
		a.say("Company:   ", *u.CompanyName)
	}
	if u.PanNumber != nil {
		a.say("PAN:       ", *u.PanNumber)
	}
	a.say("Onboarded: ", u.IsOnboarded)
	a.say("Plan:      ", planLabel(u, now()))
	a.say("Mode:      ", a.getMode())
	return nil
}

func verifiedLabel(u *models.User) string {
	if u.IsEmailUnverified() {
		return "(unverified)"
	}
	return ""
}

func planLabel(u *models.User, at time.Time) string {
	if !u.Subscribed || u.SubscriptionTier == nil {
		return "none"
	}
	label := string(*u.SubscriptionTier)
	if u.SubscriptionEnd != nil {
		label += " until " + u.SubscriptionEnd.Format(time.DateOnly)
	}
	if !u.SubscriptionActive(at) {
		label += " (expired)"
	}
	return label
}

// Onboard collects the onboarding form.
func (a *App) Onboard(ctx context.Context, _ []string) error {
	var in authstate.OnboardingInput
	fields := []struct {
		prompt string
		dst    *string
	}{
		{"Full name", &in.FullName},
		{"Mobile number", &in.MobileNo},
		{"Vehicle number", &in.VehicleNumber},
	}
	for _, f := range fields {
		v, err := getSimpleText(a.reader, f.prompt, a.out)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	if !a.state.CompleteOnboarding(ctx, in) {
		return authstate.ErrNotLoggedIn
	}
	a.say("Onboarding complete")
	return nil
}

// Profile edits the business profile. Blank answers keep the current value.
func (a *App) Profile(ctx context.Context, _ []string) error {
	var in authstate.ProfileInput
	fields := []struct {
		prompt string
		dst    **string
	}{
		{"Full name (blank to keep)", &in.FullName},
		{"Company name (blank to keep)", &in.CompanyName},
		{"PAN number (blank to keep)", &in.PanNumber},
		{"Phone (blank to keep)", &in.Phone},
	}
	for _, f := range fields {
		v, err := getSimpleText(a.reader, f.prompt, a.out)
		if err != nil {
			return err
		}
		*f.dst = optional(v)
	}

	if !a.state.UpdateProfile(ctx, in) {
		return authstate.ErrNotLoggedIn
	}
	a.say("Profile updated")
	return nil
}

func (a *App) Trial(ctx context.Context, _ []string) error {
	return a.report(a.state.StartTrial(ctx), "Trial started")
}

func (a *App) Subscribe(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.say("Usage: subscribe <semiannual|annual>")
		return nil
	}
	tier, err := models.ParseTier(args[0])
	if err != nil {
		return err
	}
	return a.report(a.state.SetPaidSubscription(ctx, tier), "Subscribed to "+string(tier))
}

func (a *App) Verify(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.say("Usage: verify <token>")
		return nil
	}
	return a.report(a.state.VerifyEmail(ctx, args[0]), "Email verified")
}

func (a *App) Resend(ctx context.Context, _ []string) error {
	u := a.state.User()
	if u == nil {
		return authstate.ErrNotLoggedIn
	}
	return a.report(a.state.ResendVerificationEmail(ctx, u.Email), "Verification email sent to "+u.Email)
}

func (a *App) Refresh(ctx context.Context, _ []string) error {
	return a.report(a.state.RefreshToken(ctx), "Access token refreshed")
}

func (a *App) ResetPassword(ctx context.Context, _ []string) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	return a.report(a.state.ResetPassword(ctx, email), "If the account exists, a reset email is on its way")
}
