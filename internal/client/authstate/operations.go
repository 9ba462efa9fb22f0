package authstate

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/sessionkeeper/internal/client/auth"
	"github.com/dmitrijs2005/sessionkeeper/internal/client/models"
)

// OnboardingInput is collected by the onboarding step. VehicleNumber is
// accepted but the user record has no field for it.
type OnboardingInput struct {
	FullName      string
	MobileNo      string
	VehicleNumber string
}

// ProfileInput carries business-profile edits; nil fields stay unchanged.
type ProfileInput struct {
	FullName    *string
	CompanyName *string
	PanNumber   *string
	Phone       *string
}

func (s *State) Login(ctx context.Context, email, password string) Result {
	return s.run(ctx, "login", func() Result {
		sess, err := s.manager.Login(ctx, email, password)
		if err != nil {
			return failure(err)
		}
		s.setUser(sess.User)
		return Result{}
	})
}

func (s *State) SignUp(ctx context.Context, req auth.SignUpRequest) Result {
	return s.run(ctx, "signup", func() Result {
		sess, err := s.manager.SignUp(ctx, req)
		if err != nil {
			return failure(err)
		}
		s.setUser(sess.User)
		return Result{}
	})
}

// Logout always leaves the state logged out. A failure reported by the
// manager is passed back in the Result for information only.
func (s *State) Logout(ctx context.Context) Result {
	return s.run(ctx, "logout", func() (res Result) {
		defer s.setUser(nil)
		if err := s.manager.Logout(ctx); err != nil {
			s.logger.Warn(ctx, "logout incomplete", "error", err)
			return failure(err)
		}
		return Result{}
	})
}

// CompleteOnboarding merges the onboarding answers into the loaded user
// and marks it onboarded. It returns false when nobody is logged in.
func (s *State) CompleteOnboarding(ctx context.Context, in OnboardingInput) bool {
	if !s.IsAuthenticated() {
		return false
	}
	var ok bool
	s.run(ctx, "complete onboarding", func() Result {
		ok = s.mutate(ctx, "complete onboarding", func(u *models.User) {
			if in.FullName != "" {
				u.FullName = models.Ptr(in.FullName)
			}
			if in.MobileNo != "" {
				u.Phone = models.Ptr(in.MobileNo)
			}
			u.IsOnboarded = true
		})
		if in.VehicleNumber != "" {
			s.logger.Debug(ctx, "vehicle number not stored on user record")
		}
		return Result{}
	})
	return ok
}

// UpdateProfile merges the non-nil profile fields into the loaded user.
// The PAN is stored as given. It returns false when nobody is logged in.
func (s *State) UpdateProfile(ctx context.Context, in ProfileInput) bool {
	if !s.IsAuthenticated() {
		return false
	}
	var ok bool
	s.run(ctx, "update profile", func() Result {
		ok = s.mutate(ctx, "update profile", func(u *models.User) {
			if in.FullName != nil {
				u.FullName = models.Ptr(*in.FullName)
			}
			if in.CompanyName != nil {
				u.CompanyName = models.Ptr(*in.CompanyName)
			}
			if in.PanNumber != nil {
				u.PanNumber = models.Ptr(strings.TrimSpace(*in.PanNumber))
			}
			if in.Phone != nil {
				u.Phone = models.Ptr(*in.Phone)
			}
		})
		return Result{}
	})
	return ok
}

// StartTrial subscribes the loaded user to the trial tier for
// models.TrialLength from now.
func (s *State) StartTrial(ctx context.Context) Result {
	return s.subscribe(ctx, models.TierTrial)
}

// SetPaidSubscription subscribes the loaded user to a paid tier: six
// months for semiannual, one year for annual.
func (s *State) SetPaidSubscription(ctx context.Context, tier models.Tier) Result {
	if !tier.IsPaid() {
		return Result{Error: fmt.Sprintf("%q is not a paid subscription tier", string(tier))}
	}
	return s.subscribe(ctx, tier)
}

func (s *State) subscribe(ctx context.Context, tier models.Tier) Result {
	if !s.IsAuthenticated() {
		return failure(ErrNotLoggedIn)
	}
	return s.run(ctx, "subscribe", func() Result {
		end, err := tier.EndsAt(s.now())
		if err != nil {
			return failure(err)
		}
		if !s.mutate(ctx, "subscribe", func(u *models.User) { u.Subscribe(tier, end) }) {
			return failure(ErrNotLoggedIn)
		}
		s.logger.Info(ctx, "subscription set", "tier", string(tier), "ends_at", end)
		return Result{}
	})
}

// ResendVerificationEmail has no backend to talk to yet and always
// succeeds.
func (s *State) ResendVerificationEmail(ctx context.Context, email string) Result {
	return s.run(ctx, "resend verification", func() Result {
		s.logger.Info(ctx, "verification email requested")
		return Result{}
	})
}

// VerifyEmail confirms the email and clears the unverified flag.
func (s *State) VerifyEmail(ctx context.Context, token string) Result {
	return s.run(ctx, "verify email", func() Result {
		if err := s.manager.VerifyEmail(ctx, token); err != nil {
			return failure(err)
		}
		s.mu.Lock()
		if s.user != nil {
			u := s.user.Clone()
			u.EmailUnverified = models.Ptr(false)
			s.user = u
		}
		s.emailUnverified = false
		s.mu.Unlock()
		return Result{}
	})
}

func (s *State) RefreshToken(ctx context.Context) Result {
	return s.run(ctx, "refresh token", func() Result {
		if _, err := s.manager.RefreshToken(ctx); err != nil {
			return failure(err)
		}
		return Result{}
	})
}

func (s *State) ResetPassword(ctx context.Context, email string) Result {
	return s.run(ctx, "reset password", func() Result {
		if err := s.manager.ResetPassword(ctx, email); err != nil {
			return failure(err)
		}
		return Result{}
	})
}
