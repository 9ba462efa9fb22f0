package models

import "time"

// User is the account record kept for the logged-in user. Optional fields
// are pointers so that "absent" survives a round trip through storage.
type User struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	FullName         *string    `json:"fullName,omitempty"`
	Phone            *string    `json:"phone,omitempty"`
	IsOnboarded      bool       `json:"isOnboarded"`
	Subscribed       bool       `json:"subscribed"`
	SubscriptionTier *Tier      `json:"subscriptionTier,omitempty"`
	SubscriptionEnd  *time.Time `json:"subscriptionEnd,omitempty"`
	CompanyName      *string    `json:"companyName,omitempty"`
	PanNumber        *string    `json:"panNumber,omitempty"`
	PhoneVerified    *bool      `json:"phoneVerified,omitempty"`
	EmailUnverified  *bool      `json:"emailUnverified,omitempty"`
}

// Clone returns a deep copy of u; nil stays nil.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.FullName = clonePtr(u.FullName)
	c.Phone = clonePtr(u.Phone)
	c.SubscriptionTier = clonePtr(u.SubscriptionTier)
	c.SubscriptionEnd = clonePtr(u.SubscriptionEnd)
	c.CompanyName = clonePtr(u.CompanyName)
	c.PanNumber = clonePtr(u.PanNumber)
	c.PhoneVerified = clonePtr(u.PhoneVerified)
	c.EmailUnverified = clonePtr(u.EmailUnverified)
	return &c
}

// IsEmailUnverified treats an absent flag as verified.
func (u *User) IsEmailUnverified() bool {
	return u != nil && u.EmailUnverified != nil && *u.EmailUnverified
}

// Subscribe marks u as subscribed to tier until end.
func (u *User) Subscribe(tier Tier, end time.Time) {
	u.Subscribed = true
	u.SubscriptionTier = &tier
	u.SubscriptionEnd = &end
}

// SubscriptionActive reports whether u is subscribed and the end time has
// not passed at now. It is a read-only check; nothing flips Subscribed
// back to false when the end passes.
func (u *User) SubscriptionActive(now time.Time) bool {
	if u == nil || !u.Subscribed || u.SubscriptionEnd == nil {
		return false
	}
	return now.Before(*u.SubscriptionEnd)
}

// Ptr returns a pointer to v. Handy for optional User fields.
func Ptr[T any](v T) *T {
	return &v
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
