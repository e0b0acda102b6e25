package user

import (
	"errors"
	"time"
)

type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleCarpenter Role = "CARPENTER"
	RoleClient    Role = "CLIENT"
)

type AccountType string

const (
	AccountCarpenter AccountType = "CARPENTER"
	AccountClient    AccountType = "CLIENT"
	AccountAdmin     AccountType = "ADMIN"
)

type SubscriptionPlan string

const (
	PlanCarpenterProfessional SubscriptionPlan = "CARPENTER_PROFESSIONAL"
	PlanClientFree            SubscriptionPlan = "CLIENT_FREE"
	PlanClientPremium         SubscriptionPlan = "CLIENT_PREMIUM"
)

type SubscriptionStatus string

const (
	SubscriptionTrialing  SubscriptionStatus = "TRIALING"
	SubscriptionActive    SubscriptionStatus = "ACTIVE"
	SubscriptionCancelled SubscriptionStatus = "CANCELLED"
)

var ErrNotFound = errors.New("user not found")

type User struct {
	ID                 int64              `json:"id"`
	Email              string             `json:"email"`
	PasswordHash       string             `json:"-"` // never expose hash in JSON
	Roles              []Role             `json:"roles"`
	AccountType        AccountType        `json:"accountType"`
	SubscriptionPlan   SubscriptionPlan   `json:"subscriptionPlan"`
	SubscriptionStatus SubscriptionStatus `json:"subscriptionStatus"`
	TrialStartedAt     *time.Time         `json:"trialStartedAt,omitempty"`
	TrialEndsAt        *time.Time         `json:"trialEndsAt,omitempty"`
	CarpenterID        *int64             `json:"carpenterId,omitempty"`
	ClientID           *int64             `json:"clientId,omitempty"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`
}

// Authenticated is the sanitized identity resolved from a session. This is
// what handlers and the dashboard see; it never carries credentials.
type Authenticated struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	Roles       []Role `json:"roles"`
	CarpenterID *int64 `json:"carpenterId"`
	ClientID    *int64 `json:"clientId"`
}

func (u User) Authenticated() Authenticated {
	return Authenticated{
		ID:          u.ID,
		Email:       u.Email,
		Roles:       u.Roles,
		CarpenterID: u.CarpenterID,
		ClientID:    u.ClientID,
	}
}

func (a Authenticated) HasRole(role Role) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}

	return false
}
