// Package domain provides definitions of all entities.
package domain

import (
	"errors"
	"time"
)

var (
	// ErrAccountNotFound indicates that the account is not found.
	ErrAccountNotFound = errors.New("account not found")
	// ErrEmailAlreadyExists indicates that an account with the given email already exists.
	ErrEmailAlreadyExists = errors.New("email already exists")
	// ErrUnknownRole indicates an account record with a role outside the known set.
	// It is a data integrity violation; the record must not be mutated.
	ErrUnknownRole = errors.New("unknown account role")
	// ErrAccountOwnerMismatch indicates that the caller does not own the account.
	ErrAccountOwnerMismatch = errors.New("account does not belong to the authenticated user")
)

// Role discriminates the two marketplace sides.
type Role string

// Supported account roles.
const (
	RoleEntrepreneur Role = "entrepreneur"
	RoleInvestor     Role = "investor"
)

// IsValidRole reports whether r is one of the supported roles.
func IsValidRole(r Role) bool {
	return r == RoleEntrepreneur || r == RoleInvestor
}

// Account holds identity, wallet balance and role specific profile data
// for one marketplace party.
//
// Balance is kept in minor currency units and is mutated only by the
// ledger; profile fields are mutated only through the profile authorizer.
type Account struct {
	ID             string    `json:"id"`
	Role           Role      `json:"role"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	AvatarURL      string    `json:"avatar_url"`
	Bio            string    `json:"bio"`
	Balance        int64     `json:"balance"`
	CreatedAt      time.Time `json:"created_at"`

	// Entrepreneur profile.
	StartupName   string `json:"startup_name,omitempty"`
	PitchSummary  string `json:"pitch_summary,omitempty"`
	FundingNeeded string `json:"funding_needed,omitempty"`
	Industry      string `json:"industry,omitempty"`
	Location      string `json:"location,omitempty"`
	FoundedYear   int32  `json:"founded_year,omitempty"`
	TeamSize      int32  `json:"team_size,omitempty"`

	// Investor profile.
	InvestmentInterests []string `json:"investment_interests,omitempty"`
	InvestmentStage     []string `json:"investment_stage,omitempty"`
	PortfolioCompanies  []string `json:"portfolio_companies,omitempty"`
	TotalInvestments    int32    `json:"total_investments,omitempty"`
	MinimumInvestment   int64    `json:"minimum_investment,omitempty"`
	MaximumInvestment   int64    `json:"maximum_investment,omitempty"`
}

// CreateAccountParams is the input data to create an account.
type CreateAccountParams struct {
	ID             string `json:"id"`
	Role           Role   `json:"role"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	HashedPassword string `json:"hashed_password"`
	AvatarURL      string `json:"avatar_url"`
}

// ProfileUpdates maps profile field names to proposed new values.
//
// Keys outside the role allow list are dropped silently by the profile
// authorizer.
type ProfileUpdates map[string]any
