// Package accountrepo manages repository layer of accounts.
package accountrepo

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/business-nexus/nexus/internal/domain"
	"github.com/business-nexus/nexus/pkg/dbpkg"
	"github.com/business-nexus/nexus/pkg/errorspkg"
)

// RepoPGS facilitates account repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns account RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const accountColumns = `
	id, role, name, email, hashed_password, avatar_url, bio, balance,
	startup_name, pitch_summary, funding_needed, industry, location, founded_year, team_size,
	investment_interests, investment_stage, portfolio_companies,
	total_investments, minimum_investment, maximum_investment,
	created_at`

func scanAccount(row *sql.Row) (domain.Account, error) {
	var a domain.Account

	err := row.Scan(
		&a.ID,
		&a.Role,
		&a.Name,
		&a.Email,
		&a.HashedPassword,
		&a.AvatarURL,
		&a.Bio,
		&a.Balance,
		&a.StartupName,
		&a.PitchSummary,
		&a.FundingNeeded,
		&a.Industry,
		&a.Location,
		&a.FoundedYear,
		&a.TeamSize,
		pq.Array(&a.InvestmentInterests),
		pq.Array(&a.InvestmentStage),
		pq.Array(&a.PortfolioCompanies),
		&a.TotalInvestments,
		&a.MinimumInvestment,
		&a.MaximumInvestment,
		&a.CreatedAt,
	)

	return a, err
}

const createQuery = `
INSERT INTO
	accounts (id, role, name, email, hashed_password, avatar_url)
VALUES
	($1, $2, $3, $4, $5, $6)
RETURNING` + accountColumns

// Create creates the account with a zero balance and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery,
		arg.ID,
		arg.Role,
		arg.Name,
		arg.Email,
		arg.HashedPassword,
		arg.AvatarURL,
	)

	a, err := scanAccount(row)
	if err != nil {
		l.Error().Err(err).Msgf("Create(ctx, %+v)", arg)

		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Constraint {
			case "accounts_email_key":
				return a, domain.ErrEmailAlreadyExists
			case "accounts_role_check":
				return a, domain.ErrUnknownRole
			}
		}

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const getQuery = `
SELECT` + accountColumns + `
FROM accounts
WHERE id = $1
`

// Get returns the account with the given id.
func (r *RepoPGS) Get(ctx context.Context, id string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, getQuery, id)

	a, err := scanAccount(row)
	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return a, domain.ErrAccountNotFound
		}

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const getByEmailQuery = `
SELECT` + accountColumns + `
FROM accounts
WHERE email = $1
`

// GetByEmail returns the account with the given email.
func (r *RepoPGS) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, getByEmailQuery, email)

	a, err := scanAccount(row)
	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return a, domain.ErrAccountNotFound
		}

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const updateProfileQuery = `
UPDATE accounts
SET
	name = $2,
	avatar_url = $3,
	bio = $4,
	startup_name = $5,
	pitch_summary = $6,
	funding_needed = $7,
	industry = $8,
	location = $9,
	founded_year = $10,
	team_size = $11,
	investment_interests = $12,
	investment_stage = $13,
	portfolio_companies = $14,
	total_investments = $15,
	minimum_investment = $16,
	maximum_investment = $17
WHERE id = $1
RETURNING` + accountColumns

// UpdateProfile replaces the profile fields of the account and returns the
// updated record. Balance is deliberately not touched here; only the ledger
// mutates it.
func (r *RepoPGS) UpdateProfile(ctx context.Context, a domain.Account) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, updateProfileQuery,
		a.ID,
		a.Name,
		a.AvatarURL,
		a.Bio,
		a.StartupName,
		a.PitchSummary,
		a.FundingNeeded,
		a.Industry,
		a.Location,
		a.FoundedYear,
		a.TeamSize,
		pq.Array(a.InvestmentInterests),
		pq.Array(a.InvestmentStage),
		pq.Array(a.PortfolioCompanies),
		a.TotalInvestments,
		a.MinimumInvestment,
		a.MaximumInvestment,
	)

	updated, err := scanAccount(row)
	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return updated, domain.ErrAccountNotFound
		}

		return updated, errorspkg.ErrInternal
	}

	return updated, nil
}

const updatePasswordQuery = `
UPDATE accounts
SET hashed_password = $2
WHERE id = $1
RETURNING` + accountColumns

// UpdatePassword replaces the hashed password of the account.
func (r *RepoPGS) UpdatePassword(ctx context.Context, id, hashedPassword string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, updatePasswordQuery, id, hashedPassword)

	updated, err := scanAccount(row)
	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return updated, domain.ErrAccountNotFound
		}

		return updated, errorspkg.ErrInternal
	}

	return updated, nil
}

const addBalanceQuery = `
UPDATE accounts
SET balance = balance + $1
WHERE id = $2
RETURNING` + accountColumns

// AddBalance adds the given delta to the account balance. A negative delta
// that would take the balance below zero violates the accounts_balance_check
// constraint and maps to ErrInsufficientFunds.
func (r *RepoPGS) AddBalance(ctx context.Context, delta int64, id string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, addBalanceQuery, delta, id)

	a, err := scanAccount(row)
	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return a, domain.ErrAccountNotFound
		}

		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Constraint == "accounts_balance_check" {
				return a, domain.ErrInsufficientFunds
			}
		}

		return a, errorspkg.ErrInternal
	}

	return a, nil
}
