package profileservice

import "github.com/business-nexus/nexus/internal/domain"

// allowedFields is the fixed, role-keyed table of profile fields a role may
// mutate. Requests naming any other field have that entry dropped silently;
// filtering is an authorization boundary, not a validation error.
var allowedFields = map[domain.Role]map[string]bool{
	domain.RoleEntrepreneur: {
		"name":           true,
		"avatar_url":     true,
		"bio":            true,
		"startup_name":   true,
		"pitch_summary":  true,
		"funding_needed": true,
		"industry":       true,
		"location":       true,
		"founded_year":   true,
		"team_size":      true,
	},
	domain.RoleInvestor: {
		"name":                 true,
		"avatar_url":           true,
		"bio":                  true,
		"investment_interests": true,
		"investment_stage":     true,
		"portfolio_companies":  true,
		"total_investments":    true,
		"minimum_investment":   true,
		"maximum_investment":   true,
	},
}

// applyField sets one allow-listed field on the account. Values arrive from
// a decoded JSON object, so numbers are float64 and lists are []any; values
// of the wrong shape are skipped.
func applyField(a *domain.Account, field string, value any) {
	switch field {
	case "name":
		setString(&a.Name, value)
	case "avatar_url":
		setString(&a.AvatarURL, value)
	case "bio":
		setString(&a.Bio, value)
	case "startup_name":
		setString(&a.StartupName, value)
	case "pitch_summary":
		setString(&a.PitchSummary, value)
	case "funding_needed":
		setString(&a.FundingNeeded, value)
	case "industry":
		setString(&a.Industry, value)
	case "location":
		setString(&a.Location, value)
	case "founded_year":
		setInt32(&a.FoundedYear, value)
	case "team_size":
		setInt32(&a.TeamSize, value)
	case "investment_interests":
		setStrings(&a.InvestmentInterests, value)
	case "investment_stage":
		setStrings(&a.InvestmentStage, value)
	case "portfolio_companies":
		setStrings(&a.PortfolioCompanies, value)
	case "total_investments":
		setInt32(&a.TotalInvestments, value)
	case "minimum_investment":
		setInt64(&a.MinimumInvestment, value)
	case "maximum_investment":
		setInt64(&a.MaximumInvestment, value)
	}
}

func setString(dst *string, value any) {
	if s, ok := value.(string); ok {
		*dst = s
	}
}

func setInt32(dst *int32, value any) {
	switch v := value.(type) {
	case float64:
		*dst = int32(v)
	case int:
		*dst = int32(v)
	case int32:
		*dst = v
	case int64:
		*dst = int32(v)
	}
}

func setInt64(dst *int64, value any) {
	switch v := value.(type) {
	case float64:
		*dst = int64(v)
	case int:
		*dst = int64(v)
	case int64:
		*dst = v
	}
}

func setStrings(dst *[]string, value any) {
	switch v := value.(type) {
	case []string:
		*dst = v
	case []any:
		items := make([]string, 0, len(v))

		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return
			}

			items = append(items, s)
		}

		*dst = items
	}
}
