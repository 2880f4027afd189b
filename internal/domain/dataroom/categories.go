package dataroom

import "errors"

var ErrInvalidCategory = errors.New("invalid category")

// Category values, fixed set of 8
const (
	CategorySummary         = "summary"
	CategoryFinancials      = "financials"
	CategoryLegal           = "legal"
	CategoryPreviousFunding = "previous_funding"
	CategoryIP              = "intellectual_property"
	CategoryStaff           = "staff"
	CategoryMetrics         = "metrics"
	CategoryOther           = "other"
)

// Category definition served to clients for the upload dropdown.
type Category struct {
	Value       string `json:"value"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// Categories returns the 8 fixed data-room buckets in display order.
func Categories() []Category {
	return []Category{
		{Value: CategorySummary, Label: "Pitch Deck & Summary", Description: "Pitch Deck, Executive Summary, One Pager"},
		{Value: CategoryFinancials, Label: "Financials", Description: "P&L Statement, Balance Sheet, Cash Flow, Projections"},
		{Value: CategoryLegal, Label: "Legal & Corporate Docs", Description: "Articles of Incorporation, Bylaws, Board Consents"},
		{Value: CategoryPreviousFunding, Label: "Previous Funding", Description: "Previous Round Docs, Investor Rights, SAFE/Convertibles"},
		{Value: CategoryIP, Label: "Intellectual Property", Description: "Patents, Trademarks, Trade Secrets, Brand Assets"},
		{Value: CategoryStaff, Label: "Team & HR", Description: "Org Chart, Employee List, Key Contracts, Advisors"},
		{Value: CategoryMetrics, Label: "Metrics & KPIs", Description: "Sales Pipeline, MRR/ARR, User Growth, Churn"},
		{Value: CategoryOther, Label: "Other", Description: "Anything else investors may ask for"},
	}
}

// ValidCategory reports whether v is one of the fixed category values.
func ValidCategory(v string) bool {
	for _, c := range Categories() {
		if c.Value == v {
			return true
		}
	}
	return false
}
