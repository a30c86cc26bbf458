package models

// Scope identifies the company and financial year every record belongs to.
// It is taken from verified token claims and trusted as-is.
type Scope struct {
	CompanyID int `json:"company_id"`
	YearID    int `json:"year_id"`
	UserID    int `json:"user_id"`
}
