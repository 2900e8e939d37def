package dto

type CustomerFilters struct {
	Search   string // Matches full name and email
	Role     string
	Page     int
	PageSize int
}
