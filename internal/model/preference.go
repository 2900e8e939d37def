package model

// ViewPreference is the persisted list-view state of one admin screen.
type ViewPreference struct {
	ViewMode  string            `json:"view_mode"`
	SortBy    string            `json:"sort_by"`
	SortOrder string            `json:"sort_order"`
	PageSize  int               `json:"page_size"`
	Filters   map[string]string `json:"filters"`
}

func DefaultViewPreference() ViewPreference {
	return ViewPreference{
		ViewMode:  "table",
		SortBy:    "created_at",
		SortOrder: "desc",
		PageSize:  20,
		Filters:   map[string]string{},
	}
}
