package models

// SeasonalProduct is a reference entry offered during Christmas order entry.
type SeasonalProduct struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Unit        string `json:"unit"`
	Description string `json:"description"`
}
