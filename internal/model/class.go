package model

// ClassSummary is a programming class as listed on the dashboard.
// StudentCount is aggregated by the data store, never computed locally.
type ClassSummary struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Description  *string `json:"description"`
	Language     string  `json:"language"`
	StudentCount int     `json:"student_count"`
}

// DescriptionOr returns the description, or fallback when it is absent or blank.
func (c ClassSummary) DescriptionOr(fallback string) string {
	if c.Description == nil || *c.Description == "" {
		return fallback
	}
	return *c.Description
}

// Class is a row of the classes table, used by the seed command.
type Class struct {
	ID          string
	Name        string
	Description *string
	Language    string
}
