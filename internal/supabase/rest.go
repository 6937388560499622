package supabase

import (
	"context"
	"net/http"
	"net/url"

	"github.com/codetrio/codetrio-web/internal/model"
)

type classRow struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Description  *string `json:"description"`
	Language     string  `json:"language"`
	StudentCount []struct {
		Count int `json:"count"`
	} `json:"student_count"`
}

// ListClassSummaries returns every class visible to the token holder with the
// number of enrolled students, aggregated by PostgREST.
func (c *Client) ListClassSummaries(ctx context.Context, accessToken string) ([]model.ClassSummary, error) {
	var rows []classRow
	query := url.Values{"select": {"*,student_count:students(count)"}}
	if err := c.do(ctx, http.MethodGet, "/rest/v1/classes", query, accessToken, nil, &rows); err != nil {
		return nil, err
	}

	classes := make([]model.ClassSummary, 0, len(rows))
	for _, r := range rows {
		count := 0
		if len(r.StudentCount) > 0 {
			count = r.StudentCount[0].Count
		}
		classes = append(classes, model.ClassSummary{
			ID:           r.ID,
			Name:         r.Name,
			Description:  r.Description,
			Language:     r.Language,
			StudentCount: count,
		})
	}
	return classes, nil
}

// UserRole returns the role recorded for userID in user_roles. A user with
// several rows is an admin if any of them says so; no row means student.
func (c *Client) UserRole(ctx context.Context, accessToken, userID string) (model.Role, error) {
	var rows []struct {
		Role string `json:"role"`
	}
	query := url.Values{
		"select":  {"role"},
		"user_id": {"eq." + userID},
	}
	if err := c.do(ctx, http.MethodGet, "/rest/v1/user_roles", query, accessToken, nil, &rows); err != nil {
		return "", err
	}

	role := model.RoleStudent
	for _, r := range rows {
		if model.ParseRole(r.Role) == model.RoleAdmin {
			role = model.RoleAdmin
		}
	}
	return role, nil
}
