package user

import (
	"context"
	"time"

	"github.com/delordemm1/go-sprints-api/internal/contextx"
	"github.com/delordemm1/go-sprints-api/internal/httpx"
	"github.com/delordemm1/go-sprints-api/internal/session"
)

// ProfileResponse is the DTO for a user's profile.
type ProfileResponse struct {
	Body struct {
		ID          string       `json:"id"`
		Email       string       `json:"email"`
		Name        string       `json:"name"`
		Image       *string      `json:"image"`
		Role        session.Role `json:"role"`
		IsActive    bool         `json:"isActive"`
		LastLoginAt *time.Time   `json:"lastLoginAt"`
		CreatedAt   time.Time    `json:"createdAt"`
	}
}

func toProfileResponse(u *User) *ProfileResponse {
	var resp ProfileResponse
	resp.Body.ID = u.ID
	resp.Body.Email = u.Email
	resp.Body.Name = u.Name
	resp.Body.Image = u.Image
	resp.Body.Role = u.Role
	resp.Body.IsActive = u.IsActive
	resp.Body.LastLoginAt = u.LastLoginAt
	resp.Body.CreatedAt = u.CreatedAt
	return &resp
}

// GetProfileHandler retrieves the profile of the signed-in user. The session
// middleware guarantees claims are present.
func (h *Handler) GetProfileHandler(ctx context.Context, _ *struct{}) (*ProfileResponse, error) {
	claims := contextx.Session(ctx)
	u, err := h.service.GetProfile(ctx, claims.Subject)
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}
	return toProfileResponse(u), nil
}
