package content

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/delordemm1/go-sprints-api/internal/httpx"
)

// Handler holds the dependencies for the content endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// NewHandler creates a new handler for the content module.
func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes mounts the content operations. None of them needs a session.
func (h *Handler) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-dashboard",
		Method:      http.MethodGet,
		Path:        "/api/dashboard",
		Summary:     "Every active class with its full tree and access",
		Tags:        []string{"Content"},
	}, h.DashboardHandler)

	huma.Register(api, huma.Operation{
		OperationID: "get-dashboard-page",
		Method:      http.MethodGet,
		Path:        "/dashboard",
		Summary:     "Dashboard data",
		Tags:        []string{"Content"},
	}, h.DashboardHandler)

	huma.Register(api, huma.Operation{
		OperationID: "get-dashboard-class",
		Method:      http.MethodGet,
		Path:        "/dashboard/class/{classId}",
		Summary:     "One class with its full tree",
		Tags:        []string{"Content"},
	}, h.ClassHandler)

	huma.Register(api, huma.Operation{
		OperationID: "get-class-access",
		Method:      http.MethodGet,
		Path:        "/api/classes/{classId}/access",
		Summary:     "Subject access verdicts for a class",
		Tags:        []string{"Content"},
	}, h.ClassAccessHandler)

	huma.Register(api, huma.Operation{
		OperationID: "get-accessible-classes",
		Method:      http.MethodGet,
		Path:        "/api/user/accessible-classes",
		Summary:     "Classes the visitor can open",
		Tags:        []string{"Content"},
	}, h.AccessibleClassesHandler)
}

// --- DTOs ---

type ClassRequest struct {
	ClassID int `path:"classId" minimum:"1"`
}

type SubjectWithAccess struct {
	Subject
	HasAccess  bool   `json:"hasAccess"`
	AccessType string `json:"accessType"`
}

type AccessVerdict struct {
	HasAccess  bool   `json:"hasAccess"`
	AccessType string `json:"accessType"`
}

type ClassWithAccess struct {
	ID                 int                      `json:"id"`
	Name               string                   `json:"name"`
	Description        string                   `json:"description"`
	Price              *float64                 `json:"price"`
	IsActive           bool                     `json:"isActive"`
	Subjects           []SubjectWithAccess      `json:"subjects"`
	SchoolAccess       bool                     `json:"schoolAccess"`
	SubscriptionAccess bool                     `json:"subscriptionAccess"`
	HasPartialAccess   bool                     `json:"hasPartialAccess"`
	AccessType         string                   `json:"accessType"`
	SubjectAccess      map[string]AccessVerdict `json:"subjectAccess"`
}

type DashboardResponse struct {
	Body struct {
		Classes       []ClassWithAccess `json:"classes"`
		UserProfile   any               `json:"userProfile"`
		AccessMessage string            `json:"accessMessage"`
		AccessType    string            `json:"accessType"`
	}
}

type ClassResponse struct {
	Body ClassWithAccess
}

type ClassAccessResponse struct {
	Body ClassAccess
}

type AccessibleClassesResponse struct {
	Body struct {
		AccessibleClasses []Class `json:"accessibleClasses"`
		AccessType        string  `json:"accessType"`
		Message           string  `json:"message"`
	}
}

// withAccess decorates a class tree with full access on every subject.
func withAccess(c Class) ClassWithAccess {
	out := ClassWithAccess{
		ID:                 c.ID,
		Name:               c.Name,
		Description:        c.Description,
		Price:              c.Price,
		IsActive:           c.IsActive,
		Subjects:           make([]SubjectWithAccess, 0, len(c.Subjects)),
		SchoolAccess:       true,
		SubscriptionAccess: true,
		AccessType:         AccessFull,
		SubjectAccess:      make(map[string]AccessVerdict, len(c.Subjects)),
	}
	for _, s := range c.Subjects {
		out.Subjects = append(out.Subjects, SubjectWithAccess{Subject: s, HasAccess: true, AccessType: AccessFull})
		out.SubjectAccess[s.ID] = AccessVerdict{HasAccess: true, AccessType: AccessFull}
	}
	return out
}

// --- Handlers ---

func (h *Handler) DashboardHandler(ctx context.Context, _ *struct{}) (*DashboardResponse, error) {
	classes, err := h.service.Dashboard(ctx)
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &DashboardResponse{}
	resp.Body.Classes = make([]ClassWithAccess, 0, len(classes))
	for _, c := range classes {
		resp.Body.Classes = append(resp.Body.Classes, withAccess(c))
	}
	resp.Body.AccessMessage = "Full Access: All content is available"
	resp.Body.AccessType = AccessFull
	return resp, nil
}

func (h *Handler) ClassHandler(ctx context.Context, input *ClassRequest) (*ClassResponse, error) {
	c, err := h.service.Class(ctx, input.ClassID)
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}
	return &ClassResponse{Body: withAccess(*c)}, nil
}

func (h *Handler) ClassAccessHandler(ctx context.Context, input *ClassRequest) (*ClassAccessResponse, error) {
	access, err := h.service.ClassAccess(ctx, input.ClassID)
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}
	return &ClassAccessResponse{Body: *access}, nil
}

func (h *Handler) AccessibleClassesHandler(ctx context.Context, _ *struct{}) (*AccessibleClassesResponse, error) {
	classes, err := h.service.AccessibleClasses(ctx)
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &AccessibleClassesResponse{}
	resp.Body.AccessibleClasses = classes
	resp.Body.AccessType = AccessFull
	resp.Body.Message = "You have access to all classes."
	return resp, nil
}
