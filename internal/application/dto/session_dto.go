package dto

import (
	"github.com/jhoicas/hoacuong-agri/internal/application/workspace"
	"github.com/jhoicas/hoacuong-agri/internal/domain/entity"
)

// LoginRequest entrada de POST /api/auth/login.
type LoginRequest struct {
	Code     string `json:"code"`
	Password string `json:"password"`
}

// LoginResponse token Bearer + sesión abierta.
type LoginResponse struct {
	Token   string          `json:"token"`
	Session SessionResponse `json:"session"`
}

// SessionResponse respuesta de GET /api/session.
type SessionResponse struct {
	Identity    *entity.Employee      `json:"identity"`
	Permissions entity.AppPermissions `json:"permissions"`
	VisibleTabs []string              `json:"visibleTabs"`
	State       workspace.State       `json:"state"`
}

// NavigationRequest cuerpo de PUT /api/navigation. Target: dashboard, area, docs,
// farming, purchase, tab, sidebar, profile.
type NavigationRequest struct {
	Target         string `json:"target"`
	Tab            string `json:"tab,omitempty"`
	SubTab         string `json:"subTab,omitempty"`
	ApproachStatus string `json:"approachStatus,omitempty"`
	Stage          string `json:"stage,omitempty"`
	Open           *bool  `json:"open,omitempty"`
}
