package server

import (
	"polisee/internal/domain"
)

type CreateTaskRequest struct {
	Title           string               `json:"title,omitempty"`
	Domain          string               `json:"domain,omitempty"`
	Jurisdiction    string               `json:"jurisdiction,omitempty"`
	Stakeholders    []domain.Stakeholder `json:"stakeholders,omitempty"`
	Constraints     *domain.Constraints  `json:"constraints,omitempty"`
	DeliverableType string               `json:"deliverable_type,omitempty"`
	Difficulty      int                  `json:"difficulty,omitempty"`
	PromptText      string               `json:"prompt_text,omitempty"`
	RubricID        string               `json:"rubric_id,omitempty"`
}

type UpdateTaskRequest struct {
	Title           *string              `json:"title,omitempty"`
	Domain          *string              `json:"domain,omitempty"`
	Jurisdiction    *string              `json:"jurisdiction,omitempty"`
	Stakeholders    []domain.Stakeholder `json:"stakeholders,omitempty"`
	Constraints     *domain.Constraints  `json:"constraints,omitempty"`
	DeliverableType *string              `json:"deliverable_type,omitempty"`
	Difficulty      *int                 `json:"difficulty,omitempty"`
	PromptText      *string              `json:"prompt_text,omitempty"`
	RubricID        *string              `json:"rubric_id,omitempty"`
}

type CreateRubricRequest struct {
	Name         string                  `json:"name,omitempty"`
	Type         string                  `json:"type,omitempty"`
	Criteria     []domain.RubricCriteria `json:"criteria,omitempty"`
	HardFails    []string                `json:"hard_fails,omitempty"`
	FailureModes []domain.FailureMode    `json:"failure_modes,omitempty"`
}

type CreateReviewRequest struct {
	RubricID string `json:"rubric_id,omitempty"`
}

type CreateReferenceRequest struct {
	Text  string `json:"text"`
	Style string `json:"style,omitempty"`
}

type ExportRequest struct {
	Format string `json:"format" enum:"json,csv"`
}

type ExportResponse struct {
	Path  string             `json:"path"`
	Event domain.LedgerEvent `json:"event"`
}

type StatusResponse struct {
	SchemaVersion string         `json:"schema_version"`
	Counts        map[string]int `json:"counts"`
}
