// Package transport defines the HTTP request/response shapes for the leads module.
package transport

import "github.com/google/uuid"

// ScoutRequest starts one discovery run against the current session.
type ScoutRequest struct {
	Niche     string `json:"niche" binding:"required"`
	Location  string `json:"location" binding:"required"`
	BatchSize int    `json:"batchSize" binding:"required,min=1,max=20"`
	Mode      string `json:"mode"`
}

// StageRequest selects the persona for a single enrichment stage.
type StageRequest struct {
	ProfileID *uuid.UUID `json:"profileId"`
}

// EditPageRequest applies a free-text instruction to one generated page.
type EditPageRequest struct {
	Instruction string     `json:"instruction" binding:"required"`
	ProfileID   *uuid.UUID `json:"profileId"`
}

// EditPageResponse returns the replacement page content.
type EditPageResponse struct {
	PageName string `json:"pageName"`
	HTML     string `json:"html"`
}
