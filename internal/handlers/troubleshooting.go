package handlers

import (
	"context"

	"github.com/serroba/launch-site-go/internal/content"
)

// ContentHandler serves the troubleshooting hub and the onboarding quiz.
type ContentHandler struct {
	catalog *content.Catalog
}

// NewContentHandler creates a new content handler.
func NewContentHandler(catalog *content.Catalog) *ContentHandler {
	return &ContentHandler{catalog: catalog}
}

// Troubleshooting searches the help sections.
func (h *ContentHandler) Troubleshooting(_ context.Context, req *TroubleshootingRequest) (*TroubleshootingResponse, error) {
	sections := h.catalog.Search(req.Query, req.Category)

	resp := &TroubleshootingResponse{}
	resp.Body.Sections = sections
	resp.Body.Count = len(sections)
	resp.Body.Categories = h.catalog.Categories

	return resp, nil
}
