package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/scorecard/api/internal/apperr"
	"github.com/scorecard/api/internal/model"
	"github.com/scorecard/api/internal/parser"
	"github.com/scorecard/api/internal/repository"
	"gorm.io/gorm"
)

type TypologyHandler struct {
	issues *repository.IssueStore
}

func NewTypologyHandler(db *gorm.DB) *TypologyHandler {
	return &TypologyHandler{issues: repository.NewIssueStore(db)}
}

// Get handles GET /api/typology: the full catalogue as a forest.
func (h *TypologyHandler) Get(c *gin.Context) {
	issues, err := h.issues.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, apperr.Internal(err))
		return
	}

	rows := make([]parser.IssueRow, 0, len(issues))
	for _, issue := range issues {
		rows = append(rows, parser.IssueRow{
			Issue:       issue.ID,
			Parent:      issue.Parent,
			Name:        issue.Name,
			Description: issue.Description,
			Notes:       issue.Notes,
			Examples:    issue.Examples,
		})
	}

	c.JSON(http.StatusOK, gin.H{"issues": parser.BuildIssueForest(rows)})
}

// Import handles POST /api/typology (superadmin only, enforced by the
// router): replaces the whole catalogue from an uploaded metric file.
// Project issues and errors referencing removed issues cascade away.
func (h *TypologyHandler) Import(c *gin.Context) {
	upload, err := formUpload(c, "metricFile")
	if err != nil {
		respondError(c, apperr.Internal(err))
		return
	}
	if upload == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Request requires a metric file"})
		return
	}

	flat, err := parser.ParseMetricXML(upload.Data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Problem parsing metric file: " + err.Error()})
		return
	}

	issues := make([]model.Issue, 0, len(flat))
	for _, entry := range flat {
		issues = append(issues, model.Issue{
			ID:          entry.Issue,
			Parent:      entry.Parent,
			Name:        entry.Name,
			Description: entry.Description,
			Notes:       entry.Notes,
			Examples:    entry.Examples,
		})
	}

	if err := h.issues.ReplaceCatalogue(c.Request.Context(), issues); err != nil {
		respondError(c, apperr.Internal(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Typology imported successfully."})
}
