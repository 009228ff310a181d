package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/scorecard/api/internal/apperr"
	"github.com/scorecard/api/internal/cache"
	"github.com/scorecard/api/internal/model"
	"github.com/scorecard/api/internal/repository"
	"github.com/scorecard/api/internal/validator"
	"gorm.io/gorm"
)

type SegmentHandler struct {
	segments    *repository.SegmentStore
	projects    *repository.ProjectStore
	errors      *repository.ErrorStore
	reportCache *cache.RedisCache
}

func NewSegmentHandler(db *gorm.DB, reportCache *cache.RedisCache) *SegmentHandler {
	return &SegmentHandler{
		segments:    repository.NewSegmentStore(db),
		projects:    repository.NewProjectStore(db),
		errors:      repository.NewErrorStore(db),
		reportCache: reportCache,
	}
}

type CreateErrorRequest struct {
	Note                *string `json:"note"`
	Highlighting        *string `json:"highlighting"`
	Issue               *string `json:"issue"`
	Level               *string `json:"level"`
	Type                *string `json:"type"`
	HighlightStartIndex *int    `json:"highlightStartIndex"`
	HighlightEndIndex   *int    `json:"highlightEndIndex"`
}

// CreateError handles POST /api/segment/:segmentId/error.
func (h *SegmentHandler) CreateError(c *gin.Context) {
	segmentID, ok := parseID(c, "segmentId")
	if !ok {
		return
	}

	var req CreateErrorRequest
	if err := c.ShouldBindJSON(&req); err != nil ||
		req.Note == nil || req.Highlighting == nil || req.Issue == nil ||
		req.Level == nil || req.Type == nil ||
		req.HighlightStartIndex == nil || req.HighlightEndIndex == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Body must include note, highlighting, issue, level, type, highlightStartIndex, and highlightEndIndex",
		})
		return
	}

	if !validator.ValidLevel(*req.Level) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "level must be one of neutral, minor, major, critical"})
		return
	}
	if !validator.ValidType(*req.Type) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "type must be source or target"})
		return
	}

	segment, err := h.segments.GetByID(c.Request.Context(), segmentID)
	if err != nil {
		respondError(c, apperr.Internal(err))
		return
	}
	if segment == nil {
		respondError(c, apperr.NotFound("No segment found"))
		return
	}

	if !h.requireMembership(c, segment.ProjectID) {
		return
	}

	annotation := model.Error{
		SegmentID:           segmentID,
		Issue:               *req.Issue,
		Level:               *req.Level,
		Type:                *req.Type,
		Highlighting:        *req.Highlighting,
		Note:                *req.Note,
		HighlightStartIndex: *req.HighlightStartIndex,
		HighlightEndIndex:   *req.HighlightEndIndex,
	}
	if err := h.errors.Create(c.Request.Context(), &annotation); err != nil {
		respondError(c, apperr.Internal(err))
		return
	}

	h.invalidateReport(c, segment.ProjectID)
	c.Status(http.StatusNoContent)
}

// DeleteError handles DELETE /api/segment/error/:errorId.
func (h *SegmentHandler) DeleteError(c *gin.Context) {
	errorID, ok := parseID(c, "errorId")
	if !ok {
		return
	}

	segment, err := h.segments.GetByErrorID(c.Request.Context(), errorID)
	if err != nil {
		respondError(c, apperr.Internal(err))
		return
	}
	if segment == nil {
		respondError(c, apperr.NotFound("No segment found"))
		return
	}

	if !h.requireMembership(c, segment.ProjectID) {
		return
	}

	if err := h.errors.DeleteByID(c.Request.Context(), errorID); err != nil {
		respondError(c, apperr.Internal(err))
		return
	}

	h.invalidateReport(c, segment.ProjectID)
	c.Status(http.StatusNoContent)
}

type PatchErrorRequest struct {
	Note  *string `json:"note"`
	Issue *string `json:"issue"`
	Level *string `json:"level"`
}

// PatchError handles PATCH /api/segment/error/:errorId. Only the note,
// issue and severity may change after creation.
func (h *SegmentHandler) PatchError(c *gin.Context) {
	errorID, ok := parseID(c, "errorId")
	if !ok {
		return
	}

	var req PatchErrorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	if req.Level != nil && !validator.ValidLevel(*req.Level) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "level must be one of neutral, minor, major, critical"})
		return
	}

	segment, err := h.segments.GetByErrorID(c.Request.Context(), errorID)
	if err != nil {
		respondError(c, apperr.Internal(err))
		return
	}
	if segment == nil {
		respondError(c, apperr.NotFound("No segment found"))
		return
	}

	if !h.requireMembership(c, segment.ProjectID) {
		return
	}

	attrs := map[string]interface{}{}
	if req.Note != nil {
		attrs["note"] = *req.Note
	}
	if req.Issue != nil {
		attrs["issue"] = *req.Issue
	}
	if req.Level != nil {
		attrs["level"] = *req.Level
	}

	if err := h.errors.UpdateAttributes(c.Request.Context(), errorID, attrs); err != nil {
		respondError(c, apperr.Internal(err))
		return
	}

	h.invalidateReport(c, segment.ProjectID)
	c.Status(http.StatusNoContent)
}

func (h *SegmentHandler) requireMembership(c *gin.Context, projectID int64) bool {
	userID, role := callerIdentity(c)
	assigned, err := userAssignedToProject(c.Request.Context(), h.projects, projectID, userID, role)
	if err != nil {
		respondError(c, apperr.Internal(err))
		return false
	}
	if !assigned {
		respondError(c, apperr.Forbidden())
		return false
	}
	return true
}

func (h *SegmentHandler) invalidateReport(c *gin.Context, projectID int64) {
	if h.reportCache == nil {
		return
	}
	if err := h.reportCache.InvalidateReport(c.Request.Context(), projectID); err != nil {
		// Stale cache entries expire via TTL; a failed invalidation is not
		// worth failing the request over.
		return
	}
}
