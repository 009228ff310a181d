package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/scorecard/api/internal/apperr"
	"github.com/scorecard/api/internal/cache"
	"github.com/scorecard/api/internal/ingest"
	"github.com/scorecard/api/internal/middleware"
	"github.com/scorecard/api/internal/model"
	"github.com/scorecard/api/internal/parser"
	"github.com/scorecard/api/internal/repository"
	"github.com/scorecard/api/internal/scoring"
	"gorm.io/gorm"
)

type ProjectHandler struct {
	ingest      *ingest.Service
	projects    *repository.ProjectStore
	issues      *repository.IssueStore
	segments    *repository.SegmentStore
	errors      *repository.ErrorStore
	users       *repository.UserStore
	reportCache *cache.RedisCache
}

// NewProjectHandler wires the project endpoints. reportCache may be nil;
// reports are then assembled on every read.
func NewProjectHandler(db *gorm.DB, ingestService *ingest.Service, reportCache *cache.RedisCache) *ProjectHandler {
	return &ProjectHandler{
		ingest:      ingestService,
		projects:    repository.NewProjectStore(db),
		issues:      repository.NewIssueStore(db),
		segments:    repository.NewSegmentStore(db),
		errors:      repository.NewErrorStore(db),
		users:       repository.NewUserStore(db),
		reportCache: reportCache,
	}
}

// Create handles POST /api/project. A new project needs a name plus the
// metric and bi-text files in one multipart request.
func (h *ProjectHandler) Create(c *gin.Context) {
	userID, role := callerIdentity(c)
	if !model.IsAdminRole(role) {
		respondError(c, apperr.Forbidden())
		return
	}

	name := c.PostForm("name")
	bitextFile, err := formUpload(c, "bitextFile")
	if err != nil {
		respondError(c, apperr.Internal(err))
		return
	}
	metricFile, err := formUpload(c, "metricFile")
	if err != nil {
		respondError(c, apperr.Internal(err))
		return
	}
	specificationsFile, err := formUpload(c, "specificationsFile")
	if err != nil {
		respondError(c, apperr.Internal(err))
		return
	}

	input := ingest.UpsertInput{
		UserID:             userID,
		Role:               role,
		Name:               &name,
		MetricFile:         metricFile,
		BitextFile:         bitextFile,
		SpecificationsFile: specificationsFile,
	}

	if _, err := h.ingest.Upsert(c.Request.Context(), input); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Project created successfully."})
}

// Update handles PUT /api/project/:projectId. Any combination of the
// three files and the patchable attributes may be submitted.
func (h *ProjectHandler) Update(c *gin.Context) {
	projectID, ok := parseID(c, "projectId")
	if !ok {
		return
	}

	userID, role := callerIdentity(c)
	if !h.requireMembership(c, projectID, userID, role) {
		return
	}

	project, err := h.projects.GetByID(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, apperr.Internal(err))
		return
	}
	if project == nil {
		respondError(c, apperr.NotFound("No project found"))
		return
	}

	input := ingest.UpsertInput{
		ProjectID: projectID,
		IsUpdate:  true,
		UserID:    userID,
		Role:      role,
	}

	if name := c.PostForm("name"); name != "" {
		input.Name = &name
	}
	if finishedValue := c.PostForm("finished"); finishedValue != "" {
		finished, err := strconv.ParseBool(finishedValue)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "finished must be a boolean"})
			return
		}
		input.Finished = &finished
	}
	if segmentNumValue := c.PostForm("segmentNum"); segmentNumValue != "" {
		segmentNum, err := strconv.Atoi(segmentNumValue)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "segmentNum must be an integer"})
			return
		}
		input.SegmentNum = &segmentNum
	}

	if input.MetricFile, err = formUpload(c, "metricFile"); err != nil {
		respondError(c, apperr.Internal(err))
		return
	}
	if input.BitextFile, err = formUpload(c, "bitextFile"); err != nil {
		respondError(c, apperr.Internal(err))
		return
	}
	if input.SpecificationsFile, err = formUpload(c, "specificationsFile"); err != nil {
		respondError(c, apperr.Internal(err))
		return
	}

	if _, err := h.ingest.Upsert(c.Request.Context(), input); err != nil {
		respondError(c, err)
		return
	}

	h.invalidateReport(c.Request.Context(), projectID)
	c.JSON(http.StatusOK, gin.H{"message": "Project updated successfully."})
}

// List handles GET /api/projects: superadmins see everything, everyone
// else sees their memberships.
func (h *ProjectHandler) List(c *gin.Context) {
	userID, role := callerIdentity(c)

	var projects []model.Project
	var err error
	if role == model.RoleSuperadmin {
		projects, err = h.projects.ListAll(c.Request.Context())
	} else {
		projects, err = h.projects.ListByUserID(c.Request.Context(), userID)
	}
	if err != nil {
		respondError(c, apperr.Internal(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

// SegmentView is a segment with its annotations split by direction.
type SegmentView struct {
	model.Segment
	SourceErrors []repository.ErrorRow `json:"sourceErrors"`
	TargetErrors []repository.ErrorRow `json:"targetErrors"`
}

// Get handles GET /api/project/:projectId: the full reviewer view.
func (h *ProjectHandler) Get(c *gin.Context) {
	projectID, ok := parseID(c, "projectId")
	if !ok {
		return
	}

	userID, role := callerIdentity(c)
	if !h.requireMembership(c, projectID, userID, role) {
		return
	}

	ctx := c.Request.Context()

	project, err := h.projects.GetByID(ctx, projectID)
	if err != nil {
		respondError(c, apperr.Internal(err))
		return
	}
	if project == nil {
		respondError(c, apperr.NotFound("No project found"))
		return
	}

	members, err := h.projects.ListMembers(ctx, projectID)
	if err != nil {
		respondError(c, apperr.Internal(err))
		return
	}

	segments, err := h.segments.ListByProjectID(ctx, projectID)
	if err != nil {
		respondError(c, apperr.Internal(err))
		return
	}

	issueRows, err := h.issues.ListProjectIssues(ctx, projectID)
	if err != nil {
		respondError(c, apperr.Internal(err))
		return
	}

	errorRows, err := h.errors.ListByProjectID(ctx, projectID)
	if err != nil {
		respondError(c, apperr.Internal(err))
		return
	}

	bySegment := make(map[int64][]repository.ErrorRow)
	plainErrors := make([]model.Error, 0, len(errorRows))
	for _, row := range errorRows {
		bySegment[row.SegmentID] = append(bySegment[row.SegmentID], row)
		plainErrors = append(plainErrors, row.Error)
	}

	views := make([]SegmentView, 0, len(segments))
	for _, segment := range segments {
		view := SegmentView{
			Segment:      segment,
			SourceErrors: []repository.ErrorRow{},
			TargetErrors: []repository.ErrorRow{},
		}
		for _, row := range bySegment[segment.ID] {
			if row.Type == model.TypeSource {
				view.SourceErrors = append(view.SourceErrors, row)
			} else {
				view.TargetErrors = append(view.TargetErrors, row)
			}
		}
		views = append(views, view)
	}

	report, _ := scoring.BuildReport(plainErrors)

	c.JSON(http.StatusOK, gin.H{
		"project":  project,
		"report":   report,
		"users":    members,
		"segments": views,
		"issues":   parser.BuildIssueForest(repository.IssueRows(issueRows)),
		"apt":      scoring.CalculateAPT(plainErrors),
	})
}

type reportHighlighting struct {
	StartIndex int `json:"startIndex"`
	EndIndex   int `json:"endIndex"`
}

type reportError struct {
	Segment       string             `json:"segment"`
	Target        string             `json:"target"`
	Name          string             `json:"name"`
	Severity      string             `json:"severity"`
	IssueReportID string             `json:"issueReportId"`
	IssueID       string             `json:"issueId"`
	Note          string             `json:"note"`
	Highlighting  reportHighlighting `json:"highlighting"`
}

type reportSegments struct {
	Source []string `json:"source"`
	Target []string `json:"target"`
}

type jsonReport struct {
	ProjectName string                       `json:"projectName"`
	Key         map[string]string            `json:"key"`
	Errors      []reportError                `json:"errors"`
	Metric      []repository.ProjectIssueRow `json:"metric"`
	Apt         int                          `json:"apt"`
	Segments    reportSegments               `json:"segments"`
}

// GetJSONReport handles GET /api/project/:projectId/report: the flat
// report consumed by downstream tooling. The assembled document is cached
// in redis until the next project write.
func (h *ProjectHandler) GetJSONReport(c *gin.Context) {
	projectID, ok := parseID(c, "projectId")
	if !ok {
		return
	}

	userID, role := callerIdentity(c)
	if !h.requireMembership(c, projectID, userID, role) {
		return
	}

	ctx := c.Request.Context()

	if h.reportCache != nil {
		if data, err := h.reportCache.GetReport(ctx, projectID); err == nil {
			middleware.RecordReportCacheLookup(true)
			c.Data(http.StatusOK, "application/json; charset=utf-8", data)
			return
		}
		middleware.RecordReportCacheLookup(false)
	}

	project, err := h.projects.GetByID(ctx, projectID)
	if err != nil {
		respondError(c, apperr.Internal(err))
		return
	}
	if project == nil {
		respondError(c, apperr.NotFound("No project found"))
		return
	}

	segments, err := h.segments.ListByProjectID(ctx, projectID)
	if err != nil {
		respondError(c, apperr.Internal(err))
		return
	}

	issueRows, err := h.issues.ListProjectIssues(ctx, projectID)
	if err != nil {
		respondError(c, apperr.Internal(err))
		return
	}

	errorRows, err := h.errors.ListByProjectID(ctx, projectID)
	if err != nil {
		respondError(c, apperr.Internal(err))
		return
	}

	doc := jsonReport{
		ProjectName: project.Name,
		Key:         make(map[string]string, len(segments)),
		Errors:      make([]reportError, 0, len(errorRows)),
		Metric:      issueRows,
	}

	for _, segment := range segments {
		doc.Key[strconv.FormatInt(segment.ID, 10)] = strconv.Itoa(segment.SegmentNum)

		var pair model.SegmentPair
		if err := json.Unmarshal(segment.SegmentData, &pair); err != nil {
			respondError(c, apperr.Internal(err))
			return
		}
		doc.Segments.Source = append(doc.Segments.Source, pair.Source)
		doc.Segments.Target = append(doc.Segments.Target, pair.Target)
	}

	plainErrors := make([]model.Error, 0, len(errorRows))
	for _, row := range errorRows {
		plainErrors = append(plainErrors, row.Error)
		doc.Errors = append(doc.Errors, reportError{
			Segment:       strconv.FormatInt(row.SegmentID, 10),
			Target:        row.Type,
			Name:          row.IssueName,
			Severity:      row.Level,
			IssueReportID: strconv.FormatInt(row.ID, 10),
			IssueID:       row.Issue,
			Note:          row.Note,
			Highlighting: reportHighlighting{
				StartIndex: row.HighlightStartIndex,
				EndIndex:   row.HighlightEndIndex,
			},
		})
	}
	doc.Apt = scoring.CalculateAPT(plainErrors)

	data, err := json.Marshal(doc)
	if err != nil {
		respondError(c, apperr.Internal(err))
		return
	}

	if h.reportCache != nil {
		if err := h.reportCache.SetReport(ctx, projectID, data); err != nil {
			log.Printf("Warning: failed to cache report for project %d: %v", projectID, err)
		}
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// Delete handles DELETE /api/project/:projectId. Memberships, metric
// links, segments and errors cascade away with the project row.
func (h *ProjectHandler) Delete(c *gin.Context) {
	projectID, ok := parseID(c, "projectId")
	if !ok {
		return
	}

	userID, role := callerIdentity(c)
	if !h.requireMembership(c, projectID, userID, role) {
		return
	}

	if err := h.projects.Delete(c.Request.Context(), projectID); err != nil {
		respondError(c, apperr.Internal(err))
		return
	}

	h.invalidateReport(c.Request.Context(), projectID)
	c.Status(http.StatusNoContent)
}

type AddUserRequest struct {
	Username string `json:"username"`
}

// AddUser handles POST /api/project/:projectId/user.
func (h *ProjectHandler) AddUser(c *gin.Context) {
	projectID, ok := parseID(c, "projectId")
	if !ok {
		return
	}

	var req AddUserRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Body must include a username"})
		return
	}

	userID, role := callerIdentity(c)
	if !h.requireMembership(c, projectID, userID, role) {
		return
	}

	user, err := h.users.GetByUsername(c.Request.Context(), req.Username)
	if err != nil {
		respondError(c, apperr.Internal(err))
		return
	}
	if user == nil {
		respondError(c, apperr.NotFound("No user found with the username %q", req.Username))
		return
	}

	if err := h.projects.AddMembership(c.Request.Context(), projectID, user.ID); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			respondError(c, apperr.Conflict("%s has already been assigned to this project", req.Username))
			return
		}
		respondError(c, apperr.Internal(err))
		return
	}

	c.Status(http.StatusNoContent)
}

// RemoveUser handles DELETE /api/project/:projectId/user/:userId.
func (h *ProjectHandler) RemoveUser(c *gin.Context) {
	projectID, ok := parseID(c, "projectId")
	if !ok {
		return
	}
	removeUserID, ok := parseID(c, "userId")
	if !ok {
		return
	}

	userID, role := callerIdentity(c)
	if !h.requireMembership(c, projectID, userID, role) {
		return
	}

	if err := h.projects.RemoveMembership(c.Request.Context(), projectID, removeUserID); err != nil {
		respondError(c, apperr.Internal(err))
		return
	}

	c.Status(http.StatusNoContent)
}

// RemoveUserFromAllProjects handles DELETE /api/user/:userId/projects
// (superadmin only, enforced by the router).
func (h *ProjectHandler) RemoveUserFromAllProjects(c *gin.Context) {
	removeUserID, ok := parseID(c, "userId")
	if !ok {
		return
	}

	if err := h.projects.RemoveAllMemberships(c.Request.Context(), removeUserID); err != nil {
		respondError(c, apperr.Internal(err))
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ProjectHandler) requireMembership(c *gin.Context, projectID, userID int64, role string) bool {
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

func (h *ProjectHandler) invalidateReport(ctx context.Context, projectID int64) {
	if h.reportCache == nil {
		return
	}
	if err := h.reportCache.InvalidateReport(ctx, projectID); err != nil {
		log.Printf("Warning: failed to invalidate report cache for project %d: %v", projectID, err)
	}
}

// formUpload reads one optional multipart file into memory. A missing
// field is not an error.
func formUpload(c *gin.Context, field string) (*ingest.Upload, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	return &ingest.Upload{Name: fileHeader.Filename, Data: data}, nil
}
