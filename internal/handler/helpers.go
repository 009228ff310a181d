package handler

import (
	"context"
	"errors"
	"log"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/scorecard/api/internal/apperr"
	"github.com/scorecard/api/internal/model"
	"github.com/scorecard/api/internal/repository"
)

// callerIdentity reads the identity the auth middleware stored on the
// request context.
func callerIdentity(c *gin.Context) (userID int64, role string) {
	return c.GetInt64("userID"), c.GetString("role")
}

// userAssignedToProject implements the shared membership check:
// superadmins see every project, everyone else needs a membership row.
func userAssignedToProject(ctx context.Context, projects *repository.ProjectStore, projectID, userID int64, role string) (bool, error) {
	if role == model.RoleSuperadmin {
		return true, nil
	}
	return projects.IsMember(ctx, projectID, userID)
}

// respondError translates a pipeline error into its HTTP response. The
// detailed cause of Internal errors goes to the server log only.
func respondError(c *gin.Context, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind == apperr.KindInternal {
		log.Printf("request failed: %v", err)
	}
	c.JSON(apperr.Status(err), gin.H{"message": apperr.ClientMessage(err)})
}

func parseID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil {
		c.JSON(400, gin.H{"message": "Invalid " + param})
		return 0, false
	}
	return id, true
}
