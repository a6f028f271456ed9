package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/timetrack/db"
	"github.com/monocle-dev/timetrack/internal/models"
	"github.com/monocle-dev/timetrack/internal/serializers"
	"github.com/monocle-dev/timetrack/internal/utils"
	"gorm.io/gorm/clause"
)

const resourceProject = "project"

// Project routes sit behind RequireProjectAccess: reads for any
// authenticated caller, writes for staff.

func ListProjects(ctx *gin.Context) {
	query := db.DB.WithContext(ctx.Request.Context()).Model(&models.Project{})

	page, ok := paginate(ctx, query, serializers.ProjectRead)
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, page)
}

func CreateProject(ctx *gin.Context) {
	var body serializers.ProjectInput

	if !bindJSON(ctx, &body) {
		return
	}

	name, err := serializers.ValidateProject(body, false)

	if err != nil {
		writeError(ctx, "failed to validate project", err)
		return
	}

	project := models.Project{Name: name}

	if err := db.DB.WithContext(ctx.Request.Context()).Create(&project).Error; err != nil {
		internalError(ctx, "failed to create project", err)
		return
	}

	recordWrite(ctx, "create", resourceProject, project.ID)

	ctx.JSON(http.StatusCreated, serializers.ProjectRead(&project))
}

func loadProject(ctx *gin.Context) (models.Project, bool) {
	var project models.Project

	projectID, ok := utils.ParamID(ctx, "project_id")
	if !ok {
		notFound(ctx)
		return project, false
	}

	if err := db.DB.WithContext(ctx.Request.Context()).First(&project, projectID).Error; err != nil {
		loadFailed(ctx, resourceProject, err)
		return project, false
	}

	return project, true
}

func GetProject(ctx *gin.Context) {
	project, ok := loadProject(ctx)
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, serializers.ProjectRead(&project))
}

func UpdateProject(ctx *gin.Context) {
	project, ok := loadProject(ctx)
	if !ok {
		return
	}

	var body serializers.ProjectInput

	if !bindJSON(ctx, &body) {
		return
	}

	name, err := serializers.ValidateProject(body, isPartial(ctx))

	if err != nil {
		writeError(ctx, "failed to validate project", err)
		return
	}

	if body.Name != nil {
		project.Name = name
	}

	if err := db.DB.WithContext(ctx.Request.Context()).Omit(clause.Associations).Save(&project).Error; err != nil {
		internalError(ctx, "failed to update project", err)
		return
	}

	recordWrite(ctx, "update", resourceProject, project.ID)

	ctx.JSON(http.StatusOK, serializers.ProjectRead(&project))
}

// DeleteProject cascades to the project's contracts and their logs.
func DeleteProject(ctx *gin.Context) {
	project, ok := loadProject(ctx)
	if !ok {
		return
	}

	if err := db.DB.WithContext(ctx.Request.Context()).Delete(&project).Error; err != nil {
		internalError(ctx, "failed to delete project", err)
		return
	}

	recordWrite(ctx, "delete", resourceProject, project.ID)

	ctx.Status(http.StatusNoContent)
}
