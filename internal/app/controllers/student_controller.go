package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rahul/acadcore/internal/app/models"
	"github.com/rahul/acadcore/internal/app/models/dto"
	"github.com/rahul/acadcore/internal/app/repositories"
	"github.com/rahul/acadcore/internal/app/views"
	"github.com/rahul/acadcore/internal/middleware"
)

// StudentController exposes the student collection.
type StudentController struct {
	registry *views.Registry
}

// NewStudentController creates a new StudentController
func NewStudentController(registry *views.Registry) *StudentController {
	return &StudentController{registry: registry}
}

// List returns all students, newest first.
func (c *StudentController) List(ctx *gin.Context) {
	sess := middleware.SessionFrom(ctx)
	view := c.registry.For(sess.UserID).Students

	if err := view.Refresh(ctx.Request.Context(), sess); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewDataResponse(view.State().Records))
}

// Create adds a student record. Admin only.
func (c *StudentController) Create(ctx *gin.Context) {
	sess := middleware.SessionFrom(ctx)

	var student models.Student
	if err := ctx.ShouldBindJSON(&student); err != nil {
		badRequest(ctx, "Invalid student data", err)
		return
	}

	view := c.registry.For(sess.UserID).Students
	if err := view.Create(ctx.Request.Context(), sess, student); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewDataResponse(view.State().Records))
}

// Update applies a partial update. Admin only.
func (c *StudentController) Update(ctx *gin.Context) {
	sess := middleware.SessionFrom(ctx)

	var patch repositories.StudentPatch
	if err := ctx.ShouldBindJSON(&patch); err != nil {
		badRequest(ctx, "Invalid student patch", err)
		return
	}

	view := c.registry.For(sess.UserID).Students
	if err := view.Update(ctx.Request.Context(), sess, ctx.Param("id"), patch); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewDataResponse(view.State().Records))
}

// Delete removes a student. Admin only; the store cascades to dependent
// marks and attendance rows.
func (c *StudentController) Delete(ctx *gin.Context) {
	sess := middleware.SessionFrom(ctx)

	view := c.registry.For(sess.UserID).Students
	if err := view.Remove(ctx.Request.Context(), sess, ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewDataResponse(view.State().Records))
}
