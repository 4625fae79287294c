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

// SubjectController exposes the subject collection.
type SubjectController struct {
	registry *views.Registry
}

// NewSubjectController creates a new SubjectController
func NewSubjectController(registry *views.Registry) *SubjectController {
	return &SubjectController{registry: registry}
}

// List returns all subjects, newest first.
func (c *SubjectController) List(ctx *gin.Context) {
	sess := middleware.SessionFrom(ctx)
	view := c.registry.For(sess.UserID).Subjects

	if err := view.Refresh(ctx.Request.Context(), sess); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewDataResponse(view.State().Records))
}

// Create adds a subject. Admin only. The code is stored upper-case.
func (c *SubjectController) Create(ctx *gin.Context) {
	sess := middleware.SessionFrom(ctx)

	var subject models.Subject
	if err := ctx.ShouldBindJSON(&subject); err != nil {
		badRequest(ctx, "Invalid subject data", err)
		return
	}

	view := c.registry.For(sess.UserID).Subjects
	if err := view.Create(ctx.Request.Context(), sess, subject); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewDataResponse(view.State().Records))
}

// Update applies a partial update. Admin only.
func (c *SubjectController) Update(ctx *gin.Context) {
	sess := middleware.SessionFrom(ctx)

	var patch repositories.SubjectPatch
	if err := ctx.ShouldBindJSON(&patch); err != nil {
		badRequest(ctx, "Invalid subject patch", err)
		return
	}

	view := c.registry.For(sess.UserID).Subjects
	if err := view.Update(ctx.Request.Context(), sess, ctx.Param("id"), patch); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewDataResponse(view.State().Records))
}

// Delete removes a subject. Admin only; dependent marks and attendance rows
// are removed by the store's cascade.
func (c *SubjectController) Delete(ctx *gin.Context) {
	sess := middleware.SessionFrom(ctx)

	view := c.registry.For(sess.UserID).Subjects
	if err := view.Remove(ctx.Request.Context(), sess, ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewDataResponse(view.State().Records))
}
