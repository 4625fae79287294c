package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rahul/acadcore/internal/app/models"
	"github.com/rahul/acadcore/internal/app/models/dto"
	"github.com/rahul/acadcore/internal/app/views"
	"github.com/rahul/acadcore/internal/identity"
	"github.com/rahul/acadcore/internal/middleware"
	"github.com/rahul/acadcore/internal/pkg/apperrors"
	"github.com/rahul/acadcore/internal/pkg/logger"
	"github.com/rahul/acadcore/internal/session"
)

// AuthController handles sign-up, sign-in, sign-out and role selection.
type AuthController struct {
	provider identity.Provider
	resolver *session.Resolver
	registry *views.Registry
}

// NewAuthController creates a new AuthController
func NewAuthController(provider identity.Provider, resolver *session.Resolver, registry *views.Registry) *AuthController {
	return &AuthController{provider: provider, resolver: resolver, registry: registry}
}

// SignUp registers a new account and creates its default student profile.
func (c *AuthController) SignUp(ctx *gin.Context) {
	var req dto.SignUpRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "Invalid sign-up data", err)
		return
	}

	ident, err := c.provider.SignUp(ctx.Request.Context(), identity.Credentials{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	// New accounts start as students; admins reassign roles at the store.
	// A failed profile insert is not fatal: the role-selection flow covers it.
	if err := c.resolver.RegisterProfile(ctx.Request.Context(), ident.UserID, ident.Email, req.FullName, models.RoleStudent); err != nil {
		logger.Warn().Err(err).Str("userID", ident.UserID).Msg("default profile creation failed")
	}

	ctx.JSON(http.StatusCreated, dto.NewDataResponse(dto.SessionResponse{
		UserID: ident.UserID,
		Email:  ident.Email,
		Role:   string(models.RoleStudent),
	}))
}

// SignIn performs a password sign-in and resolves the session's role.
func (c *AuthController) SignIn(ctx *gin.Context) {
	var req dto.SignInRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "Invalid credentials payload", err)
		return
	}

	ident, err := c.provider.SignIn(ctx.Request.Context(), identity.Credentials{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindAuthorization {
			ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
				dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Invalid credentials"),
			))
			return
		}
		middleware.HandleAPIError(ctx, err)
		return
	}

	sess, err := c.resolver.ResolveUser(ctx.Request.Context(), ident.UserID, ident.Email)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	state := session.StateReady
	if sess.Role == models.RoleUnknown {
		state = session.StateRoleUnknown
	}

	ctx.JSON(http.StatusOK, dto.NewDataResponse(dto.SessionResponse{
		AccessToken: ident.AccessToken,
		UserID:      sess.UserID,
		Email:       sess.Email,
		Role:        string(sess.Role),
		State:       string(state),
	}))
}

// SignOut revokes the session and discards the user's view state.
func (c *AuthController) SignOut(ctx *gin.Context) {
	sess := middleware.SessionFrom(ctx)
	if sess.Authenticated() {
		c.registry.Drop(sess.UserID)
	}

	if err := c.provider.SignOut(ctx.Request.Context()); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewDataResponse(gin.H{"signedOut": true}))
}

// ChooseRole persists a role for a session that has none yet.
func (c *AuthController) ChooseRole(ctx *gin.Context) {
	sess := middleware.SessionFrom(ctx)

	var req dto.ChooseRoleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "Invalid role payload", err)
		return
	}

	if sess.Role != models.RoleUnknown {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("role is already assigned"))
		return
	}

	role := models.Role(req.Role)
	if err := c.resolver.RegisterProfile(ctx.Request.Context(), sess.UserID, sess.Email, "", role); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	resolved, err := c.resolver.ResolveUser(ctx.Request.Context(), sess.UserID, sess.Email)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewDataResponse(dto.SessionResponse{
		UserID: resolved.UserID,
		Email:  resolved.Email,
		Role:   string(resolved.Role),
		State:  string(session.StateReady),
	}))
}

// Me returns the resolved session for the current request.
func (c *AuthController) Me(ctx *gin.Context) {
	sess := middleware.SessionFrom(ctx)

	state := session.StateReady
	if sess.Role == models.RoleUnknown {
		state = session.StateRoleUnknown
	}

	ctx.JSON(http.StatusOK, dto.NewDataResponse(dto.SessionResponse{
		UserID: sess.UserID,
		Email:  sess.Email,
		Role:   string(sess.Role),
		State:  string(state),
	}))
}

func badRequest(ctx *gin.Context, message string, err error) {
	detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, message).WithDetails(err.Error())
	ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
}
