package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-hub/internal/delivery/http/middleware"
	"resume-hub/internal/delivery/http/response"
	"resume-hub/internal/domain"
	"resume-hub/pkg/apperror"
)

type ResumeHandler struct {
	resumeUC domain.ResumeUsecase
}

// NewResumeHandler registers the candidate's own-resume routes
func NewResumeHandler(protected *gin.RouterGroup, resumeUC domain.ResumeUsecase) {
	handler := &ResumeHandler{resumeUC: resumeUC}

	candidate := protected.Group("/candidate")
	candidate.Use(middleware.RequireRole(domain.RoleCandidate))
	{
		candidate.GET("/resume", handler.GetOwn)
		candidate.POST("/resume", handler.Create)
		candidate.PUT("/resume/:id", handler.Update)
		candidate.DELETE("/resume/:id", handler.Delete)
	}
}

// GetOwn godoc
// @Summary      Get my resume
// @Description  Returns the caller's resume, or null when none exists yet.
// @Tags         candidate
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.Resume
// @Failure      401  {object}  response.ErrorBody
// @Failure      403  {object}  response.ErrorBody
// @Router       /candidate/resume [get]
func (h *ResumeHandler) GetOwn(c *gin.Context) {
	resume, err := h.resumeUC.GetOwn(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	if resume == nil {
		// absence is a valid state
		response.JSON(c, http.StatusOK, nil)
		return
	}
	response.JSON(c, http.StatusOK, resume)
}

// Create godoc
// @Summary      Create my resume
// @Tags         candidate
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        resume  body      domain.ResumeInput  true  "Resume fields"
// @Success      201     {object}  response.IDBody
// @Failure      400     {object}  response.ErrorBody
// @Failure      403     {object}  response.ErrorBody
// @Failure      409     {object}  response.ErrorBody
// @Router       /candidate/resume [post]
func (h *ResumeHandler) Create(c *gin.Context) {
	var input domain.ResumeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(apperror.Validation("Invalid request body"))
		return
	}

	id, err := h.resumeUC.Create(c.Request.Context(), input)
	if err != nil {
		c.Error(err)
		return
	}
	response.JSON(c, http.StatusCreated, response.IDBody{ID: id})
}

// Update godoc
// @Summary      Update my resume
// @Description  Merges the provided fields. skills replaces the list; add_skills and remove_skills edit it.
// @Tags         candidate
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      string              true  "Resume ID"
// @Param        resume  body      domain.ResumePatch  true  "Fields to change"
// @Success      200     {object}  response.MessageBody
// @Failure      400     {object}  response.ErrorBody
// @Failure      403     {object}  response.ErrorBody
// @Failure      404     {object}  response.ErrorBody
// @Router       /candidate/resume/{id} [put]
func (h *ResumeHandler) Update(c *gin.Context) {
	var patch domain.ResumePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.Error(apperror.Validation("Invalid request body"))
		return
	}

	if err := h.resumeUC.Update(c.Request.Context(), c.Param("id"), patch); err != nil {
		c.Error(err)
		return
	}
	response.Message(c, http.StatusOK, "Resume updated")
}

// Delete godoc
// @Summary      Delete my resume
// @Tags         candidate
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Resume ID"
// @Success      200  {object}  response.MessageBody
// @Failure      403  {object}  response.ErrorBody
// @Failure      404  {object}  response.ErrorBody
// @Router       /candidate/resume/{id} [delete]
func (h *ResumeHandler) Delete(c *gin.Context) {
	if err := h.resumeUC.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	response.Message(c, http.StatusOK, "Resume deleted")
}
