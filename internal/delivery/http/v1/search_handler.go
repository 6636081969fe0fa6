package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"resume-hub/internal/delivery/http/middleware"
	"resume-hub/internal/delivery/http/response"
	"resume-hub/internal/domain"
	"resume-hub/internal/search"
	"resume-hub/pkg/apperror"
	"resume-hub/pkg/security"
)

type SearchHandler struct {
	resumeUC        domain.ResumeUsecase
	defaultPageSize int
	secLogger       *security.SecurityLogger
}

// NewSearchHandler registers recruiter search routes
func NewSearchHandler(protected *gin.RouterGroup, resumeUC domain.ResumeUsecase, defaultPageSize int, secLogger *security.SecurityLogger) {
	if secLogger == nil {
		secLogger = security.DefaultLogger()
	}
	handler := &SearchHandler{resumeUC: resumeUC, defaultPageSize: defaultPageSize, secLogger: secLogger}

	recruiter := protected.Group("/recruiter")
	recruiter.Use(middleware.RequireRole(domain.RoleRecruiter))
	{
		recruiter.GET("/search", handler.Search)
		recruiter.GET("/search/export", handler.Export)
	}
}

func parseFilter(c *gin.Context) (domain.SearchFilter, error) {
	return search.NewFilter(c.Query("q"), c.Query("skills"), c.Query("role"), c.Query("experience"))
}

func parsePositiveInt(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.Validation(name + " must be an integer")
	}
	return v, nil
}

// Search godoc
// @Summary      Search resumes
// @Description  Filters combine with AND. skills matches any listed skill, case-insensitively. Results are newest first.
// @Tags         recruiter
// @Produce      json
// @Security     BearerAuth
// @Param        q           query     string  false  "Substring of name, email, role, projects or resume text"
// @Param        skills      query     string  false  "Comma-separated skills"
// @Param        role        query     string  false  "Substring of role"
// @Param        experience  query     string  false  "Fresher or Experienced"
// @Param        page        query     int     false  "Page number (default: 1)"
// @Param        page_size   query     int     false  "Items per page (default: 10)"
// @Success      200  {object}  domain.SearchResult
// @Failure      400  {object}  response.ErrorBody
// @Failure      403  {object}  response.ErrorBody
// @Router       /recruiter/search [get]
func (h *SearchHandler) Search(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		c.Error(err)
		return
	}
	page, err := parsePositiveInt(c, "page", 1)
	if err != nil {
		c.Error(err)
		return
	}
	pageSize, err := parsePositiveInt(c, "page_size", h.defaultPageSize)
	if err != nil {
		c.Error(err)
		return
	}

	result, err := h.resumeUC.Search(c.Request.Context(), domain.SearchQuery{
		Filter:   filter,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		c.Error(err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Export godoc
// @Summary      Export matching resumes
// @Description  Downloads every resume matching the filters as an Excel workbook.
// @Tags         recruiter
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Param        q           query     string  false  "Substring of name, email, role, projects or resume text"
// @Param        skills      query     string  false  "Comma-separated skills"
// @Param        role        query     string  false  "Substring of role"
// @Param        experience  query     string  false  "Fresher or Experienced"
// @Success      200  {file}    binary
// @Failure      400  {object}  response.ErrorBody
// @Failure      403  {object}  response.ErrorBody
// @Router       /recruiter/search/export [get]
func (h *SearchHandler) Export(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		c.Error(err)
		return
	}

	data, filename, err := h.resumeUC.Export(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}

	p, _ := domain.PrincipalFromContext(c.Request.Context())
	h.secLogger.LogDataExport(c.Request.Context(), p.UserID, c.ClientIP(), response.RequestID(c), map[string]interface{}{
		"q":          filter.Query,
		"skills":     filter.Skills,
		"role":       filter.Role,
		"experience": string(filter.Experience),
		"bytes":      len(data),
	})

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
