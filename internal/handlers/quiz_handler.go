package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/quiz-generator/internal/models"
	"github.com/SAP-F-2025/quiz-generator/internal/repositories"
	"github.com/SAP-F-2025/quiz-generator/internal/services"
	"github.com/SAP-F-2025/quiz-generator/internal/utils"
)

type QuizHandler struct {
	BaseHandler
	quizService services.QuizService
}

func NewQuizHandler(quizService services.QuizService, logger utils.Logger) *QuizHandler {
	return &QuizHandler{
		BaseHandler: NewBaseHandler(logger),
		quizService: quizService,
	}
}

// GenerateQuiz runs the quiz pipeline for a URL
// @Summary Generate quiz
// @Tags quizzes
// @Accept json
// @Produce json
// @Param request body services.GenerateQuizRequest true "Source URL"
// @Success 201 {object} SuccessResponse{data=services.QuizResult}
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse{details=services.QuizResult}
// @Router /quizzes [post]
func (h *QuizHandler) GenerateQuiz(c *gin.Context) {
	var req services.GenerateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}

	h.LogRequest(c, "Generating quiz", "url", req.URL, "use_cache", req.UseCache)

	result, err := h.quizService.Generate(c.Request.Context(), &req)
	if err != nil {
		switch {
		case services.IsValidation(err):
			h.RespondWithError(c, http.StatusBadRequest, "Validation failed", err, services.FormatError(err))
		case result != nil:
			// The run itself failed; the result carries the failure report path.
			h.RespondWithError(c, http.StatusBadGateway, "Quiz generation failed", err, result)
		default:
			h.RespondWithError(c, http.StatusInternalServerError, "Internal server error", err)
		}
		return
	}

	h.RespondWithSuccess(c, http.StatusCreated, "Quiz generated successfully", result,
		"run_id", result.RunID, "questions", result.Quiz.QuestionCount())
}

// GetRun returns a stored quiz run
// @Summary Get quiz run
// @Tags quizzes
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} SuccessResponse{data=models.QuizRun}
// @Failure 404 {object} ErrorResponse
// @Router /quizzes/{id} [get]
func (h *QuizHandler) GetRun(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	run, err := h.quizService.GetRun(c.Request.Context(), id)
	if err != nil {
		if services.IsNotFound(err) {
			h.RespondWithError(c, http.StatusNotFound, "Quiz run not found", err)
			return
		}
		h.RespondWithError(c, http.StatusInternalServerError, "Failed to get quiz run", err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Quiz run retrieved", Data: run})
}

// GetLatestRun returns the newest successful run for a URL
// @Summary Latest quiz for a URL
// @Tags quizzes
// @Produce json
// @Param url query string true "Source URL"
// @Success 200 {object} SuccessResponse{data=models.QuizRun}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /quizzes/latest [get]
func (h *QuizHandler) GetLatestRun(c *gin.Context) {
	url := strings.TrimSpace(c.Query("url"))
	if url == "" {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid url", nil, "url query parameter is required")
		return
	}

	run, err := h.quizService.GetLatestRun(c.Request.Context(), url)
	if err != nil {
		if services.IsNotFound(err) {
			h.RespondWithError(c, http.StatusNotFound, "No successful quiz run for this URL", err)
			return
		}
		h.RespondWithError(c, http.StatusInternalServerError, "Failed to get quiz run", err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Quiz run retrieved", Data: run})
}

// ListRuns lists quiz runs
// @Summary List quiz runs
// @Tags quizzes
// @Produce json
// @Param status query string false "success or failure"
// @Param url query string false "Source URL"
// @Param date_from query string false "RFC3339 or YYYY-MM-DD"
// @Param date_to query string false "RFC3339 or YYYY-MM-DD"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Param sort_by query string false "created_at, duration_ms or question_count"
// @Param sort_order query string false "asc or desc"
// @Success 200 {object} ListResponse
// @Failure 400 {object} ErrorResponse
// @Router /quizzes [get]
func (h *QuizHandler) ListRuns(c *gin.Context) {
	filters := repositories.QuizRunFilters{
		URL:       strings.TrimSpace(c.Query("url")),
		Limit:     getIntQuery(c, "limit", 20),
		Offset:    getIntQuery(c, "offset", 0),
		SortBy:    c.Query("sort_by"),
		SortOrder: strings.ToLower(c.Query("sort_order")),
	}

	if status := c.Query("status"); status != "" {
		s := models.RunStatus(strings.ToLower(status))
		if s != models.RunSuccess && s != models.RunFailure {
			h.RespondWithError(c, http.StatusBadRequest, "Invalid status", nil, "status must be success or failure")
			return
		}
		filters.Status = &s
	}

	var ok bool
	if filters.DateFrom, ok = getDateQuery(c, "date_from"); !ok {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid date_from", nil)
		return
	}
	if filters.DateTo, ok = getDateQuery(c, "date_to"); !ok {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid date_to", nil)
		return
	}

	filters = repositories.NormalizeFilters(filters)
	runs, total, err := h.quizService.ListRuns(c.Request.Context(), filters)
	if err != nil {
		h.RespondWithError(c, http.StatusInternalServerError, "Failed to list quiz runs", err)
		return
	}
	if runs == nil {
		runs = []*models.QuizRun{}
	}

	c.JSON(http.StatusOK, ListResponse{
		Items:  runs,
		Total:  total,
		Limit:  filters.Limit,
		Offset: filters.Offset,
	})
}

// GetStats returns aggregate run statistics
// @Summary Quiz run statistics
// @Tags quizzes
// @Produce json
// @Success 200 {object} SuccessResponse{data=repositories.QuizRunStats}
// @Router /quizzes/stats [get]
func (h *QuizHandler) GetStats(c *gin.Context) {
	stats, err := h.quizService.GetStats(c.Request.Context())
	if err != nil {
		h.RespondWithError(c, http.StatusInternalServerError, "Failed to get quiz statistics", err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Quiz statistics retrieved", Data: stats})
}
