package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/quiz-generator/internal/models"
	"github.com/SAP-F-2025/quiz-generator/internal/services"
	"github.com/SAP-F-2025/quiz-generator/internal/utils"
)

type TripHandler struct {
	BaseHandler
	tripService services.TripService
}

func NewTripHandler(tripService services.TripService, logger utils.Logger) *TripHandler {
	return &TripHandler{
		BaseHandler: NewBaseHandler(logger),
		tripService: tripService,
	}
}

// PlanTrip runs the trip planner crew
// @Summary Plan trip
// @Tags trips
// @Accept json
// @Produce json
// @Param request body models.TripRequest true "Region and trip type"
// @Success 201 {object} SuccessResponse{data=services.TripPlanResult}
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /trips [post]
func (h *TripHandler) PlanTrip(c *gin.Context) {
	var req models.TripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}

	h.LogRequest(c, "Planning trip", "preferred_region", req.PreferredRegion, "trip_type", req.TripType)

	result, err := h.tripService.Plan(c.Request.Context(), &req)
	if err != nil {
		if services.IsValidation(err) {
			h.RespondWithError(c, http.StatusBadRequest, "Validation failed", err, services.FormatError(err))
			return
		}
		h.RespondWithError(c, http.StatusBadGateway, "Trip planning failed", err, err.Error())
		return
	}

	h.RespondWithSuccess(c, http.StatusCreated, "Trip planned successfully", result, "output_path", result.OutputPath)
}
