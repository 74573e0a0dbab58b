package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/srms/internal/middleware"
	"github.com/stemsi/srms/internal/model"
	"github.com/stemsi/srms/internal/response"
	"github.com/stemsi/srms/internal/service"
	"github.com/stemsi/srms/internal/validator"
)

// ResultHandler handles exam results, including bulk import.
type ResultHandler struct {
	resultService *service.ResultService
}

// NewResultHandler creates a new ResultHandler.
func NewResultHandler(resultService *service.ResultService) *ResultHandler {
	return &ResultHandler{resultService: resultService}
}

// List godoc
// GET /api/v1/results?student_id=&course_id=&limit=&offset=
func (h *ResultHandler) List(c *gin.Context) {
	var filter model.ResultFilter
	if fields := validator.BindQuery(c, &filter); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	results, page, err := h.resultService.List(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Results retrieved successfully", results, page)
}

// Mine godoc
// GET /api/v1/results/student
// Returns the results of the calling student.
func (h *ResultHandler) Mine(c *gin.Context) {
	claims := middleware.GetClaims(c)

	results, err := h.resultService.ForStudent(c.Request.Context(), claims.UserID)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Results retrieved successfully", results)
}

// Get godoc
// GET /api/v1/results/:id
// Students may only read their own results.
func (h *ResultHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.resultService.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	claims := middleware.GetClaims(c)
	if claims.Role != model.RoleAdmin && claims.UserID != result.StudentID {
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
		return
	}

	response.Success(c, http.StatusOK, "Result retrieved successfully", result)
}

// Create godoc
// POST /api/v1/results
func (h *ResultHandler) Create(c *gin.Context) {
	var req model.ResultRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.resultService.Create(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "Result created successfully", result)
}

// Update godoc
// PUT /api/v1/results/:id
func (h *ResultHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req model.ResultRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.resultService.Update(c.Request.Context(), id, &req)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Result updated successfully", result)
}

// Delete godoc
// DELETE /api/v1/results/:id
func (h *ResultHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.resultService.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}

	response.SuccessMessage(c, http.StatusOK, "Result deleted successfully")
}

// Bulk godoc
// POST /api/v1/results/bulk
// Validates every draft and hands them to the import worker.
func (h *ResultHandler) Bulk(c *gin.Context) {
	var req model.BulkResultRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	queued, err := h.resultService.QueueBulk(c.Request.Context(), req.Results)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusAccepted, "Results queued for import", model.BulkResultResponse{Queued: queued})
}
