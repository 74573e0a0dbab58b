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

// StudentHandler handles student management and the per-student result views.
type StudentHandler struct {
	studentService *service.StudentService
	resultService  *service.ResultService
}

// NewStudentHandler creates a new StudentHandler.
func NewStudentHandler(studentService *service.StudentService, resultService *service.ResultService) *StudentHandler {
	return &StudentHandler{studentService: studentService, resultService: resultService}
}

// ─── Collection ───────────────────────────────────────────────────────────────

// List godoc
// GET /api/v1/students?class=&search=&limit=&offset=
func (h *StudentHandler) List(c *gin.Context) {
	var filter model.StudentFilter
	if fields := validator.BindQuery(c, &filter); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	students, page, err := h.studentService.List(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Students retrieved successfully", students, page)
}

// Dropdown godoc
// GET /api/v1/students/dropdown
func (h *StudentHandler) Dropdown(c *gin.Context) {
	options, err := h.studentService.Dropdown(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Students retrieved successfully", options)
}

// Create godoc
// POST /api/v1/students
func (h *StudentHandler) Create(c *gin.Context) {
	var req model.CreateStudentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	student, err := h.studentService.Create(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "Student created successfully", student)
}

// ─── Single student ───────────────────────────────────────────────────────────

// Get godoc
// GET /api/v1/students/:id
func (h *StudentHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	student, err := h.studentService.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Student retrieved successfully", student)
}

// Update godoc
// PUT /api/v1/students/:id
// Students may edit their own profile but not their class.
func (h *StudentHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateStudentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	student, err := h.studentService.Update(c.Request.Context(), id, &req, middleware.GetClaims(c).Role)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Student updated successfully", student)
}

// Delete godoc
// DELETE /api/v1/students/:id
func (h *StudentHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.studentService.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}

	response.SuccessMessage(c, http.StatusOK, "Student deleted successfully")
}

// Approve godoc
// POST /api/v1/students/:id/approve
func (h *StudentHandler) Approve(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	student, err := h.studentService.Approve(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Student approved successfully", student)
}

// ─── Results views ────────────────────────────────────────────────────────────

// Results godoc
// GET /api/v1/students/results/:id
func (h *StudentHandler) Results(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	results, err := h.resultService.ForStudent(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Results retrieved successfully", results)
}

// Statistics godoc
// GET /api/v1/students/statistics/:id
func (h *StudentHandler) Statistics(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	stats, err := h.resultService.StudentStatistics(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Statistics retrieved successfully", stats)
}
