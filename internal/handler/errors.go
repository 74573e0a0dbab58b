package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stemsi/srms/internal/repository"
	"github.com/stemsi/srms/internal/response"
	"github.com/stemsi/srms/internal/service"
)

// failure pairs an HTTP status with the code clients see.
type failure struct {
	status int
	code   response.ErrCode
}

var knownErrors = []struct {
	err error
	failure
}{
	{service.ErrInvalidCredentials, failure{http.StatusUnauthorized, response.ErrInvalidCredentials}},
	{service.ErrSessionRevoked, failure{http.StatusUnauthorized, response.ErrSessionRevoked}},
	{service.ErrStudentNotFound, failure{http.StatusNotFound, response.ErrStudentNotFound}},
	{service.ErrCourseNotFound, failure{http.StatusNotFound, response.ErrCourseNotFound}},
	{service.ErrResultNotFound, failure{http.StatusNotFound, response.ErrResultNotFound}},
	{repository.ErrDuplicateRollNumber, failure{http.StatusConflict, response.ErrDuplicateRollNumber}},
	{repository.ErrDuplicateEmail, failure{http.StatusConflict, response.ErrDuplicateEmail}},
	{repository.ErrDuplicateCourseCode, failure{http.StatusConflict, response.ErrDuplicateCourseCode}},
	{repository.ErrDuplicateResult, failure{http.StatusConflict, response.ErrDuplicateResult}},
	{repository.ErrNotFound, failure{http.StatusNotFound, response.ErrNotFound}},
	{repository.ErrInvalidData, failure{http.StatusBadRequest, response.ErrValidation}},
}

// fail maps a service or repository error onto the response envelope.
// Unknown errors are attached to the context for the logger and reported
// as a generic 500.
func fail(c *gin.Context, err error) {
	for _, k := range knownErrors {
		if errors.Is(err, k.err) {
			response.Fail(c, k.status, k.code)
			return
		}
	}
	_ = c.Error(err)
	response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
}

// pathID reads a UUID path parameter, answering 400 when it is malformed.
func pathID(c *gin.Context, name string) (string, bool) {
	id := c.Param(name)
	if _, err := uuid.Parse(id); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return "", false
	}
	return id, true
}
