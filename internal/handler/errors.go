package handler

import (
	"errors"
	"net/http"

	"rental-backend/internal/service"
	"rental-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// respondError maps the service error taxonomy onto HTTP statuses:
// validation 400, availability and constraint conflicts 409, storage 500.
// Availability failures include the full shortfall list so the client can
// show every failing line at once.
func respondError(c *gin.Context, err error) {
	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, validationErr.Error()))
		return
	}

	var availErr *service.AvailabilityError
	if errors.As(err, &availErr) {
		res := response.Error(http.StatusConflict, availErr.Error())
		res.Data = gin.H{"shortfalls": availErr.Shortfalls}
		c.JSON(http.StatusConflict, res)
		return
	}

	var constraintErr *service.ConstraintError
	if errors.As(err, &constraintErr) {
		c.JSON(http.StatusConflict, response.Error(http.StatusConflict, constraintErr.Error()))
		return
	}

	c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Internal server error"))
}
