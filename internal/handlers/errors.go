package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/t3labs/time-tracker-api/internal/apierrors"
	"github.com/t3labs/time-tracker-api/internal/repository"
	"github.com/t3labs/time-tracker-api/internal/services"
)

// respondServiceError translates a service error into the standardized error
// response. Unknown errors become an opaque 500.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrEmployeeNotFound),
		errors.Is(err, services.ErrProjectNotFound),
		errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, err.Error())

	case errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrOverlappingWindow),
		errors.Is(err, services.ErrProjectHasTimeWindows),
		errors.Is(err, services.ErrTaskHasTimeWindows),
		errors.Is(err, services.ErrTaskProjectImmutable),
		errors.Is(err, repository.ErrVersionConflict):
		apierrors.Conflict(c, err.Error())

	case errors.Is(err, services.ErrInvalidMember),
		errors.Is(err, services.ErrInvalidPayroll):
		apierrors.BadRequest(c, apierrors.ErrCodeInvalidMember, err.Error())

	case errors.Is(err, services.ErrInvalidAssignee):
		apierrors.BadRequest(c, apierrors.ErrCodeInvalidAssignee, err.Error())

	case errors.Is(err, services.ErrInvalidRange):
		apierrors.BadRequest(c, apierrors.ErrCodeInvalidRange, err.Error())

	case errors.Is(err, services.ErrInvalidActivationToken):
		apierrors.BadRequest(c, apierrors.ErrCodeInvalidToken, err.Error())

	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.Unauthorized(c, err.Error())

	case errors.Is(err, services.ErrNotAssigned),
		errors.Is(err, services.ErrEmployeeInactive),
		errors.Is(err, services.ErrProjectArchived):
		apierrors.Forbidden(c, err.Error())

	case errors.Is(err, services.ErrEmployeeNameEmpty),
		errors.Is(err, services.ErrEmployeeEmailEmpty),
		errors.Is(err, services.ErrProjectNameEmpty),
		errors.Is(err, services.ErrTaskNameEmpty),
		errors.Is(err, services.ErrPasswordTooShort),
		errors.Is(err, services.ErrEmptyBulkFilter),
		errors.Is(err, services.ErrEmptyBulkUpdate),
		errors.Is(err, services.ErrInvalidPermissionState):
		apierrors.InvalidInput(c, err.Error())

	default:
		apierrors.InternalError(c)
	}
}
