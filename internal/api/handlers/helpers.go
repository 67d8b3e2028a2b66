package handlers

import (
	"fmt"
	"log"
	"net/http"

	"freelance-marketplace/internal/api/middleware"
	"freelance-marketplace/internal/models"
	"freelance-marketplace/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Kind    string            `json:"kind"`
	Details map[string]string `json:"details,omitempty"`
}

var kindStatus = map[string]int{
	services.KindValidation:     http.StatusBadRequest,
	services.KindAuthorization:  http.StatusForbidden,
	services.KindState:          http.StatusConflict,
	services.KindNotFound:       http.StatusNotFound,
	services.KindConflict:       http.StatusConflict,
	services.KindAuthentication: http.StatusUnauthorized,
	services.KindInternal:       http.StatusInternalServerError,
}

// StatusForKind maps an error kind to its HTTP status.
func StatusForKind(kind string) int {
	if status, ok := kindStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// respondError writes err as an ErrorResponse. Internal errors are logged and masked.
func respondError(c *gin.Context, op string, err error) {
	kind := services.Kind(err)
	status := StatusForKind(kind)
	if kind == services.KindInternal {
		log.Printf("%s: %v", op, err)
		c.JSON(status, ErrorResponse{Error: "Internal server error", Kind: kind})
		return
	}
	c.JSON(status, ErrorResponse{Error: err.Error(), Kind: kind})
}

func respondBadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg, Kind: services.KindValidation})
}

func FormatValidationErrors(err error) map[string]string {
	errorsMap := make(map[string]string)
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		errorsMap["error"] = "Invalid validation error type"
		return errorsMap
	}
	for _, fieldError := range validationErrors {
		fieldName := fieldError.Field()
		switch fieldError.Tag() {
		case "required":
			errorsMap[fieldName] = fmt.Sprintf("Field '%s' is required", fieldName)
		case "email":
			errorsMap[fieldName] = fmt.Sprintf("Field '%s' must be a valid email address", fieldName)
		case "url":
			errorsMap[fieldName] = fmt.Sprintf("Field '%s' must be a valid URL", fieldName)
		case "min", "max":
			errorsMap[fieldName] = fmt.Sprintf("Field '%s' failed the '%s=%s' bound", fieldName, fieldError.Tag(), fieldError.Param())
		case "oneof":
			errorsMap[fieldName] = fmt.Sprintf("Field '%s' must be one of: %s", fieldName, fieldError.Param())
		case "gt", "gte", "lte":
			errorsMap[fieldName] = fmt.Sprintf("Field '%s' must be %s %s", fieldName, fieldError.Tag(), fieldError.Param())
		default:
			errorsMap[fieldName] = fmt.Sprintf("Field validation for '%s' failed on the '%s' tag", fieldName, fieldError.Tag())
		}
	}
	return errorsMap
}

// validateRequest runs struct validation and writes a 400 on failure.
func validateRequest(c *gin.Context, v *validator.Validate, req interface{}) bool {
	if err := v.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Validation failed",
			Kind:    services.KindValidation,
			Details: FormatValidationErrors(err),
		})
		return false
	}
	return true
}

// bindJSON decodes the body into req and validates it.
func bindJSON(c *gin.Context, v *validator.Validate, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondBadRequest(c, "Invalid request body: "+err.Error())
		return false
	}
	return validateRequest(c, v, req)
}

// bindQuery decodes query parameters into req and validates it.
func bindQuery(c *gin.Context, v *validator.Validate, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		respondBadRequest(c, "Invalid query parameters: "+err.Error())
		return false
	}
	return validateRequest(c, v, req)
}

func currentActor(c *gin.Context) (models.Actor, bool) {
	actor, err := middleware.GetActorFromContext(c)
	if err != nil {
		log.Printf("Error getting actor from context: %v", err)
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized", Kind: services.KindAuthentication})
		return models.Actor{}, false
	}
	return actor, true
}

func uuidParam(c *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondBadRequest(c, fmt.Sprintf("Invalid %s ID format", label))
		return uuid.Nil, false
	}
	return id, true
}
