package http

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/bonjohen/chess-metric-analyzer/internal/core"
)

var validate = validator.New()

// apiError is returned by handlers and helpers; customErrorHandler writes it
type apiError struct {
	status int
	body   core.ErrorResponse
}

func (e *apiError) Error() string {
	return e.body.Error
}

// validationMiddleware parses and validates the body of every POST and PUT
// route that takes one, storing the result for the handler
func validationMiddleware(c *fiber.Ctx) error {
	method := c.Method()
	if method != fiber.MethodPost && method != fiber.MethodPut {
		return c.Next()
	}

	path := strings.TrimSuffix(c.Path(), "/")
	var requestType any

	switch {
	case strings.HasSuffix(path, "/sessions") && method == fiber.MethodPost:
		requestType = &core.CreateSessionRequest{}
	case strings.HasSuffix(path, "/clicks") && method == fiber.MethodPost:
		requestType = &core.ClickRequest{}
	case strings.HasSuffix(path, "/position") && method == fiber.MethodPost:
		requestType = &core.PositionRequest{}
	case strings.HasSuffix(path, "/perspective") && method == fiber.MethodPut:
		requestType = &core.PerspectiveRequest{}
	case strings.HasSuffix(path, "/profile") && method == fiber.MethodPut:
		requestType = &core.ProfileRequest{}
	case strings.HasSuffix(path, "/weights") && method == fiber.MethodPut:
		requestType = &core.WeightRequest{}
	case strings.HasSuffix(path, "/pieces") && method == fiber.MethodPut:
		requestType = &core.PieceValueRequest{}
	case strings.HasSuffix(path, "/arrows") && method == fiber.MethodPost:
		requestType = &core.ArrowsRequest{}
	case strings.HasSuffix(path, "/overlay") && method == fiber.MethodPost:
		requestType = &core.OverlayRequest{}
	case strings.HasSuffix(path, "/board") && method == fiber.MethodPost:
		requestType = &core.BoardRequest{}
	default:
		return c.Next()
	}

	// an empty body validates as the zero request
	if len(c.Body()) > 0 {
		if err := c.BodyParser(requestType); err != nil {
			return &apiError{status: fiber.StatusBadRequest, body: core.ErrorResponse{
				Error:   "invalid request body",
				Code:    core.ErrInvalidRequest,
				Details: err.Error(),
			}}
		}
	}

	if errs := validate.Struct(requestType); errs != nil {
		return &apiError{status: fiber.StatusBadRequest, body: core.ErrorResponse{
			Error:   "validation failed",
			Code:    core.ErrInvalidRequest,
			Details: describe(errs),
		}}
	}

	c.Locals("validatedBody", requestType)
	c.Locals("validated", true)

	return c.Next()
}

func describe(errs error) string {
	verrs, ok := errs.(validator.ValidationErrors)
	if !ok {
		return errs.Error()
	}

	var details strings.Builder
	for _, err := range verrs {
		if details.Len() > 0 {
			details.WriteString("; ")
		}
		field := err.Namespace()
		if i := strings.Index(field, "."); i != -1 {
			field = field[i+1:]
		}
		switch err.Tag() {
		case "required":
			fmt.Fprintf(&details, "%s is required", field)
		case "oneof":
			fmt.Fprintf(&details, "%s must be one of [%s]", field, err.Param())
		case "len":
			fmt.Fprintf(&details, "%s must be %s characters", field, err.Param())
		case "min", "gte", "gt":
			if err.Kind() == reflect.String {
				fmt.Fprintf(&details, "%s must be at least %s characters", field, err.Param())
			} else {
				fmt.Fprintf(&details, "%s must be at least %s", field, err.Param())
			}
		case "max", "lte":
			if err.Kind() == reflect.String {
				fmt.Fprintf(&details, "%s must be at most %s characters", field, err.Param())
			} else {
				fmt.Fprintf(&details, "%s must be at most %s", field, err.Param())
			}
		default:
			fmt.Fprintf(&details, "%s failed %s validation", field, err.Tag())
		}
	}
	return details.String()
}

// validatedBody fetches the request stored by validationMiddleware
func validatedBody[T any](c *fiber.Ctx) (*T, error) {
	validated, ok := c.Locals("validated").(bool)
	if !ok || !validated {
		return nil, &apiError{status: fiber.StatusInternalServerError, body: core.ErrorResponse{
			Error: "validation bypass detected",
			Code:  core.ErrInternalError,
		}}
	}
	req, ok := c.Locals("validatedBody").(*T)
	if !ok || req == nil {
		return nil, &apiError{status: fiber.StatusInternalServerError, body: core.ErrorResponse{
			Error: "validation data missing",
			Code:  core.ErrInternalError,
		}}
	}
	return req, nil
}

func sessionID(c *fiber.Ctx) (string, error) {
	id := c.Params("sessionId")
	if _, err := uuid.Parse(id); err != nil {
		return "", &apiError{status: fiber.StatusBadRequest, body: core.ErrorResponse{
			Error:   "invalid session ID format",
			Code:    core.ErrInvalidRequest,
			Details: "session ID must be a valid UUID",
		}}
	}
	return id, nil
}
