package http

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/bonjohen/chess-metric-analyzer/internal/core"
	"github.com/bonjohen/chess-metric-analyzer/internal/processor"
	"github.com/bonjohen/chess-metric-analyzer/internal/service"
)

const rateLimitRate = 10 // req/sec

// Config holds the transport settings; zero values take the defaults
type Config struct {
	DevMode   bool
	RateLimit int
	Quiet     bool // no request log
}

// HTTPHandler routes requests to the processor
type HTTPHandler struct {
	proc *processor.Processor
	svc  *service.Service
}

func NewHTTPHandler(proc *processor.Processor, svc *service.Service) *HTTPHandler {
	return &HTTPHandler{proc: proc, svc: svc}
}

func NewFiberApp(proc *processor.Processor, svc *service.Service, cfg Config) *fiber.App {
	h := NewHTTPHandler(proc, svc)

	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	})

	// Global middleware (order matters)
	app.Use(recover.New())
	if !cfg.Quiet {
		app.Use(logger.New(logger.Config{
			Format: "${time} ${status} ${method} ${path} ${latency}\n",
		}))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Health check (no rate limit)
	app.Get("/health", h.Health)

	api := app.Group("/api/v1")

	maxReq := cfg.RateLimit
	if maxReq <= 0 {
		maxReq = rateLimitRate
	}
	if cfg.DevMode {
		maxReq *= 2
	}
	api.Use(limiter.New(limiter.Config{
		Max:        maxReq,
		Expiration: 1 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			if xff := c.Get("X-Forwarded-For"); xff != "" {
				if idx := strings.Index(xff, ","); idx != -1 {
					return strings.TrimSpace(xff[:idx])
				}
				return xff
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(core.ErrorResponse{
				Error:   "rate limit exceeded",
				Code:    core.ErrRateLimitExceeded,
				Details: fmt.Sprintf("%d requests per second allowed", maxReq),
			})
		},
	}))

	api.Use(contentTypeValidator)
	api.Use(validationMiddleware)

	api.Post("/sessions", h.CreateSession)
	api.Get("/sessions/:sessionId", h.GetSession)
	api.Delete("/sessions/:sessionId", h.DeleteSession)
	api.Post("/sessions/:sessionId/clicks", h.Click)
	api.Post("/sessions/:sessionId/position", h.LoadPosition)
	api.Put("/sessions/:sessionId/perspective", h.SetPerspective)
	api.Put("/sessions/:sessionId/profile", h.SetProfile)
	api.Put("/sessions/:sessionId/weights", h.SetWeight)
	api.Put("/sessions/:sessionId/pieces", h.SetPieceValue)
	api.Post("/sessions/:sessionId/analysis", h.StartAnalysis)
	api.Delete("/sessions/:sessionId/analysis", h.StopAnalysis)
	api.Post("/arrows", h.RenderArrows)
	api.Post("/overlay", h.RenderOverlay)
	api.Post("/board", h.RenderBoard)
	api.Get("/profiles", h.ListProfiles)

	return app
}

// contentTypeValidator ensures POST and PUT requests have application/json
func contentTypeValidator(c *fiber.Ctx) error {
	method := c.Method()
	if method == fiber.MethodPost || method == fiber.MethodPut {
		contentType := c.Get("Content-Type")
		if contentType != "" && !strings.HasPrefix(contentType, fiber.MIMEApplicationJSON) {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(core.ErrorResponse{
				Error:   "unsupported media type",
				Code:    core.ErrInvalidContent,
				Details: "Content-Type must be application/json",
			})
		}
	}
	return c.Next()
}

// customErrorHandler provides consistent error responses
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	response := core.ErrorResponse{
		Error: "internal server error",
		Code:  core.ErrInternalError,
	}

	var ae *apiError
	if errors.As(err, &ae) {
		return c.Status(ae.status).JSON(ae.body)
	}

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		response.Error = e.Message

		switch code {
		case fiber.StatusNotFound:
			response.Code = core.ErrInvalidRequest
			response.Details = "no such route"
		case fiber.StatusBadRequest:
			response.Code = core.ErrInvalidRequest
		case fiber.StatusTooManyRequests:
			response.Code = core.ErrRateLimitExceeded
		}
	}

	return c.Status(code).JSON(response)
}

// Health check endpoint with storage status
func (h *HTTPHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":   "healthy",
		"time":     time.Now().Unix(),
		"storage":  h.svc.GetStorageHealth(),
		"sessions": h.svc.SessionCount(),
	})
}

func (h *HTTPHandler) CreateSession(c *fiber.Ctx) error {
	req, err := validatedBody[core.CreateSessionRequest](c)
	if err != nil {
		return err
	}
	resp := h.proc.Dispatch(c.UserContext(), "", processor.NewCreateSessionEvent(*req))
	return respond(c, resp, fiber.StatusCreated)
}

// GetSession returns the session view. With wait=true it holds the request
// until the session version differs from the given version or the wait
// times out.
func (h *HTTPHandler) GetSession(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}

	if c.Query("wait", "false") != "true" {
		return respond(c, h.proc.Dispatch(c.UserContext(), id, processor.GetView{}), fiber.StatusOK)
	}

	version, err := strconv.Atoi(c.Query("version", "-1"))
	if err != nil {
		version = -1
	}

	sess, err := h.svc.GetSession(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(core.ErrorResponse{
			Error: "session not found",
			Code:  core.ErrSessionNotFound,
		})
	}
	sess.Lock()
	current := sess.Version
	sess.Unlock()

	if current == version {
		ctx, cancel := context.WithCancel(c.UserContext())
		notify, release := h.svc.RegisterWait(ctx, id, version)
		<-notify
		release()
		cancel()
	}

	return respond(c, h.proc.Dispatch(c.UserContext(), id, processor.GetView{}), fiber.StatusOK)
}

func (h *HTTPHandler) DeleteSession(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	resp := h.proc.Dispatch(c.UserContext(), id, processor.DeleteSession{})
	if !resp.Success {
		return respond(c, resp, fiber.StatusOK)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *HTTPHandler) Click(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	req, err := validatedBody[core.ClickRequest](c)
	if err != nil {
		return err
	}
	return respond(c, h.proc.Dispatch(c.UserContext(), id, processor.NewClickEvent(*req)), fiber.StatusOK)
}

func (h *HTTPHandler) LoadPosition(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	req, err := validatedBody[core.PositionRequest](c)
	if err != nil {
		return err
	}
	return respond(c, h.proc.Dispatch(c.UserContext(), id, processor.LoadPosition{FEN: req.FEN}), fiber.StatusOK)
}

func (h *HTTPHandler) SetPerspective(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	req, err := validatedBody[core.PerspectiveRequest](c)
	if err != nil {
		return err
	}
	ev := processor.SetPerspective{Perspective: req.Perspective}
	return respond(c, h.proc.Dispatch(c.UserContext(), id, ev), fiber.StatusOK)
}

func (h *HTTPHandler) SetProfile(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	req, err := validatedBody[core.ProfileRequest](c)
	if err != nil {
		return err
	}
	return respond(c, h.proc.Dispatch(c.UserContext(), id, processor.NewProfileEvent(*req)), fiber.StatusOK)
}

func (h *HTTPHandler) SetWeight(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	req, err := validatedBody[core.WeightRequest](c)
	if err != nil {
		return err
	}
	return respond(c, h.proc.Dispatch(c.UserContext(), id, processor.NewWeightEvent(*req)), fiber.StatusOK)
}

func (h *HTTPHandler) SetPieceValue(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	req, err := validatedBody[core.PieceValueRequest](c)
	if err != nil {
		return err
	}
	return respond(c, h.proc.Dispatch(c.UserContext(), id, processor.NewPieceValueEvent(*req)), fiber.StatusOK)
}

func (h *HTTPHandler) StartAnalysis(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	return respond(c, h.proc.Dispatch(c.UserContext(), id, processor.StartAnalysis{}), fiber.StatusAccepted)
}

func (h *HTTPHandler) StopAnalysis(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	return respond(c, h.proc.Dispatch(c.UserContext(), id, processor.StopAnalysis{}), fiber.StatusOK)
}

func (h *HTTPHandler) RenderArrows(c *fiber.Ctx) error {
	req, err := validatedBody[core.ArrowsRequest](c)
	if err != nil {
		return err
	}
	return respond(c, h.proc.RenderArrows(*req), fiber.StatusOK)
}

// RenderBoard shows position text without touching any session; malformed
// ranks come back empty and listed rather than failing the request
func (h *HTTPHandler) RenderBoard(c *fiber.Ctx) error {
	req, err := validatedBody[core.BoardRequest](c)
	if err != nil {
		return err
	}
	return respond(c, h.proc.RenderBoard(*req), fiber.StatusOK)
}

func (h *HTTPHandler) RenderOverlay(c *fiber.Ctx) error {
	req, err := validatedBody[core.OverlayRequest](c)
	if err != nil {
		return err
	}
	return respond(c, h.proc.RenderOverlay(*req), fiber.StatusOK)
}

func (h *HTTPHandler) ListProfiles(c *fiber.Ctx) error {
	return respond(c, h.proc.ListProfiles(), fiber.StatusOK)
}

// respond maps a processor response onto a status code
func respond(c *fiber.Ctx, resp processor.Response, okStatus int) error {
	if resp.Success {
		return c.Status(okStatus).JSON(resp.Data)
	}

	statusCode := fiber.StatusBadRequest
	switch resp.Error.Code {
	case core.ErrSessionNotFound:
		statusCode = fiber.StatusNotFound
	case core.ErrResourceLimit:
		statusCode = fiber.StatusServiceUnavailable
	case core.ErrInternalError:
		statusCode = fiber.StatusInternalServerError
	}
	return c.Status(statusCode).JSON(resp.Error)
}
