// Package handler provides HTTP request handlers for the control API.
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"site_blocker/internal/controller"
	"site_blocker/internal/models"
	"site_blocker/internal/session"
	"site_blocker/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionController is the command surface served over HTTP.
type SessionController interface {
	StartBlocking(ctx context.Context, minutes float64) (session.BlockingSession, error)
	TempUnblock(ctx context.Context, minutes float64) (session.BlockingSession, error)
	Resume(ctx context.Context) (session.BlockingSession, error)
	GetStatus(ctx context.Context) (session.BlockingSession, error)
}

// SessionHandler handles blocking session commands.
type SessionHandler struct {
	ctrl SessionController
}

// NewSessionHandler creates a new SessionHandler instance.
func NewSessionHandler(ctrl SessionController) *SessionHandler {
	return &SessionHandler{ctrl: ctrl}
}

// HandleMessage accepts {"action": ..., "minutes": ...} envelopes. Commands
// answer {"success": true}; getStatus answers the bare status record.
func (h *SessionHandler) HandleMessage(c *gin.Context) {
	var req models.MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	switch req.Action {
	case models.ActionGetStatus:
		h.respondStatus(c)
	case models.ActionStartBlocking:
		h.runMinutes(c, req.Minutes, h.ctrl.StartBlocking)
	case models.ActionTempUnblock:
		h.runMinutes(c, req.Minutes, h.ctrl.TempUnblock)
	case models.ActionResume:
		s, err := h.ctrl.Resume(ctx)
		h.respondAck(c, s, err)
	default:
		h.badRequest(c, "Unknown action: "+req.Action)
	}
}

// StartBlocking handles POST /api/blocking.
func (h *SessionHandler) StartBlocking(c *gin.Context) {
	minutes, ok := h.bindMinutes(c)
	if !ok {
		return
	}
	h.runMinutes(c, minutes, h.ctrl.StartBlocking)
}

// TempUnblock handles POST /api/temp-unblock.
func (h *SessionHandler) TempUnblock(c *gin.Context) {
	minutes, ok := h.bindMinutes(c)
	if !ok {
		return
	}
	h.runMinutes(c, minutes, h.ctrl.TempUnblock)
}

// Resume handles POST /api/resume.
func (h *SessionHandler) Resume(c *gin.Context) {
	s, err := h.ctrl.Resume(c.Request.Context())
	h.respondAck(c, s, err)
}

// GetStatus handles GET /api/status.
func (h *SessionHandler) GetStatus(c *gin.Context) {
	h.respondStatus(c)
}

func (h *SessionHandler) bindMinutes(c *gin.Context) (*float64, bool) {
	var req models.MinutesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request payload: "+err.Error())
		return nil, false
	}
	return req.Minutes, true
}

type minutesCommand func(ctx context.Context, minutes float64) (session.BlockingSession, error)

func (h *SessionHandler) runMinutes(c *gin.Context, minutes *float64, cmd minutesCommand) {
	if minutes == nil {
		h.handleError(c, errMissingMinutes)
		return
	}
	s, err := cmd(c.Request.Context(), *minutes)
	h.respondAck(c, s, err)
}

func (h *SessionHandler) respondAck(c *gin.Context, s session.BlockingSession, err error) {
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.AckResponse{
		Success: true,
		Status:  models.NewStatusDTO(s),
	})
}

func (h *SessionHandler) respondStatus(c *gin.Context) {
	s, err := h.ctrl.GetStatus(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewStatusDTO(s))
}

var errMissingMinutes = errors.New("invalid input: minutes is required")

func (h *SessionHandler) handleError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, controller.ErrInvalidInput), errors.Is(err, errMissingMinutes):
		status = http.StatusBadRequest
	case errors.Is(err, controller.ErrInvalidTransition):
		status = http.StatusConflict
	case errors.Is(err, controller.ErrGateway):
		status = http.StatusBadGateway
	case errors.Is(err, controller.ErrPersistence):
		status = http.StatusServiceUnavailable
	}

	if status >= http.StatusInternalServerError {
		logger.Log.Error("Command failed",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
		)
	} else {
		logger.Log.Warn("Command rejected",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
		)
	}

	c.JSON(status, models.ErrorResponse{
		Status:    status,
		Error:     http.StatusText(status),
		Message:   err.Error(),
		Timestamp: time.Now(),
		Path:      c.Request.URL.Path,
	})
}

func (h *SessionHandler) badRequest(c *gin.Context, message string) {
	logger.Log.Warn("Invalid request payload",
		zap.String("message", message),
		zap.String("path", c.Request.URL.Path),
	)
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Status:    http.StatusBadRequest,
		Error:     "Bad Request",
		Message:   message,
		Timestamp: time.Now(),
		Path:      c.Request.URL.Path,
	})
}
