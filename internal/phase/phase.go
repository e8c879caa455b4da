package phase

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ksred/fantaleague-api/internal/types"
	"github.com/ksred/fantaleague-api/pkg/response"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var ErrInvalidPhaseStatus = errors.New("phase status must be OPEN or CLOSED")

// Service is the trade phase gate. It reads the latest phase row to
// decide whether trading is open league-wide; administrators change the
// phase by appending new rows.
type Service struct {
	db *Database
}

func NewService(gormDB *gorm.DB) *Service {
	return &Service{
		db: NewDatabase(gormDB),
	}
}

// Status evaluates the gate at the given instant. A missing phase
// configuration means closed: trading is opt-in, safe by default.
func (s *Service) Status(now time.Time) (*types.PhaseStatusResponse, error) {
	phase, err := s.db.GetLatestPhase()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch trade phase: %w", err)
	}

	if phase == nil {
		return &types.PhaseStatusResponse{
			Open:   false,
			Reason: "no trade phase configured",
		}, nil
	}

	if phase.Status == types.PhaseClosed {
		return &types.PhaseStatusResponse{
			Open:   false,
			Reason: "trading is currently closed",
			Phase:  phase,
		}, nil
	}

	if phase.StartTime != nil && now.Before(*phase.StartTime) {
		return &types.PhaseStatusResponse{
			Open:   false,
			Reason: fmt.Sprintf("trading opens on %s", phase.StartTime.Format("2006-01-02")),
			Phase:  phase,
		}, nil
	}

	if phase.EndTime != nil && now.After(*phase.EndTime) {
		return &types.PhaseStatusResponse{
			Open:   false,
			Reason: fmt.Sprintf("trading closed on %s", phase.EndTime.Format("2006-01-02")),
			Phase:  phase,
		}, nil
	}

	return &types.PhaseStatusResponse{
		Open:  true,
		Phase: phase,
	}, nil
}

// SetPhase appends a new authoritative phase row.
func (s *Service) SetPhase(status string, startTime, endTime *time.Time) (*types.TradePhase, error) {
	if status != types.PhaseOpen && status != types.PhaseClosed {
		return nil, ErrInvalidPhaseStatus
	}

	phase := &types.TradePhase{
		Status:    status,
		StartTime: startTime,
		EndTime:   endTime,
		CreatedAt: time.Now(),
	}

	if err := s.db.CreatePhase(phase); err != nil {
		return nil, fmt.Errorf("failed to create trade phase: %w", err)
	}

	log.Info().
		Str("service", "phase").
		Str("status", phase.Status).
		Msg("trade phase updated")

	return phase, nil
}

// History returns all phase rows, newest first.
func (s *Service) History() ([]types.TradePhase, error) {
	return s.db.ListPhases()
}

// GinHandlers contains HTTP handlers for trade phase endpoints
type GinHandlers struct {
	service *Service
}

func NewGinHandlers(service *Service) *GinHandlers {
	return &GinHandlers{
		service: service,
	}
}

// GetPhaseStatusHandler handles GET requests for the current gate state.
// Always succeeds; defaults to closed when nothing is configured.
func (h *GinHandlers) GetPhaseStatusHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		status, err := h.service.Status(time.Now())
		response.Handle(c, status, err)
	}
}

// SetPhaseHandler handles POST requests from administrators to change
// the trade phase.
func (h *GinHandlers) SetPhaseHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var request struct {
			Status    string     `json:"status" binding:"required"`
			StartTime *time.Time `json:"start_time"`
			EndTime   *time.Time `json:"end_time"`
		}
		if err := c.ShouldBindJSON(&request); err != nil {
			response.BadRequest(c, err.Error())
			return
		}

		phase, err := h.service.SetPhase(request.Status, request.StartTime, request.EndTime)
		if errors.Is(err, ErrInvalidPhaseStatus) {
			response.ValidationFailed(c, err.Error())
			return
		}
		response.Handle(c, phase, err)
	}
}

// GetPhaseHistoryHandler handles GET requests for the phase audit history.
func (h *GinHandlers) GetPhaseHistoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		phases, err := h.service.History()
		response.Handle(c, phases, err)
	}
}
