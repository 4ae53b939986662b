package handler

import (
	stdErrors "errors"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/callreview-team/call-review/errors"
	dto "github.com/callreview-team/call-review/internal/adapter/dto/review"
	"github.com/callreview-team/call-review/internal/domain/entities"
	uerrors "github.com/callreview-team/call-review/internal/usecase/errors"
	"github.com/callreview-team/call-review/internal/usecase/review"
	"github.com/callreview-team/call-review/internal/usecase/transcript"
)

// ReviewHandler serves the call-browsing and rating-edit endpoints.
// A nil source means the transcript failed to load; every endpoint
// then reports SourceUnavailable instead of crashing.
type ReviewHandler struct {
	source *transcript.Source
	store  *review.Store
	logger *zap.Logger
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(source *transcript.Source, store *review.Store, logger *zap.Logger) *ReviewHandler {
	return &ReviewHandler{source: source, store: store, logger: logger}
}

// ListCalls returns a summary of every call in the session snapshot.
func (h *ReviewHandler) ListCalls(c echo.Context) error {
	if h.source == nil {
		return HandleError(h.logger, c, errors.ErrSourceUnavailable(nil))
	}

	snapshot := h.store.Snapshot()
	flags := h.store.Flags()

	calls := h.source.Calls()
	summaries := make([]dto.CallSummary, 0, len(calls))
	for _, call := range calls {
		rated := 0
		for _, rating := range snapshot[call.ID] {
			if !rating.IsEmpty() {
				rated++
			}
		}
		summaries = append(summaries, dto.CallSummary{
			CallID:     call.ID,
			Turns:      len(call.Dialogue),
			RatedTurns: rated,
			Complete:   flags[call.ID],
		})
	}

	return HandleSuccess(h.logger, c, summaries)
}

// GetCall returns one call's dialogue with the current ratings merged in.
func (h *ReviewHandler) GetCall(c echo.Context) error {
	call, appErr := h.lookupCall(c.Param("id"))
	if appErr != nil {
		return HandleError(h.logger, c, *appErr)
	}

	ratings := make(map[int]entities.Rating)
	for turn, rating := range h.store.Snapshot()[call.ID] {
		ratings[turn] = rating
	}

	return HandleSuccess(h.logger, c, dto.CallDetail{
		CallID:   call.ID,
		Dialogue: call.Dialogue,
		Ratings:  ratings,
		Complete: h.store.CallFlag(call.ID),
	})
}

// GetRating returns the current rating for one turn; absent ratings
// come back as the empty record.
func (h *ReviewHandler) GetRating(c echo.Context) error {
	call, turn, appErr := h.lookupTurn(c)
	if appErr != nil {
		return HandleError(h.logger, c, *appErr)
	}

	return HandleSuccess(h.logger, c, dto.RatingResponse{
		CallID: call.ID,
		Turn:   turn,
		Rating: h.store.GetRating(call.ID, turn),
	})
}

// SetField applies one field edit and returns the updated rating. The
// edit takes effect in memory before the response; persistence runs in
// the background and its failures never surface here.
func (h *ReviewHandler) SetField(c echo.Context) error {
	call, turn, appErr := h.lookupTurn(c)
	if appErr != nil {
		return HandleError(h.logger, c, *appErr)
	}

	var req dto.SetFieldRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if !call.Dialogue[turn].IsAssistant() {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("only assistant turns can be rated"))
	}

	if err := h.store.SetField(call.ID, turn, req.Field, req.Value); err != nil {
		if stdErrors.Is(err, uerrors.ErrUnknownField) {
			return HandleError(h.logger, c, errors.ErrUnknownRatingField(req.Field))
		}
		return HandleError(h.logger, c, errors.ErrInternal(err))
	}

	return HandleSuccess(h.logger, c, dto.RatingResponse{
		CallID: call.ID,
		Turn:   turn,
		Rating: h.store.GetRating(call.ID, turn),
	})
}

// ToggleComplete flips the reviewed-completely flag for a call.
func (h *ReviewHandler) ToggleComplete(c echo.Context) error {
	call, appErr := h.lookupCall(c.Param("id"))
	if appErr != nil {
		return HandleError(h.logger, c, *appErr)
	}

	return HandleSuccess(h.logger, c, dto.FlagResponse{
		CallID:   call.ID,
		Complete: h.store.ToggleCallFlag(call.ID),
	})
}

func (h *ReviewHandler) lookupCall(callID string) (entities.Call, *errors.AppError) {
	if h.source == nil {
		appErr := errors.ErrSourceUnavailable(nil)
		return entities.Call{}, &appErr
	}
	call, err := h.source.Call(callID)
	if err != nil {
		appErr := errors.ErrCallNotFound(callID)
		return entities.Call{}, &appErr
	}
	return call, nil
}

func (h *ReviewHandler) lookupTurn(c echo.Context) (entities.Call, int, *errors.AppError) {
	call, appErr := h.lookupCall(c.Param("id"))
	if appErr != nil {
		return entities.Call{}, 0, appErr
	}
	turn, err := strconv.Atoi(c.Param("turn"))
	if err != nil || turn < 0 || turn >= len(call.Dialogue) {
		outOfRange := errors.ErrTurnOutOfRange(call.ID, turn)
		return entities.Call{}, 0, &outOfRange
	}
	return call, turn, nil
}
