package webserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/m3rciful/planpicker/app/identity"
	"github.com/m3rciful/planpicker/core/logger"
)

// VerifyRequest carries the raw init data query string of the Mini App.
type VerifyRequest struct {
	InitData string `json:"init_data" validate:"required"`
}

// VerifyResult is returned for valid init data.
type VerifyResult struct {
	User         *identity.User `json:"user,omitempty"`
	AuthDate     int64          `json:"auth_date"`
	ChatInstance string         `json:"chat_instance,omitempty"`
	ChatType     string         `json:"chat_type,omitempty"`
	StartParam   string         `json:"start_param,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, Response{Status: StatusOK})
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, Error("invalid request body"))
		return
	}
	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		render.Status(r, http.StatusUnprocessableEntity)
		if errors.As(err, &verrs) {
			render.JSON(w, r, ValidationError(verrs))
			return
		}
		render.JSON(w, r, Error("invalid request"))
		return
	}

	if err := identity.Verify(req.InitData, s.opts.BotToken, s.opts.InitDataMaxAge, s.opts.Now()); err != nil {
		status := http.StatusUnauthorized
		if errors.Is(err, identity.ErrMalformedInitData) {
			status = http.StatusBadRequest
		}
		logger.LogEvent(ctx, logger.HTTP, slog.LevelInfo, "initdata.rejected",
			slog.Int("http_code", status),
			logger.Err(err),
		)
		render.Status(r, status)
		render.JSON(w, r, Error(err.Error()))
		return
	}

	data, err := identity.ParseInitData(req.InitData)
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, Error(err.Error()))
		return
	}
	res := VerifyResult{
		User:         data.User,
		ChatInstance: data.ChatInstance,
		ChatType:     data.ChatType,
		StartParam:   data.StartParam,
	}
	if !data.AuthDate.IsZero() {
		res.AuthDate = data.AuthDate.Unix()
	}
	render.JSON(w, r, OK(res))
}
