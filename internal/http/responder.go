package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/example/booking-sessions/internal/application"
	"github.com/example/booking-sessions/internal/logging"
	"github.com/example/booking-sessions/internal/persistence"
)

var (
	errBadRequestBody = errors.New("無効なリクエスト形式です。")
	errInvalidID      = errors.New("無効な ID です。")
)

type responder struct {
	logger zerolog.Logger
}

func newResponder(logger zerolog.Logger) responder {
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger := r.loggerFor(ctx)
		logger.Error().Err(err).Msg("failed to encode response")
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, code string, err error) {
	message := localizedStatusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		logger := r.loggerFor(ctx)
		logger.Warn().Err(err).Int("status", status).Msg("request failed")
	}
	r.writeJSON(ctx, w, status, errorResponse{Error: errorBody{Code: code, Message: message}})
}

func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, "internal", errors.New("unknown error"))
		return
	}

	var (
		vErr *application.ValidationError
		cErr *application.ConfigurationError
	)
	switch {
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Error: errorBody{
			Code:    "not_found",
			Message: localizedStatusMessage(http.StatusNotFound),
		}})
	case errors.As(err, &vErr):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{Error: errorBody{
			Code:    "validation",
			Message: localizedStatusMessage(http.StatusUnprocessableEntity),
			Fields:  vErr.FieldErrors,
		}})
	case errors.As(err, &cErr):
		body := errorBody{Code: "invalid_configuration", Message: "サービスの設定からセッションを生成できません。"}
		if cErr.Field != "" {
			body.Fields = map[string]string{cErr.Field: cErr.Err.Error()}
		}
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{Error: body})
	case errors.Is(err, persistence.ErrConstraintViolation), errors.Is(err, persistence.ErrDuplicate):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{Error: errorBody{
			Code:    "conflict",
			Message: localizedStatusMessage(http.StatusConflict),
		}})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		r.writeJSON(ctx, w, http.StatusServiceUnavailable, errorResponse{Error: errorBody{
			Code:    "canceled",
			Message: localizedStatusMessage(http.StatusServiceUnavailable),
		}})
	default:
		logger := r.loggerFor(ctx)
		logger.Error().Err(err).Msg("unexpected service error")
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Error: errorBody{
			Code:    "internal",
			Message: localizedStatusMessage(http.StatusInternalServerError),
		}})
	}
}

func (r responder) loggerFor(ctx context.Context) zerolog.Logger {
	if logger, ok := logging.FromContext(ctx); ok {
		return logger
	}
	return r.logger
}

func writeErrorBody(w http.ResponseWriter, status int, body errorBody) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: body})
}

func localizedStatusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "リクエスト内容が正しくありません。"
	case http.StatusNotFound:
		return "指定されたリソースが見つかりません。"
	case http.StatusConflict:
		return "要求はリソースの現在の状態と競合しています。"
	case http.StatusUnprocessableEntity:
		return "入力内容に誤りがあります。"
	case http.StatusTooManyRequests:
		return "リクエストが多すぎます。しばらくしてから再試行してください。"
	case http.StatusServiceUnavailable:
		return "処理が中断されました。"
	default:
		return "サーバー内部でエラーが発生しました。"
	}
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}
