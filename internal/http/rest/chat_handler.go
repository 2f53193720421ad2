package rest

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/phytoscan/phytoscan-api/internal/model"
	"github.com/phytoscan/phytoscan-api/util"
	"github.com/phytoscan/phytoscan-api/util/tracing"
	"github.com/phytoscan/phytoscan-api/util/values"
)

func (api *API) ChatRoutes() chi.Router {
	mux := chi.NewRouter()

	mux.Get("/ws", api.Deps.WebSocket.HandleConnections)

	// HTTP fallback for clients without a websocket connection.
	mux.Method(http.MethodPost, "/", Handler(api.Chat))

	return mux
}

// AnswerChatMessage produces the assistant's reply. Shared between the
// HTTP endpoint and the websocket hub.
func (api *API) AnswerChatMessage(ctx context.Context, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", fmt.Errorf("empty message")
	}
	if api.Deps.Gemini == nil {
		return "", fmt.Errorf("gemini client not configured")
	}

	reply, err := api.Deps.Gemini.Ask(ctx, message)
	if err != nil {
		return "", err
	}
	api.Deps.Metrics.ObserveChatMessage()
	return reply, nil
}

func (api *API) Chat(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	var req model.ChatRequest
	if decodeErr := util.DecodeJSONBody(&tc, r.Body, &req); decodeErr != nil {
		return respondWithError(decodeErr, "unable to decode request", values.BadRequestBody, &tc)
	}

	reply, err := api.AnswerChatMessage(r.Context(), req.Message)
	if err != nil {
		return respondWithError(err, "No pude conectar con la IA en este momento.", values.Error, &tc)
	}

	return &ServerResponse{
		Message:    "Reply generated",
		Status:     values.Success,
		StatusCode: util.StatusCode(values.Success),
		Data:       model.ChatResponse{Reply: reply},
	}
}
