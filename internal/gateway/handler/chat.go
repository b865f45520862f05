package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"bakerybot/internal/chatbot"
)

type invokeEnvelope struct {
	Input json.RawMessage `json:"input"`
}

type invokeResponse struct {
	Output chatbot.TurnOutput `json:"output"`
}

type batchRequest struct {
	Inputs []chatbot.TurnInput `json:"inputs"`
}

type batchResponse struct {
	Output []chatbot.TurnOutput `json:"output"`
}

type healthResponse struct {
	Status        string `json:"status"`
	Service       string `json:"service"`
	FunctionModel string `json:"function_model"`
	DialogModel   string `json:"dialog_model"`
}

// Invoke handles POST /chat/invoke. The body is either {"input": <turn>} or a
// bare turn.
func (h *ChatHandler) Invoke(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	in, err := decodeTurn(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	out := h.turns.HandleTurn(r.Context(), in)
	writeJSON(w, http.StatusOK, invokeResponse{Output: out})
}

// Batch handles POST /chat/batch. Turns run one after another.
func (h *ChatHandler) Batch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req batchRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid batch body: %v", err))
		return
	}
	out := make([]chatbot.TurnOutput, 0, len(req.Inputs))
	for _, in := range req.Inputs {
		if err := r.Context().Err(); err != nil {
			h.log.WarnContext(r.Context(), "batch aborted", "done", len(out), "total", len(req.Inputs), "error", err)
			return
		}
		out = append(out, h.turns.HandleTurn(r.Context(), in))
	}
	writeJSON(w, http.StatusOK, batchResponse{Output: out})
}

// Health handles GET /health.
func (h *ChatHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        "healthy",
		Service:       "bakery-chatbot",
		FunctionModel: h.info.FunctionModel,
		DialogModel:   h.info.DialogModel,
	})
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit)
		}
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errors.New("request body is empty")
	}
	return body, nil
}

func decodeTurn(body []byte) (chatbot.TurnInput, error) {
	var env invokeEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return chatbot.TurnInput{}, fmt.Errorf("invalid request body: %v", err)
	}
	raw := body
	if len(bytes.TrimSpace(env.Input)) > 0 && !bytes.Equal(bytes.TrimSpace(env.Input), []byte("null")) {
		raw = env.Input
	}
	var in chatbot.TurnInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return chatbot.TurnInput{}, fmt.Errorf("invalid turn: %v", err)
	}
	return in, nil
}
