package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	gorillaWS "github.com/gorilla/websocket"

	boardservice "github.com/alebedev/helpboard/internal/board/service"
	"github.com/alebedev/helpboard/internal/common/config"
	"github.com/alebedev/helpboard/internal/common/constants"
	commonerrors "github.com/alebedev/helpboard/internal/common/errors"
	commonhttp "github.com/alebedev/helpboard/internal/common/http"
	"github.com/alebedev/helpboard/internal/common/logger"
	"github.com/alebedev/helpboard/internal/common/session"
	"github.com/alebedev/helpboard/internal/notify"
)

type createRequestBody struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required,max=4000"`
}

type solutionBody struct {
	Solution string `json:"solution" validate:"required,max=4000"`
}

type Handler struct {
	board    *boardservice.Board
	hub      *notify.Hub
	cfg      config.BoardConfig
	validate *validator.Validate
	upgrader gorillaWS.Upgrader
	log      *logger.Logger
}

func NewHandler(board *boardservice.Board, hub *notify.Hub, cfg config.BoardConfig, log *logger.Logger) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = constants.DefaultRequestTimeout
	}

	h := &Handler{
		board:    board,
		hub:      hub,
		cfg:      cfg,
		validate: validator.New(),
		upgrader: gorillaWS.Upgrader{
			ReadBufferSize:  constants.WebSocketReadBufferSize,
			WriteBufferSize: constants.WebSocketWriteBufferSize,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				host := r.Host
				if host == "" {
					host = r.URL.Host
				}
				return origin == "http://"+host || origin == "https://"+host
			},
		},
		log: log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/requests", commonhttp.WithTimeout(cfg.RequestTimeout)(h.requests))
	mux.HandleFunc("/api/requests/", commonhttp.WithTimeout(cfg.RequestTimeout)(h.requestByID))
	mux.HandleFunc("/ws", h.handleWebSocket)
	return mux
}

// requests dispatches the collection endpoints: list and create.
func (h *Handler) requests(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", "")
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	commonhttp.WriteJSON(w, http.StatusOK, h.board.ListAll())
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	claims, ok := session.FromContext(r.Context())
	if !ok {
		commonhttp.WriteError(w, http.StatusUnauthorized, "not logged in")
		return
	}

	var body createRequestBody
	if err := commonhttp.DecodeJSON(r, &body); err != nil {
		h.log.Warnf("request create failed: invalid json: %v", err)
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", "")
		return
	}

	if err := h.validate.Struct(body); err != nil {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeBadRequest, "validation failed", "")
		return
	}

	request, err := h.board.Create(r.Context(), claims.Username, body.Title, body.Description)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusCreated, request)
}

// requestByID dispatches /api/requests/{id} and /api/requests/{id}/solutions.
// A non-numeric id is reported as not found, never as a server error.
func (h *Handler) requestByID(w http.ResponseWriter, r *http.Request) {
	claims, ok := session.FromContext(r.Context())
	if !ok {
		commonhttp.WriteError(w, http.StatusUnauthorized, "not logged in")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/requests/")
	idPart, remainder, _ := strings.Cut(rest, "/")

	requestID, err := strconv.Atoi(idPart)
	if err != nil {
		commonhttp.HandleError(w, r, commonerrors.ErrRequestNotFound, h.log)
		return
	}

	switch {
	case r.Method == http.MethodPost && remainder == "solutions":
		h.solve(w, r, requestID, claims.Username)
	case r.Method == http.MethodDelete && remainder == "":
		h.delete(w, r, requestID, claims.Username)
	default:
		commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", "")
	}
}

func (h *Handler) solve(w http.ResponseWriter, r *http.Request, requestID int, author string) {
	var body solutionBody
	if err := commonhttp.DecodeJSON(r, &body); err != nil {
		h.log.Warnf("solution failed: invalid json: %v", err)
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", "")
		return
	}

	if err := h.validate.Struct(body); err != nil {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeBadRequest, "validation failed", "")
		return
	}

	solution, err := h.board.AppendSolution(r.Context(), requestID, author, body.Solution)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusCreated, solution)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request, requestID int, requester string) {
	if err := h.board.Delete(r.Context(), requestID, requester); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithFields(r.Context(), logger.Fields{
			"action": "ws_upgrade_failed",
		}).Errorf("websocket upgrade failed: %v", err)
		return
	}

	sub := h.hub.Subscribe()
	if sub == nil {
		conn.Close()
		return
	}

	client := notify.NewClient(h.hub, conn, sub, notify.ClientConfig{
		WriteWait:  h.cfg.WebSocketWriteWait,
		PongWait:   h.cfg.WebSocketPongWait,
		PingPeriod: h.cfg.WebSocketPingPeriod,
	}, h.log)
	client.Start()
}
