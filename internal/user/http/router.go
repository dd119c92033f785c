package http

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	boarddomain "github.com/alebedev/helpboard/internal/board/domain"
	boardservice "github.com/alebedev/helpboard/internal/board/service"
	"github.com/alebedev/helpboard/internal/common/constants"
	commonerrors "github.com/alebedev/helpboard/internal/common/errors"
	commonhttp "github.com/alebedev/helpboard/internal/common/http"
	"github.com/alebedev/helpboard/internal/common/logger"
	"github.com/alebedev/helpboard/internal/common/session"
	"github.com/alebedev/helpboard/internal/user/directory"
	userdomain "github.com/alebedev/helpboard/internal/user/domain"
)

type credentialsRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32,alphanum"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type profileUpdateRequest struct {
	Bio   string `json:"bio" validate:"max=1000"`
	Email string `json:"email" validate:"omitempty,email"`
}

type tokenResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

type profileResponse struct {
	Username string                `json:"username"`
	Profile  userdomain.Profile    `json:"profile"`
	Requests []boarddomain.Request `json:"requests"`
}

type Handler struct {
	directory *directory.Directory
	board     *boardservice.Board
	issuer    *session.Issuer
	jwtSecret []byte
	validate  *validator.Validate
	log       *logger.Logger
}

func NewHandler(
	dir *directory.Directory,
	board *boardservice.Board,
	issuer *session.Issuer,
	jwtSecret string,
	log *logger.Logger,
) http.Handler {
	h := &Handler{
		directory: dir,
		board:     board,
		issuer:    issuer,
		jwtSecret: []byte(jwtSecret),
		validate:  validator.New(),
		log:       log,
	}

	authLimiter := commonhttp.NewRateLimiter(constants.AuthRateLimitPerSecond, constants.AuthRateLimitBurst)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/signup", commonhttp.RequireMethod(http.MethodPost)(authLimiter.Middleware(h.signup)))
	mux.HandleFunc("/api/auth/login", commonhttp.RequireMethod(http.MethodPost)(authLimiter.Middleware(h.login)))
	mux.HandleFunc("/api/auth/logout", commonhttp.RequireMethod(http.MethodPost)(h.logout))
	mux.HandleFunc("/api/users/", h.users)
	return mux
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.Warnf("signup failed: invalid json: %v", err)
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", "")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeBadRequest, validationMessage(err), "")
		return
	}

	ctx := r.Context()

	h.log.WithFields(ctx, logger.Fields{
		"username": req.Username,
		"action":   "signup_attempt",
	}).Info("signup attempt")

	if err := h.directory.Create(ctx, req.Username, req.Password); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	h.issueSession(w, r, req.Username, http.StatusCreated)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.Warnf("login failed: invalid json: %v", err)
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", "")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeBadRequest, validationMessage(err), "")
		return
	}

	ctx := r.Context()

	h.log.WithFields(ctx, logger.Fields{
		"username": req.Username,
		"action":   "login_attempt",
	}).Info("login attempt")

	if err := h.directory.Authenticate(ctx, req.Username, req.Password); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	h.issueSession(w, r, req.Username, http.StatusOK)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	session.ClearCookie(w, r)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) issueSession(w http.ResponseWriter, r *http.Request, username string, status int) {
	token, expiresAt, err := h.issuer.Issue(username)
	if err != nil {
		h.log.WithFields(r.Context(), logger.Fields{
			"username": username,
			"action":   "session_issue_failed",
		}).Errorf("session issue failed: %v", err)
		commonhttp.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	session.SetCookie(w, r, token, expiresAt)
	commonhttp.WriteJSON(w, status, tokenResponse{Token: token, Username: username})
}

// users dispatches /api/users/{username} and /api/users/{username}/profile.
func (h *Handler) users(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/users/")
	if rest == "" || strings.Contains(strings.TrimSuffix(rest, "/profile"), "/") {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidPath, "invalid path", "")
		return
	}

	switch {
	case r.Method == http.MethodGet && !strings.HasSuffix(rest, "/profile"):
		h.profile(w, r, rest)
	case r.Method == http.MethodPut && strings.HasSuffix(rest, "/profile"):
		h.updateProfile(w, r, strings.TrimSuffix(rest, "/profile"))
	default:
		commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", "")
	}
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request, username string) {
	profile, err := h.directory.Profile(username)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, profileResponse{
		Username: username,
		Profile:  profile,
		Requests: h.board.ListByAuthor(username),
	})
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request, username string) {
	claims, err := session.FromRequest(r, h.jwtSecret)
	if err != nil {
		commonhttp.WriteError(w, http.StatusUnauthorized, "not logged in")
		return
	}

	if claims.Username != username {
		commonhttp.HandleError(w, r, commonerrors.ErrNotProfileOwner, h.log)
		return
	}

	var req profileUpdateRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", "")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeBadRequest, validationMessage(err), "")
		return
	}

	if err := h.directory.UpdateProfile(r.Context(), username, userdomain.Profile{
		Bio:   req.Bio,
		Email: req.Email,
	}); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if ok := isValidationErrors(err, &verrs); ok && len(verrs) > 0 {
		return "invalid field: " + strings.ToLower(verrs[0].Field())
	}
	return "validation failed"
}

func isValidationErrors(err error, target *validator.ValidationErrors) bool {
	verrs, ok := err.(validator.ValidationErrors)
	if ok {
		*target = verrs
	}
	return ok
}
