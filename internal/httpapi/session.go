package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"fypms/internal/crypto"
	"fypms/internal/model"
)

const (
	accessTokenCookie  = "accessToken"
	refreshTokenCookie = "refreshToken"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (req *loginRequest) normalize() bool {
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Password = strings.TrimSpace(req.Password)
	return req.Email != "" && req.Password != ""
}

type adminProjection struct {
	Email string `json:"email"`
}

type supervisorProjection struct {
	ID         string `json:"_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department,omitempty"`
}

type studentProjection struct {
	ID         string `json:"_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	RollNumber string `json:"rollNumber"`
	Role       string `json:"role"`
	AddedBy    string `json:"addedBy"`
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil || !req.normalize() {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}
	if !s.allowLoginAttempt(r.Context(), w, model.RoleAdmin, req.Email) {
		return
	}

	admin, err := s.store.GetAdminByEmail(r.Context(), req.Email)
	if err != nil {
		s.failLogin(w, model.RoleAdmin, http.StatusUnauthorized, "Invalid admin credentials")
		return
	}
	if err := crypto.CheckPassword(admin.PasswordHash, req.Password); err != nil {
		s.failLogin(w, model.RoleAdmin, http.StatusUnauthorized, "Invalid admin credentials")
		return
	}

	tokens, ok := s.openSession(r.Context(), w, model.RoleAdmin, admin.ID, admin.Email)
	if !ok {
		return
	}
	writeData(w, http.StatusOK, map[string]interface{}{
		"admin":        adminProjection{Email: admin.Email},
		"accessToken":  tokens.access,
		"refreshToken": tokens.refresh,
	}, "Admin logged in successfully")
}

func (s *Server) handleSupervisorLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil || !req.normalize() {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}
	if !s.allowLoginAttempt(r.Context(), w, model.RoleSupervisor, req.Email) {
		return
	}

	sup, err := s.store.GetSupervisorByEmail(r.Context(), req.Email)
	if err != nil {
		s.failLogin(w, model.RoleSupervisor, http.StatusNotFound, "Supervisor not found. Please contact admin")
		return
	}
	if err := crypto.CheckPassword(sup.PasswordHash, req.Password); err != nil {
		s.failLogin(w, model.RoleSupervisor, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	tokens, ok := s.openSession(r.Context(), w, model.RoleSupervisor, sup.ID, sup.Email)
	if !ok {
		return
	}
	writeData(w, http.StatusOK, map[string]interface{}{
		"supervisor": supervisorProjection{
			ID:         sup.ID,
			Name:       sup.Name,
			Email:      sup.Email,
			Department: sup.Department,
		},
		"accessToken":  tokens.access,
		"refreshToken": tokens.refresh,
	}, "Supervisor logged in successfully")
}

func (s *Server) handleStudentLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil || !req.normalize() {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}
	if !s.allowLoginAttempt(r.Context(), w, model.RoleStudent, req.Email) {
		return
	}

	st, err := s.store.GetStudentByEmail(r.Context(), req.Email)
	if err != nil {
		s.failLogin(w, model.RoleStudent, http.StatusNotFound, "Student not found. Please contact your supervisor")
		return
	}
	if err := crypto.CheckPassword(st.PasswordHash, req.Password); err != nil {
		s.failLogin(w, model.RoleStudent, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	tokens, ok := s.openSession(r.Context(), w, model.RoleStudent, st.ID, st.Email)
	if !ok {
		return
	}
	writeData(w, http.StatusOK, map[string]interface{}{
		"student": studentProjection{
			ID:         st.ID,
			Name:       st.Name,
			Email:      st.Email,
			RollNumber: st.RollNumber,
			Role:       string(model.RoleStudent),
			AddedBy:    st.AddedBy,
		},
		"accessToken":  tokens.access,
		"refreshToken": tokens.refresh,
	}, "Student logged in successfully")
}

type tokenPair struct {
	access  string
	refresh string
}

// openSession issues the token pair, persists the refresh token (overwriting
// any earlier one) and sets both cookies. Nothing is persisted and no cookie
// is set unless every step succeeds.
func (s *Server) openSession(ctx context.Context, w http.ResponseWriter, role model.Role, id, email string) (tokenPair, bool) {
	access, err := s.tokens.NewAccessToken(id, email, role)
	if err != nil {
		s.logger.Error("access token issue failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to generate tokens")
		return tokenPair{}, false
	}
	refresh, err := s.tokens.NewRefreshToken(id)
	if err != nil {
		s.logger.Error("refresh token issue failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to generate tokens")
		return tokenPair{}, false
	}

	if err := s.store.SetRefreshToken(ctx, role, id, &refresh); err != nil {
		s.logger.Error("refresh token persist failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to persist session")
		return tokenPair{}, false
	}

	s.setSessionCookies(w, access, refresh)
	loginAttempts.WithLabelValues(string(role), "success").Inc()
	return tokenPair{access: access, refresh: refresh}, true
}

func (s *Server) failLogin(w http.ResponseWriter, role model.Role, status int, message string) {
	loginAttempts.WithLabelValues(string(role), "failure").Inc()
	writeError(w, status, message)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request, message string) {
	actx := authFromContext(r.Context())
	if actx == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized Access!")
		return
	}

	// Clearing an already-absent token is fine; cookies and the stored token
	// go together.
	if err := s.store.SetRefreshToken(r.Context(), actx.Role, actx.ID, nil); err != nil {
		s.logger.Error("refresh token clear failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to close session")
		return
	}

	s.clearSessionCookies(w)
	writeData(w, http.StatusOK, map[string]interface{}{}, message)
}

func (s *Server) setSessionCookies(w http.ResponseWriter, access, refresh string) {
	http.SetCookie(w, s.sessionCookie(accessTokenCookie, access, int(s.cfg.AccessTokenTTL/time.Second)))
	http.SetCookie(w, s.sessionCookie(refreshTokenCookie, refresh, int(s.cfg.RefreshTokenTTL/time.Second)))
}

func (s *Server) clearSessionCookies(w http.ResponseWriter) {
	http.SetCookie(w, s.sessionCookie(accessTokenCookie, "", -1))
	http.SetCookie(w, s.sessionCookie(refreshTokenCookie, "", -1))
}

func (s *Server) sessionCookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.cfg.Production(),
		SameSite: http.SameSiteNoneMode,
	}
}
