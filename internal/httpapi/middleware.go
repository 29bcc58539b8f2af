package httpapi

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"fypms/internal/model"
)

// accessTokenFromRequest prefers the cookie and falls back to a bearer
// Authorization header.
func accessTokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(accessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return bearerToken(r.Header.Get("Authorization"))
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// authenticate runs the generic half of the gate: token extraction, stateless
// verification, then a live lookup in the partition named by the role claim.
// Every failure mode maps to 401; the caller decides the role policy.
func (s *Server) authenticate(r *http.Request) (*AuthContext, int, string) {
	token := accessTokenFromRequest(r)
	if token == "" {
		return nil, http.StatusUnauthorized, "Unauthorized Access!"
	}

	claims, err := s.tokens.ParseAccessToken(token)
	if err != nil {
		return nil, http.StatusUnauthorized, err.Error()
	}

	role, ok := model.ParseRole(claims.Role)
	if !ok {
		return nil, http.StatusUnauthorized, "Invalid user role"
	}

	actx := &AuthContext{ID: claims.UserID, Role: role}
	switch role {
	case model.RoleAdmin:
		admin, err := s.store.GetAdminByID(r.Context(), claims.UserID)
		if err != nil {
			return nil, http.StatusUnauthorized, "User not found"
		}
		actx.Email = admin.Email
	case model.RoleSupervisor:
		sup, err := s.store.GetSupervisorByID(r.Context(), claims.UserID)
		if err != nil {
			return nil, http.StatusUnauthorized, "User not found"
		}
		actx.Name = sup.Name
		actx.Email = sup.Email
		actx.Department = sup.Department
	case model.RoleStudent:
		st, err := s.store.GetStudentByID(r.Context(), claims.UserID)
		if err != nil {
			return nil, http.StatusUnauthorized, "User not found"
		}
		actx.Name = st.Name
		actx.Email = st.Email
		actx.RollNumber = st.RollNumber
		actx.AddedBy = st.AddedBy
	}

	return actx, 0, ""
}

// requireRole is the role-specialized gate: generic verification followed by
// a membership check against the expected roles. Authentication failures are
// 401, role mismatches 403.
func (s *Server) requireRole(roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actx, status, message := s.authenticate(r)
			if actx == nil {
				writeError(w, status, message)
				return
			}

			allowed := false
			for _, role := range roles {
				if actx.Role == role {
					allowed = true
					break
				}
			}
			if !allowed {
				writeError(w, http.StatusForbidden, forbiddenMessage(roles))
				return
			}

			next.ServeHTTP(w, r.WithContext(withAuthContext(r.Context(), actx)))
		})
	}
}

func forbiddenMessage(roles []model.Role) string {
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, string(role))
	}
	return "Forbidden: " + strings.Join(names, ", ") + " access required"
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && s.isAllowedOrigin(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			w.Header().Set("Access-Control-Max-Age", "86400")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) isAllowedOrigin(origin string) bool {
	if len(s.cfg.CORSOrigins) == 0 {
		return true
	}
	for _, allowed := range s.cfg.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		s.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", wrapped.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered",
					zap.Any("error", rec),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
				)
				writeError(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
