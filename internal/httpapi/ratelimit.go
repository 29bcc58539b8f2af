package httpapi

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"fypms/internal/model"
)

// allowLoginAttempt enforces the per-(role,email) login attempt budget. With
// no redis configured the limiter is disabled. Redis failures fail open: a
// broken limiter must not lock everyone out.
func (s *Server) allowLoginAttempt(ctx context.Context, w http.ResponseWriter, role model.Role, email string) bool {
	if s.redis == nil || s.cfg.LoginAttemptLimit <= 0 {
		return true
	}

	key := "login_attempts:" + string(role) + ":" + email
	count, err := s.redis.Incr(ctx, key).Result()
	if err != nil {
		s.logger.Warn("login limiter unavailable", zap.Error(err))
		return true
	}
	if count == 1 {
		if err := s.redis.Expire(ctx, key, s.cfg.LoginAttemptWindow).Err(); err != nil {
			s.logger.Warn("login limiter expire failed", zap.Error(err))
		}
	}
	if count > int64(s.cfg.LoginAttemptLimit) {
		writeError(w, http.StatusTooManyRequests, "Too many login attempts. Try again later")
		return false
	}
	return true
}
