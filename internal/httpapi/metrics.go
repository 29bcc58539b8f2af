package httpapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var loginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "fypms_login_attempts_total",
	Help: "Login attempts by role and outcome.",
}, []string{"role", "outcome"})
