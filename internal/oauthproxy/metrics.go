package oauthproxy

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	authorizeRedirects = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "edugate_authorize_redirects_total",
		Help: "Authorize proxy outcomes.",
	}, []string{"outcome"})

	tokenExchanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "edugate_token_exchanges_total",
		Help: "Token proxy outcomes by grant type.",
	}, []string{"grant_type", "outcome"})

	clientRegistrations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "edugate_virtual_client_registrations_total",
		Help: "Virtual clients registered.",
	})
)
