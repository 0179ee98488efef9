package gorawrsheets

import (
	"go.uber.org/zap"

	"github.com/Keksclan/goRawrSheets/auth"
	"github.com/Keksclan/goRawrSheets/config"
	"github.com/Keksclan/goRawrSheets/contextx"
)

// DefaultServerOptions returns the recommended options for production use:
// panic recovery and request IDs.
func DefaultServerOptions(logger *zap.Logger) []ServerOption {
	return []ServerOption{
		WithRecovery(logger),
		WithRequestID(),
	}
}

// ServerOptionsFromConfig returns DefaultServerOptions plus the rate limit
// and, when a token is configured, bearer-token authentication of an admin
// actor. Ping stays public.
func ServerOptionsFromConfig(cfg config.DiagnosticsConfig, logger *zap.Logger) []ServerOption {
	opts := DefaultServerOptions(logger)
	if cfg.RateLimit.RPS > 0 {
		opts = append(opts, WithRateLimitGlobal(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
	}
	if cfg.Token != "" {
		admin := contextx.Actor{Subject: "diagnostics", Role: contextx.RoleAdmin}
		opts = append(opts, WithAuth(auth.BearerToken(cfg.Token, admin), PingMethod))
	}
	return opts
}
