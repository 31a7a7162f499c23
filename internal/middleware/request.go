package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

const (
	HeaderRequestID = "Request-Id"
	HeaderUCPAgent  = "UCP-Agent"

	ContextKeyRequestID = "request_id"
	ContextKeyAgent     = "ucp_agent"
)

// RequestContext tags every request with an id, reusing the caller's
// Request-Id when present, and records the calling agent profile.
func RequestContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			reqID := c.Request().Header.Get(HeaderRequestID)
			if reqID == "" {
				reqID = uuid.NewString()
			}
			c.Set(ContextKeyRequestID, reqID)
			c.Response().Header().Set(HeaderRequestID, reqID)

			if agent := c.Request().Header.Get(HeaderUCPAgent); agent != "" {
				c.Set(ContextKeyAgent, agent)
			}
			return next(c)
		}
	}
}

// RequestLogger writes one zap entry per request.
func RequestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
			}
			if id, ok := c.Get(ContextKeyRequestID).(string); ok {
				fields = append(fields, zap.String("request_id", id))
			}
			if agent, ok := c.Get(ContextKeyAgent).(string); ok {
				fields = append(fields, zap.String("ucp_agent", agent))
			}
			if v.Error != nil {
				logger.Warn("request", append(fields, zap.Error(v.Error))...)
				return nil
			}
			logger.Info("request", fields...)
			return nil
		},
	})
}
