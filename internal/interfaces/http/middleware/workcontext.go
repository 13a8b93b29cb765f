package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/application/workcontext"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Caller identification headers
const (
	SchedulerTokenHeader = "X-Scheduler-Token"
	RendererTokenHeader  = "X-Renderer-Token"
)

// WorkContextKey is the gin context key holding the resolved work context
const WorkContextKey = "work_context"

// ContextResolver resolves the work context for one inbound request.
type ContextResolver interface {
	Resolve(ctx context.Context, req *workcontext.Request, forAdminArea bool) (*workcontext.WorkContext, error)
}

// WorkContextConfig configures the work-context middleware
type WorkContextConfig struct {
	Resolver        ContextResolver
	Cookie          config.CookieConfig
	AdminPathPrefix string // requests under this prefix resolve for the admin area
	Logger          *zap.Logger
}

// WorkContext resolves the working customer, currency, tax display and
// language for every request and stores the result in the gin context.
// Overload rejection answers with the status the pipeline chose; internal
// sub-requests that already carry a context are passed through untouched.
func WorkContext(cfg WorkContextConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(WorkContextKey); exists {
			c.Next()
			return
		}

		req := buildRequest(c, cfg.Cookie)

		forAdmin := cfg.AdminPathPrefix != "" && strings.HasPrefix(c.Request.URL.Path, cfg.AdminPathPrefix)

		wc, err := cfg.Resolver.Resolve(c.Request.Context(), req, forAdmin)
		if err != nil {
			var denied *workcontext.AdmissionDeniedError
			if errors.As(err, &denied) {
				code := dto.ErrCodeTooManyRequests
				if denied.Status == http.StatusForbidden {
					code = dto.ErrCodeForbidden
				}
				c.AbortWithStatusJSON(denied.Status, dto.NewErrorResponse(code, denied.Reason))
				return
			}
			if cfg.Logger != nil {
				cfg.Logger.Error("Failed to resolve work context",
					zap.String("path", c.Request.URL.Path),
					zap.Error(err))
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				dto.NewErrorResponse(dto.ErrCodeInternal, "Failed to resolve request context"))
			return
		}

		c.Set(WorkContextKey, wc)
		c.Next()
	}
}

// GetWorkContext retrieves the resolved work context from gin.Context
func GetWorkContext(c *gin.Context) *workcontext.WorkContext {
	if v, exists := c.Get(WorkContextKey); exists {
		if wc, ok := v.(*workcontext.WorkContext); ok {
			return wc
		}
	}
	return nil
}

// buildRequest maps the HTTP request onto the transport-neutral view the
// resolution pipeline consumes.
func buildRequest(c *gin.Context, cookieCfg config.CookieConfig) *workcontext.Request {
	req := &workcontext.Request{
		IP:             c.ClientIP(),
		UserAgent:      c.Request.UserAgent(),
		Host:           requestHost(c),
		Path:           c.Request.URL.Path,
		RequestedURL:   c.Request.URL.String(),
		AcceptLanguage: c.GetHeader("Accept-Language"),
		SchedulerToken: c.GetHeader(SchedulerTokenHeader),
		RendererToken:  c.GetHeader(RendererTokenHeader),
	}

	if token, err := c.Cookie(cookieCfg.Name); err == nil {
		req.VisitorToken = token
	}

	req.SetVisitorCookie = func(token string) {
		http.SetCookie(c.Writer, &http.Cookie{
			Name:     cookieCfg.Name,
			Value:    token,
			Path:     cookieCfg.Path,
			Domain:   cookieCfg.Domain,
			MaxAge:   int(cookieCfg.MaxAge.Seconds()),
			Secure:   cookieCfg.Secure,
			HttpOnly: true,
			SameSite: parseSameSite(cookieCfg.SameSite),
		})
	}

	return req
}

// requestHost strips the port so host-based store and currency matching
// sees the bare host name.
func requestHost(c *gin.Context) string {
	host := c.Request.Host
	if i := strings.LastIndexByte(host, ':'); i >= 0 && !strings.Contains(host[i:], "]") {
		host = host[:i]
	}
	return strings.ToLower(host)
}

func parseSameSite(mode string) http.SameSite {
	switch strings.ToLower(mode) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
