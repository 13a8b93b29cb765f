package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/application/workcontext"
	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/directory"
	"github.com/storefront/backend/internal/domain/store"
	"github.com/storefront/backend/internal/domain/tax"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubResolver struct {
	wc       *workcontext.WorkContext
	err      error
	lastReq  *workcontext.Request
	forAdmin bool
	calls    int
}

func (s *stubResolver) Resolve(ctx context.Context, req *workcontext.Request, forAdminArea bool) (*workcontext.WorkContext, error) {
	s.calls++
	s.lastReq = req
	s.forAdmin = forAdminArea
	if s.err != nil {
		return nil, s.err
	}
	return s.wc, nil
}

func testWorkContext(t *testing.T) *workcontext.WorkContext {
	t.Helper()
	st, err := store.NewStore("Main", "shop.example.com")
	require.NoError(t, err)
	cur, err := directory.NewCurrency("Euro", "EUR", decimal.NewFromInt(1))
	require.NoError(t, err)
	cur.Publish()
	return &workcontext.WorkContext{
		Customer:   customer.NewGuestCustomer("fp"),
		Store:      st,
		Currency:   cur,
		TaxDisplay: tax.DisplayIncludingTax,
	}
}

func testCookieConfig() config.CookieConfig {
	return config.CookieConfig{
		Name:     "storefront.visitor",
		Path:     "/",
		MaxAge:   365 * 24 * time.Hour,
		SameSite: "lax",
	}
}

func newTestEngine(resolver ContextResolver, onRequest gin.HandlerFunc) *gin.Engine {
	engine := gin.New()
	engine.Use(WorkContext(WorkContextConfig{
		Resolver:        resolver,
		Cookie:          testCookieConfig(),
		AdminPathPrefix: "/admin",
		Logger:          zap.NewNop(),
	}))
	engine.GET("/shop", onRequest)
	engine.GET("/admin/dashboard", onRequest)
	return engine
}

func TestWorkContextMiddleware(t *testing.T) {
	t.Run("stores resolved context", func(t *testing.T) {
		resolver := &stubResolver{wc: testWorkContext(t)}
		var seen *workcontext.WorkContext
		engine := newTestEngine(resolver, func(c *gin.Context) {
			seen = GetWorkContext(c)
			c.Status(http.StatusOK)
		})

		req := httptest.NewRequest("GET", "/shop", nil)
		req.Header.Set("User-Agent", "Mozilla/5.0")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, seen)
		assert.Same(t, resolver.wc, seen)
	})

	t.Run("maps request fields", func(t *testing.T) {
		resolver := &stubResolver{wc: testWorkContext(t)}
		engine := newTestEngine(resolver, func(c *gin.Context) { c.Status(http.StatusOK) })

		req := httptest.NewRequest("GET", "http://shop.example.com:8080/shop?q=1", nil)
		req.Header.Set("User-Agent", "Mozilla/5.0")
		req.Header.Set("Accept-Language", "de-DE,de;q=0.9")
		req.Header.Set(SchedulerTokenHeader, "sched-secret")
		req.AddCookie(&http.Cookie{Name: "storefront.visitor", Value: "some-guid"})
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		require.NotNil(t, resolver.lastReq)
		assert.Equal(t, "shop.example.com", resolver.lastReq.Host)
		assert.Equal(t, "/shop", resolver.lastReq.Path)
		assert.Equal(t, "Mozilla/5.0", resolver.lastReq.UserAgent)
		assert.Equal(t, "de-DE,de;q=0.9", resolver.lastReq.AcceptLanguage)
		assert.Equal(t, "sched-secret", resolver.lastReq.SchedulerToken)
		assert.Equal(t, "some-guid", resolver.lastReq.VisitorToken)
		assert.False(t, resolver.forAdmin)
	})

	t.Run("admin prefix resolves for admin area", func(t *testing.T) {
		resolver := &stubResolver{wc: testWorkContext(t)}
		engine := newTestEngine(resolver, func(c *gin.Context) { c.Status(http.StatusOK) })

		req := httptest.NewRequest("GET", "/admin/dashboard", nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.True(t, resolver.forAdmin)
	})

	t.Run("visitor cookie side effect reaches the response", func(t *testing.T) {
		resolver := &stubResolver{wc: testWorkContext(t)}
		engine := newTestEngine(resolver, func(c *gin.Context) { c.Status(http.StatusOK) })

		req := httptest.NewRequest("GET", "/shop", nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		require.NotNil(t, resolver.lastReq.SetVisitorCookie)
		resolver.lastReq.SetVisitorCookie("new-token")
		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "storefront.visitor", cookies[0].Name)
		assert.Equal(t, "new-token", cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)
	})

	t.Run("guest creation forbidden answers 403", func(t *testing.T) {
		resolver := &stubResolver{err: workcontext.NewGuestCreationForbidden("new visitors are blocked")}
		engine := newTestEngine(resolver, func(c *gin.Context) { c.Status(http.StatusOK) })

		req := httptest.NewRequest("GET", "/shop", nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, false, body["success"])
	})

	t.Run("shed traffic answers 429", func(t *testing.T) {
		resolver := &stubResolver{err: workcontext.NewTooManyRequests("guest budget exhausted")}
		engine := newTestEngine(resolver, func(c *gin.Context) { c.Status(http.StatusOK) })

		req := httptest.NewRequest("GET", "/shop", nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
	})

	t.Run("resolution failure answers 500", func(t *testing.T) {
		resolver := &stubResolver{err: assert.AnError}
		engine := newTestEngine(resolver, func(c *gin.Context) { c.Status(http.StatusOK) })

		req := httptest.NewRequest("GET", "/shop", nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("sub-request with populated context skips resolution", func(t *testing.T) {
		resolver := &stubResolver{wc: testWorkContext(t)}
		engine := gin.New()
		engine.Use(func(c *gin.Context) {
			c.Set(WorkContextKey, testWorkContext(t))
		})
		engine.Use(WorkContext(WorkContextConfig{
			Resolver: resolver,
			Cookie:   testCookieConfig(),
			Logger:   zap.NewNop(),
		}))
		engine.GET("/shop", func(c *gin.Context) { c.Status(http.StatusOK) })

		req := httptest.NewRequest("GET", "/shop", nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 0, resolver.calls)
	})
}
