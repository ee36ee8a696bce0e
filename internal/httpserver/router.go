package httpserver

import (
	"log"
	"net/http"

	"restaurant-orders/internal/domain"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	identityCtxKey = "identity"

	headerUserID       = "X-User-ID"
	headerSessionToken = "X-Session-Token"
	headerStaffID      = "X-Staff-ID"
	sessionCookie      = "session"
)

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.Default())

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	api := router.Group("/")
	api.Use(identityMiddleware(deps, logger))

	api.GET("/cart", getCartHandler(deps))
	api.POST("/cart/lines", addCartLineHandler(deps))
	api.PATCH("/cart/lines/:lineID", setCartLineQuantityHandler(deps))
	api.DELETE("/cart/lines/:lineID", removeCartLineHandler(deps))

	api.POST("/checkout", checkoutHandler(deps))

	api.GET("/orders/:orderID", getOrderHandler(deps))
	api.POST("/orders/:orderID/cancel", cancelOrderHandler(deps))
	api.POST("/orders/:orderID/status", staffOnly(), transitionOrderHandler(deps))

	return router
}

// identityMiddleware establishes the request identity. An upstream auth
// collaborator sets X-User-ID for authenticated requests; anonymous visitors
// carry a session token in a cookie or header, allocated here on first
// contact. When both a session token and a user id arrive together the
// session cart is merged into the user cart.
func identityMiddleware(deps Deps, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(headerSessionToken)
		if token == "" {
			if cookie, err := c.Cookie(sessionCookie); err == nil {
				token = cookie
			}
		}
		if token != "" && !deps.Sessions.Validate(token) {
			token = ""
		}

		if userID := c.GetHeader(headerUserID); userID != "" {
			if token != "" {
				// Merge failures must not fail the request; the session
				// cart stays mergeable on the next one.
				if err := deps.CartSvc.MergeOnLogin(c.Request.Context(), token, userID); err != nil {
					logger.Printf("merge session cart into user %s: %v", userID, err)
				}
			}
			c.Set(identityCtxKey, domain.UserIdentity(userID))
			c.Next()
			return
		}

		if token == "" {
			token = deps.Sessions.Issue()
			c.SetCookie(sessionCookie, token, 30*24*3600, "/", "", false, true)
			c.Header(headerSessionToken, token)
		}
		c.Set(identityCtxKey, domain.SessionIdentity(token))
		c.Next()
	}
}

func staffOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader(headerStaffID) == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "staff access required"})
			return
		}
		c.Next()
	}
}

func requestIdentity(c *gin.Context) domain.Identity {
	if v, ok := c.Get(identityCtxKey); ok {
		if id, ok := v.(domain.Identity); ok {
			return id
		}
	}
	return domain.Identity{}
}
