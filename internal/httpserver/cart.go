package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"restaurant-orders/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type cartSnapshot struct {
	Cart   *domain.Cart      `json:"cart"`
	Totals domain.CartTotals `json:"totals"`
}

type addLineInput struct {
	Kind     string `json:"kind"`
	ItemID   int64  `json:"itemId"`
	Quantity int    `json:"quantity"`
}

type setQuantityInput struct {
	Quantity int `json:"quantity"`
}

func getCartHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := requestIdentity(c)
		cart, err := deps.CartSvc.Get(c.Request.Context(), identity)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.JSON(http.StatusOK, cartSnapshot{
					Cart:   &domain.Cart{IdentityKind: identity.Kind, IdentityKey: identity.Key},
					Totals: domain.CartTotals{Amount: decimal.Zero},
				})
				return
			}
			serverError(c, err)
			return
		}
		respondCart(c, deps, cart)
	}
}

func addCartLineHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in addLineInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		kind, err := domain.ParseItemKind(in.Kind)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		identity := requestIdentity(c)
		cart, err := deps.CartSvc.AddLine(c.Request.Context(), identity, domain.ItemRef{Kind: kind, ID: in.ItemID}, in.Quantity)
		if err != nil {
			respondCartError(c, err)
			return
		}
		respondCart(c, deps, cart)
	}
}

func setCartLineQuantityHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		lineID, ok := pathInt64(c, "lineID")
		if !ok {
			return
		}
		var in setQuantityInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		identity := requestIdentity(c)
		cart, err := deps.CartSvc.SetLineQuantity(c.Request.Context(), identity, lineID, in.Quantity)
		if err != nil {
			respondCartError(c, err)
			return
		}
		respondCart(c, deps, cart)
	}
}

func removeCartLineHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		lineID, ok := pathInt64(c, "lineID")
		if !ok {
			return
		}

		identity := requestIdentity(c)
		cart, err := deps.CartSvc.RemoveLine(c.Request.Context(), identity, lineID)
		if err != nil {
			respondCartError(c, err)
			return
		}
		respondCart(c, deps, cart)
	}
}

func respondCart(c *gin.Context, deps Deps, cart *domain.Cart) {
	totals, err := deps.CartSvc.Totals(c.Request.Context(), cart)
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartSnapshot{Cart: cart, Totals: totals})
}

func respondCartError(c *gin.Context, err error) {
	var verr domain.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"field": verr.Field, "error": verr.Reason})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		serverError(c, err)
	}
}

func pathInt64(c *gin.Context, name string) (int64, bool) {
	v, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return v, true
}

func serverError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
