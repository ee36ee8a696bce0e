package httpserver

import (
	"errors"
	"net/http"

	"restaurant-orders/internal/domain"
	checkoutsvc "restaurant-orders/internal/service/checkout"
	"github.com/gin-gonic/gin"
)

func checkoutHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in checkoutsvc.Input
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		identity := requestIdentity(c)
		order, err := deps.CheckoutSvc.Checkout(c.Request.Context(), identity, in)
		if err != nil {
			var verr domain.ValidationError
			switch {
			case errors.As(err, &verr):
				c.JSON(http.StatusBadRequest, gin.H{"code": "validation", "field": verr.Field, "error": verr.Reason})
			case errors.Is(err, domain.ErrEmptyCart):
				c.JSON(http.StatusBadRequest, gin.H{"code": "empty_cart", "error": "your cart is empty"})
			default:
				serverError(c, err)
			}
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"orderId": order.ID,
			"status":  order.Status,
			"total":   order.Total,
		})
	}
}
