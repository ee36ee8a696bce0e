package httpserver

import (
	"errors"
	"net/http"

	"restaurant-orders/internal/domain"
	"restaurant-orders/internal/notify"
	"github.com/gin-gonic/gin"
)

type transitionInput struct {
	Status string `json:"status"`
}

func getOrderHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, ok := pathInt64(c, "orderID")
		if !ok {
			return
		}
		order, err := deps.OrderSvc.Get(c.Request.Context(), orderID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				return
			}
			serverError(c, err)
			return
		}
		respondOrder(c, order)
	}
}

func transitionOrderHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, ok := pathInt64(c, "orderID")
		if !ok {
			return
		}
		var in transitionInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		target, ok := domain.ParseOrderStatus(in.Status)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status " + in.Status})
			return
		}

		order, err := deps.OrderSvc.Transition(c.Request.Context(), orderID, target, domain.ActorStaff)
		if err != nil {
			respondOrderError(c, err)
			return
		}
		respondOrder(c, order)
	}
}

func cancelOrderHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, ok := pathInt64(c, "orderID")
		if !ok {
			return
		}

		identity := requestIdentity(c)
		order, err := deps.OrderSvc.CancelAsCustomer(c.Request.Context(), orderID, identity)
		if err != nil {
			respondOrderError(c, err)
			return
		}
		respondOrder(c, order)
	}
}

func respondOrder(c *gin.Context, order *domain.Order) {
	c.JSON(http.StatusOK, gin.H{
		"order":    order,
		"message":  notify.StatusMessage(order.Status),
		"progress": notify.StatusProgress(order.Status),
		"terminal": domain.IsTerminal(order.Status),
	})
}

func respondOrderError(c *gin.Context, err error) {
	var terr domain.InvalidTransitionError
	switch {
	case errors.As(err, &terr):
		c.JSON(http.StatusConflict, gin.H{"error": terr.Error(), "from": terr.From, "to": terr.To})
	case errors.Is(err, domain.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "order does not belong to this identity"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
	default:
		serverError(c, err)
	}
}
