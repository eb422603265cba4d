package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"desk-reservation-backend/internal/model"
	"desk-reservation-backend/internal/store"
)

type putSubscriptionRequest struct {
	Endpoint        string  `json:"endpoint" binding:"required"`
	P256DH          string  `json:"p256dh" binding:"required"`
	Auth            string  `json:"auth" binding:"required"`
	SubscribedDesks []int64 `json:"subscribed_desks"`
}

type deleteSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// PutSubscription handles the creation or replacement of a subscription.
func (h *Handler) PutSubscription(c *gin.Context) {
	var req putSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request.")
		return
	}
	for _, id := range req.SubscribedDesks {
		if _, ok := h.engine.Desk(id); !ok {
			badRequest(c, fmt.Sprintf("Unknown desk %d.", id))
			return
		}
	}

	subscription := model.PushSubscription{
		Endpoint: req.Endpoint,
		P256DH:   req.P256DH,
		Auth:     req.Auth,
	}
	if err := h.store.SaveSubscription(c.Request.Context(), &subscription, req.SubscribedDesks); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusCreated)
}

// DeleteSubscription handles the deletion of a subscription.
func (h *Handler) DeleteSubscription(c *gin.Context) {
	var req deleteSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request.")
		return
	}

	if err := h.store.DeleteSubscription(c.Request.Context(), req.Endpoint); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetSubscription returns the desks a subscription listens to.
func (h *Handler) GetSubscription(c *gin.Context) {
	endpoint := c.Query("endpoint")
	if endpoint == "" {
		badRequest(c, "endpoint is required.")
		return
	}

	subscription, err := h.store.FindSubscription(c.Request.Context(), endpoint)
	if errors.Is(err, store.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, errorResponse{Message: "Subscription not found.", Code: "subscription_not_found"})
		return
	}
	if err != nil {
		h.respondError(c, err)
		return
	}

	deskIDs := make([]int64, len(subscription.Desks))
	for i, desk := range subscription.Desks {
		deskIDs[i] = desk.DeskID
	}

	c.JSON(http.StatusOK, gin.H{"subscribed_desks": deskIDs})
}
