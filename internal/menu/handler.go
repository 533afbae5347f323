package menu

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// --------------------------------------------------
// Public menu
// --------------------------------------------------

// GetMenu always answers 200: the store falls back to the default
// catalog when every backend is down.
func (h *Handler) GetMenu(c *gin.Context) {
	snap := h.store.GetSnapshot(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"categories":  snap.Categories,
		"items":       snap.Items,
		"version":     snap.Version,
		"lastUpdated": snap.LastUpdated,
	})
}

// --------------------------------------------------
// Admin CRUD
// --------------------------------------------------

func (h *Handler) AddItem(c *gin.Context) {
	var item MenuItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "invalid item payload",
		})
		return
	}

	saved, res := h.store.AddItem(c.Request.Context(), item)
	status := http.StatusOK
	if !res.Success {
		status = http.StatusInternalServerError
	}
	c.JSON(status, gin.H{
		"success": res.Success,
		"synced":  res.Synced,
		"message": res.Message,
		"item":    saved,
	})
}

func (h *Handler) UpdateItem(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "invalid item id",
		})
		return
	}

	var patch Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "invalid item payload",
		})
		return
	}

	res, err := h.store.UpdateItem(c.Request.Context(), id, patch)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "item not found",
		})
		return
	}

	status := http.StatusOK
	if !res.Success {
		status = http.StatusInternalServerError
	}
	c.JSON(status, res)
}

func (h *Handler) DeleteItem(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "invalid item id",
		})
		return
	}

	res := h.store.DeleteItem(c.Request.Context(), id)
	status := http.StatusOK
	if !res.Success {
		status = http.StatusInternalServerError
	}
	c.JSON(status, res)
}

// --------------------------------------------------
// Admin login (shared static password, by design)
// --------------------------------------------------

type loginRequest struct {
	Password string `json:"password"`
}

// LoginHandler returns a handler comparing the submitted password
// against the configured one. Plain comparison; hardening this is
// explicitly out of scope.
func LoginHandler(adminPassword string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "invalid request",
			})
			return
		}

		if req.Password != adminPassword {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "incorrect password",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "login successful",
		})
	}
}

// --------------------------------------------------
// Mock payments
// --------------------------------------------------

type payRequest struct {
	ItemID        int64   `json:"itemId"`
	Amount        float64 `json:"amount"`
	CustomerPhone string  `json:"customerPhone"`
}

// PayTelebirr returns a mock Telebirr redirect link. No real payment
// ever happens here.
func (h *Handler) PayTelebirr(c *gin.Context) {
	var req payRequest
	_ = c.ShouldBindJSON(&req)

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"paymentUrl":    fmt.Sprintf("https://telebirr.et/payment?amount=%.2f&merchant=restaurant123&ref=%d", req.Amount, time.Now().UnixMilli()),
		"transactionId": "TXN_" + uuid.New().String(),
		"message":       "Payment initiated successfully",
	})
}

// PayMobileBanking returns the static USSD/account details used by the
// mobile-banking flow.
func (h *Handler) PayMobileBanking(c *gin.Context) {
	var req payRequest
	_ = c.ShouldBindJSON(&req)

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"ussdCode":      "*847*0941165124#",
		"accountNumber": "1000580304641",
		"message":       "Use the USSD code or account number for mobile banking payment",
	})
}
