package paymentControllers

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"

	"github.com/Pixel0001/Nutopia-sub001/apperr"
	cartControllers "github.com/Pixel0001/Nutopia-sub001/controllers/cart"
	orderControllers "github.com/Pixel0001/Nutopia-sub001/controllers/order"
	"github.com/Pixel0001/Nutopia-sub001/models"
	"github.com/Pixel0001/Nutopia-sub001/notify"
	"github.com/Pixel0001/Nutopia-sub001/pricing"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Gateway order ids are opaque tokens; reject anything else before touching
// the gateway.
var intentIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{8,64}$`)

// POST /payment/intent
// The amount is derived server-side from the persisted cart; any total in the
// request body is ignored.
func CreateIntentHandler(db *gorm.DB, client *Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")

		lines, err := cartControllers.List(db, userID)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		if len(lines) == 0 {
			apperr.Respond(c, apperr.ErrEmptyCart)
			return
		}

		totals := pricing.ComputeTotals(lines)
		cfg := client.Config()
		if totals.Total.LessThanOrEqual(cfg.MinOrderMDL) {
			apperr.Respond(c, apperr.Validation("order total %s MDL is below the minimum chargeable amount", totals.Total.StringFixed(2)))
			return
		}

		meta := IntentMetadata{
			UserID:       userID,
			Subtotal:     totals.Subtotal,
			ShippingCost: totals.ShippingCost,
			TotalMDL:     totals.Total,
		}

		intentID, approveURL, err := client.CreateIntent(c.Request.Context(), settlementAmount(cfg, totals.Total), meta)
		if err != nil {
			apperr.Respond(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"intent_id":   intentID,
			"approve_url": approveURL,
			"totals":      totals,
		})
	}
}

// POST /payment/capture/:intentID
// Public: the buyer returns from the gateway redirect without the session
// that created the intent. The intent id format is validated before any
// gateway call. Capture success and order existence are all-or-nothing: order
// creation runs in one transaction keyed by the intent id, so replaying a
// captured intent returns the same order instead of creating a second one.
func CaptureIntentHandler(db *gorm.DB, client *Client, notifier notify.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		intentID := c.Param("intentID")
		if !intentIDPattern.MatchString(intentID) {
			apperr.Respond(c, apperr.Validation("invalid payment intent id"))
			return
		}

		result, err := client.Capture(c.Request.Context(), intentID)
		if err != nil {
			apperr.Respond(c, err)
			return
		}

		var user models.User
		if err := db.First(&user, "id = ?", result.Meta.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				apperr.Respond(c, fmt.Errorf("user: %w", apperr.ErrNotFound))
				return
			}
			apperr.Respond(c, fmt.Errorf("load user: %w", err))
			return
		}

		contact := orderControllers.ContactInfo{
			Name:       user.Name,
			Email:      user.Email,
			Phone:      user.Phone,
			Address:    user.Address.Street,
			City:       user.Address.City,
			PostalCode: user.Address.PostalCode,
		}

		order, err := orderControllers.CreateFromCart(db, result.Meta.UserID, contact, "card", intentID)
		if err != nil {
			apperr.Respond(c, err)
			return
		}

		if notifier != nil {
			notifier.OrderPlaced(order)
		}
		orderControllers.BroadcastOrder("order_placed", order)

		c.JSON(http.StatusOK, gin.H{
			"order": order,
			"payment": gin.H{
				"intent_id": result.IntentID,
				"status":    result.Status,
			},
		})
	}
}
