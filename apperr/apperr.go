package apperr

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Sentinel errors for the failure modes the API distinguishes. Handlers wrap
// these with context and Respond maps them to transport status codes.
var (
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrNotFound      = errors.New("not found")
	ErrEmptyCart     = errors.New("cart is empty")
	ErrPaymentConfig = errors.New("payment gateway is not configured")
	ErrCaptureFailed = errors.New("payment capture failed")
)

// ValidationError reports missing or malformed request fields by name.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Validation(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// InsufficientStockError carries the available quantity and unit so the
// storefront can show the customer what is still sellable.
type InsufficientStockError struct {
	Available int
	Unit      string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("only %d %s available", e.Available, e.Unit)
}

// Respond writes the HTTP response for err. Unknown errors are logged and
// surfaced as a generic 500 without internal detail.
func Respond(c *gin.Context, err error) {
	var ve *ValidationError
	var se *InsufficientStockError

	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Msg})
	case errors.As(err, &se):
		c.JSON(http.StatusConflict, gin.H{
			"error":     se.Error(),
			"available": se.Available,
			"unit":      se.Unit,
		})
	case errors.Is(err, ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": "cart is empty"})
	case errors.Is(err, ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	case errors.Is(err, ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrCaptureFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment capture failed", "retryable": true})
	case errors.Is(err, ErrPaymentConfig):
		log.Printf("payment configuration error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "payment is temporarily unavailable"})
	default:
		log.Printf("internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
