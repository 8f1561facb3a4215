package handler

import (
	"errors"
	"log"
	"net/http"
	"time"

	"finance-tracker/internal/models"
	"finance-tracker/internal/policy"
	"finance-tracker/internal/service"
	"finance-tracker/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// currentUser pulls the authenticated user placed by AuthMiddleware.
// Writes 401 and returns false when absent.
func currentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get("currentUser")
	if !ok {
		util.Error(c, http.StatusUnauthorized, "authentication required")
		return nil, false
	}
	user, ok := v.(*models.User)
	if !ok || user == nil {
		util.Error(c, http.StatusUnauthorized, "authentication required")
		return nil, false
	}
	return user, true
}

func principalFrom(c *gin.Context) (policy.Principal, bool) {
	user, ok := currentUser(c)
	if !ok {
		return policy.Principal{}, false
	}
	return policy.FromUser(user), true
}

// writeServiceError maps service errors onto the HTTP error taxonomy.
// Unexpected errors are logged and hidden behind a generic message.
func writeServiceError(c *gin.Context, err error) {
	var vErr *service.ValidationError
	var inUse *service.CategoryInUseError

	switch {
	case errors.As(err, &vErr):
		util.ErrorDetails(c, http.StatusBadRequest, "invalid data", vErr.Fields)
	case errors.As(err, &inUse):
		util.ErrorDetails(c, http.StatusBadRequest,
			"cannot delete this category because it has operations",
			gin.H{"operationsCount": inUse.Operations})
	case errors.Is(err, service.ErrNotFound):
		util.Error(c, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrForbidden):
		util.Error(c, http.StatusForbidden, "forbidden")
	default:
		log.Printf("internal error: %v", err)
		util.Error(c, http.StatusInternalServerError, "an unexpected error occurred")
	}
}

// operationView is the wire shape of one operation with its category
// and user joined.
type operationView struct {
	ID          uint            `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
	Category    gin.H           `json:"category"`
	User        gin.H           `json:"user"`
}

func toOperationView(op *models.Operation) operationView {
	return operationView{
		ID:          op.ID,
		Amount:      op.Amount,
		Type:        op.Type,
		Description: op.Description,
		Date:        op.Date,
		Category:    gin.H{"id": op.Category.ID, "name": op.Category.Name},
		User:        gin.H{"id": op.User.ID, "name": op.User.Name, "email": op.User.Email},
	}
}

// parseDate accepts the date formats clients actually send.
func parseDate(s string) (time.Time, bool) {
	layouts := []string{
		time.RFC3339,          // 2025-06-17T00:00:00+02:00
		"2006-01-02T15:04:05", // 2025-06-17T00:00:00
		"2006-01-02",          // 2025-06-17
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
