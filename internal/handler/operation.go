package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"finance-tracker/internal/service"
	"finance-tracker/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// OperationHandler serves operation CRUD and lists.
type OperationHandler struct {
	Ops   *service.OperationService
	Query *service.QueryService
}

func NewOperationHandler(ops *service.OperationService, query *service.QueryService) *OperationHandler {
	return &OperationHandler{Ops: ops, Query: query}
}

type createOperationReq struct {
	Amount      decimal.Decimal `json:"amount"`
	CategoryID  uint            `json:"categoryId"`
	Type        string          `json:"type"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
	UserID      uint            `json:"userId"` // admins may record on another user's behalf
}

type updateOperationReq struct {
	Amount      *decimal.Decimal `json:"amount"`
	CategoryID  *uint            `json:"categoryId"`
	Type        *string          `json:"type"`
	Description *string          `json:"description"`
	Date        *string          `json:"date"`
}

func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return uint(id), true
}

func (h *OperationHandler) Create(c *gin.Context) {
	p, ok := principalFrom(c)
	if !ok {
		return
	}

	var req createOperationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}

	in := service.CreateOperationInput{
		UserID:      req.UserID,
		Amount:      req.Amount,
		CategoryID:  req.CategoryID,
		Type:        req.Type,
		Description: req.Description,
	}
	if req.Date != "" {
		t, ok := parseDate(req.Date)
		if !ok {
			util.ErrorDetails(c, http.StatusBadRequest, "invalid data",
				gin.H{"date": "unparseable date"})
			return
		}
		in.Date = t
	}

	op, err := h.Ops.Create(p, in)
	if err != nil && !errors.Is(err, service.ErrSummariesStale) {
		writeServiceError(c, err)
		return
	}

	// reload with category and user names joined; the bare row is
	// good enough if the reload fails, the mutation already committed
	view := toOperationView(op)
	if joined, jerr := h.Query.GetOperation(p, op.ID); jerr == nil {
		view = toOperationView(joined)
	}

	body := gin.H{"operation": view}
	if err != nil {
		// ledger write committed, only the summaries are behind;
		// logged distinctly so a reconciliation pass can find it
		log.Printf("aggregation inconsistency: user=%d operation=%d: %v", op.UserID, op.ID, err)
		body["warning"] = "operation saved but summaries may be stale"
	}
	c.JSON(http.StatusCreated, body)
}

func (h *OperationHandler) List(c *gin.Context) {
	p, ok := principalFrom(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	userID, _ := strconv.Atoi(c.DefaultQuery("userId", "0"))

	ops, total, err := h.Query.ListOperations(p, service.OperationFilter{
		UserID: uint(userID),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}

	views := make([]operationView, 0, len(ops))
	for i := range ops {
		views = append(views, toOperationView(&ops[i]))
	}
	c.JSON(http.StatusOK, gin.H{
		"operations": views,
		"total":      total,
		"limit":      limit,
		"offset":     offset,
	})
}

func (h *OperationHandler) Get(c *gin.Context) {
	p, ok := principalFrom(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	op, err := h.Query.GetOperation(p, id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOperationView(op))
}

func (h *OperationHandler) Update(c *gin.Context) {
	p, ok := principalFrom(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req updateOperationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}

	in := service.UpdateOperationInput{
		Amount:      req.Amount,
		CategoryID:  req.CategoryID,
		Type:        req.Type,
		Description: req.Description,
	}
	if req.Date != nil {
		t, ok := parseDate(*req.Date)
		if !ok {
			util.ErrorDetails(c, http.StatusBadRequest, "invalid data",
				gin.H{"date": "unparseable date"})
			return
		}
		in.Date = &t
	}

	op, err := h.Ops.Update(p, id, in)
	if err != nil && !errors.Is(err, service.ErrSummariesStale) {
		writeServiceError(c, err)
		return
	}

	body := gin.H{"operation": toOperationView(op)}
	if err != nil {
		log.Printf("aggregation inconsistency: user=%d operation=%d: %v", op.UserID, op.ID, err)
		body["warning"] = "operation saved but summaries may be stale"
	}
	c.JSON(http.StatusOK, body)
}

func (h *OperationHandler) Delete(c *gin.Context) {
	p, ok := principalFrom(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	err := h.Ops.Delete(p, id)
	if err != nil && !errors.Is(err, service.ErrSummariesStale) {
		writeServiceError(c, err)
		return
	}

	body := gin.H{"message": "operation deleted"}
	if err != nil {
		log.Printf("aggregation inconsistency: operation=%d: %v", id, err)
		body["warning"] = "operation deleted but summaries may be stale"
	}
	c.JSON(http.StatusOK, body)
}
