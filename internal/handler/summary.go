package handler

import (
	"net/http"
	"strconv"
	"time"

	"finance-tracker/internal/service"

	"github.com/gin-gonic/gin"
)

// SummaryHandler serves the day/week/month summary views. These
// endpoints only read; they never trigger recomputation.
type SummaryHandler struct {
	Query *service.QueryService
}

func NewSummaryHandler(query *service.QueryService) *SummaryHandler {
	return &SummaryHandler{Query: query}
}

// Totals returns income/expense/balance for the current day, week
// (Monday-start) or month, computed from raw operations.
func (h *SummaryHandler) Totals(c *gin.Context) {
	p, ok := principalFrom(c)
	if !ok {
		return
	}

	totals, err := h.Query.PeriodTotals(p, c.DefaultQuery("period", "month"), time.Now())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, totals)
}

func (h *SummaryHandler) Day(c *gin.Context) {
	p, ok := principalFrom(c)
	if !ok {
		return
	}

	view, err := h.Query.DaySummary(p, time.Now())
	if err != nil {
		writeServiceError(c, err)
		return
	}

	ops := make([]operationView, 0, len(view.Operations))
	for i := range view.Operations {
		ops = append(ops, toOperationView(&view.Operations[i]))
	}
	c.JSON(http.StatusOK, gin.H{
		"totalIncome":  view.TotalIncome,
		"totalExpense": view.TotalExpense,
		"balance":      view.Balance,
		"operations":   ops,
	})
}

func (h *SummaryHandler) Week(c *gin.Context) {
	p, ok := principalFrom(c)
	if !ok {
		return
	}

	userID, _ := strconv.Atoi(c.DefaultQuery("userId", "0"))
	view, err := h.Query.WeekSummary(p, uint(userID), time.Now())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *SummaryHandler) Month(c *gin.Context) {
	p, ok := principalFrom(c)
	if !ok {
		return
	}

	view, err := h.Query.MonthSummary(p, time.Now())
	if err != nil {
		writeServiceError(c, err)
		return
	}

	weeks := make([]gin.H, 0, len(view.WeeklySummaries))
	for _, w := range view.WeeklySummaries {
		ops := make([]operationView, 0, len(w.Operations))
		for i := range w.Operations {
			ops = append(ops, toOperationView(&w.Operations[i]))
		}
		weeks = append(weeks, gin.H{
			"weekStart":    w.WeekStart,
			"weekEnd":      w.WeekEnd,
			"totalIncome":  w.TotalIncome,
			"totalExpense": w.TotalExpense,
			"balance":      w.Balance,
			"operations":   ops,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"totalIncome":     view.TotalIncome,
		"totalExpense":    view.TotalExpense,
		"balance":         view.Balance,
		"month":           view.Month,
		"year":            view.Year,
		"weeklySummaries": weeks,
	})
}
