package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"finance-tracker/internal/service"
	"finance-tracker/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ExportHandler writes the weekly summary's flat operation list as a
// spreadsheet. The auth middleware also accepts ?token= so these URLs
// work as plain download links.
type ExportHandler struct {
	Query *service.QueryService
}

func NewExportHandler(query *service.QueryService) *ExportHandler {
	return &ExportHandler{Query: query}
}

var exportHeaders = []string{"Date", "Description", "Amount", "Type", "User", "Category"}

func (h *ExportHandler) weekRows(c *gin.Context) ([]service.ExportRow, bool) {
	p, ok := principalFrom(c)
	if !ok {
		return nil, false
	}

	userID, _ := strconv.Atoi(c.DefaultQuery("userId", "0"))
	view, err := h.Query.WeekSummary(p, uint(userID), time.Now())
	if err != nil {
		writeServiceError(c, err)
		return nil, false
	}
	return view.Operations, true
}

// WeekCSV exports the current week's operations as CSV.
func (h *ExportHandler) WeekCSV(c *gin.Context) {
	rows, ok := h.weekRows(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"week_summary_%s.csv\"",
		time.Now().Format("20060102")))

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write(exportHeaders)
	for _, r := range rows {
		writer.Write([]string{
			r.Date.Format("2006-01-02"),
			r.Description,
			r.Amount.StringFixed(2),
			r.Type,
			r.User,
			r.Category,
		})
	}
}

// WeekXLSX exports the current week's operations as XLSX.
func (h *ExportHandler) WeekXLSX(c *gin.Context) {
	rows, ok := h.weekRows(c)
	if !ok {
		return
	}

	f := excelize.NewFile()
	sheetName := "Week summary"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "failed to create sheet")
		return
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for i, head := range exportHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, head)
	}

	for idx, r := range rows {
		row := idx + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), r.Date.Format("2006-01-02"))
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), r.Description)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), r.Amount.StringFixed(2))
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), r.Type)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), r.User)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), r.Category)
	}

	f.SetColWidth(sheetName, "A", "A", 12)
	f.SetColWidth(sheetName, "B", "B", 30)
	f.SetColWidth(sheetName, "C", "C", 12)
	f.SetColWidth(sheetName, "D", "D", 10)
	f.SetColWidth(sheetName, "E", "E", 15)
	f.SetColWidth(sheetName, "F", "F", 15)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"week_summary_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, "export failed")
	}
}
