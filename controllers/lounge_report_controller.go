package controllers

import (
	"bytes"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tealeg/xlsx"

	"github.com/abenezer-t/CampusEats/config"
	"github.com/abenezer-t/CampusEats/models"
	"github.com/abenezer-t/CampusEats/utils"
)

// DownloadLoungeReportExcel exports a lounge's orders with commission
// columns as an xlsx workbook. Lounge owner or admin only.
func DownloadLoungeReportExcel(c *gin.Context) {
	utils.LogInfo("DownloadLoungeReportExcel called")

	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	loungeID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid lounge ID", nil)
		return
	}

	lounge, appErr := ownedLounge(config.DB, uint(loungeID), user)
	if appErr != nil {
		utils.RespondWithAppError(c, appErr)
		return
	}

	period := c.DefaultQuery("period", "day")
	utils.LogDebug("Generating Excel report for lounge ID: %d, period: %s", loungeID, period)

	now := time.Now()
	var startDate, endDate time.Time
	switch period {
	case "day":
		startDate = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		endDate = time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 999999999, now.Location())
	case "week":
		endDate = time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 999999999, now.Location())
		startDate = endDate.AddDate(0, 0, -6)
		startDate = time.Date(startDate.Year(), startDate.Month(), startDate.Day(), 0, 0, 0, 0, startDate.Location())
	case "month":
		startDate = now.AddDate(0, 0, -30).Truncate(24 * time.Hour)
		endDate = now.Add(24 * time.Hour)
	default:
		utils.LogError("Invalid period specified: %s", period)
		utils.BadRequest(c, "Invalid period", "Period must be day, week, or month")
		return
	}

	var orders []models.Order
	query := config.DB.Where("lounge_id = ? AND created_at >= ? AND created_at <= ?", loungeID, startDate, endDate).
		Preload("User").
		Preload("OrderItems").
		Order("created_at DESC")
	if err := query.Find(&orders).Error; err != nil {
		utils.LogError("Failed to fetch orders for lounge ID: %d: %v", loungeID, err)
		utils.InternalServerError(c, "Failed to fetch orders", nil)
		return
	}
	utils.LogDebug("Retrieved %d orders for Excel report", len(orders))

	var summary struct {
		TotalOrders     int
		TotalRevenue    float64
		TotalCommission float64
		TotalItems      int
		TotalCustomers  int
		NetRevenue      float64
	}
	customerSet := make(map[uint]bool)
	for _, order := range orders {
		if order.Status == models.OrderStatusCancelled {
			continue
		}
		summary.TotalOrders++
		summary.TotalRevenue += order.TotalPrice
		summary.TotalCommission += order.Commission
		customerSet[order.UserID] = true
		for _, item := range order.OrderItems {
			summary.TotalItems += item.Quantity
		}
	}
	summary.TotalCustomers = len(customerSet)
	summary.TotalRevenue = math.Round(summary.TotalRevenue*100) / 100
	summary.TotalCommission = math.Round(summary.TotalCommission*100) / 100
	summary.NetRevenue = math.Round((summary.TotalRevenue-summary.TotalCommission)*100) / 100

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Lounge Report")
	if err != nil {
		utils.LogError("Failed to create Excel sheet: %v", err)
		utils.InternalServerError(c, "Failed to create Excel sheet", nil)
		return
	}

	row := sheet.AddRow()
	row.AddCell().SetString("CAMPUS EATS - Lounge Report")
	row = sheet.AddRow()
	row.AddCell().SetString("Lounge: " + lounge.Name)
	row = sheet.AddRow()
	row.AddCell().SetString("Period: " + strings.ToUpper(period) + " | " + startDate.Format("2006-01-02") + " to " + endDate.Format("2006-01-02"))
	sheet.AddRow() // spacing

	headers := []string{"Order ID", "Customer", "Date", "Items", "Total", "Commission", "Net", "Payment Method", "Status"}
	headerRow := sheet.AddRow()
	for _, h := range headers {
		headerRow.AddCell().SetString(h)
	}

	for _, order := range orders {
		itemCount := 0
		for _, item := range order.OrderItems {
			itemCount += item.Quantity
		}
		r := sheet.AddRow()
		r.AddCell().SetString(strconv.Itoa(int(order.ID)))
		r.AddCell().SetString(order.User.Name)
		r.AddCell().SetString(order.CreatedAt.Format("2006-01-02 15:04"))
		r.AddCell().SetString(strconv.Itoa(itemCount))
		r.AddCell().SetString(fmt.Sprintf("%.2f", order.TotalPrice))
		r.AddCell().SetString(fmt.Sprintf("%.2f", order.Commission))
		r.AddCell().SetString(fmt.Sprintf("%.2f", order.TotalPrice-order.Commission))
		r.AddCell().SetString(order.PaymentMethod)
		r.AddCell().SetString(order.Status)
	}

	sheet.AddRow() // spacing
	summaryRows := [][2]string{
		{"Total Orders", strconv.Itoa(summary.TotalOrders)},
		{"Total Items", strconv.Itoa(summary.TotalItems)},
		{"Unique Customers", strconv.Itoa(summary.TotalCustomers)},
		{"Total Revenue", fmt.Sprintf("%.2f", summary.TotalRevenue)},
		{"Total Commission", fmt.Sprintf("%.2f", summary.TotalCommission)},
		{"Net Revenue", fmt.Sprintf("%.2f", summary.NetRevenue)},
	}
	for _, sr := range summaryRows {
		r := sheet.AddRow()
		r.AddCell().SetString(sr[0])
		r.AddCell().SetString(sr[1])
	}

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		utils.LogError("Failed to write Excel file: %v", err)
		utils.InternalServerError(c, "Failed to generate report", nil)
		return
	}
	utils.LogInfo("Excel report generated for lounge ID: %d with %d orders", loungeID, len(orders))

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=lounge_report.xlsx")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
