package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"log"
	"strconv"
	"time"

	"affiliate-dashboard-system/models"
	"affiliate-dashboard-system/utils"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gorm.io/gorm"
)

// ReportType selects what a generated report lists.
type ReportType string

const (
	ReportTypeClicks   ReportType = "clicks"
	ReportTypeEarnings ReportType = "earnings"
)

// ReportService renders click/earning listings for a date range as CSV
// (streamed inline) or XLSX (archived to R2). It consumes the same stores
// the aggregator does and guarantees stable, typed columns — presentation
// beyond that is the dashboard's problem.
type ReportService struct {
	DB      *gorm.DB
	printer *message.Printer
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{DB: db, printer: message.NewPrinter(language.English)}
}

// GenerateCSV returns the report body and a download filename.
func (s *ReportService) GenerateCSV(callerID, affiliateID string, reportType ReportType, start, end time.Time) ([]byte, string, error) {
	if callerID != affiliateID {
		return nil, "", ErrForbidden
	}
	if start.After(end) {
		return nil, "", fmt.Errorf("report range: %w", ErrInvalidRange)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	switch reportType {
	case ReportTypeClicks:
		clicks, err := s.clicksInRange(affiliateID, start, end)
		if err != nil {
			return nil, "", err
		}
		_ = w.Write([]string{"Timestamp", "Link ID", "IP Address", "Referrer", "Converted"})
		for _, c := range clicks {
			linkID := ""
			if c.LinkID != nil {
				linkID = *c.LinkID
			}
			_ = w.Write([]string{
				c.Timestamp.Format(time.RFC3339),
				linkID,
				c.IPAddress,
				c.Referrer,
				strconv.FormatBool(c.Converted),
			})
		}
	case ReportTypeEarnings:
		earnings, err := s.earningsInRange(affiliateID, start, end)
		if err != nil {
			return nil, "", err
		}
		_ = w.Write([]string{"Created", "Amount", "Status", "Source", "Linked Click"})
		total := decimal.Zero
		for _, e := range earnings {
			linked := ""
			if e.LinkedClickID != nil {
				linked = *e.LinkedClickID
			}
			_ = w.Write([]string{
				e.CreatedAt.Format(time.RFC3339),
				e.Amount.StringFixed(2),
				string(e.Status),
				e.Source,
				linked,
			})
			total = total.Add(e.Amount)
		}
		_ = w.Write([]string{"", total.StringFixed(2), "", s.totalLabel(len(earnings)), ""})
	default:
		return nil, "", fmt.Errorf("report type %q: %w", reportType, ErrInvalidRange)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", fmt.Errorf("failed to write CSV: %w", err)
	}

	filename := fmt.Sprintf("affiliate-report-%s-%s.csv", reportType, start.Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

// GenerateXLSX builds a spreadsheet, uploads it to R2 and returns the
// object URL.
func (s *ReportService) GenerateXLSX(callerID, affiliateID string, reportType ReportType, start, end time.Time) (string, error) {
	if callerID != affiliateID {
		return "", ErrForbidden
	}
	if start.After(end) {
		return "", fmt.Errorf("report range: %w", ErrInvalidRange)
	}

	f := excelize.NewFile()
	sheetName := "Report"
	index, _ := f.NewSheet(sheetName)
	_ = f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	switch reportType {
	case ReportTypeClicks:
		clicks, err := s.clicksInRange(affiliateID, start, end)
		if err != nil {
			return "", err
		}
		headers := []string{"Timestamp", "Link ID", "IP Address", "Referrer", "Converted"}
		for i, header := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			_ = f.SetCellValue(sheetName, cell, header)
		}
		for row, c := range clicks {
			linkID := ""
			if c.LinkID != nil {
				linkID = *c.LinkID
			}
			_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", row+2), c.Timestamp.Format(time.RFC3339))
			_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", row+2), linkID)
			_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", row+2), c.IPAddress)
			_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", row+2), c.Referrer)
			_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", row+2), c.Converted)
		}
	case ReportTypeEarnings:
		earnings, err := s.earningsInRange(affiliateID, start, end)
		if err != nil {
			return "", err
		}
		headers := []string{"Created", "Amount", "Status", "Source"}
		for i, header := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			_ = f.SetCellValue(sheetName, cell, header)
		}
		total := decimal.Zero
		row := 2
		for _, e := range earnings {
			_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), e.CreatedAt.Format(time.RFC3339))
			_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), e.Amount.InexactFloat64())
			_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), string(e.Status))
			_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), e.Source)
			total = total.Add(e.Amount)
			row++
		}
		_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), s.totalLabel(len(earnings)))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), total.StringFixed(2))
	default:
		return "", fmt.Errorf("report type %q: %w", reportType, ErrInvalidRange)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return "", fmt.Errorf("failed to write spreadsheet: %w", err)
	}

	key := fmt.Sprintf("reports/%s/%s-%s.xlsx", affiliateID, reportType, time.Now().UTC().Format("20060102_150405"))
	url, err := utils.UploadReportToR2(key, buf.Bytes(),
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err != nil {
		log.Printf("❌ [REPORTS] Failed to archive report %s: %v", key, err)
		return "", err
	}
	return url, nil
}

// totalLabel captions the summary row. Amounts stay exact decimal strings;
// only the record count goes through the localized printer.
func (s *ReportService) totalLabel(count int) string {
	return s.printer.Sprintf("Total (%d earnings)", count)
}

func (s *ReportService) clicksInRange(affiliateID string, start, end time.Time) ([]models.ClickEvent, error) {
	var clicks []models.ClickEvent
	if err := s.DB.Where("affiliate_id = ? AND timestamp >= ? AND timestamp <= ?", affiliateID, start, end).
		Order("timestamp DESC").Find(&clicks).Error; err != nil {
		return nil, ErrUnavailable
	}
	return clicks, nil
}

func (s *ReportService) earningsInRange(affiliateID string, start, end time.Time) ([]models.EarningRecord, error) {
	var earnings []models.EarningRecord
	if err := s.DB.Where("affiliate_id = ? AND created_at >= ? AND created_at <= ?", affiliateID, start, end).
		Order("created_at DESC").Find(&earnings).Error; err != nil {
		return nil, ErrUnavailable
	}
	return earnings, nil
}
