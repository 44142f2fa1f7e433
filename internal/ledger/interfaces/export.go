package interfaces

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"fuelstation-cloud/internal/ledger/application"
)

// BuildDayReportPDF renders a daily cash report as PDF.
func BuildDayReportPDF(report *application.DayReport) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Daily Cash Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Station: %s", report.StationID))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Day: %s", report.Day.Format("2006-01-02")))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Total Litres: %s", report.TotalLitres.StringFixed(3)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Gross Sales: %s", report.GrossSales.StringFixed(2)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Cash: %s  Online: %s  Credit: %s",
		report.CashTotal.StringFixed(2), report.OnlineTotal.StringFixed(2), report.CreditTotal.StringFixed(2)))
	pdf.Ln(5)
	if s := report.Settlement; s != nil {
		pdf.Cell(0, 6, fmt.Sprintf("Settlement: expected %s, counted %s, variance %s (%s%%) %s",
			s.ExpectedCash.StringFixed(2), s.ActualCash.StringFixed(2),
			s.Variance.StringFixed(2), s.VariancePercent.StringFixed(2), s.Status))
		pdf.Ln(5)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(34, 6, "Nozzle", "1", 0, "C", false, 0, "")
	pdf.CellFormat(26, 6, "Litres", "1", 0, "C", false, 0, "")
	pdf.CellFormat(26, 6, "Price", "1", 0, "C", false, 0, "")
	pdf.CellFormat(26, 6, "Total", "1", 0, "C", false, 0, "")
	pdf.CellFormat(26, 6, "Cash", "1", 0, "C", false, 0, "")
	pdf.CellFormat(26, 6, "Online", "1", 0, "C", false, 0, "")
	pdf.CellFormat(26, 6, "Credit", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, line := range report.Lines {
		pdf.CellFormat(34, 6, line.NozzleID, "1", 0, "C", false, 0, "")
		pdf.CellFormat(26, 6, line.LitresSold.StringFixed(3), "1", 0, "R", false, 0, "")
		pdf.CellFormat(26, 6, line.PricePerLitre.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(26, 6, line.TotalAmount.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(26, 6, line.CashAmount.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(26, 6, line.OnlineAmount.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(26, 6, line.CreditAmount.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildDayReportXLSX renders a daily cash report as XLSX.
func BuildDayReportXLSX(report *application.DayReport) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	readingsSheet := "readings"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(readingsSheet)

	_ = f.SetCellValue(summarySheet, "A1", "Daily Cash Report")
	_ = f.SetCellValue(summarySheet, "A3", "Station")
	_ = f.SetCellValue(summarySheet, "B3", report.StationID)
	_ = f.SetCellValue(summarySheet, "A4", "Day")
	_ = f.SetCellValue(summarySheet, "B4", report.Day.Format("2006-01-02"))
	_ = f.SetCellValue(summarySheet, "A5", "Total Litres")
	_ = f.SetCellValue(summarySheet, "B5", report.TotalLitres.StringFixed(3))
	_ = f.SetCellValue(summarySheet, "A6", "Gross Sales")
	_ = f.SetCellValue(summarySheet, "B6", report.GrossSales.StringFixed(2))
	_ = f.SetCellValue(summarySheet, "A7", "Cash Total")
	_ = f.SetCellValue(summarySheet, "B7", report.CashTotal.StringFixed(2))
	_ = f.SetCellValue(summarySheet, "A8", "Online Total")
	_ = f.SetCellValue(summarySheet, "B8", report.OnlineTotal.StringFixed(2))
	_ = f.SetCellValue(summarySheet, "A9", "Credit Total")
	_ = f.SetCellValue(summarySheet, "B9", report.CreditTotal.StringFixed(2))
	if s := report.Settlement; s != nil {
		_ = f.SetCellValue(summarySheet, "A11", "Expected Cash")
		_ = f.SetCellValue(summarySheet, "B11", s.ExpectedCash.StringFixed(2))
		_ = f.SetCellValue(summarySheet, "A12", "Actual Cash")
		_ = f.SetCellValue(summarySheet, "B12", s.ActualCash.StringFixed(2))
		_ = f.SetCellValue(summarySheet, "A13", "Variance")
		_ = f.SetCellValue(summarySheet, "B13", s.Variance.StringFixed(2))
		_ = f.SetCellValue(summarySheet, "A14", "Variance %")
		_ = f.SetCellValue(summarySheet, "B14", s.VariancePercent.StringFixed(2))
		_ = f.SetCellValue(summarySheet, "A15", "Status")
		_ = f.SetCellValue(summarySheet, "B15", s.Status)
	}

	headers := []string{"Nozzle", "Reading", "Previous", "Litres", "Price", "Total", "Cash", "Online", "Credit"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(readingsSheet, cell, header)
	}
	for i, line := range report.Lines {
		row := i + 2
		values := []string{
			line.NozzleID,
			line.ReadingValue.StringFixed(3),
			line.PreviousReading.StringFixed(3),
			line.LitresSold.StringFixed(3),
			line.PricePerLitre.StringFixed(2),
			line.TotalAmount.StringFixed(2),
			line.CashAmount.StringFixed(2),
			line.OnlineAmount.StringFixed(2),
			line.CreditAmount.StringFixed(2),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(readingsSheet, cell, value)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
