package interfaces

import (
	"bytes"
	"fmt"
	"math/big"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	tradelog "carbonmarket-cloud/internal/tradelog/domain"
)

const creditDecimals = 18

// formatUnits renders a raw 1e18-scaled decimal string as a human amount.
func formatUnits(raw string) string {
	value, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return raw
	}
	return decimal.NewFromBigInt(value, -creditDecimals).String()
}

// BuildTradesPDF renders a trade report as PDF.
func BuildTradesPDF(trades []tradelog.Trade, generatedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Carbon Credit Trade Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", generatedAt.Format(time.RFC3339)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Trades: %d", len(trades)))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(20, 6, "Order", "1", 0, "C", false, 0, "")
	pdf.CellFormat(45, 6, "Buyer", "1", 0, "C", false, 0, "")
	pdf.CellFormat(45, 6, "Seller", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Credits", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Price/Unit", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Total", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Settled At", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 9)
	for _, trade := range trades {
		pdf.CellFormat(20, 6, fmt.Sprintf("%d", trade.OrderID), "1", 0, "R", false, 0, "")
		pdf.CellFormat(45, 6, trade.Buyer, "1", 0, "L", false, 0, "")
		pdf.CellFormat(45, 6, trade.Seller, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, formatUnits(trade.Amount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, formatUnits(trade.PricePerUnit), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, formatUnits(trade.TotalPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, trade.OccurredAt.Format("2006-01-02 15:04"), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildTradesXLSX renders a trade report as XLSX.
func BuildTradesXLSX(trades []tradelog.Trade, generatedAt time.Time) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	tradesSheet := "trades"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(tradesSheet)

	_ = f.SetCellValue(summarySheet, "A1", "Carbon Credit Trade Report")
	_ = f.SetCellValue(summarySheet, "A3", "Generated")
	_ = f.SetCellValue(summarySheet, "B3", generatedAt.Format(time.RFC3339))
	_ = f.SetCellValue(summarySheet, "A4", "Trades")
	_ = f.SetCellValue(summarySheet, "B4", len(trades))

	_ = f.SetCellValue(tradesSheet, "A1", "Order")
	_ = f.SetCellValue(tradesSheet, "B1", "Buyer")
	_ = f.SetCellValue(tradesSheet, "C1", "Seller")
	_ = f.SetCellValue(tradesSheet, "D1", "Credits")
	_ = f.SetCellValue(tradesSheet, "E1", "Price/Unit")
	_ = f.SetCellValue(tradesSheet, "F1", "Total")
	_ = f.SetCellValue(tradesSheet, "G1", "Settled At")
	for i, trade := range trades {
		row := i + 2
		_ = f.SetCellValue(tradesSheet, fmt.Sprintf("A%d", row), trade.OrderID)
		_ = f.SetCellValue(tradesSheet, fmt.Sprintf("B%d", row), trade.Buyer)
		_ = f.SetCellValue(tradesSheet, fmt.Sprintf("C%d", row), trade.Seller)
		_ = f.SetCellValue(tradesSheet, fmt.Sprintf("D%d", row), formatUnits(trade.Amount))
		_ = f.SetCellValue(tradesSheet, fmt.Sprintf("E%d", row), formatUnits(trade.PricePerUnit))
		_ = f.SetCellValue(tradesSheet, fmt.Sprintf("F%d", row), formatUnits(trade.TotalPrice))
		_ = f.SetCellValue(tradesSheet, fmt.Sprintf("G%d", row), trade.OccurredAt.Format(time.RFC3339))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
