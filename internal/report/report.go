// Package report renders admin spreadsheets.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/SigNoz/storefront-go-app/internal/models"
)

const (
	OrdersSheet = "Orders"
	ItemsSheet  = "Items"

	// ContentType is the MIME type of the workbook WriteOrders produces
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var (
	orderHeader = []any{"Order ID", "User ID", "Status", "Paid", "Paid At", "Payment Method", "Items", "Shipping", "Tax", "Total", "Country", "Tracking", "Created At"}
	itemHeader  = []any{"Order ID", "Product ID", "Name", "Price", "Quantity", "Subtotal"}
)

// WriteOrders writes an xlsx workbook with one row per order and one row
// per order line
func WriteOrders(w io.Writer, orders []models.Order) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), OrdersSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(ItemsSheet); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := writeHeader(f, OrdersSheet, orderHeader, bold); err != nil {
		return err
	}
	if err := writeHeader(f, ItemsSheet, itemHeader, bold); err != nil {
		return err
	}

	itemRow := 2
	for i, o := range orders {
		if err := setRow(f, OrdersSheet, i+2, orderRow(o)); err != nil {
			return err
		}
		for _, item := range o.OrderItems {
			subtotal := item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
			row := []any{o.ID, item.ProductID, item.Name, item.Price.InexactFloat64(), item.Quantity, subtotal.InexactFloat64()}
			if err := setRow(f, ItemsSheet, itemRow, row); err != nil {
				return err
			}
			itemRow++
		}
	}

	if err := f.SetColWidth(OrdersSheet, "A", "M", 18); err != nil {
		return err
	}
	if err := f.SetColWidth(ItemsSheet, "A", "F", 18); err != nil {
		return err
	}
	return f.Write(w)
}

func orderRow(o models.Order) []any {
	paidAt := ""
	if o.PaidAt != nil {
		paidAt = o.PaidAt.UTC().Format(time.RFC3339)
	}
	return []any{
		o.ID,
		o.UserID,
		string(o.Status),
		o.IsPaid,
		paidAt,
		o.PaymentMethod,
		o.ItemsPrice.InexactFloat64(),
		o.ShippingPrice.InexactFloat64(),
		o.TaxPrice.InexactFloat64(),
		o.TotalPrice.InexactFloat64(),
		o.ShippingAddress.Country,
		o.TrackingNumber,
		o.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func writeHeader(f *excelize.File, sheet string, header []any, style int) error {
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}
