// Package receipt renders orders as fixed-width text receipts.
package receipt

import (
	"fmt"
	"io"
	"strings"

	"github.com/noah-isme/toko-checkout/internal/catalog"
	"github.com/noah-isme/toko-checkout/internal/money"
	"github.com/noah-isme/toko-checkout/internal/order"
)

const (
	width     = 42
	dateFmt   = "2006-01-02 15:04:05"
	labelCols = 22
)

// ProductReader resolves product names for item rows.
type ProductReader interface {
	Get(id string) (catalog.Product, error)
}

// Lines renders the receipt. Products missing from the catalog are printed by id only.
func Lines(o order.Order, products ProductReader) []string {
	b := o.Breakdown
	rule := strings.Repeat("-", width)
	frame := strings.Repeat("=", width)

	lines := []string{
		frame,
		center("RECEIPT"),
		"Order: " + o.ID,
		"Date: " + o.CreatedAt.Format(dateFmt),
	}
	if o.CustomerID != "" {
		lines = append(lines, "Customer: "+o.CustomerID)
	}
	lines = append(lines, rule, fmt.Sprintf("%-10s %-5s %-12s %s", "SKU", "QTY", "UNIT", "TOTAL"))
	for _, it := range o.Items {
		lines = append(lines, fmt.Sprintf("%-10s %-5d %-12s %s", it.ProductID, it.Qty, money.Format(it.UnitPrice), money.Format(it.Total())))
		if products != nil {
			if p, err := products.Get(it.ProductID); err == nil {
				lines = append(lines, "  "+p.Name)
			}
		}
	}
	lines = append(lines, rule, row("SUBTOTAL:", money.Format(b.Subtotal)))
	for _, d := range b.Discounts {
		lines = append(lines, row(d.Description+":", "-"+money.Format(d.Value)))
	}
	lines = append(lines, row("SHIPPING:", money.Format(b.Shipping)), "TAXES:")
	for _, t := range b.Taxes {
		lines = append(lines, fmt.Sprintf("  - %s: %s", t.Category, money.Format(t.Amount)))
	}
	if o.Installments > 1 {
		lines = append(lines, row("INSTALLMENTS:", fmt.Sprintf("%dx %s", o.Installments, money.Format(o.InstallmentValue))))
	}
	lines = append(lines,
		rule,
		row("TOTAL:", money.Format(b.Total)),
		"STATUS: "+string(o.Status),
		frame,
	)
	return lines
}

// Print writes one line per entry.
func Print(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return err
		}
	}
	return nil
}

func row(label, value string) string {
	return fmt.Sprintf("%-*s %s", labelCols, label, value)
}

func center(s string) string {
	pad := (width - len(s)) / 2
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad) + s
}
