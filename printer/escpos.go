package printer

import (
	"bytes"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// ESC/POS control sequences.
const (
	escInit        = "\x1b@"
	escAlignLeft   = "\x1ba\x00"
	escAlignCenter = "\x1ba\x01"
	escBoldOn      = "\x1bE\x01"
	escBoldOff     = "\x1bE\x00"
	escDoubleOn    = "\x1d!\x11"
	escDoubleOff   = "\x1d!\x00"
	escFeed3       = "\x1bd\x03"
	escCut         = "\x1dV\x01"
)

type Line struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type Bill struct {
	RestaurantName    string
	RestaurantAddress string
	OrderNumber       string
	TableNumber       string
	CustomerName      string
	CustomerPhone     string
	Items             []Line
	Total             float64
	PaymentMethod     string
	Notes             string
	At                time.Time
}

func money(v float64) string {
	return fmt.Sprintf("Rs.%.2f", v)
}

type doc struct {
	buf   bytes.Buffer
	width int
}

func (d *doc) raw(s string) { d.buf.WriteString(s) }

func (d *doc) line(s string) {
	d.buf.WriteString(clip(s, d.width))
	d.buf.WriteByte('\n')
}

func (d *doc) rule() { d.line(strings.Repeat("-", d.width)) }

// row prints left and right on one line, clipping left to make room.
func (d *doc) row(left, right string) {
	room := d.width - utf8.RuneCountInString(right) - 1
	if room < 1 {
		d.line(right)
		return
	}
	left = clip(left, room)
	pad := d.width - utf8.RuneCountInString(left) - utf8.RuneCountInString(right)
	d.line(left + strings.Repeat(" ", pad) + right)
}

func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// RenderBill lays the bill out for a receipt printer of the given width in
// characters.
func RenderBill(b Bill, width int) []byte {
	d := &doc{width: width}
	d.raw(escInit + escAlignCenter + escBoldOn + escDoubleOn)
	d.line(b.RestaurantName)
	d.raw(escDoubleOff + escBoldOff)
	if b.RestaurantAddress != "" {
		d.line(b.RestaurantAddress)
	}
	d.raw(escAlignLeft)
	d.rule()
	d.row("Order #"+b.OrderNumber, b.At.Format("02/01/2006 15:04"))
	if b.TableNumber != "" {
		d.line("Table: " + b.TableNumber)
	}
	if b.CustomerName != "" {
		d.line("Customer: " + b.CustomerName)
	}
	if b.CustomerPhone != "" {
		d.line("Phone: " + b.CustomerPhone)
	}
	d.rule()
	for _, it := range b.Items {
		d.row(fmt.Sprintf("%dx %s", it.Quantity, it.Name), money(it.Price*float64(it.Quantity)))
	}
	d.rule()
	d.raw(escBoldOn)
	d.row("TOTAL", money(b.Total))
	d.raw(escBoldOff)
	if b.PaymentMethod != "" {
		d.line("Payment: " + strings.ToUpper(b.PaymentMethod))
	}
	if b.Notes != "" {
		d.line("Notes: " + b.Notes)
	}
	d.raw(escAlignCenter)
	d.line("")
	d.line("Thank you! Visit again")
	d.raw(escFeed3 + escCut)
	return d.buf.Bytes()
}

func RenderTestPage(s Settings, at time.Time, width int) []byte {
	d := &doc{width: width}
	d.raw(escInit + escAlignCenter + escBoldOn)
	d.line("PRINTER TEST")
	d.raw(escBoldOff)
	d.rule()
	d.line(fmt.Sprintf("%s:%d", s.Connection.NetworkIP, s.Connection.NetworkPort))
	d.line(at.Format(time.RFC1123))
	d.line("If you can read this, printing works.")
	d.raw(escFeed3 + escCut)
	return d.buf.Bytes()
}
