package pricing

import (
	"fmt"
	"math"

	"github.com/eugenenazirov/print-layout/internal/printjob"
)

// Line is the priced contribution of one billable item.
type Line struct {
	Index     int     `json:"index"`
	Copies    int     `json:"copies"`
	Area      float64 `json:"area"`
	UnitPrice float64 `json:"unitPrice"`
	LineTotal float64 `json:"lineTotal"`
}

// Quote is a full order price breakdown at full precision.
type Quote struct {
	PaperType     string  `json:"paperType"`
	DeliverySpeed string  `json:"deliverySpeed"`
	Lines         []Line  `json:"lines"`
	Copies        int     `json:"copies"`
	Subtotal      float64 `json:"subtotal"`
	Delivery      float64 `json:"delivery"`
	Total         float64 `json:"total"`
}

// ItemCost is copies x (tier price + paper addon), or 0 for items that are
// invalid or have no copies.
func (s Schedule) ItemCost(item printjob.PrintItem, paperType string) float64 {
	if !item.Billable() {
		return 0
	}
	return float64(item.Copies) * s.unitPrice(item, paperType)
}

// OrderSubtotal sums ItemCost over items.
func (s Schedule) OrderSubtotal(items []printjob.PrintItem, paperType string) float64 {
	subtotal := 0.0
	for _, item := range items {
		subtotal += s.ItemCost(item, paperType)
	}
	return subtotal
}

// OrderTotal adds the delivery charge to a non-zero subtotal. An empty
// order costs nothing, delivery included.
func (s Schedule) OrderTotal(items []printjob.PrintItem, paperType, deliverySpeed string) float64 {
	subtotal := s.OrderSubtotal(items, paperType)
	if subtotal == 0 {
		return 0
	}
	return subtotal + s.DeliveryCharge(deliverySpeed)
}

// Quote computes OrderTotal together with its per-line breakdown.
func (s Schedule) Quote(items []printjob.PrintItem, paperType, deliverySpeed string) Quote {
	q := Quote{
		PaperType:     paperType,
		DeliverySpeed: deliverySpeed,
		Lines:         []Line{},
	}
	for idx, item := range items {
		if !item.Billable() {
			continue
		}
		unit := s.unitPrice(item, paperType)
		line := Line{
			Index:     idx,
			Copies:    item.Copies,
			Area:      item.Area(),
			UnitPrice: unit,
			LineTotal: float64(item.Copies) * unit,
		}
		q.Lines = append(q.Lines, line)
		q.Subtotal += line.LineTotal
	}
	q.Copies = printjob.TotalCopies(items)
	if q.Subtotal != 0 {
		q.Delivery = s.DeliveryCharge(deliverySpeed)
	}
	q.Total = q.Subtotal + q.Delivery
	return q
}

// QuoteStrict rejects invalid items and unknown options instead of ignoring them.
func (s Schedule) QuoteStrict(items []printjob.PrintItem, paperType, deliverySpeed string) (Quote, error) {
	if err := printjob.Validate(items); err != nil {
		return Quote{}, err
	}
	if _, ok := lookup(s.PaperAddons, paperType); !ok {
		return Quote{}, fmt.Errorf("%w %q (known: %v)", ErrUnknownPaperType, paperType, s.PaperTypes())
	}
	if _, ok := lookup(s.DeliveryCharges, deliverySpeed); !ok {
		return Quote{}, fmt.Errorf("%w %q (known: %v)", ErrUnknownDeliverySpeed, deliverySpeed, s.DeliverySpeeds())
	}
	return s.Quote(items, paperType, deliverySpeed), nil
}

// ComputeOrderTotal prices an order against DefaultSchedule.
func ComputeOrderTotal(items []printjob.PrintItem, paperType, deliverySpeed string) float64 {
	return DefaultSchedule().OrderTotal(items, paperType, deliverySpeed)
}

// Round rounds an amount to cents. Use it only when presenting amounts.
func Round(amount float64) float64 {
	return math.Round(amount*100) / 100
}

func (s Schedule) unitPrice(item printjob.PrintItem, paperType string) float64 {
	return s.TierPrice(item.Area()) + s.AddOn(paperType)
}
