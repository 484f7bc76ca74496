package printjob

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Dimension is a physical length in centimetres. Invalid input decodes to 0.
type Dimension float64

// ParseDimension converts raw text field input into a Dimension.
// Non-numeric, non-finite and non-positive values yield 0.
func ParseDimension(raw string) Dimension {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	return sanitize(value)
}

// UnmarshalJSON accepts a JSON number, a numeric string or null.
func (d *Dimension) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*d = 0
		return nil
	}
	if data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			*d = 0
			return nil
		}
		*d = ParseDimension(raw)
		return nil
	}
	var value float64
	if err := json.Unmarshal(data, &value); err != nil {
		*d = 0
		return nil
	}
	*d = sanitize(value)
	return nil
}

func sanitize(value float64) Dimension {
	if math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		return 0
	}
	return Dimension(value)
}

// PrintItem is one photo to be printed one or more times.
type PrintItem struct {
	Width  Dimension `json:"width"`
	Height Dimension `json:"height"`
	Copies int       `json:"copies"`
}

// Valid reports whether both dimensions are positive and finite.
func (p PrintItem) Valid() bool {
	return finitePositive(float64(p.Width)) && finitePositive(float64(p.Height))
}

// Billable reports whether the item contributes to an order.
func (p PrintItem) Billable() bool {
	return p.Valid() && p.Copies > 0
}

// Area returns width times height, or 0 for invalid items.
func (p PrintItem) Area() float64 {
	if !p.Valid() {
		return 0
	}
	return float64(p.Width) * float64(p.Height)
}

// Filter returns the indices of billable items in input order.
func Filter(items []PrintItem) []int {
	out := make([]int, 0, len(items))
	for i, item := range items {
		if item.Billable() {
			out = append(out, i)
		}
	}
	return out
}

// TotalCopies sums the copies of all billable items, saturating at math.MaxInt.
func TotalCopies(items []PrintItem) int {
	total := 0
	for _, item := range items {
		if !item.Billable() {
			continue
		}
		if item.Copies > math.MaxInt-total {
			return math.MaxInt
		}
		total += item.Copies
	}
	return total
}

type itemRules struct {
	Width  float64 `validate:"gt=0"`
	Height float64 `validate:"gt=0"`
	Copies int     `validate:"gte=0"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate is the strict counterpart to the lenient computations: it reports
// the first item that would otherwise be silently ignored.
func Validate(items []PrintItem) error {
	for i, item := range items {
		if err := validateItem(item); err != nil {
			return fmt.Errorf("item %d: %w: %v", i, ErrInvalidItem, err)
		}
	}
	return nil
}

func validateItem(item PrintItem) error {
	rules := itemRules{
		Width:  float64(item.Width),
		Height: float64(item.Height),
		Copies: item.Copies,
	}
	if err := validatorInstance().Struct(rules); err != nil {
		return err
	}
	if !item.Valid() {
		return fmt.Errorf("dimensions %vx%v are not finite", item.Width, item.Height)
	}
	return nil
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
