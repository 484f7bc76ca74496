package pricing

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Tier maps every area up to and including MaxArea to a unit price.
type Tier struct {
	MaxArea float64 `json:"maxArea" yaml:"max_area" validate:"gt=0"`
	Price   float64 `json:"price" yaml:"price" validate:"gte=0"`
}

// Schedule is the full pricing configuration.
type Schedule struct {
	Tiers           []Tier             `json:"tiers" yaml:"tiers" validate:"required,min=1,dive"`
	DefaultPrice    float64            `json:"defaultPrice" yaml:"default_price" validate:"gte=0"`
	PaperAddons     map[string]float64 `json:"paperAddons" yaml:"paper_addons" validate:"dive,keys,required,endkeys,gte=0"`
	DeliveryCharges map[string]float64 `json:"deliveryCharges" yaml:"delivery_charges" validate:"dive,keys,required,endkeys,gte=0"`
}

// DefaultSchedule returns the standard photo print price list.
func DefaultSchedule() Schedule {
	return Schedule{
		Tiers: []Tier{
			{MaxArea: 16, Price: 5},
			{MaxArea: 35, Price: 8},
			{MaxArea: 150, Price: 10},
			{MaxArea: 234, Price: 12},
			{MaxArea: 500, Price: 15},
		},
		DefaultPrice: 20,
		PaperAddons: map[string]float64{
			"photo":   0,
			"matte":   1,
			"glossy":  2,
			"premium": 3,
			"hd":      4,
		},
		DeliveryCharges: map[string]float64{
			"standard": 45,
			"express":  100,
		},
	}
}

// TierPrice returns the price of the first tier whose bound is at least area,
// or DefaultPrice when area exceeds every bound.
func (s Schedule) TierPrice(area float64) float64 {
	for _, tier := range s.Tiers {
		if area <= tier.MaxArea {
			return tier.Price
		}
	}
	return s.DefaultPrice
}

// AddOn returns the per-copy surcharge for a paper type, 0 when unknown.
func (s Schedule) AddOn(paperType string) float64 {
	value, _ := lookup(s.PaperAddons, paperType)
	return value
}

// DeliveryCharge returns the flat order surcharge for a speed, 0 when unknown.
func (s Schedule) DeliveryCharge(speed string) float64 {
	value, _ := lookup(s.DeliveryCharges, speed)
	return value
}

// PaperTypes lists the configured paper types in sorted order.
func (s Schedule) PaperTypes() []string {
	return slices.Sorted(maps.Keys(s.PaperAddons))
}

// DeliverySpeeds lists the configured delivery speeds in sorted order.
func (s Schedule) DeliverySpeeds() []string {
	return slices.Sorted(maps.Keys(s.DeliveryCharges))
}

// Clone returns a deep copy.
func (s Schedule) Clone() Schedule {
	out := Schedule{
		Tiers:        slices.Clone(s.Tiers),
		DefaultPrice: s.DefaultPrice,
	}
	if s.PaperAddons != nil {
		out.PaperAddons = maps.Clone(s.PaperAddons)
	}
	if s.DeliveryCharges != nil {
		out.DeliveryCharges = maps.Clone(s.DeliveryCharges)
	}
	return out
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validate checks that tier bounds are positive and strictly ascending and
// that every amount is a non-negative finite number.
func (s Schedule) Validate() error {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}

	for i, tier := range s.Tiers {
		if !finite(tier.MaxArea) || !finite(tier.Price) {
			return fmt.Errorf("%w: tier %d must be finite", ErrInvalidSchedule, i)
		}
		if i > 0 && tier.MaxArea <= s.Tiers[i-1].MaxArea {
			return fmt.Errorf("%w: tier bounds must be strictly ascending (tier %d: %v <= %v)",
				ErrInvalidSchedule, i, tier.MaxArea, s.Tiers[i-1].MaxArea)
		}
	}
	if !finite(s.DefaultPrice) {
		return fmt.Errorf("%w: default price must be finite", ErrInvalidSchedule)
	}
	for name, value := range s.PaperAddons {
		if !finite(value) {
			return fmt.Errorf("%w: paper addon %q must be finite", ErrInvalidSchedule, name)
		}
	}
	for name, value := range s.DeliveryCharges {
		if !finite(value) {
			return fmt.Errorf("%w: delivery charge %q must be finite", ErrInvalidSchedule, name)
		}
	}
	if err := distinctNames("paper addon", s.PaperAddons); err != nil {
		return err
	}
	return distinctNames("delivery charge", s.DeliveryCharges)
}

// distinctNames rejects option names that only differ by case or
// surrounding whitespace, since lookups treat them as the same option.
func distinctNames(kind string, options map[string]float64) error {
	seen := make(map[string]string, len(options))
	for _, name := range slices.Sorted(maps.Keys(options)) {
		key := normalizeName(name)
		if other, ok := seen[key]; ok {
			return fmt.Errorf("%w: %s names %q and %q collide", ErrInvalidSchedule, kind, other, name)
		}
		seen[key] = name
	}
	return nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// lookup matches option names exactly first, then case-insensitively.
func lookup(options map[string]float64, name string) (float64, bool) {
	if value, ok := options[name]; ok {
		return value, true
	}
	normalized := normalizeName(name)
	for _, key := range slices.Sorted(maps.Keys(options)) {
		if normalizeName(key) == normalized {
			return options[key], true
		}
	}
	return 0, false
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
