package domain

import "github.com/shopspring/decimal"

// Product is a sellable item. UnitLoad is the capacity cost of one unit,
// a weight-and-volume-derived scalar in the same unit as resource capacity.
type Product struct {
	ID       string
	Name     string
	UnitLoad decimal.Decimal
	Stock    int64
}

// RequiredLoad sums quantity x unit load over an order's lines and rounds
// the total up to whole load units. Every referenced product must be
// present in products.
func RequiredLoad(lines []OrderLine, products map[string]Product) (int64, error) {
	total := decimal.Zero
	for _, line := range lines {
		if line.Quantity <= 0 {
			return 0, ErrInvalidQuantity
		}
		p, ok := products[line.ProductID]
		if !ok {
			return 0, ErrProductNotFound
		}
		if !p.UnitLoad.IsPositive() {
			return 0, ErrInvalidUnitLoad
		}
		total = total.Add(p.UnitLoad.Mul(decimal.NewFromInt(line.Quantity)))
	}
	return total.Ceil().IntPart(), nil
}
