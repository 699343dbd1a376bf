/*
Package game
File: purchase.go
Description:
    Purchase resolution. Given a balance, the owned count and a price curve,
    ResolvePurchase works out how many units a request actually buys and
    what they cost in total, simulating one unit at a time so that every
    unit is priced at the count it is bought at.
*/

package game

import (
	"fmt"
	"strconv"

	"github.com/everforgeworks/study-ascension/internal/numeric"
)

// Features that gate purchase quantities and auto-buy.
const (
	FeatureBulkPurchase = "bulk_purchase"
	FeatureMaxPurchase  = "max_purchase"
	FeatureAutomation   = "automation"
)

// Quantity is either a fixed count or "as many as affordable".
type Quantity struct {
	Max   bool  `json:"max"`
	Count int64 `json:"count"`
}

func Count(n int64) Quantity { return Quantity{Count: n} }

// BuyMax requests as many units as the balance covers.
var BuyMax = Quantity{Max: true}

func (q Quantity) String() string {
	if q.Max {
		return "max"
	}
	return strconv.FormatInt(q.Count, 10)
}

// ParseQuantity accepts the selector values offered to players: 1, 10, 100 and max.
func ParseQuantity(s string) (Quantity, error) {
	switch s {
	case "", "1":
		return Count(1), nil
	case "10":
		return Count(10), nil
	case "100":
		return Count(100), nil
	case "max":
		return BuyMax, nil
	}
	return Quantity{}, fmt.Errorf("%w: quantity %q", ErrUnknownEntity, s)
}

// Resolution is the outcome of pricing a purchase request.
// Bought is 0 when not even the first unit is affordable.
type Resolution struct {
	Bought int64         `json:"bought"`
	Total  numeric.Value `json:"total"`
}

// ResolvePurchase prices q against balance one unit at a time and stops at
// the first unit the remaining balance cannot cover. A fixed count buys at
// most q.Count units; Max buys at most ceiling.
func ResolvePurchase(balance, owned numeric.Value, cost CostFunc, q Quantity, ceiling int64) Resolution {
	limit := q.Count
	if q.Max {
		limit = ceiling
	}

	res := Resolution{}
	remaining := balance
	n := owned
	for res.Bought < limit {
		price := cost(n)
		if price.GreaterThan(remaining) {
			break
		}
		remaining = remaining.Sub(price)
		res.Total = res.Total.Add(price)
		res.Bought++
		n = n.Add(numeric.One)
	}
	return res
}

// buy validates and applies one purchase request against the state.
// Automated purchases skip the quantity feature checks; they always buy one.
func buy(x evalContext, key string, q Quantity, automated bool) (*Ownable, Resolution, error) {
	s, c, fx := x.state, x.catalog, x.fx

	// 1. Validate the request
	o, err := c.Ownable(key)
	if err != nil {
		return nil, Resolution{}, err
	}
	if o.Gate != "" && !s.Unlocked[o.Gate] {
		return o, Resolution{}, fmt.Errorf("%w: %s is still locked", ErrPreconditionNotMet, o.Key)
	}
	if !x.met(o.Requires) {
		return o, Resolution{}, fmt.Errorf("%w: requirements for %s not met", ErrPreconditionNotMet, o.Key)
	}
	if !q.Max && q.Count < 1 {
		return o, Resolution{}, fmt.Errorf("%w: quantity %d", ErrPreconditionNotMet, q.Count)
	}
	if !automated {
		if q.Max && !s.Features[FeatureMaxPurchase] {
			return o, Resolution{}, fmt.Errorf("%w: feature %s not unlocked", ErrPreconditionNotMet, FeatureMaxPurchase)
		}
		if !q.Max && q.Count > 1 && !s.Features[FeatureBulkPurchase] {
			return o, Resolution{}, fmt.Errorf("%w: feature %s not unlocked", ErrPreconditionNotMet, FeatureBulkPurchase)
		}
	}

	// 2. Price it
	res := ResolvePurchase(s.Balance(o.Currency), s.PriceBasis(o), costFunc(o, fx, c.Balance), q, c.Balance.BuyMaxCeiling)
	if res.Bought == 0 {
		need := UnitCost(o, s.PriceBasis(o), fx, c.Balance)
		return o, res, fmt.Errorf("%w: next %s costs %s %s", ErrInsufficientResources, o.Key, need, o.Currency)
	}

	// 3. Apply
	bought := numeric.FromInt(res.Bought)
	s.debit(o.Currency, res.Total)
	s.Owned[o.Key] = s.OwnedCount(o.Key).Add(bought)
	if o.Yields != "" {
		s.credit(o.Yields, bought)
	}
	if o.Grants != nil {
		s.credit(o.Grants.Currency, bought.Mul(o.Grants.PerUnit))
	}
	return o, res, nil
}
