// Package allocation implements the shared pool-selection algorithm
// used by the lot and serialized sub-ledgers: given a pool of candidate
// entries and a requested quantity, pick which entries satisfy it under
// an ordering policy.
//
// Selection is pure: nothing is mutated, callers apply consume/reserve
// to the picked entries themselves.
package allocation

import (
	"sort"
	"time"

	"stockledger/internal/core/apperror"
)

// Policy is the ordering applied to the candidate pool.
type Policy string

const (
	// FEFO: first-expired, first-out. Entries without an expiry date
	// sort last.
	FEFO Policy = "FEFO"

	// FIFO: first-in, first-out by received date.
	FIFO Policy = "FIFO"
)

// ParsePolicy validates a string policy. An empty string defaults to
// FEFO, matching the consumption endpoints.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "":
		return FEFO, nil
	case FEFO, FIFO:
		return Policy(s), nil
	}
	return "", apperror.NewValidation("unknown allocation strategy").
		WithDetail("strategy", s)
}

// Candidate is one pool entry offered to the selector.
type Candidate[T any] struct {
	Item         T
	Quantity     int64
	ExpiryDate   *time.Time
	ReceivedDate time.Time
}

// Pick is one entry of the resulting allocation, in consumption order.
type Pick[T any] struct {
	Item     T
	Quantity int64
}

// Result is the outcome of a selection. Shortfall > 0 means the pool
// was exhausted before the requested quantity was satisfied; callers
// decide whether a partial fill is acceptable.
type Result[T any] struct {
	Picks     []Pick[T]
	Allocated int64
	Shortfall int64
}

// Select orders the eligible candidates (quantity > 0) by policy and
// walks them, taking min(candidate quantity, remaining) from each until
// the requested quantity is covered or the pool runs out.
func Select[T any](pool []Candidate[T], quantityNeeded int64, policy Policy) (Result[T], error) {
	var result Result[T]

	if quantityNeeded <= 0 {
		return result, apperror.NewValidation("quantity needed must be positive").
			WithDetail("quantity", quantityNeeded)
	}

	eligible := make([]Candidate[T], 0, len(pool))
	for _, c := range pool {
		if c.Quantity > 0 {
			eligible = append(eligible, c)
		}
	}

	switch policy {
	case FEFO:
		sort.SliceStable(eligible, func(i, j int) bool {
			a, b := eligible[i].ExpiryDate, eligible[j].ExpiryDate
			switch {
			case a == nil && b == nil:
				return eligible[i].ReceivedDate.Before(eligible[j].ReceivedDate)
			case a == nil:
				return false
			case b == nil:
				return true
			case a.Equal(*b):
				return eligible[i].ReceivedDate.Before(eligible[j].ReceivedDate)
			default:
				return a.Before(*b)
			}
		})
	case FIFO:
		sort.SliceStable(eligible, func(i, j int) bool {
			return eligible[i].ReceivedDate.Before(eligible[j].ReceivedDate)
		})
	default:
		return result, apperror.NewValidation("unknown allocation strategy").
			WithDetail("strategy", string(policy))
	}

	remaining := quantityNeeded
	for _, c := range eligible {
		if remaining == 0 {
			break
		}
		take := c.Quantity
		if take > remaining {
			take = remaining
		}
		result.Picks = append(result.Picks, Pick[T]{Item: c.Item, Quantity: take})
		result.Allocated += take
		remaining -= take
	}
	result.Shortfall = remaining

	return result, nil
}
