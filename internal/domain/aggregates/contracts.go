package aggregates

import "fmt"

// TxOwnership names who opens the transaction around a write.
type TxOwnership string

const (
	// TxOwnedByAggregate means every write method runs its own transaction; callers never pass one in.
	TxOwnedByAggregate TxOwnership = "aggregate"
	TxOwnedByCaller    TxOwnership = "caller"
)

// Contract describes the writes an aggregate exposes and which of them queue notification
// rows that the caller publishes after commit.
type Contract struct {
	Name      string
	Tx        TxOwnership
	Writes    []string
	Notifying []string
}

// Aggregate is implemented by every lifecycle aggregate.
type Aggregate interface {
	Contract() Contract
}

func (c Contract) OwnsTx() bool {
	return c.Tx == TxOwnedByAggregate
}

// Notifies reports whether the write op may return notification ids.
func (c Contract) Notifies(op string) bool {
	for _, n := range c.Notifying {
		if n == op {
			return true
		}
	}
	return false
}

// Validate rejects contracts that leave the transaction to the caller, repeat a write, or
// declare a notifying op that is not one of the writes.
func (c Contract) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("aggregate contract has no name")
	}
	if !c.OwnsTx() {
		return fmt.Errorf("%s: writes must own their transaction, got %q", c.Name, c.Tx)
	}
	if len(c.Writes) == 0 {
		return fmt.Errorf("%s: no write operations declared", c.Name)
	}
	seen := make(map[string]bool, len(c.Writes))
	for _, w := range c.Writes {
		if seen[w] {
			return fmt.Errorf("%s: write %s declared twice", c.Name, w)
		}
		seen[w] = true
	}
	for _, n := range c.Notifying {
		if !seen[n] {
			return fmt.Errorf("%s: notifying op %s is not a write", c.Name, n)
		}
	}
	return nil
}

// CheckContracts validates the contract of every aggregate.
func CheckContracts(aggs ...Aggregate) error {
	for _, a := range aggs {
		if a == nil {
			return fmt.Errorf("nil aggregate")
		}
		if err := a.Contract().Validate(); err != nil {
			return err
		}
	}
	return nil
}
