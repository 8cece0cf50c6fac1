package testutil

import (
	"context"
	"sync"

	"github.com/yungbote/studentaid-backend/internal/data/aggregates"
	"github.com/yungbote/studentaid-backend/internal/platform/dbctx"
)

// FaultyTxRunner wraps a real runner and fails chosen transactions after their body ran,
// so the inner runner rolls every write back. A nil Inner runs bodies without a database.
type FaultyTxRunner struct {
	Inner aggregates.TxRunner

	// FailAt is the 1-based call that fails with Err; 0 fails every call.
	FailAt int
	Err    error

	mu        sync.Mutex
	calls     int
	committed int
}

var _ aggregates.TxRunner = (*FaultyTxRunner)(nil)

func (r *FaultyTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.mu.Lock()
	r.calls++
	inject := r.Err != nil && (r.FailAt == 0 || r.FailAt == r.calls)
	r.mu.Unlock()

	body := func(dbc dbctx.Context) error {
		if fn != nil {
			if err := fn(dbc); err != nil {
				return err
			}
		}
		if inject {
			return r.Err
		}
		return nil
	}
	var err error
	if r.Inner == nil {
		err = body(dbctx.Context{Ctx: ctx})
	} else {
		err = r.Inner.InTx(ctx, body)
	}
	if err == nil {
		r.mu.Lock()
		r.committed++
		r.mu.Unlock()
	}
	return err
}

func (r *FaultyTxRunner) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func (r *FaultyTxRunner) Committed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.committed
}
