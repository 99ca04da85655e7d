package prompt

import (
	"context"

	"s3sync/internal/reconcile"
)

// PlanFunc builds a plan with the decision source it is given.
type PlanFunc func(ctx context.Context, decider reconcile.Decider) (*reconcile.Plan, error)

// Serve runs plan in the background against a ChannelDecider and answers
// its prompts on the calling goroutine, which owns the terminal.
func (d *Decider) Serve(ctx context.Context, plan PlanFunc) (*reconcile.Plan, error) {
	ch := reconcile.NewChannelDecider()

	type outcome struct {
		plan *reconcile.Plan
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		p, err := plan(ctx, ch)
		done <- outcome{plan: p, err: err}
	}()

	for {
		select {
		case cp := <-ch.Conflicts():
			decision, err := d.DecideConflict(ctx, cp.Request)
			if err != nil {
				cp.Dismiss()
				continue
			}
			cp.Answer(decision)
		case rp := <-ch.Renames():
			name, ok, err := d.ChooseRename(ctx, rp.Request)
			if err != nil || !ok {
				rp.Cancel()
				continue
			}
			rp.Answer(name)
		case out := <-done:
			return out.plan, out.err
		}
	}
}
