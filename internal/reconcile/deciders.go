package reconcile

import "context"

// ConflictPrompt is a pending conflict decision handed to the presentation
// side of a ChannelDecider.
type ConflictPrompt struct {
	Request ConflictRequest
	reply   chan Decision
}

// Answer resolves the prompt. Only the first answer counts.
func (p *ConflictPrompt) Answer(d Decision) {
	select {
	case p.reply <- d:
	default:
	}
}

// Dismiss closes the prompt without a choice, which skips the entry.
func (p *ConflictPrompt) Dismiss() {
	p.Answer(DecisionSkip)
}

type renameReply struct {
	name string
	ok   bool
}

// RenamePrompt is a pending rename request handed to the presentation side
// of a ChannelDecider.
type RenamePrompt struct {
	Request RenameRequest
	reply   chan renameReply
}

// Answer supplies the new file name. A blank name counts as Cancel.
func (p *RenamePrompt) Answer(name string) {
	select {
	case p.reply <- renameReply{name: name, ok: true}:
	default:
	}
}

func (p *RenamePrompt) Cancel() {
	select {
	case p.reply <- renameReply{}:
	default:
	}
}

// ChannelDecider suspends the planner on unbuffered channels until the
// presentation side answers. The handoff itself guarantees a single
// outstanding prompt of each kind.
type ChannelDecider struct {
	conflicts chan *ConflictPrompt
	renames   chan *RenamePrompt
}

func NewChannelDecider() *ChannelDecider {
	return &ChannelDecider{
		conflicts: make(chan *ConflictPrompt),
		renames:   make(chan *RenamePrompt),
	}
}

// Conflicts delivers conflict prompts to the presentation side.
func (d *ChannelDecider) Conflicts() <-chan *ConflictPrompt {
	return d.conflicts
}

// Renames delivers rename prompts to the presentation side.
func (d *ChannelDecider) Renames() <-chan *RenamePrompt {
	return d.renames
}

func (d *ChannelDecider) DecideConflict(ctx context.Context, req ConflictRequest) (Decision, error) {
	prompt := &ConflictPrompt{Request: req, reply: make(chan Decision, 1)}

	select {
	case d.conflicts <- prompt:
	case <-ctx.Done():
		return DecisionSkip, ctx.Err()
	}

	select {
	case decision := <-prompt.reply:
		return decision, nil
	case <-ctx.Done():
		return DecisionSkip, ctx.Err()
	}
}

func (d *ChannelDecider) ChooseRename(ctx context.Context, req RenameRequest) (string, bool, error) {
	prompt := &RenamePrompt{Request: req, reply: make(chan renameReply, 1)}

	select {
	case d.renames <- prompt:
	case <-ctx.Done():
		return "", false, ctx.Err()
	}

	select {
	case reply := <-prompt.reply:
		return reply.name, reply.ok, nil
	case <-ctx.Done():
		return "", false, ctx.Err()
	}
}

// PolicyDecider answers every conflict with the same decision and accepts
// every suggested name, for unattended runs.
type PolicyDecider struct {
	Decision Decision
}

func (d PolicyDecider) DecideConflict(context.Context, ConflictRequest) (Decision, error) {
	return d.Decision, nil
}

func (d PolicyDecider) ChooseRename(_ context.Context, req RenameRequest) (string, bool, error) {
	return req.SuggestedName, true, nil
}
