// Package prompt answers reconciliation questions on the terminal.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"

	"s3sync/internal/reconcile"
)

var conflictChoices = []string{"Overwrite", "Rename", "Skip"}

type selectFunc func(label string, items []string) (int, error)

type inputFunc func(label, defaultValue string) (string, error)

type confirmFunc func(label string) (bool, error)

// Decider asks the user, one question at a time, how to handle conflicts.
// It satisfies reconcile.Decider.
type Decider struct {
	choose  selectFunc
	input   inputFunc
	confirm confirmFunc
}

func NewDecider() *Decider {
	return &Decider{
		choose:  runSelect,
		input:   runInput,
		confirm: runConfirm,
	}
}

func (d *Decider) DecideConflict(ctx context.Context, req reconcile.ConflictRequest) (reconcile.Decision, error) {
	if err := ctx.Err(); err != nil {
		return reconcile.DecisionSkip, err
	}

	label := fmt.Sprintf("%s already exists", req.TargetPath)
	idx, err := d.choose(label, conflictChoices)
	if err != nil {
		if dismissed(err) {
			return reconcile.DecisionSkip, nil
		}
		return reconcile.DecisionSkip, err
	}
	return decisionAt(idx), nil
}

func (d *Decider) ChooseRename(ctx context.Context, req reconcile.RenameRequest) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	label := fmt.Sprintf("New name for %s", req.Entry.Key)
	name, err := d.input(label, req.SuggestedName)
	if err != nil {
		if dismissed(err) {
			return "", false, nil
		}
		return "", false, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return "", false, nil
	}
	return name, true, nil
}

// Confirm asks a yes/no question. Interrupting the prompt answers no.
func (d *Decider) Confirm(label string) (bool, error) {
	ok, err := d.confirm(label)
	if err != nil {
		if dismissed(err) {
			return false, nil
		}
		return false, err
	}
	return ok, nil
}

func decisionAt(idx int) reconcile.Decision {
	switch idx {
	case 0:
		return reconcile.DecisionOverwrite
	case 1:
		return reconcile.DecisionRename
	default:
		return reconcile.DecisionSkip
	}
}

func dismissed(err error) bool {
	return errors.Is(err, promptui.ErrInterrupt) ||
		errors.Is(err, promptui.ErrEOF) ||
		errors.Is(err, promptui.ErrAbort)
}

func runSelect(label string, items []string) (int, error) {
	sel := promptui.Select{
		Label: label,
		Items: items,
		Templates: &promptui.SelectTemplates{
			Label:    "{{ . }}",
			Active:   "▸ {{ . | cyan }}",
			Inactive: "  {{ . }}",
			Selected: "{{ . | faint }}",
		},
		HideHelp: true,
	}
	idx, _, err := sel.Run()
	return idx, err
}

func runInput(label, defaultValue string) (string, error) {
	p := promptui.Prompt{
		Label:     label,
		Default:   defaultValue,
		AllowEdit: true,
	}
	return p.Run()
}

func runConfirm(label string) (bool, error) {
	p := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}
	_, err := p.Run()
	if errors.Is(err, promptui.ErrAbort) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
