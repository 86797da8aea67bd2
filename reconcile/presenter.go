package reconcile

import (
	"errors"
	"fmt"
	"sort"

	"github.com/aleksa11010/HarnessInputSetReconciler/harness"
)

type Action string

const (
	ActionUpdate              Action = "update"
	ActionRemoveInvalidFields Action = "removeInvalidFields"
)

var ErrNoDiff = errors.New("no diff to resolve")

type FieldError struct {
	Path    string
	Message string
}

// View is what the reconcile or delete dialog shows for a state.
type View struct {
	Kind              Kind
	EntityType        EntityType
	TitleKey          string
	DescriptionKey    string
	OldYAML           string
	NewYAML           string
	UnifiedDiff       string
	RemovedFields     []string
	AddedFields       []string
	InvalidReferences []string
	ValidationErrors  []FieldError
	NoUpdatePossible  bool
	Retry             bool
	Error             string
	Actions           []Action
}

// Presenter turns reconcile state into dialog content and dialog choices into
// payloads. It never calls the network.
type Presenter struct{}

func (Presenter) Render(e Entity, s State) (View, error) {
	v := View{
		Kind:             s.Kind,
		EntityType:       e.Type,
		ValidationErrors: validationErrors(e.ErrorWrapper),
	}

	switch s.Kind {
	case ReconcileDialogOpen:
		v.TitleKey = KeyReconcileDialogTitle
	case DeleteDialogOpen:
		v.TitleKey = KeyInvalidInputSetTitle
		v.DescriptionKey = policyFor(e).DescriptionKey
	case ErrorShown:
		v.Error = harness.RBACErrorMessage(s.FetchErr)
		return v, nil
	default:
		return v, nil
	}

	if s.FetchErr != nil {
		v.Retry = true
		v.Error = harness.RBACErrorMessage(s.FetchErr)
		return v, nil
	}
	if s.ActionErr != nil {
		v.Error = harness.RBACErrorMessage(s.ActionErr)
	}
	if s.Diff == nil || s.Kind == DeleteDialogOpen {
		return v, nil
	}

	d := s.Diff
	v.OldYAML, v.NewYAML = d.OldYAML, d.NewYAML
	v.NoUpdatePossible = d.NoUpdatePossible
	v.InvalidReferences = invalidReferences(e, d)

	removed, added, err := fieldChanges(d.OldYAML, d.NewYAML)
	if err != nil {
		return v, err
	}
	v.RemovedFields, v.AddedFields = removed, added

	if v.UnifiedDiff, err = unifiedDiff(d.OldYAML, d.NewYAML); err != nil {
		return v, err
	}

	v.Actions = actionsFor(e, d, removed)
	return v, nil
}

func actionsFor(e Entity, d *harness.YamlDiffResult, removed []string) []Action {
	var actions []Action
	if e.IsOverlay() && len(invalidReferences(e, d)) > 0 {
		actions = append(actions, ActionRemoveInvalidFields)
	}
	if !e.IsOverlay() && len(removed) > 0 {
		actions = append(actions, ActionRemoveInvalidFields)
	}
	if !d.NoUpdatePossible {
		actions = append(actions, ActionUpdate)
	}
	return actions
}

// Payload returns the YAML to persist for action. YAML edited by the user in
// the dialog always wins.
func (Presenter) Payload(action Action, e Entity, d *harness.YamlDiffResult, edited string) (string, error) {
	if edited != "" {
		return edited, nil
	}
	if d == nil {
		return "", ErrNoDiff
	}

	switch action {
	case ActionUpdate:
		if d.NoUpdatePossible {
			return "", fmt.Errorf("%s cannot be updated automatically", e.Identifier)
		}
		return d.NewYAML, nil
	case ActionRemoveInvalidFields:
		if e.IsOverlay() {
			stored := d.OldYAML
			if stored == "" {
				stored = e.YAML
			}
			return stripReferences(stored, invalidReferences(e, d))
		}
		// the reconciled input set is the stored one without the removed fields
		return d.NewYAML, nil
	}

	return "", fmt.Errorf("unknown reconcile action %q", action)
}

// invalidReferences are the references the diff reports followed by the ones
// the stored entity already flagged.
func invalidReferences(e Entity, d *harness.YamlDiffResult) []string {
	var refs []string
	seen := map[string]bool{}
	for _, list := range [][]string{d.InvalidReferences, e.InvalidReferences} {
		for _, ref := range list {
			if !seen[ref] {
				seen[ref] = true
				refs = append(refs, ref)
			}
		}
	}
	return refs
}

func validationErrors(w *harness.InputSetErrorWrapper) []FieldError {
	if w == nil {
		return nil
	}
	var out []FieldError
	for _, list := range w.UUIDToErrorResponseMap {
		for _, e := range list.Errors {
			out = append(out, FieldError{Path: e.FieldName, Message: e.Message})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path == out[j].Path {
			return out[i].Message < out[j].Message
		}
		return out[i].Path < out[j].Path
	})
	return out
}
