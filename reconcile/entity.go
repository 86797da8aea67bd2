// Package reconcile brings input sets and overlay input sets back in sync with
// the pipeline template they must satisfy.
package reconcile

import (
	"context"
	"sort"

	"github.com/aleksa11010/HarnessInputSetReconciler/harness"
	"github.com/sirupsen/logrus"
)

type EntityType string

const (
	InputSet        EntityType = "InputSets"
	OverlayInputSet EntityType = "OverlayInputSet"
)

// Entity is the input set being edited. Only the component owning the form
// mutates it.
type Entity struct {
	Type               EntityType
	Identifier         string
	Name               string
	PipelineIdentifier string
	StoreType          string
	ConnectorRef       string
	GitDetails         harness.GitDetails
	YAML               string
	InputSetReferences []string
	// InvalidReferences are the overlay references the stored entity already
	// knows to be broken.
	InvalidReferences []string
	ErrorWrapper      *harness.InputSetErrorWrapper
}

func EntityFromInputSet(is *harness.InputSet, t EntityType) Entity {
	return Entity{
		Type:               t,
		Identifier:         is.Identifier,
		Name:               is.Name,
		PipelineIdentifier: is.PipelineIdentifier,
		StoreType:          is.StoreType,
		ConnectorRef:       is.ConnectorRef,
		GitDetails:         is.GitDetails,
		YAML:               is.YAML(),
		InputSetReferences: is.InputSetReferences,
		InvalidReferences:  invalidReferenceIDs(is.InvalidReferences),
		ErrorWrapper:       is.ErrorWrapper,
	}
}

func invalidReferenceIDs(refs map[string]string) []string {
	if len(refs) == 0 {
		return nil
	}
	ids := make([]string, 0, len(refs))
	for id := range refs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (e Entity) IsOverlay() bool {
	return e.Type == OverlayInputSet
}

func (e Entity) IsRemote() bool {
	return e.StoreType == harness.StoreTypeRemote
}

func (e Entity) request(scope harness.Scope, params map[string]string) harness.InputSetRequest {
	return harness.InputSetRequest{
		Scope:              scope,
		PipelineIdentifier: e.PipelineIdentifier,
		Identifier:         e.Identifier,
		Params:             params,
	}
}

// Options replaces values a form page would otherwise read from its
// surroundings.
type Options struct {
	Scope          harness.Scope
	GitSyncEnabled bool
	// FromForm is set when reconcile is started from the input set form
	// rather than from the list.
	FromForm           bool
	SuppressNavigation bool
}

// Hooks are the callbacks the surrounding page supplies. Nil hooks are skipped.
type Hooks struct {
	Refetch        func()
	RefetchList    func()
	HideForm       func()
	CloseMenu      func()
	NavigateBack   func()
	NavigateToList func()
}

func call(fn func()) {
	if fn != nil {
		fn()
	}
}

// Service is the subset of the Harness API the reconcile flow needs.
type Service interface {
	GetInputSetYamlDiff(ctx context.Context, req harness.InputSetRequest) (*harness.YamlDiffResult, error)
	GetOverlayInputSetYamlDiff(ctx context.Context, req harness.InputSetRequest) (*harness.YamlDiffResult, error)
	UpdateInputSet(ctx context.Context, req harness.InputSetRequest, yaml string) (*harness.InputSetResponse, error)
	UpdateOverlayInputSet(ctx context.Context, req harness.InputSetRequest, yaml string) (*harness.InputSetResponse, error)
	DeleteInputSet(ctx context.Context, req harness.InputSetRequest) (*harness.DeleteResponse, error)
}

// Notifier shows the outcome of an operation to the user.
type Notifier interface {
	Success(key string)
	Error(message string)
}

type PermissionChecker interface {
	Allowed(ctx context.Context, permission Permission) (bool, error)
}

// Dependencies are the collaborators of a Controller. Only Notifier is
// required; a GitSaver is needed for git backed entities.
type Dependencies struct {
	Notifier    Notifier
	GitSaver    GitSaver
	Permissions PermissionChecker
	Hooks       Hooks
	// Listener observes every committed state.
	Listener func(State)
	Log      logrus.FieldLogger
}

func (d Dependencies) logger() logrus.FieldLogger {
	if d.Log == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		return l
	}
	return d.Log
}
