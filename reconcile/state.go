package reconcile

import (
	"errors"

	"github.com/aleksa11010/HarnessInputSetReconciler/harness"
)

var (
	ErrInvalidTransition = errors.New("invalid reconcile transition")
	ErrStaleResponse     = errors.New("stale reconcile response")
)

type Kind int

const (
	Idle Kind = iota
	Loading
	ReconcileDialogOpen
	DeleteDialogOpen
	ErrorShown
)

func (k Kind) String() string {
	switch k {
	case Idle:
		return "Idle"
	case Loading:
		return "Loading"
	case ReconcileDialogOpen:
		return "ReconcileDialogOpen"
	case DeleteDialogOpen:
		return "DeleteDialogOpen"
	case ErrorShown:
		return "ErrorShown"
	}
	return "Unknown"
}

// State is the reconcile flow of one entity. Generation increases on every
// fetch and dismissal; responses carrying an older generation are dropped.
type State struct {
	Kind       Kind
	Generation uint64
	Diff       *harness.YamlDiffResult
	// FetchErr is the error of the last diff fetch. The reconcile dialog
	// offers a retry while it is set.
	FetchErr error
	// ActionErr is the error of the last update or delete attempt.
	ActionErr error
}

type Event interface {
	event()
}

type FetchStarted struct{}

type DiffArrived struct {
	Generation       uint64
	Diff             *harness.YamlDiffResult
	Err              error
	EntityIdentifier string
}

type Resolved struct {
	Generation uint64
	Err        error
}

type Deleted struct {
	Generation uint64
	Err        error
}

type Dismissed struct{}

func (FetchStarted) event() {}
func (DiffArrived) event()  {}
func (Resolved) event()     {}
func (Deleted) event()      {}
func (Dismissed) event()    {}

// Reduce returns the state that follows s on ev. It never mutates s. Events
// that do not apply to s return s unchanged with ErrInvalidTransition, or
// ErrStaleResponse when they belong to an older generation.
func Reduce(s State, ev Event) (State, error) {
	switch ev := ev.(type) {
	case FetchStarted:
		return State{Kind: Loading, Generation: s.Generation + 1}, nil

	case DiffArrived:
		if ev.Generation != s.Generation {
			return s, ErrStaleResponse
		}
		if s.Kind != Loading {
			return s, ErrInvalidTransition
		}
		next := State{Generation: s.Generation, Diff: ev.Diff, FetchErr: ev.Err}
		switch {
		case ev.Err != nil && ev.EntityIdentifier == "":
			next.Kind = ErrorShown
		case ev.Err == nil && ev.Diff != nil && ev.Diff.InputSetEmpty:
			next.Kind = DeleteDialogOpen
		case ev.Err != nil || ev.Diff.Reconcilable():
			next.Kind = ReconcileDialogOpen
		default:
			next.Kind = Idle
		}
		return next, nil

	case Resolved:
		if ev.Generation != s.Generation {
			return s, ErrStaleResponse
		}
		if s.Kind != ReconcileDialogOpen {
			return s, ErrInvalidTransition
		}
		if ev.Err != nil {
			next := s
			next.ActionErr = ev.Err
			return next, nil
		}
		return State{Kind: Idle, Generation: s.Generation}, nil

	case Deleted:
		if ev.Generation != s.Generation {
			return s, ErrStaleResponse
		}
		if s.Kind != DeleteDialogOpen {
			return s, ErrInvalidTransition
		}
		if ev.Err != nil {
			next := s
			next.ActionErr = ev.Err
			return next, nil
		}
		return State{Kind: Idle, Generation: s.Generation}, nil

	case Dismissed:
		return State{Kind: Idle, Generation: s.Generation + 1}, nil
	}

	return s, ErrInvalidTransition
}
