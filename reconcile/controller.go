package reconcile

import (
	"context"
	"errors"
	"sync"

	"github.com/aleksa11010/HarnessInputSetReconciler/harness"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var ErrReconcileDisabled = errors.New("reconcile needs an identifier for git backed overlay input sets")

// Controller drives the reconcile flow of a single entity. It is safe for
// concurrent use; only the response of the latest fetch can change state.
type Controller struct {
	mu    sync.Mutex
	state State
	// shown is the dialog last handed to the listener.
	shown Kind

	entity    Entity
	opts      Options
	mode      GitMode
	service   Service
	presenter Presenter
	persister *Persister
	deleter   *Deleter
	notifier  Notifier
	hooks     Hooks
	listener  func(State)
	log       logrus.FieldLogger
}

func New(service Service, entity Entity, opts Options, deps Dependencies) *Controller {
	mode := ModeFor(entity, opts.GitSyncEnabled)
	log := deps.logger().WithFields(logrus.Fields{
		"component": "reconcile",
		"category":  mode.Name(),
	})
	deps.Log = log

	return &Controller{
		entity:    entity,
		opts:      opts,
		mode:      mode,
		service:   service,
		persister: NewPersister(service, mode, opts, deps),
		deleter:   NewDeleter(service, mode, opts, deps),
		notifier:  deps.Notifier,
		hooks:     deps.Hooks,
		listener:  deps.Listener,
		log:       log,
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) View() (View, error) {
	return c.presenter.Render(c.entity, c.State())
}

func (c *Controller) CanReconcile() bool {
	if c.entity.Identifier != "" {
		return true
	}
	return !(c.entity.IsOverlay() && c.mode.GitBacked())
}

// Reconcile fetches the diff and opens the dialog it calls for.
func (c *Controller) Reconcile(ctx context.Context) error {
	if !c.CanReconcile() {
		return ErrReconcileDisabled
	}
	return c.fetch(ctx)
}

// Retry re-fetches the diff after a failed fetch.
func (c *Controller) Retry(ctx context.Context) error {
	s := c.State()
	if s.Kind != ReconcileDialogOpen || s.FetchErr == nil {
		return ErrInvalidTransition
	}
	return c.fetch(ctx)
}

func (c *Controller) fetch(ctx context.Context) error {
	started, _ := c.apply(FetchStarted{})
	log := c.log.WithField("attempt", uuid.NewString())
	log.Debugf("Fetching yaml diff for %s", c.entity.Identifier)

	req := c.entity.request(c.opts.Scope, c.mode.DiffParams(c.entity))
	var (
		diff *harness.YamlDiffResult
		err  error
	)
	if c.entity.IsOverlay() {
		diff, err = c.service.GetOverlayInputSetYamlDiff(ctx, req)
	} else {
		diff, err = c.service.GetInputSetYamlDiff(ctx, req)
	}

	next, applyErr := c.apply(DiffArrived{
		Generation:       started.Generation,
		Diff:             diff,
		Err:              err,
		EntityIdentifier: c.entity.Identifier,
	})
	if applyErr != nil {
		log.Debugf("Dropping yaml diff - %s", applyErr)
		return applyErr
	}

	switch next.Kind {
	case ErrorShown:
		log.Errorf("Unable to fetch yaml diff - %s", err)
		c.notifier.Error(Message(KeyReconcileFetchFailed) + ": " + harness.RBACErrorMessage(err))
	case Idle:
		log.Info("Nothing to reconcile")
	default:
		log.Infof("Opened %s", next.Kind)
	}
	return nil
}

// Resolve persists the payload for action. edited, when set, is the YAML the
// user adjusted in the dialog.
//
// Inline store failures are already reported through the Notifier and keep
// the dialog open; they are returned only so batch callers can count failed
// input sets. Git store failures are the error the GitSaver received.
func (c *Controller) Resolve(ctx context.Context, action Action, edited string) error {
	s := c.State()
	if s.Kind != ReconcileDialogOpen || s.FetchErr != nil {
		return ErrInvalidTransition
	}

	payload, err := c.presenter.Payload(action, c.entity, s.Diff, edited)
	if err == nil {
		res := c.persister.Submit(ctx, c.entity, payload)
		err = res.Err
	}

	if _, applyErr := c.apply(Resolved{Generation: s.Generation, Err: err}); applyErr != nil {
		c.log.Debugf("Dropping resolve result - %s", applyErr)
	}
	return err
}

func (c *Controller) ConfirmDelete(ctx context.Context) error {
	s := c.State()
	if s.Kind != DeleteDialogOpen {
		return ErrInvalidTransition
	}

	err := c.deleter.Delete(ctx, c.entity)
	if _, applyErr := c.apply(Deleted{Generation: s.Generation, Err: err}); applyErr != nil {
		c.log.Debugf("Dropping delete result - %s", applyErr)
	}
	return err
}

// GoToList leaves the delete dialog without deleting anything.
func (c *Controller) GoToList() error {
	if c.State().Kind != DeleteDialogOpen {
		return ErrInvalidTransition
	}
	c.apply(Dismissed{})
	call(c.hooks.NavigateToList)
	return nil
}

// Close dismisses whatever is open. In-flight fetches are discarded.
func (c *Controller) Close() {
	c.apply(Dismissed{})
}

func (c *Controller) apply(ev Event) (State, error) {
	c.mu.Lock()
	next, err := Reduce(c.state, ev)
	if err != nil {
		c.mu.Unlock()
		return next, err
	}
	c.state = next

	var emit []State
	if next.Kind == DeleteDialogOpen && c.shown == ReconcileDialogOpen {
		// the reconcile dialog is hidden before the delete dialog opens
		emit = append(emit, State{Kind: Idle, Generation: next.Generation})
	}
	emit = append(emit, next)
	switch next.Kind {
	case ReconcileDialogOpen, DeleteDialogOpen:
		c.shown = next.Kind
	case Idle, ErrorShown:
		c.shown = Idle
	}
	listener := c.listener
	c.mu.Unlock()

	if listener != nil {
		for _, s := range emit {
			listener(s)
		}
	}
	return next, nil
}
