package reconcile

import (
	"context"
	"errors"

	"github.com/aleksa11010/HarnessInputSetReconciler/harness"
	"github.com/sirupsen/logrus"
)

var (
	ErrGitSaveCancelled = errors.New("save to git cancelled")
	ErrNoGitSaver       = errors.New("entity is git backed but no git saver is configured")
)

type StoreMetadata struct {
	StoreType    string
	ConnectorRef string
	RepoName     string
	BranchName   string
	FilePath     string
}

type GitResource struct {
	Type          EntityType
	Name          string
	Identifier    string
	GitDetails    harness.GitDetails
	StoreMetadata StoreMetadata
}

type GitSaveRequest struct {
	IsEditing bool
	Resource  GitResource
	Payload   string
}

// GitSaveResult is what the user confirmed in the save to git step.
type GitSaveResult struct {
	GitData  harness.GitDetails
	Payload  string
	ObjectID string
}

// GitSaver collects commit details for a git backed save. Open calls
// onConfirm with the user's choice and shows any error it returns; it returns
// ErrGitSaveCancelled when the user backs out.
type GitSaver interface {
	Open(ctx context.Context, req GitSaveRequest, onConfirm func(context.Context, GitSaveResult) error) error
}

type Result struct {
	Persisted bool
	Cancelled bool
	Err       error
}

// Persister writes a resolved input set back, either inline or through the
// save to git step.
type Persister struct {
	service  Service
	mode     GitMode
	opts     Options
	saver    GitSaver
	notifier Notifier
	hooks    Hooks
	log      logrus.FieldLogger
}

func NewPersister(service Service, mode GitMode, opts Options, deps Dependencies) *Persister {
	return &Persister{
		service:  service,
		mode:     mode,
		opts:     opts,
		saver:    deps.GitSaver,
		notifier: deps.Notifier,
		hooks:    deps.Hooks,
		log:      deps.logger(),
	}
}

func (p *Persister) Submit(ctx context.Context, e Entity, yaml string) Result {
	if p.mode.GitBacked() {
		return p.submitToGit(ctx, e, yaml)
	}
	return p.submitInline(ctx, e, yaml)
}

func (p *Persister) submitInline(ctx context.Context, e Entity, yaml string) Result {
	resp, err := p.update(ctx, e, yaml, p.mode.SaveParams(e, harness.GitDetails{}, ""))
	if err != nil {
		p.log.WithField("inputSet", e.Identifier).Errorf("Unable to update input set - %s", err)
		p.notifier.Error(harness.RBACErrorMessage(err))
		return Result{Err: err}
	}
	if resp != nil {
		p.notifier.Success(updatedKey(e))
		call(p.hooks.Refetch)
	}
	return Result{Persisted: true}
}

func (p *Persister) submitToGit(ctx context.Context, e Entity, yaml string) Result {
	if p.saver == nil {
		return Result{Err: ErrNoGitSaver}
	}

	req := GitSaveRequest{
		IsEditing: true,
		Resource: GitResource{
			Type:       e.Type,
			Name:       e.Name,
			Identifier: e.Identifier,
			GitDetails: e.GitDetails,
			StoreMetadata: StoreMetadata{
				StoreType:    e.StoreType,
				ConnectorRef: e.ConnectorRef,
				RepoName:     e.GitDetails.RepoName,
				BranchName:   e.GitDetails.BranchName,
				FilePath:     e.GitDetails.FilePath,
			},
		},
		Payload: yaml,
	}

	confirmed := false
	err := p.saver.Open(ctx, req, func(ctx context.Context, res GitSaveResult) error {
		payload := res.Payload
		if payload == "" {
			payload = yaml
		}
		if _, err := p.update(ctx, e, payload, p.mode.SaveParams(e, res.GitData, res.ObjectID)); err != nil {
			p.log.WithField("inputSet", e.Identifier).Errorf("Unable to save input set to git - %s", err)
			return err
		}
		confirmed = true
		p.notifier.Success(updatedKey(e))
		p.next()
		return nil
	})

	switch {
	case errors.Is(err, ErrGitSaveCancelled):
		return Result{Cancelled: true, Err: err}
	case err != nil:
		return Result{Err: err}
	case !confirmed:
		return Result{Cancelled: true, Err: ErrGitSaveCancelled}
	}
	return Result{Persisted: true}
}

// next runs after a successful git save.
func (p *Persister) next() {
	if p.opts.FromForm {
		call(p.hooks.NavigateBack)
		return
	}
	call(p.hooks.Refetch)
	call(p.hooks.HideForm)
	call(p.hooks.RefetchList)
}

func (p *Persister) update(ctx context.Context, e Entity, yaml string, params map[string]string) (*harness.InputSetResponse, error) {
	req := e.request(p.opts.Scope, params)
	if e.IsOverlay() {
		return p.service.UpdateOverlayInputSet(ctx, req, yaml)
	}
	return p.service.UpdateInputSet(ctx, req, yaml)
}

func updatedKey(e Entity) string {
	if e.IsOverlay() {
		return KeyOverlayInputSetUpdated
	}
	return KeyInputSetUpdated
}
