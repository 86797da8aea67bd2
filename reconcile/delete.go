package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/aleksa11010/HarnessInputSetReconciler/harness"
	"github.com/sirupsen/logrus"
)

var (
	ErrDeleteFailed     = errors.New("delete failed")
	ErrPermissionDenied = errors.New("permission denied")
)

type Permission struct {
	Name         string
	ResourceType string
	ResourceID   string
}

// DeletePolicy is the copy and permission check of the delete dialog. Input
// sets and overlay input sets keep separate policies.
type DeletePolicy struct {
	DescriptionKey string
	SuccessKey     string
	Permission     string
	ResourceType   string
}

var (
	inputSetDeletePolicy = DeletePolicy{
		DescriptionKey: KeyInvalidInputSetDesc1,
		SuccessKey:     KeyInputSetDeleted,
		Permission:     "core_pipeline_edit",
		ResourceType:   "PIPELINE",
	}
	overlayInputSetDeletePolicy = DeletePolicy{
		DescriptionKey: KeyInvalidOverlayInputSetDesc,
		SuccessKey:     KeyOverlayInputSetDeleted,
		Permission:     "core_pipeline_execute",
		ResourceType:   "PIPELINE",
	}
)

func policyFor(e Entity) DeletePolicy {
	if e.IsOverlay() {
		return overlayInputSetDeletePolicy
	}
	return inputSetDeletePolicy
}

// Deleter removes an input set that has nothing left to reconcile.
type Deleter struct {
	service     Service
	mode        GitMode
	opts        Options
	notifier    Notifier
	permissions PermissionChecker
	hooks       Hooks
	log         logrus.FieldLogger
}

func NewDeleter(service Service, mode GitMode, opts Options, deps Dependencies) *Deleter {
	return &Deleter{
		service:     service,
		mode:        mode,
		opts:        opts,
		notifier:    deps.Notifier,
		permissions: deps.Permissions,
		hooks:       deps.Hooks,
		log:         deps.logger(),
	}
}

func (d *Deleter) Delete(ctx context.Context, e Entity) error {
	policy := policyFor(e)
	log := d.log.WithFields(logrus.Fields{"inputSet": e.Identifier, "type": e.Type})

	if d.permissions != nil {
		perm := Permission{Name: policy.Permission, ResourceType: policy.ResourceType, ResourceID: e.PipelineIdentifier}
		allowed, err := d.permissions.Allowed(ctx, perm)
		if err != nil {
			d.notifier.Error(harness.RBACErrorMessage(err))
			return err
		}
		if !allowed {
			err := fmt.Errorf("%w: %s on %s %s", ErrPermissionDenied, perm.Name, perm.ResourceType, perm.ResourceID)
			d.notifier.Error("You are missing the following permission: " + perm.Name)
			return err
		}
	}

	resp, err := d.service.DeleteInputSet(ctx, e.request(d.opts.Scope, d.mode.DeleteParams(e)))
	if err != nil {
		log.Errorf("Unable to delete input set - %s", err)
		d.notifier.Error(harness.RBACErrorMessage(err))
		return err
	}
	if resp == nil || resp.Status != harness.StatusSuccess {
		status := "none"
		if resp != nil {
			status = resp.Status
		}
		err := fmt.Errorf("%w: %s returned status %s", ErrDeleteFailed, e.Identifier, status)
		log.Error(err)
		d.notifier.Error(harness.RBACErrorMessage(err))
		return err
	}

	log.Info("Input set deleted")
	d.notifier.Success(policy.SuccessKey)
	call(d.hooks.Refetch)
	call(d.hooks.RefetchList)
	call(d.hooks.CloseMenu)
	if d.opts.SuppressNavigation {
		return nil
	}
	if d.opts.FromForm || d.hooks.HideForm == nil {
		call(d.hooks.NavigateToList)
	} else {
		call(d.hooks.HideForm)
	}
	return nil
}
