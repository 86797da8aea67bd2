package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/aleksa11010/HarnessInputSetReconciler/harness"
	"github.com/aleksa11010/HarnessInputSetReconciler/reconcile"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const actionDelete = "delete"

var errNotEmpty = errors.New("input set still has valid fields, refusing to delete it")

var (
	pipelineArg string
	inputSetArg string
	overlayFlag bool
	actionArg   string
	dryRunFlag  bool
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile a single input set",
	Long: `Compares an input set or overlay input set with its pipeline and resolves
the difference with the chosen action:

  update               save the YAML the pipeline accepts
  removeInvalidFields  drop fields or references that no longer exist
  delete               delete the input set when nothing valid is left`,
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().StringVar(&pipelineArg, "pipeline", "", "Pipeline identifier.")
	reconcileCmd.Flags().StringVar(&inputSetArg, "input-set", "", "Input set identifier.")
	reconcileCmd.Flags().BoolVar(&overlayFlag, "overlay", false, "The input set is an overlay input set.")
	reconcileCmd.Flags().StringVar(&actionArg, "action", string(reconcile.ActionUpdate), "update, removeInvalidFields or delete.")
	reconcileCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Only show the difference.")
	_ = reconcileCmd.MarkFlagRequired("pipeline")
	_ = reconcileCmd.MarkFlagRequired("input-set")
	rootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, _ []string) error {
	c, err := loadConfig()
	if err != nil {
		return err
	}
	if err := validateAction(actionArg); err != nil {
		return err
	}

	api := harness.NewAPIRequest(c)
	scope := harness.Scope{
		AccountIdentifier: c.AccountIdentifier,
		OrgIdentifier:     c.OrgIdentifier,
		ProjectIdentifier: c.ProjectIdentifier,
	}
	entityType := reconcile.InputSet
	if overlayFlag {
		entityType = reconcile.OverlayInputSet
	}

	opts := runOptions{Action: reconcile.Action(actionArg), DryRun: dryRunFlag}
	if actionArg == actionDelete {
		opts = runOptions{DeleteEmpty: true, DryRun: dryRunFlag}
	}

	r := reconciler{api: api, config: c, log: log}
	kind, err := r.run(cmd.Context(), target{
		Scope:    scope,
		Pipeline: pipelineArg,
		Type:     entityType,
		ID:       inputSetArg,
	}, opts)
	if err != nil {
		return err
	}
	log.Infof("Finished in state %s", kind)
	return nil
}

func validateAction(action string) error {
	switch action {
	case string(reconcile.ActionUpdate), string(reconcile.ActionRemoveInvalidFields), actionDelete:
		return nil
	}
	return fmt.Errorf("unknown action %q", action)
}

type target struct {
	Scope    harness.Scope
	Pipeline string
	Type     reconcile.EntityType
	ID       string
	Branch   string
}

// runOptions picks what happens once the diff is known. An empty Action only
// allows deleting.
type runOptions struct {
	Action      reconcile.Action
	DeleteEmpty bool
	DryRun      bool
}

// reconciler runs the whole reconcile flow for one input set without a user
// in the loop.
type reconciler struct {
	api    *harness.APIRequest
	config *harness.Config
	log    logrus.FieldLogger
}

func (r reconciler) load(ctx context.Context, t target) (reconcile.Entity, error) {
	req := harness.InputSetRequest{
		Scope:              t.Scope,
		PipelineIdentifier: t.Pipeline,
		Identifier:         t.ID,
	}
	if t.Branch != "" {
		req.Params = map[string]string{"branch": t.Branch}
	}

	var (
		is  *harness.InputSet
		err error
	)
	if t.Type == reconcile.OverlayInputSet {
		is, err = r.api.GetOverlayInputSet(ctx, req)
	} else {
		is, err = r.api.GetInputSet(ctx, req)
	}
	if err != nil {
		return reconcile.Entity{}, err
	}

	e := reconcile.EntityFromInputSet(is, t.Type)
	if e.Identifier == "" {
		e.Identifier = t.ID
	}
	if e.PipelineIdentifier == "" {
		e.PipelineIdentifier = t.Pipeline
	}
	if e.GitDetails.FilePath == "" && e.IsRemote() {
		e.GitDetails.FilePath = harness.GetInputSetFilePath(r.config.GitDetails.FilePath, t.Scope, e.PipelineIdentifier, e.Identifier)
	}
	return e, nil
}

func (r reconciler) run(ctx context.Context, t target, opts runOptions) (reconcile.Kind, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	log := r.log.WithFields(logrus.Fields{"component": t.Pipeline, "category": t.ID})

	e, err := r.load(ctx, t)
	if err != nil {
		return reconcile.Idle, fmt.Errorf("unable to get input set %s - %w", t.ID, err)
	}

	ctrl := reconcile.New(r.api, e, reconcile.Options{
		Scope:          t.Scope,
		GitSyncEnabled: r.config.GitSyncEnabled,
	}, reconcile.Dependencies{
		Notifier: consoleNotifier{log: log},
		GitSaver: configGitSaver{git: r.config.GitDetails, log: log},
		Hooks: reconcile.Hooks{
			Refetch: func() { log.Debug("Input set changed") },
		},
		Listener: func(s reconcile.State) { log.Debugf("State %s (generation %d)", s.Kind, s.Generation) },
		Log:      log,
	})

	if err := ctrl.Reconcile(ctx); err != nil {
		return ctrl.State().Kind, err
	}

	view, err := ctrl.View()
	if err != nil {
		return ctrl.State().Kind, err
	}
	renderView(log, view)

	state := ctrl.State()
	switch {
	case state.Kind == reconcile.ErrorShown:
		return state.Kind, state.FetchErr
	case state.Kind == reconcile.Idle:
		log.Info(color.GreenString("Input set %s is in sync with the pipeline", t.ID))
		return state.Kind, nil
	case opts.DryRun:
		ctrl.Close()
		return state.Kind, nil
	case state.Kind == reconcile.ReconcileDialogOpen && state.FetchErr != nil:
		return state.Kind, state.FetchErr
	case state.Kind == reconcile.ReconcileDialogOpen:
		if opts.Action == "" {
			ctrl.Close()
			return reconcile.Idle, errNotEmpty
		}
		err = ctrl.Resolve(ctx, pickAction(opts.Action, view), "")
	case state.Kind == reconcile.DeleteDialogOpen:
		if !opts.DeleteEmpty {
			log.Warn(color.HiYellowString("Nothing left to reconcile, use --action delete to remove %s", t.ID))
			return state.Kind, ctrl.GoToList()
		}
		err = ctrl.ConfirmDelete(ctx)
	}

	return ctrl.State().Kind, err
}

// pickAction falls back to the first action the dialog offers when the
// requested one is not available.
func pickAction(action reconcile.Action, v reconcile.View) reconcile.Action {
	for _, a := range v.Actions {
		if a == action {
			return action
		}
	}
	if len(v.Actions) > 0 {
		return v.Actions[0]
	}
	return action
}
