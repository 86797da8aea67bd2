package cmd

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/aleksa11010/HarnessInputSetReconciler/harness"
	"github.com/aleksa11010/HarnessInputSetReconciler/reconcile"
	"github.com/cheggaaa/pb/v3"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	fixFlag         bool
	deleteEmptyFlag bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Find outdated input sets across projects",
	Long: `Lists every pipeline in the targeted projects and reports input sets that are
outdated or invalid. With --fix each one is reconciled, with --delete-empty input sets
that have nothing valid left are deleted.`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().BoolVar(&fixFlag, "fix", false, "Reconcile every outdated input set.")
	scanCmd.Flags().BoolVar(&deleteEmptyFlag, "delete-empty", false, "Delete input sets with no valid fields left.")
	rootCmd.AddCommand(scanCmd)
}

// finding is an input set that needs reconciling.
type finding struct {
	Project  harness.Project
	Pipeline string
	InputSet *harness.InputsetContent
}

func (f finding) target() target {
	t := target{
		Scope: harness.Scope{
			OrgIdentifier:     f.Project.OrgIdentifier,
			ProjectIdentifier: f.Project.Identifier,
		},
		Pipeline: f.Pipeline,
		Type:     reconcile.InputSet,
		ID:       f.InputSet.Identifier,
		Branch:   f.InputSet.GitDetails.BranchName,
	}
	if f.InputSet.InputSetType == harness.InputSetTypeOverlayInputSet {
		t.Type = reconcile.OverlayInputSet
	}
	return t
}

func runScan(cmd *cobra.Command, _ []string) error {
	c, err := loadConfig()
	if err != nil {
		return err
	}
	api := harness.NewAPIRequest(c)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	projects, err := scanProjects(ctx, api, c)
	if err != nil {
		return err
	}
	log.Info(color.BlueString("Found total of %d projects", len(projects)))

	s := scanner{api: api, account: c.AccountIdentifier, concurrency: c.Client.Concurrency, log: log}
	var findings []finding
	var failedProjects []string
	for _, p := range projects {
		log.Info(boldCyan.Sprintf("---Processing project %s!---", p.Name))
		found, err := s.project(ctx, p)
		if err != nil {
			log.Error(color.RedString("Unable to scan project %s - %s", p.Name, harness.RBACErrorMessage(err)))
			failedProjects = append(failedProjects, p.Name)
			continue
		}
		findings = append(findings, found...)
	}

	printFindings(findings)

	var failed []string
	if fixFlag || deleteEmptyFlag {
		r := reconciler{api: api, config: c, log: log}
		failed = fixFindings(ctx, r, findings)
	}

	log.Info(boldCyan.Sprint("---Scan summary---"))
	log.Infof("Outdated input sets: %d", len(findings))
	if len(failedProjects) > 0 {
		log.Error(color.RedString("Failed projects: %s", strings.Join(failedProjects, ", ")))
	}
	if len(failed) > 0 {
		log.Error(color.RedString("Failed input sets: %s", strings.Join(failed, ", ")))
		return fmt.Errorf("%d input sets could not be reconciled", len(failed))
	}
	return nil
}

func scanProjects(ctx context.Context, api *harness.APIRequest, c *harness.Config) ([]harness.Project, error) {
	if c.ProjectIdentifier != "" {
		return []harness.Project{{
			OrgIdentifier: c.OrgIdentifier,
			Identifier:    c.ProjectIdentifier,
			Name:          c.ProjectIdentifier,
		}}, nil
	}

	log.Info("Getting projects for account")
	all, err := api.GetAllProjects(ctx, c.AccountIdentifier)
	if err != nil {
		return nil, fmt.Errorf("unable to get projects - %w", err)
	}
	return filterProjects(log, all.Data.Content, c.TargetProjects, c.ExcludeProjects), nil
}

// filterProjects keeps the targeted projects, or drops the excluded ones when
// no target is given.
func filterProjects(log logrus.FieldLogger, content []harness.ProjectsContent, target, exclude []string) []harness.Project {
	target = nonEmpty(target)
	exclude = nonEmpty(exclude)

	var projects []harness.Project
	for _, pc := range content {
		p := pc.Project
		switch {
		case len(target) > 0:
			if !p.Matches(target) {
				continue
			}
			log.Info(color.BlueString("Project %s is targeted for reconciling, adding...", p.Name))
		case len(exclude) > 0:
			if p.Matches(exclude) {
				log.Info(color.BlueString("Project %s is excluded from reconciling, skipping...", p.Name))
				continue
			}
		}
		projects = append(projects, p)
	}
	return projects
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

type scanner struct {
	api         *harness.APIRequest
	account     string
	concurrency int
	log         logrus.FieldLogger
}

const pipelineTmpl = `{{ blue "Processing Pipelines: " }} {{ bar . "<" "-" (cycle . "↖" "↗" "↘" "↙" ) "." ">"}} {{percent .}} `

func (s scanner) project(ctx context.Context, p harness.Project) ([]finding, error) {
	scope := harness.Scope{
		AccountIdentifier: s.account,
		OrgIdentifier:     p.OrgIdentifier,
		ProjectIdentifier: p.Identifier,
	}
	pipelines, err := s.api.GetAllPipelines(ctx, scope)
	if err != nil {
		return nil, err
	}
	s.log.Info(color.BlueString("Found total of %d pipelines", len(pipelines.Data.Content)))
	if len(pipelines.Data.Content) == 0 {
		return nil, nil
	}

	bar := pb.ProgressBarTemplate(pipelineTmpl).Start(len(pipelines.Data.Content))
	defer bar.Finish()

	var (
		mu       sync.Mutex
		findings []finding
	)
	g, gctx := errgroup.WithContext(ctx)
	if s.concurrency > 0 {
		g.SetLimit(s.concurrency)
	}
	for _, pipeline := range pipelines.Data.Content {
		g.Go(func() error {
			defer bar.Increment()
			inputSets, err := s.api.GetInputsets(gctx, scope, pipeline.Identifier)
			if err != nil {
				s.log.Warn(color.HiYellowString("Unable to list input sets for %s - %s", pipeline.Identifier, harness.RBACErrorMessage(err)))
				return nil
			}
			mu.Lock()
			defer mu.Unlock()
			for _, is := range inputSets {
				if is.NeedsReconcile() {
					findings = append(findings, finding{Project: p, Pipeline: pipeline.Identifier, InputSet: is})
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(findings, func(i, j int) bool {
		if findings[i].Pipeline != findings[j].Pipeline {
			return findings[i].Pipeline < findings[j].Pipeline
		}
		return findings[i].InputSet.Identifier < findings[j].InputSet.Identifier
	})
	return findings, nil
}

func printFindings(findings []finding) {
	if len(findings) == 0 {
		log.Info(color.GreenString("All input sets are in sync with their pipelines"))
		return
	}
	var lines []string
	for _, f := range findings {
		lines = append(lines, fmt.Sprintf("%s/%s/%s [%s]", f.Project.Identifier, f.Pipeline, f.InputSet.Identifier, f.InputSet.InputSetType))
	}
	log.Warn(color.HiYellowString("Outdated input sets (count:%d): \n%s", len(findings), strings.Join(lines, ",\n")))
}

// fixFindings reconciles the findings one by one and returns the ones that
// failed.
func fixFindings(ctx context.Context, r reconciler, findings []finding) []string {
	opts := runOptions{DeleteEmpty: deleteEmptyFlag}
	if fixFlag {
		opts.Action = reconcile.ActionUpdate
	}

	var failed []string
	for _, f := range findings {
		t := f.target()
		t.Scope.AccountIdentifier = r.config.AccountIdentifier

		kind, err := r.run(ctx, t, opts)
		if errors.Is(err, errNotEmpty) {
			log.Debugf("Skipping %s, it still has valid fields", t.ID)
			continue
		}
		if err != nil {
			log.Error(color.RedString("Unable to reconcile %s - %s", t.ID, harness.RBACErrorMessage(err)))
			failed = append(failed, t.ID)
			continue
		}
		log.Debugf("Input set %s ended in state %s", t.ID, kind)
	}
	return failed
}
