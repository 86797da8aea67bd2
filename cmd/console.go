package cmd

import (
	"context"
	"errors"
	"strings"

	"github.com/aleksa11010/HarnessInputSetReconciler/harness"
	"github.com/aleksa11010/HarnessInputSetReconciler/reconcile"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

var boldCyan = color.New(color.Bold, color.FgBlue)

var errNewBranchName = errors.New("a new branch needs a branchName that differs from its base branch")

type consoleNotifier struct {
	log logrus.FieldLogger
}

func (n consoleNotifier) Success(key string) {
	n.log.Info(color.GreenString("%s", reconcile.Message(key)))
}

func (n consoleNotifier) Error(message string) {
	n.log.Error(color.RedString("%s", message))
}

// configGitSaver answers the save to git step with the git details from the
// configuration instead of asking the user.
type configGitSaver struct {
	git harness.GitDetails
	log logrus.FieldLogger
}

func (g configGitSaver) Open(ctx context.Context, req reconcile.GitSaveRequest, onConfirm func(context.Context, reconcile.GitSaveResult) error) error {
	data := g.git
	if data.IsNewBranch {
		if data.BaseBranch == "" {
			data.BaseBranch = req.Resource.GitDetails.BranchName
		}
		if data.BranchName == "" || data.BranchName == data.BaseBranch {
			g.log.Error(color.RedString("Unable to save %s to git - %s", req.Resource.Identifier, errNewBranchName))
			return errNewBranchName
		}
	} else if data.BranchName == "" {
		data.BranchName = req.Resource.GitDetails.BranchName
	}

	g.log.Infof("Saving %s [%s] to branch %s (%s)", req.Resource.Type, req.Resource.Identifier, data.BranchName, req.Resource.StoreMetadata.StoreType)
	err := onConfirm(ctx, reconcile.GitSaveResult{
		GitData:  data,
		Payload:  req.Payload,
		ObjectID: req.Resource.GitDetails.ObjectID,
	})
	if err != nil {
		g.log.Error(color.RedString("Unable to save %s to git - %s", req.Resource.Identifier, harness.RBACErrorMessage(err)))
	}
	return err
}

func renderView(log logrus.FieldLogger, v reconcile.View) {
	if v.TitleKey != "" {
		log.Info(boldCyan.Sprintf("---%s---", reconcile.Message(v.TitleKey)))
	}
	if v.DescriptionKey != "" {
		log.Warn(color.HiYellowString("%s", reconcile.Message(v.DescriptionKey)))
	}
	if v.Error != "" {
		log.Error(color.RedString("%s", v.Error))
	}
	if v.Retry {
		log.Info("Run the command again to retry")
	}
	if v.UnifiedDiff != "" {
		var b strings.Builder
		for _, line := range strings.Split(v.UnifiedDiff, "\n") {
			switch {
			case strings.HasPrefix(line, "+"):
				b.WriteString(color.GreenString("%s", line))
			case strings.HasPrefix(line, "-"):
				b.WriteString(color.RedString("%s", line))
			default:
				b.WriteString(line)
			}
			b.WriteString("\n")
		}
		log.Infof("YAML difference:\n%s", b.String())
	}
	if len(v.RemovedFields) > 0 {
		log.Warn(color.HiYellowString("Fields no longer in the pipeline (count:%d): \n%s", len(v.RemovedFields), strings.Join(v.RemovedFields, ",\n")))
	}
	if len(v.AddedFields) > 0 {
		log.Info(color.BlueString("New runtime inputs (count:%d): \n%s", len(v.AddedFields), strings.Join(v.AddedFields, ",\n")))
	}
	if len(v.InvalidReferences) > 0 {
		log.Warn(color.HiYellowString("Invalid input set references: %s", strings.Join(v.InvalidReferences, ", ")))
	}
	for _, e := range v.ValidationErrors {
		log.Warnf("%s: %s", e.Path, e.Message)
	}
	if v.NoUpdatePossible {
		log.Warn(color.HiYellowString("The input set cannot be updated automatically"))
	}
}
