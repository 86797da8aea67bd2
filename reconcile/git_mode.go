package reconcile

import (
	"strconv"

	"github.com/aleksa11010/HarnessInputSetReconciler/harness"
)

// GitMode decides where an entity is persisted and which query parameters the
// backend needs for it. It is picked once per entity by ModeFor.
type GitMode interface {
	Name() string
	GitBacked() bool
	DiffParams(e Entity) map[string]string
	SaveParams(e Entity, git harness.GitDetails, objectID string) map[string]string
	DeleteParams(e Entity) map[string]string
}

func ModeFor(e Entity, gitSyncEnabled bool) GitMode {
	switch {
	case gitSyncEnabled:
		return gitSyncMode{}
	case e.IsRemote():
		return remoteMode{}
	default:
		return inlineMode{}
	}
}

type inlineMode struct{}

func (inlineMode) Name() string                                                    { return "inline" }
func (inlineMode) GitBacked() bool                                                 { return false }
func (inlineMode) DiffParams(Entity) map[string]string                             { return nil }
func (inlineMode) SaveParams(Entity, harness.GitDetails, string) map[string]string { return nil }
func (inlineMode) DeleteParams(Entity) map[string]string                           { return nil }

// gitSyncMode is the legacy git sync integration keyed by repo identifier.
type gitSyncMode struct{}

func (gitSyncMode) Name() string    { return "git-sync" }
func (gitSyncMode) GitBacked() bool { return true }

func (gitSyncMode) DiffParams(e Entity) map[string]string {
	return compact(map[string]string{
		"repoIdentifier":          e.GitDetails.RepoIdentifier,
		"branch":                  e.GitDetails.BranchName,
		"getDefaultFromOtherRepo": "true",
	})
}

func (gitSyncMode) SaveParams(e Entity, git harness.GitDetails, objectID string) map[string]string {
	git = git.Merge(e.GitDetails)
	params := map[string]string{
		"repoIdentifier": git.RepoIdentifier,
		"rootFolder":     git.RootFolder,
		"filePath":       git.FilePath,
		"branch":         git.BranchName,
		"commitMsg":      git.CommitMessage,
		"isNewBranch":    strconv.FormatBool(git.IsNewBranch),
	}
	addConflictParams(params, e, git, objectID)
	return compact(params)
}

func (gitSyncMode) DeleteParams(e Entity) map[string]string {
	return compact(map[string]string{
		"repoIdentifier": e.GitDetails.RepoIdentifier,
		"rootFolder":     e.GitDetails.RootFolder,
		"filePath":       e.GitDetails.FilePath,
		"branch":         e.GitDetails.BranchName,
		"commitMsg":      e.GitDetails.CommitMessage,
		"lastObjectId":   e.GitDetails.ObjectID,
	})
}

// remoteMode stores the entity in a git repository reached through a connector.
type remoteMode struct{}

func (remoteMode) Name() string    { return "remote" }
func (remoteMode) GitBacked() bool { return true }

func (remoteMode) DiffParams(e Entity) map[string]string {
	return compact(map[string]string{
		"storeType":              harness.StoreTypeRemote,
		"connectorRef":           e.ConnectorRef,
		"repoName":               e.GitDetails.RepoName,
		"branch":                 e.GitDetails.BranchName,
		"loadFromFallbackBranch": "true",
	})
}

func (remoteMode) SaveParams(e Entity, git harness.GitDetails, objectID string) map[string]string {
	git = git.Merge(e.GitDetails)
	connectorRef := git.ConnectorRef
	if connectorRef == "" {
		connectorRef = e.ConnectorRef
	}
	params := map[string]string{
		"storeType":         harness.StoreTypeRemote,
		"connectorRef":      connectorRef,
		"repoName":          git.RepoName,
		"filePath":          git.FilePath,
		"branch":            git.BranchName,
		"commitMsg":         git.CommitMessage,
		"isNewBranch":       strconv.FormatBool(git.IsNewBranch),
		"isHarnessCodeRepo": "false",
	}
	addConflictParams(params, e, git, objectID)
	return compact(params)
}

func (remoteMode) DeleteParams(e Entity) map[string]string {
	return compact(map[string]string{
		"storeType":    harness.StoreTypeRemote,
		"connectorRef": e.ConnectorRef,
		"repoName":     e.GitDetails.RepoName,
		"branch":       e.GitDetails.BranchName,
		"filePath":     e.GitDetails.FilePath,
		"commitMsg":    e.GitDetails.CommitMessage,
		"lastObjectId": e.GitDetails.ObjectID,
	})
}

// addConflictParams sets the fields the backend uses to reject lost updates.
func addConflictParams(params map[string]string, e Entity, git harness.GitDetails, objectID string) {
	if objectID == "" {
		objectID = e.GitDetails.ObjectID
	}
	params["lastObjectId"] = objectID
	params["lastCommitId"] = e.GitDetails.CommitID
	if git.IsNewBranch {
		params["baseBranch"] = e.GitDetails.BranchName
		if git.BaseBranch != "" {
			params["baseBranch"] = git.BaseBranch
		}
	}
}

func compact(params map[string]string) map[string]string {
	for k, v := range params {
		if v == "" {
			delete(params, k)
		}
	}
	return params
}
