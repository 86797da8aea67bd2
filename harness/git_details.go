package harness

// GetInputSetFilePath returns where an input set is stored in git when it has
// no file path of its own yet.
func GetInputSetFilePath(customGitDetailsFilePath string, scope Scope, pipeline, inputSet string) string {
	if len(customGitDetailsFilePath) == 0 {
		return ".harness/orgs/" + scope.OrgIdentifier + "/projects/" + scope.ProjectIdentifier + "/pipelines/" + pipeline + "/input_sets/" + inputSet + ".yaml"
	} else {
		return customGitDetailsFilePath + "/" + inputSet + ".yaml"
	}
}

// Merge returns g with empty fields filled from fallback.
func (g GitDetails) Merge(fallback GitDetails) GitDetails {
	pick := func(v, f string) string {
		if v == "" {
			return f
		}
		return v
	}
	return GitDetails{
		RepoIdentifier: pick(g.RepoIdentifier, fallback.RepoIdentifier),
		RepoName:       pick(g.RepoName, fallback.RepoName),
		BranchName:     pick(g.BranchName, fallback.BranchName),
		RootFolder:     pick(g.RootFolder, fallback.RootFolder),
		FilePath:       pick(g.FilePath, fallback.FilePath),
		ObjectID:       pick(g.ObjectID, fallback.ObjectID),
		CommitID:       pick(g.CommitID, fallback.CommitID),
		ConnectorRef:   pick(g.ConnectorRef, fallback.ConnectorRef),
		CommitMessage:  pick(g.CommitMessage, fallback.CommitMessage),
		IsNewBranch:    g.IsNewBranch || fallback.IsNewBranch,
		BaseBranch:     pick(g.BaseBranch, fallback.BaseBranch),
	}
}
