package reconcile

import (
	"context"
	"sync"

	"github.com/aleksa11010/HarnessInputSetReconciler/harness"
)

// spyService records every call and answers with the configured results.
type spyService struct {
	mu sync.Mutex

	// --- yaml diff ---
	Diff    *harness.YamlDiffResult
	DiffErr error
	// DiffFunc overrides Diff/DiffErr when set.
	DiffFunc     func(ctx context.Context, req harness.InputSetRequest) (*harness.YamlDiffResult, error)
	DiffCalls    []harness.InputSetRequest
	OverlayCalls []harness.InputSetRequest

	// --- update ---
	UpdateResp    *harness.InputSetResponse
	UpdateErr     error
	UpdateCalls   []harness.InputSetRequest
	UpdatePayload []string
	OverlayUpdate bool

	// --- delete ---
	DeleteResp  *harness.DeleteResponse
	DeleteErr   error
	DeleteNil   bool
	DeleteCalls []harness.InputSetRequest
}

func (s *spyService) GetInputSetYamlDiff(ctx context.Context, req harness.InputSetRequest) (*harness.YamlDiffResult, error) {
	s.mu.Lock()
	s.DiffCalls = append(s.DiffCalls, req)
	fn := s.DiffFunc
	s.mu.Unlock()
	if fn != nil {
		return fn(ctx, req)
	}
	return s.Diff, s.DiffErr
}

func (s *spyService) GetOverlayInputSetYamlDiff(ctx context.Context, req harness.InputSetRequest) (*harness.YamlDiffResult, error) {
	s.mu.Lock()
	s.OverlayCalls = append(s.OverlayCalls, req)
	fn := s.DiffFunc
	s.mu.Unlock()
	if fn != nil {
		return fn(ctx, req)
	}
	return s.Diff, s.DiffErr
}

func (s *spyService) UpdateInputSet(_ context.Context, req harness.InputSetRequest, yaml string) (*harness.InputSetResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.UpdateCalls = append(s.UpdateCalls, req)
	s.UpdatePayload = append(s.UpdatePayload, yaml)
	return s.updateResult()
}

func (s *spyService) UpdateOverlayInputSet(_ context.Context, req harness.InputSetRequest, yaml string) (*harness.InputSetResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.OverlayUpdate = true
	s.UpdateCalls = append(s.UpdateCalls, req)
	s.UpdatePayload = append(s.UpdatePayload, yaml)
	return s.updateResult()
}

func (s *spyService) updateResult() (*harness.InputSetResponse, error) {
	if s.UpdateErr != nil {
		return nil, s.UpdateErr
	}
	if s.UpdateResp != nil {
		return s.UpdateResp, nil
	}
	return &harness.InputSetResponse{Status: harness.StatusSuccess}, nil
}

func (s *spyService) DeleteInputSet(_ context.Context, req harness.InputSetRequest) (*harness.DeleteResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.DeleteCalls = append(s.DeleteCalls, req)
	if s.DeleteErr != nil || s.DeleteNil {
		return nil, s.DeleteErr
	}
	if s.DeleteResp != nil {
		return s.DeleteResp, nil
	}
	return &harness.DeleteResponse{Status: harness.StatusSuccess, Data: true}, nil
}

func (s *spyService) diffCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.DiffCalls) + len(s.OverlayCalls)
}

type spyNotifier struct {
	mu        sync.Mutex
	Successes []string
	Errors    []string
}

func (n *spyNotifier) Success(key string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Successes = append(n.Successes, key)
}

func (n *spyNotifier) Error(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Errors = append(n.Errors, message)
}

// spyGitSaver confirms with Result unless Cancel is set, and records the
// error onConfirm returned.
type spyGitSaver struct {
	Result     GitSaveResult
	Cancel     bool
	Requests   []GitSaveRequest
	ConfirmErr error
}

func (g *spyGitSaver) Open(ctx context.Context, req GitSaveRequest, onConfirm func(context.Context, GitSaveResult) error) error {
	g.Requests = append(g.Requests, req)
	if g.Cancel {
		return ErrGitSaveCancelled
	}
	g.ConfirmErr = onConfirm(ctx, g.Result)
	return g.ConfirmErr
}

type hookRecorder struct {
	mu    sync.Mutex
	Calls []string
}

func (h *hookRecorder) record(name string) func() {
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.Calls = append(h.Calls, name)
	}
}

func (h *hookRecorder) Hooks() Hooks {
	return Hooks{
		Refetch:        h.record("refetch"),
		RefetchList:    h.record("refetchList"),
		HideForm:       h.record("hideForm"),
		CloseMenu:      h.record("closeMenu"),
		NavigateBack:   h.record("navigateBack"),
		NavigateToList: h.record("navigateToList"),
	}
}

type staticPermissions struct {
	Allow   bool
	Checked []Permission
}

func (p *staticPermissions) Allowed(_ context.Context, perm Permission) (bool, error) {
	p.Checked = append(p.Checked, perm)
	return p.Allow, nil
}

var testScope = harness.Scope{AccountIdentifier: "acc", OrgIdentifier: "default", ProjectIdentifier: "proj"}

const (
	oldInputSetYAML = `inputSet:
  identifier: testInp1
  name: testInp1
  pipeline:
    identifier: pipe
    stages:
      - stage:
          identifier: s1
          spec:
            execution:
              steps:
                - step:
                    identifier: http
                    spec:
                      url: https://example.com
                      requestBody: "{}"
`
	newInputSetYAML = `inputSet:
  identifier: testInp1
  name: testInp1
  pipeline:
    identifier: pipe
    stages:
      - stage:
          identifier: s1
          spec:
            execution:
              steps:
                - step:
                    identifier: http
                    spec:
                      url: https://example.com
`
	overlayYAML = `overlayInputSet:
  name: overlay1
  identifier: overlay1
  pipelineIdentifier: pipe
  inputSetReferences:
    - testInp1
    - testRemInp1
`
)

func inputSetEntity() Entity {
	return Entity{
		Type:               InputSet,
		Identifier:         "testInp1",
		Name:               "testInp1",
		PipelineIdentifier: "pipe",
		StoreType:          harness.StoreTypeInline,
		YAML:               oldInputSetYAML,
	}
}

func overlayEntity() Entity {
	return Entity{
		Type:               OverlayInputSet,
		Identifier:         "overlay1",
		Name:               "overlay1",
		PipelineIdentifier: "pipe",
		StoreType:          harness.StoreTypeInline,
		YAML:               overlayYAML,
		InputSetReferences: []string{"testInp1", "testRemInp1"},
	}
}

func remoteEntity() Entity {
	e := inputSetEntity()
	e.StoreType = harness.StoreTypeRemote
	e.ConnectorRef = "account.github"
	e.GitDetails = harness.GitDetails{
		RepoName:   "pipelines",
		BranchName: "main",
		FilePath:   ".harness/testInp1.yaml",
		ObjectID:   "obj-1",
		CommitID:   "commit-1",
	}
	return e
}
