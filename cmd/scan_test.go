package cmd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aleksa11010/HarnessInputSetReconciler/harness"
	"github.com/aleksa11010/HarnessInputSetReconciler/reconcile"
	resty "github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func projectsContent(projects ...harness.Project) []harness.ProjectsContent {
	var content []harness.ProjectsContent
	for _, p := range projects {
		content = append(content, harness.ProjectsContent{Project: p})
	}
	return content
}

func TestFilterProjects(t *testing.T) {
	logger, _ := test.NewNullLogger()
	content := projectsContent(
		harness.Project{OrgIdentifier: "default", Identifier: "alpha", Name: "Alpha"},
		harness.Project{OrgIdentifier: "default", Identifier: "beta", Name: "Beta"},
		harness.Project{OrgIdentifier: "other", Identifier: "gamma", Name: "Gamma"},
	)

	tests := []struct {
		name    string
		target  []string
		exclude []string
		want    []string
	}{
		{name: "no filters keeps everything", want: []string{"alpha", "beta", "gamma"}},
		{name: "empty flag value keeps everything", target: []string{""}, exclude: []string{""}, want: []string{"alpha", "beta", "gamma"}},
		{name: "target by name or identifier", target: []string{"Alpha", "gamma"}, want: []string{"alpha", "gamma"}},
		{name: "exclude", exclude: []string{"beta"}, want: []string{"alpha", "gamma"}},
		{name: "target wins over exclude", target: []string{"beta"}, exclude: []string{"beta"}, want: []string{"beta"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, p := range filterProjects(logger, content, tt.target, tt.exclude) {
				got = append(got, p.Identifier)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindingTarget(t *testing.T) {
	f := finding{
		Project:  harness.Project{OrgIdentifier: "default", Identifier: "proj"},
		Pipeline: "pipe",
		InputSet: &harness.InputsetContent{
			Identifier:   "overlay1",
			InputSetType: harness.InputSetTypeOverlayInputSet,
			GitDetails:   harness.GitDetails{BranchName: "main"},
		},
	}

	got := f.target()
	assert.Equal(t, reconcile.OverlayInputSet, got.Type)
	assert.Equal(t, "main", got.Branch)
	assert.Equal(t, "proj", got.Scope.ProjectIdentifier)
	assert.Equal(t, "overlay1", got.ID)
}

func TestScanner_ProjectCollectsOutdatedInputSets(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /pipeline/api/pipelines/list", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, harness.Pipelines{Status: harness.StatusSuccess, Data: harness.PipelinesData{Content: []harness.PipelineContent{
			{Identifier: "p2"}, {Identifier: "p1"},
		}}})
	})
	mux.HandleFunc("GET /pipeline/api/inputSets", func(w http.ResponseWriter, r *http.Request) {
		valid := harness.EntityValidityDetails{Valid: true}
		var content []*harness.InputsetContent
		switch r.URL.Query().Get("pipelineIdentifier") {
		case "p1":
			content = []*harness.InputsetContent{
				{Identifier: "ok", EntityValidityDetails: valid},
				{Identifier: "stale", IsOutdated: true, EntityValidityDetails: valid},
			}
		case "p2":
			content = []*harness.InputsetContent{
				{Identifier: "broken", InputSetType: harness.InputSetTypeOverlayInputSet},
			}
		}
		writeJSON(w, harness.ListInputsetResponse{Status: harness.StatusSuccess, Data: harness.ListInputsetData{Content: content}})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	logger, _ := test.NewNullLogger()
	s := scanner{
		api:         &harness.APIRequest{BaseURL: server.URL, Client: resty.New(), APIKey: "pat.acc.token"},
		account:     "acc",
		concurrency: 2,
		log:         logger,
	}

	findings, err := s.project(context.Background(), harness.Project{OrgIdentifier: "default", Identifier: "proj", Name: "Proj"})
	require.NoError(t, err)
	require.Len(t, findings, 2)
	assert.Equal(t, "p1", findings[0].Pipeline)
	assert.Equal(t, "stale", findings[0].InputSet.Identifier)
	assert.Equal(t, "p2", findings[1].Pipeline)
	assert.Equal(t, "broken", findings[1].InputSet.Identifier)
}
