package harness

import (
	"context"
	"fmt"
)

type YamlDiffResponse struct {
	Status        string         `json:"status"`
	Data          YamlDiffResult `json:"data"`
	CorrelationID string         `json:"correlationId"`
}

// YamlDiffResult compares a stored input set with what the current pipeline
// template accepts. InputSetEmpty means no field survives the reconcile.
type YamlDiffResult struct {
	OldYAML           string      `json:"oldYAML"`
	NewYAML           string      `json:"newYAML"`
	InputSetEmpty     bool        `json:"inputSetEmpty"`
	NoUpdatePossible  bool        `json:"noUpdatePossible"`
	YamlDiffPresent   bool        `json:"yamlDiffPresent"`
	InvalidReferences []string    `json:"invalidReferences,omitempty"`
	GitDetails        *GitDetails `json:"gitDetails,omitempty"`
}

// Reconcilable reports whether both sides of the diff are present.
func (d *YamlDiffResult) Reconcilable() bool {
	return d != nil && !d.InputSetEmpty && d.OldYAML != "" && d.NewYAML != ""
}

func (api *APIRequest) GetInputSetYamlDiff(ctx context.Context, req InputSetRequest) (*YamlDiffResult, error) {
	return api.getYamlDiff(ctx, req, "/pipeline/api/inputSets/{identifier}/yaml-diff")
}

func (api *APIRequest) GetOverlayInputSetYamlDiff(ctx context.Context, req InputSetRequest) (*YamlDiffResult, error) {
	return api.getYamlDiff(ctx, req, "/pipeline/api/inputSets/overlay/{identifier}/yaml-diff")
}

func (api *APIRequest) getYamlDiff(ctx context.Context, req InputSetRequest, path string) (*YamlDiffResult, error) {
	resp, err := api.request(ctx).
		SetPathParam("identifier", req.Identifier).
		SetQueryParams(req.queryParams()).
		Get(api.BaseURL + path)
	if err != nil {
		return nil, err
	}

	result := YamlDiffResponse{}
	if err := decode(resp, &result); err != nil {
		return nil, err
	}
	if result.Status != "" && result.Status != StatusSuccess {
		return nil, &APIError{
			StatusCode:  resp.StatusCode(),
			ApiResponse: ApiResponse{Status: result.Status, CorrelationID: result.CorrelationID, Message: fmt.Sprintf("yaml diff for %s returned status %s", req.Identifier, result.Status)},
		}
	}

	return &result.Data, nil
}
