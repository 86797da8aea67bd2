package harness

import (
	"context"
	"fmt"
)

const (
	StoreTypeInline = "INLINE"
	StoreTypeRemote = "REMOTE"

	InputSetTypeOverlayInputSet = "OVERLAY_INPUT_SET"
)

type ListInputsetResponse struct {
	Status        string           `json:"status"`
	Data          ListInputsetData `json:"data"`
	CorrelationID string           `json:"correlationId"`
}

type ListInputsetData struct {
	TotalPages    int64              `json:"totalPages"`
	TotalItems    int64              `json:"totalItems"`
	PageItemCount int64              `json:"pageItemCount"`
	PageSize      int64              `json:"pageSize"`
	Content       []*InputsetContent `json:"content"`
	PageIndex     int64              `json:"pageIndex"`
	Empty         bool               `json:"empty"`
}

type InputsetContent struct {
	Identifier            string                `json:"identifier"`
	Name                  string                `json:"name"`
	PipelineIdentifier    string                `json:"pipelineIdentifier"`
	InputSetType          string                `json:"inputSetType"`
	EntityValidityDetails EntityValidityDetails `json:"entityValidityDetails"`
	StoreType             string                `json:"storeType"`
	ConnectorRef          string                `json:"connectorRef"`
	IsOutdated            bool                  `json:"isOutdated"`
	GitDetails            GitDetails            `json:"gitDetails"`
}

type EntityValidityDetails struct {
	Valid       bool   `json:"valid"`
	InvalidYaml string `json:"invalidYaml"`
}

// NeedsReconcile reports whether the list entry is out of sync with its pipeline.
func (is *InputsetContent) NeedsReconcile() bool {
	return is.IsOutdated || !is.EntityValidityDetails.Valid
}

type InputSetResponse struct {
	Status        string   `json:"status"`
	Data          InputSet `json:"data"`
	CorrelationID string   `json:"correlationId"`
}

// InputSet is the detail view of an input set or overlay input set.
type InputSet struct {
	AccountID          string                `json:"accountId"`
	OrgIdentifier      string                `json:"orgIdentifier"`
	ProjectIdentifier  string                `json:"projectIdentifier"`
	PipelineIdentifier string                `json:"pipelineIdentifier"`
	Identifier         string                `json:"identifier"`
	Name               string                `json:"name"`
	Description        string                `json:"description"`
	InputSetYaml       string                `json:"inputSetYaml"`
	OverlaySetYaml     string                `json:"overlaySetYaml"`
	InputSetReferences []string              `json:"inputSetReferences"`
	StoreType          string                `json:"storeType"`
	ConnectorRef       string                `json:"connectorRef"`
	GitDetails         GitDetails            `json:"gitDetails"`
	ErrorWrapper       *InputSetErrorWrapper `json:"inputSetErrorWrapper,omitempty"`
	InvalidReferences  map[string]string     `json:"invalidInputSetReferences,omitempty"`
}

// InputSetErrorWrapper carries validation errors embedded in an input set YAML.
type InputSetErrorWrapper struct {
	ErrorPipelineYaml      string                               `json:"errorPipelineYaml"`
	UUIDToErrorResponseMap map[string]InputSetErrorResponseList `json:"uuidToErrorResponseMap"`
}

type InputSetErrorResponseList struct {
	Errors []InputSetError `json:"errors"`
}

type InputSetError struct {
	FieldName  string `json:"fieldName"`
	Message    string `json:"message"`
	Identifier string `json:"identifier"`
}

// YAML returns the stored YAML for either kind of input set.
func (is *InputSet) YAML() string {
	if is.OverlaySetYaml != "" {
		return is.OverlaySetYaml
	}
	return is.InputSetYaml
}

// InputSetRequest addresses a single input set. Params carries store specific
// query parameters and is sent as is.
type InputSetRequest struct {
	Scope              Scope
	PipelineIdentifier string
	Identifier         string
	Params             map[string]string
}

func (r InputSetRequest) queryParams() map[string]string {
	params := r.Scope.params()
	params["pipelineIdentifier"] = r.PipelineIdentifier
	for k, v := range r.Params {
		params[k] = v
	}
	return params
}

type DeleteResponse struct {
	Status        string `json:"status"`
	Data          bool   `json:"data"`
	CorrelationID string `json:"correlationId"`
}

func (api *APIRequest) GetInputsets(ctx context.Context, scope Scope, pipeline string) ([]*InputsetContent, error) {
	params := scope.params()
	params["pipelineIdentifier"] = pipeline
	params["size"] = "1000"

	resp, err := api.request(ctx).
		SetHeader("Content-Type", "application/json").
		SetQueryParams(params).
		Get(api.BaseURL + "/pipeline/api/inputSets")
	if err != nil {
		return nil, err
	}

	result := ListInputsetResponse{}
	if err := decode(resp, &result); err != nil {
		return nil, err
	}

	return result.Data.Content, nil
}

func (api *APIRequest) GetInputSet(ctx context.Context, req InputSetRequest) (*InputSet, error) {
	return api.getInputSet(ctx, req, "/pipeline/api/inputSets/{identifier}")
}

func (api *APIRequest) GetOverlayInputSet(ctx context.Context, req InputSetRequest) (*InputSet, error) {
	return api.getInputSet(ctx, req, "/pipeline/api/inputSets/overlay/{identifier}")
}

func (api *APIRequest) getInputSet(ctx context.Context, req InputSetRequest, path string) (*InputSet, error) {
	resp, err := api.request(ctx).
		SetPathParam("identifier", req.Identifier).
		SetQueryParams(req.queryParams()).
		Get(api.BaseURL + path)
	if err != nil {
		return nil, err
	}

	result := InputSetResponse{}
	if err := decode(resp, &result); err != nil {
		return nil, err
	}

	return &result.Data, nil
}

func (api *APIRequest) UpdateInputSet(ctx context.Context, req InputSetRequest, yaml string) (*InputSetResponse, error) {
	return api.updateInputSet(ctx, req, yaml, "/pipeline/api/inputSets/{identifier}")
}

func (api *APIRequest) UpdateOverlayInputSet(ctx context.Context, req InputSetRequest, yaml string) (*InputSetResponse, error) {
	return api.updateInputSet(ctx, req, yaml, "/pipeline/api/inputSets/overlay/{identifier}")
}

func (api *APIRequest) updateInputSet(ctx context.Context, req InputSetRequest, yaml, path string) (*InputSetResponse, error) {
	resp, err := api.request(ctx).
		SetHeader("Content-Type", "application/yaml").
		SetPathParam("identifier", req.Identifier).
		SetQueryParams(req.queryParams()).
		SetBody(yaml).
		Put(api.BaseURL + path)
	if err != nil {
		return nil, err
	}

	result := InputSetResponse{}
	if err := decode(resp, &result); err != nil {
		return nil, err
	}
	if result.Status != StatusSuccess {
		return &result, &APIError{
			StatusCode:  resp.StatusCode(),
			ApiResponse: ApiResponse{Status: result.Status, CorrelationID: result.CorrelationID, Message: fmt.Sprintf("update of %s returned status %s", req.Identifier, result.Status)},
		}
	}

	return &result, nil
}

// DeleteInputSet deletes an input set or overlay input set. A non SUCCESS
// status is returned with the response and no error so callers can decide.
func (api *APIRequest) DeleteInputSet(ctx context.Context, req InputSetRequest) (*DeleteResponse, error) {
	resp, err := api.request(ctx).
		SetPathParam("identifier", req.Identifier).
		SetQueryParams(req.queryParams()).
		Delete(api.BaseURL + "/pipeline/api/inputSets/{identifier}")
	if err != nil {
		return nil, err
	}

	result := DeleteResponse{}
	if err := decode(resp, &result); err != nil {
		return nil, err
	}

	return &result, nil
}
