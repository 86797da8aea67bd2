package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	resty "github.com/go-resty/resty/v2"
)

// pipelinesListPath is a POST that only reads.
const pipelinesListPath = "/pipeline/api/pipelines/list"

type APIRequest struct {
	BaseURL string
	Client  *resty.Client
	APIKey  string
}

// Scope identifies the account, organization and project an entity lives in.
type Scope struct {
	AccountIdentifier string
	OrgIdentifier     string
	ProjectIdentifier string
}

func (s Scope) params() map[string]string {
	return map[string]string{
		"routingId":         s.AccountIdentifier,
		"accountIdentifier": s.AccountIdentifier,
		"orgIdentifier":     s.OrgIdentifier,
		"projectIdentifier": s.ProjectIdentifier,
	}
}

func NewAPIRequest(c *Config) *APIRequest {
	client := resty.New().
		SetRetryCount(c.Client.RetryCount).
		SetTimeout(time.Duration(c.Client.TimeoutSeconds) * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if !retryable(r) {
				return false
			}
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})

	return &APIRequest{
		BaseURL: c.BaseURL,
		Client:  client,
		APIKey:  c.ApiKey,
	}
}

// retryable reports whether the request can be sent again without side effects.
// Writes are never replayed: a save that reached git would be rejected as a
// conflict on the second attempt.
func retryable(r *resty.Response) bool {
	if r == nil || r.Request == nil {
		return false
	}
	switch r.Request.Method {
	case http.MethodGet, http.MethodHead:
		return true
	case http.MethodPost:
		u, err := url.Parse(r.Request.URL)
		return err == nil && strings.HasSuffix(u.Path, pipelinesListPath)
	}
	return false
}

func (api *APIRequest) request(ctx context.Context) *resty.Request {
	return api.Client.R().
		SetContext(ctx).
		SetHeader("x-api-key", api.APIKey)
}

// decode unmarshals a 200 response into out and turns everything else into
// an *APIError.
func decode(resp *resty.Response, out interface{}) error {
	if resp.StatusCode() != http.StatusOK {
		return newAPIError(resp)
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("unable to decode response: %w", err)
	}
	return nil
}

func (api *APIRequest) GetAllProjects(ctx context.Context, account string) (Projects, error) {
	resp, err := api.request(ctx).
		SetQueryParams(map[string]string{
			"accountIdentifier": account,
			"hasModule":         "true",
			"pageSize":          "500",
		}).
		Get(api.BaseURL + "/ng/api/projects")
	if err != nil {
		return Projects{}, err
	}

	projects := Projects{}
	if err := decode(resp, &projects); err != nil {
		return Projects{}, err
	}

	return projects, nil
}

func (api *APIRequest) GetAllPipelines(ctx context.Context, scope Scope) (Pipelines, error) {
	resp, err := api.request(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(`{"filterType": "PipelineSetup"}`).
		SetQueryParams(map[string]string{
			"accountIdentifier": scope.AccountIdentifier,
			"orgIdentifier":     scope.OrgIdentifier,
			"projectIdentifier": scope.ProjectIdentifier,
			"size":              "1000",
		}).
		Post(api.BaseURL + pipelinesListPath)
	if err != nil {
		return Pipelines{}, err
	}

	pipelines := Pipelines{}
	if err := decode(resp, &pipelines); err != nil {
		return Pipelines{}, err
	}

	return pipelines, nil
}
