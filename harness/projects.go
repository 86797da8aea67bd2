package harness

type Projects struct {
	Status string       `json:"status"`
	Data   ProjectsData `json:"data"`
}

type ProjectsData struct {
	TotalPages    int64             `json:"totalPages"`
	TotalItems    int64             `json:"totalItems"`
	PageItemCount int64             `json:"pageItemCount"`
	PageSize      int64             `json:"pageSize"`
	Content       []ProjectsContent `json:"content"`
	PageIndex     int64             `json:"pageIndex"`
	Empty         bool              `json:"empty"`
}

type ProjectsContent struct {
	Project Project `json:"project"`
}

type Project struct {
	OrgIdentifier string `json:"orgIdentifier"`
	Identifier    string `json:"identifier"`
	Name          string `json:"name"`
}

type Pipelines struct {
	Status string        `json:"status"`
	Data   PipelinesData `json:"data"`
}

type PipelinesData struct {
	TotalElements int64             `json:"totalElements"`
	Content       []PipelineContent `json:"content"`
	Empty         bool              `json:"empty"`
}

type PipelineContent struct {
	Name       string     `json:"name"`
	Identifier string     `json:"identifier"`
	StoreType  string     `json:"storeType"`
	GitDetails GitDetails `json:"gitDetails"`
}

// Matches reports whether the project is referenced by name or identifier.
func (p Project) Matches(refs []string) bool {
	for _, ref := range refs {
		if ref != "" && (p.Name == ref || p.Identifier == ref) {
			return true
		}
	}
	return false
}
