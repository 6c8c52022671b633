package dto

import (
	"time"

	"github.com/kodit-ai/kodit/infrastructure/api/jsonapi"
)

// RepositoryAttributes represents repository attributes in JSON:API format.
type RepositoryAttributes struct {
	RemoteURI      string     `json:"remote_uri"`
	CreatedAt      *time.Time `json:"created_at,omitempty"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
	ClonedPath     *string    `json:"cloned_path,omitempty"`
	TrackingBranch *string    `json:"tracking_branch,omitempty"`
	NumCommits     int        `json:"num_commits"`
	NumBranches    int        `json:"num_branches"`
	NumTags        int        `json:"num_tags"`
}

// RepositoryData represents a repository in JSON:API format.
type RepositoryData struct {
	Type       string               `json:"type"`
	ID         string               `json:"id"`
	Attributes RepositoryAttributes `json:"attributes"`
}

// RepositoryResponse represents a single repository response.
type RepositoryResponse struct {
	Data RepositoryData `json:"data"`
}

// RepositoryListResponse represents a paginated repository list response.
type RepositoryListResponse struct {
	Data  []RepositoryData `json:"data"`
	Meta  *jsonapi.Meta    `json:"meta,omitempty"`
	Links *jsonapi.Links   `json:"links,omitempty"`
}

// RepositoryBranchData represents a branch summary within repository details.
type RepositoryBranchData struct {
	Name      string `json:"name"`
	IsDefault bool   `json:"is_default"`
}

// RepositoryCommitData represents a commit summary within repository details.
type RepositoryCommitData struct {
	SHA       string    `json:"sha"`
	Message   string    `json:"message"`
	Author    string    `json:"author"`
	Timestamp time.Time `json:"timestamp"`
}

// RepositoryDetailsResponse represents a repository with branches and recent commits.
type RepositoryDetailsResponse struct {
	Data          RepositoryData         `json:"data"`
	Branches      []RepositoryBranchData `json:"branches"`
	RecentCommits []RepositoryCommitData `json:"recent_commits"`
}

// RepositoryCreateAttributes holds the attributes for creating a repository.
type RepositoryCreateAttributes struct {
	RemoteURI string `json:"remote_uri"`
}

// RepositoryCreateData wraps repository creation attributes in JSON:API format.
type RepositoryCreateData struct {
	Type       string                     `json:"type"`
	Attributes RepositoryCreateAttributes `json:"attributes"`
}

// RepositoryCreateRequest represents a request to add a repository.
type RepositoryCreateRequest struct {
	Data RepositoryCreateData `json:"data"`
}

// TaskStatusAttributes represents task status attributes in JSON:API format.
type TaskStatusAttributes struct {
	Step      string     `json:"step"`
	State     string     `json:"state"`
	Progress  float64    `json:"progress"`
	Total     int        `json:"total"`
	Current   int        `json:"current"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	Error     string     `json:"error"`
	Message   string     `json:"message"`
}

// TaskStatusData represents a task status in JSON:API format.
type TaskStatusData struct {
	Type       string               `json:"type"`
	ID         string               `json:"id"`
	Attributes TaskStatusAttributes `json:"attributes"`
}

// TaskStatusListResponse represents a list of task statuses.
type TaskStatusListResponse struct {
	Data []TaskStatusData `json:"data"`
}

// RepositoryStatusSummaryAttributes represents aggregated status attributes.
type RepositoryStatusSummaryAttributes struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RepositoryStatusSummaryData represents an aggregated status summary.
type RepositoryStatusSummaryData struct {
	Type       string                            `json:"type"`
	ID         string                            `json:"id"`
	Attributes RepositoryStatusSummaryAttributes `json:"attributes"`
}

// RepositoryStatusSummaryResponse represents a status summary response.
type RepositoryStatusSummaryResponse struct {
	Data RepositoryStatusSummaryData `json:"data"`
}

// CommitAttributes represents commit attributes in JSON:API format.
type CommitAttributes struct {
	CommitSHA       string    `json:"commit_sha"`
	Date            time.Time `json:"date"`
	Message         string    `json:"message"`
	ParentCommitSHA string    `json:"parent_commit_sha"`
	Author          string    `json:"author"`
}

// CommitData represents a commit in JSON:API format.
type CommitData struct {
	Type       string           `json:"type"`
	ID         string           `json:"id"`
	Attributes CommitAttributes `json:"attributes"`
}

// CommitJSONAPIResponse represents a single commit response.
type CommitJSONAPIResponse struct {
	Data CommitData `json:"data"`
}

// CommitJSONAPIListResponse represents a paginated commit list response.
type CommitJSONAPIListResponse struct {
	Data  []CommitData   `json:"data"`
	Meta  *jsonapi.Meta  `json:"meta,omitempty"`
	Links *jsonapi.Links `json:"links,omitempty"`
}

// FileAttributes represents file attributes in JSON:API format.
type FileAttributes struct {
	BlobSHA   string `json:"blob_sha"`
	Path      string `json:"path"`
	MimeType  string `json:"mime_type"`
	Size      int64  `json:"size"`
	Extension string `json:"extension"`
}

// FileData represents a file in JSON:API format.
type FileData struct {
	Type       string         `json:"type"`
	ID         string         `json:"id"`
	Attributes FileAttributes `json:"attributes"`
}

// FileJSONAPIResponse represents a single file response.
type FileJSONAPIResponse struct {
	Data FileData `json:"data"`
}

// FileJSONAPIListResponse represents a paginated file list response.
type FileJSONAPIListResponse struct {
	Data  []FileData     `json:"data"`
	Meta  *jsonapi.Meta  `json:"meta,omitempty"`
	Links *jsonapi.Links `json:"links,omitempty"`
}

// TagAttributes represents tag attributes in JSON:API format.
type TagAttributes struct {
	Name            string `json:"name"`
	TargetCommitSHA string `json:"target_commit_sha"`
	IsVersionTag    bool   `json:"is_version_tag"`
}

// TagData represents a tag in JSON:API format.
type TagData struct {
	Type       string        `json:"type"`
	ID         string        `json:"id"`
	Attributes TagAttributes `json:"attributes"`
}

// TagJSONAPIResponse represents a single tag response.
type TagJSONAPIResponse struct {
	Data TagData `json:"data"`
}

// TagJSONAPIListResponse represents a paginated tag list response.
type TagJSONAPIListResponse struct {
	Data  []TagData      `json:"data"`
	Meta  *jsonapi.Meta  `json:"meta,omitempty"`
	Links *jsonapi.Links `json:"links,omitempty"`
}

// TrackingMode selects what a repository follows when syncing.
type TrackingMode string

// TrackingMode values.
const (
	TrackingModeBranch TrackingMode = "branch"
	TrackingModeTag    TrackingMode = "tag"
)

// TrackingConfigAttributes represents tracking configuration attributes.
type TrackingConfigAttributes struct {
	Mode  TrackingMode `json:"mode"`
	Value *string      `json:"value,omitempty"`
}

// TrackingConfigData represents a tracking configuration in JSON:API format.
type TrackingConfigData struct {
	Type       string                   `json:"type"`
	ID         string                   `json:"id,omitempty"`
	Attributes TrackingConfigAttributes `json:"attributes"`
}

// TrackingConfigResponse represents a tracking configuration response.
type TrackingConfigResponse struct {
	Data TrackingConfigData `json:"data"`
}

// TrackingConfigUpdateRequest represents a request to update tracking configuration.
type TrackingConfigUpdateRequest struct {
	Data TrackingConfigData `json:"data"`
}
