package persistence

import (
	"encoding/json"
	"time"
)

// RepositoryModel represents a Git repository in the database.
type RepositoryModel struct {
	ID                 int64      `gorm:"primaryKey;autoIncrement"`
	SanitizedRemoteURI string     `gorm:"column:sanitized_remote_uri;index;uniqueIndex;size:1024"`
	RemoteURI          string     `gorm:"column:remote_uri;size:1024"`
	ClonedPath         *string    `gorm:"column:cloned_path;size:1024"`
	LastScannedAt      *time.Time `gorm:"column:last_scanned_at"`
	TrackingType       string     `gorm:"column:tracking_type;index;size:255"`
	TrackingName       string     `gorm:"column:tracking_name;index;size:255"`
	NumCommits         int        `gorm:"column:num_commits;default:0"`
	NumBranches        int        `gorm:"column:num_branches;default:0"`
	NumTags            int        `gorm:"column:num_tags;default:0"`
	CreatedAt          time.Time  `gorm:"column:created_at"`
	UpdatedAt          time.Time  `gorm:"column:updated_at"`
}

// TableName returns the table name.
func (RepositoryModel) TableName() string {
	return "git_repos"
}

// CommitModel represents a Git commit in the database.
type CommitModel struct {
	CommitSHA       string    `gorm:"column:commit_sha;primaryKey;size:64"`
	RepoID          int64     `gorm:"column:repo_id;index"`
	Date            time.Time `gorm:"column:date"`
	Message         string    `gorm:"column:message;type:text"`
	ParentCommitSHA *string   `gorm:"column:parent_commit_sha;index;size:64"`
	Author          string    `gorm:"column:author;index;size:255"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

// TableName returns the table name.
func (CommitModel) TableName() string {
	return "git_commits"
}

// BranchModel represents a Git branch in the database.
type BranchModel struct {
	RepoID        int64     `gorm:"column:repo_id;primaryKey;index"`
	Name          string    `gorm:"column:name;primaryKey;index;size:255"`
	HeadCommitSHA string    `gorm:"column:head_commit_sha;index;size:64"`
	IsDefault     bool      `gorm:"column:is_default;default:false"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

// TableName returns the table name.
func (BranchModel) TableName() string {
	return "git_branches"
}

// TagModel represents a Git tag in the database.
type TagModel struct {
	RepoID          int64      `gorm:"column:repo_id;primaryKey;index"`
	Name            string     `gorm:"column:name;primaryKey;index;size:255"`
	TargetCommitSHA string     `gorm:"column:target_commit_sha;index;size:64"`
	Message         *string    `gorm:"column:message;type:text"`
	TaggerName      *string    `gorm:"column:tagger_name;size:255"`
	TaggerEmail     *string    `gorm:"column:tagger_email;size:255"`
	TaggedAt        *time.Time `gorm:"column:tagged_at"`
	CreatedAt       time.Time  `gorm:"column:created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at"`
}

// TableName returns the table name.
func (TagModel) TableName() string {
	return "git_tags"
}

// FileModel represents a file at a specific commit in the database.
// The commit_sha FK is created by postMigrate with ON DELETE CASCADE;
// constraint:- keeps GORM from generating a reverse constraint
// (go-gorm/gorm#7693).
type FileModel struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	CommitSHA string    `gorm:"column:commit_sha;index;size:64;constraint:-"`
	Path      string    `gorm:"column:path;index;size:1024"`
	BlobSHA   string    `gorm:"column:blob_sha;index;size:64"`
	MimeType  string    `gorm:"column:mime_type;index;size:255"`
	Extension string    `gorm:"column:extension;index;size:255"`
	Size      int64     `gorm:"column:size"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

// TableName returns the table name.
func (FileModel) TableName() string {
	return "git_commit_files"
}

// SnippetModel represents a content-addressed snippet body. The sha is
// the SHA256 of the content, so identical snippets across files and
// commits share one row.
type SnippetModel struct {
	SHA       string    `gorm:"column:sha;primaryKey;size:64"`
	Content   string    `gorm:"column:content;type:text;not null"`
	Extension string    `gorm:"column:extension;index;size:255"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName returns the table name.
func (SnippetModel) TableName() string {
	return "snippets"
}

// SnippetCommitModel links a snippet body to a commit that contains it.
type SnippetCommitModel struct {
	SnippetSHA string    `gorm:"column:snippet_sha;primaryKey;index;size:64"`
	CommitSHA  string    `gorm:"column:commit_sha;primaryKey;index;size:64"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

// TableName returns the table name.
func (SnippetCommitModel) TableName() string {
	return "snippet_commits"
}

// SnippetFileModel records which file a snippet was extracted from
// within a commit.
type SnippetFileModel struct {
	SnippetSHA string    `gorm:"column:snippet_sha;primaryKey;index;size:64"`
	CommitSHA  string    `gorm:"column:commit_sha;primaryKey;index;size:64"`
	Path       string    `gorm:"column:path;primaryKey;size:1024"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

// TableName returns the table name.
func (SnippetFileModel) TableName() string {
	return "snippet_files"
}

// EnrichmentModel represents an enrichment in the database.
type EnrichmentModel struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Type      string    `gorm:"column:type;not null;index"`
	Subtype   string    `gorm:"column:subtype;not null;index"`
	Content   string    `gorm:"column:content;type:text;not null"`
	Language  string    `gorm:"column:language;index;size:255"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

// TableName returns the table name.
func (EnrichmentModel) TableName() string {
	return "enrichments_v2"
}

// EnrichmentAssociationModel links enrichments to entities.
type EnrichmentAssociationModel struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	EnrichmentID int64     `gorm:"column:enrichment_id;not null;index"`
	EntityType   string    `gorm:"column:entity_type;size:50;not null;index"`
	EntityID     string    `gorm:"column:entity_id;size:255;not null;index"`
	CreatedAt    time.Time `gorm:"column:created_at;not null"`
	UpdatedAt    time.Time `gorm:"column:updated_at;not null"`
}

// TableName returns the table name.
func (EnrichmentAssociationModel) TableName() string {
	return "enrichment_associations"
}

// EmbeddingModel is the legacy shared embeddings table. New embeddings go
// to per-task tables (see embedding_store_*.go); this model exists so
// AutoMigrate keeps the table consistent on databases that still carry it.
type EmbeddingModel struct {
	ID        int64        `gorm:"column:id;primaryKey;autoIncrement"`
	SnippetID string       `gorm:"column:snippet_id;index"`
	Type      string       `gorm:"column:type;index;size:64"`
	Embedding Float64Slice `gorm:"column:embedding;type:json"`
	CreatedAt time.Time    `gorm:"column:created_at;not null"`
	UpdatedAt time.Time    `gorm:"column:updated_at;not null"`
}

// TableName returns the table name.
func (EmbeddingModel) TableName() string {
	return "embeddings"
}

// TaskModel represents a queued task in the database. Rows are retained
// after completion; state distinguishes live work from the execution record.
type TaskModel struct {
	ID        int64           `gorm:"column:id;primaryKey;autoIncrement"`
	DedupKey  string          `gorm:"column:dedup_key;type:varchar(255);uniqueIndex:idx_tasks_dedup_key;not null"`
	Type      string          `gorm:"column:type;type:varchar(255);index;not null"`
	Payload   json.RawMessage `gorm:"column:payload;type:jsonb"`
	Priority  int             `gorm:"column:priority;not null"`
	State     string          `gorm:"column:state;type:varchar(32);index;not null;default:'pending'"`
	TakenAt   *time.Time      `gorm:"column:taken_at"`
	Attempts  int             `gorm:"column:attempts;default:0"`
	LastError *string         `gorm:"column:last_error;type:text"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the table name.
func (TaskModel) TableName() string {
	return "tasks"
}

// TaskStatusModel represents task progress status in the database.
type TaskStatusModel struct {
	ID            string    `gorm:"column:id;type:varchar(255);primaryKey;index;not null"`
	CreatedAt     time.Time `gorm:"column:created_at;not null"`
	UpdatedAt     time.Time `gorm:"column:updated_at;not null"`
	Operation     string    `gorm:"column:operation;type:varchar(255);index;not null"`
	TrackableID   *int64    `gorm:"column:trackable_id;index"`
	TrackableType *string   `gorm:"column:trackable_type;type:varchar(255);index"`
	ParentID      *string   `gorm:"column:parent;type:varchar(255);index"`
	Message       string    `gorm:"column:message;type:text;default:''"`
	State         string    `gorm:"column:state;type:varchar(255);default:''"`
	Error         string    `gorm:"column:error;type:text;default:''"`
	Total         int       `gorm:"column:total;default:0"`
	Current       int       `gorm:"column:current;default:0"`
}

// TableName returns the table name.
func (TaskStatusModel) TableName() string {
	return "task_status"
}

// ChunkLineRangeModel records where a chunk enrichment sits in its file.
type ChunkLineRangeModel struct {
	ID           int64 `gorm:"column:id;primaryKey;autoIncrement"`
	EnrichmentID int64 `gorm:"column:enrichment_id;uniqueIndex;not null"`
	StartLine    int   `gorm:"column:start_line;not null"`
	EndLine      int   `gorm:"column:end_line;not null"`
}

// TableName returns the table name.
func (ChunkLineRangeModel) TableName() string {
	return "chunk_line_ranges"
}
