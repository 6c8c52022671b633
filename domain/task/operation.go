package task

import (
	"fmt"
	"strings"
)

// Operation represents the type of task operation.
type Operation string

// Operation values for the task queue system. The set is exhaustive:
// the worker dispatches on these and nothing else.
const (
	OperationCreateRepository Operation = "kodit.repository.create"
	OperationCloneRepository  Operation = "kodit.repository.clone"
	OperationSyncRepository   Operation = "kodit.repository.sync"
	OperationDeleteRepository Operation = "kodit.repository.delete"

	OperationScanCommit   Operation = "kodit.commit.scan"
	OperationRescanCommit Operation = "kodit.commit.rescan"

	OperationExtractSnippetsForCommit      Operation = "kodit.commit.extract_snippets"
	OperationCreateBM25IndexForCommit      Operation = "kodit.commit.create_bm25_index"
	OperationCreateCodeEmbeddingsForCommit Operation = "kodit.commit.create_code_embeddings"

	OperationCreateSummaryEnrichmentForCommit      Operation = "kodit.commit.create_summary_enrichment"
	OperationCreateSummaryEmbeddingsForCommit      Operation = "kodit.commit.create_summary_embeddings"
	OperationCreateArchitectureEnrichmentForCommit Operation = "kodit.commit.create_architecture_enrichment"
	OperationCreatePublicAPIDocsForCommit          Operation = "kodit.commit.create_public_api_docs"
	OperationCreateCommitDescriptionForCommit      Operation = "kodit.commit.create_commit_description"
	OperationCreateDatabaseSchemaForCommit         Operation = "kodit.commit.create_database_schema"
	OperationCreateCookbookForCommit               Operation = "kodit.commit.create_cookbook"
	OperationCreateRepositoryStructureForCommit    Operation = "kodit.commit.create_repository_structure"
)

// String returns the string representation of the operation.
func (o Operation) String() string {
	return string(o)
}

// ParseOperation validates a wire-format operation name.
func ParseOperation(s string) (Operation, error) {
	op := Operation(s)
	if !op.IsRepositoryOperation() && !op.IsCommitOperation() {
		return "", fmt.Errorf("unknown operation: %q", s)
	}
	return op, nil
}

// IsRepositoryOperation returns true if this is a repository-level operation.
func (o Operation) IsRepositoryOperation() bool {
	return strings.HasPrefix(string(o), "kodit.repository.")
}

// IsCommitOperation returns true if this is a commit-level operation.
func (o Operation) IsCommitOperation() bool {
	return strings.HasPrefix(string(o), "kodit.commit.")
}

// PrescribedOperations provides the predefined operation sequences for
// common workflows. Sequences are enqueued as one batch with increasing
// priority offsets, so their order here is their execution order.
type PrescribedOperations struct {
	embeddings  bool
	enrichments bool
}

// NewPrescribedOperations creates a PrescribedOperations with the given settings.
// When embeddings is false, vector index operations are excluded; when
// enrichments is false, LLM-dependent operations (summaries, architecture,
// API docs, commit descriptions, schema, cookbooks, structure overviews)
// are excluded from all workflows.
func NewPrescribedOperations(embeddings bool, enrichments bool) PrescribedOperations {
	return PrescribedOperations{embeddings: embeddings, enrichments: enrichments}
}

// All returns every operation that appears in any prescribed workflow.
// Used at startup to validate that all required handlers are registered.
func (p PrescribedOperations) All() []Operation {
	seen := make(map[Operation]struct{})
	var all []Operation

	for _, ops := range [][]Operation{
		p.CreateNewRepository(),
		p.SyncRepository(),
		p.DeleteRepository(),
		p.ScanAndIndexCommit(),
		p.RescanCommit(),
	} {
		for _, op := range ops {
			if _, ok := seen[op]; !ok {
				seen[op] = struct{}{}
				all = append(all, op)
			}
		}
	}
	return all
}

// CreateNewRepository returns the operations that register and clone a repository.
func (p PrescribedOperations) CreateNewRepository() []Operation {
	return []Operation{
		OperationCreateRepository,
		OperationCloneRepository,
	}
}

// SyncRepository returns the operations that bring a tracked repository up to date.
func (p PrescribedOperations) SyncRepository() []Operation {
	return []Operation{
		OperationSyncRepository,
	}
}

// DeleteRepository returns the operations that tear a repository down.
func (p PrescribedOperations) DeleteRepository() []Operation {
	return []Operation{
		OperationDeleteRepository,
	}
}

// RescanCommit returns the operations that reset a commit's derived data.
// The rescan handler re-enqueues ScanAndIndexCommit itself once teardown
// has committed.
func (p PrescribedOperations) RescanCommit() []Operation {
	return []Operation{
		OperationRescanCommit,
	}
}

// ScanAndIndexCommit returns the full pipeline for scanning and indexing a
// commit. Ordering is meaningful: snippets must exist before the keyword
// and vector indexes, and summaries must exist before summary embeddings.
func (p PrescribedOperations) ScanAndIndexCommit() []Operation {
	ops := []Operation{
		OperationScanCommit,
		OperationExtractSnippetsForCommit,
		OperationCreateBM25IndexForCommit,
	}
	if p.embeddings {
		ops = append(ops, OperationCreateCodeEmbeddingsForCommit)
	}
	if p.enrichments {
		ops = append(ops, OperationCreateSummaryEnrichmentForCommit)
		if p.embeddings {
			ops = append(ops, OperationCreateSummaryEmbeddingsForCommit)
		}
		ops = append(ops,
			OperationCreateArchitectureEnrichmentForCommit,
			OperationCreatePublicAPIDocsForCommit,
			OperationCreateCommitDescriptionForCommit,
			OperationCreateDatabaseSchemaForCommit,
			OperationCreateCookbookForCommit,
			OperationCreateRepositoryStructureForCommit,
		)
	}
	return ops
}
