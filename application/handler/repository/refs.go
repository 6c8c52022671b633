package repository

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/kodit-ai/kodit/domain/repository"
)

// refSync performs the two-phase branch and tag synchronisation shared
// by the clone and sync handlers, plus tracked head resolution.
//
// Phase 1 upserts refs whose target commit is already persisted for the
// repository; refs pointing at unscanned commits are skipped so the
// tables never hold dangling references. Phase 2 prunes persisted refs
// that no longer exist on the remote.
type refSync struct {
	branchStore repository.BranchStore
	tagStore    repository.TagStore
	commitStore repository.CommitStore
	logger      *slog.Logger
}

func newRefSync(
	branchStore repository.BranchStore,
	tagStore repository.TagStore,
	commitStore repository.CommitStore,
	logger *slog.Logger,
) refSync {
	return refSync{
		branchStore: branchStore,
		tagStore:    tagStore,
		commitStore: commitStore,
		logger:      logger,
	}
}

// SyncBranches reconciles the persisted branches of a repository with
// the remote state.
func (r refSync) SyncBranches(ctx context.Context, repoID int64, remote []repository.Branch) error {
	keep := make([]repository.Branch, 0, len(remote))
	names := make(map[string]bool, len(remote))
	for _, b := range remote {
		names[b.Name()] = true
		exists, err := r.commitStore.Exists(ctx, repository.WithRepoID(repoID), repository.WithSHA(b.HeadCommitSHA()))
		if err != nil {
			return fmt.Errorf("check head commit for branch %s: %w", b.Name(), err)
		}
		if !exists {
			r.logger.Debug("skipping branch with unscanned head",
				slog.String("branch", b.Name()),
				slog.String("head", b.HeadCommitSHA()),
			)
			continue
		}
		keep = append(keep, b)
	}

	if len(keep) > 0 {
		if _, err := r.branchStore.SaveAll(ctx, keep); err != nil {
			return fmt.Errorf("save branches: %w", err)
		}
	}

	persisted, err := r.branchStore.Find(ctx, repository.WithRepoID(repoID))
	if err != nil {
		return fmt.Errorf("find persisted branches: %w", err)
	}
	for _, b := range persisted {
		if names[b.Name()] {
			continue
		}
		if err := r.branchStore.Delete(ctx, b); err != nil {
			return fmt.Errorf("prune branch %s: %w", b.Name(), err)
		}
	}
	return nil
}

// SyncTags reconciles the persisted tags of a repository with the
// remote state.
func (r refSync) SyncTags(ctx context.Context, repoID int64, remote []repository.Tag) error {
	keep := make([]repository.Tag, 0, len(remote))
	names := make(map[string]bool, len(remote))
	for _, t := range remote {
		names[t.Name()] = true
		exists, err := r.commitStore.Exists(ctx, repository.WithRepoID(repoID), repository.WithSHA(t.CommitSHA()))
		if err != nil {
			return fmt.Errorf("check target commit for tag %s: %w", t.Name(), err)
		}
		if !exists {
			r.logger.Debug("skipping tag with unscanned target",
				slog.String("tag", t.Name()),
				slog.String("target", t.CommitSHA()),
			)
			continue
		}
		keep = append(keep, t)
	}

	if len(keep) > 0 {
		if _, err := r.tagStore.SaveAll(ctx, keep); err != nil {
			return fmt.Errorf("save tags: %w", err)
		}
	}

	persisted, err := r.tagStore.Find(ctx, repository.WithRepoID(repoID))
	if err != nil {
		return fmt.Errorf("find persisted tags: %w", err)
	}
	for _, t := range persisted {
		if names[t.Name()] {
			continue
		}
		if err := r.tagStore.Delete(ctx, t); err != nil {
			return fmt.Errorf("prune tag %s: %w", t.Name(), err)
		}
	}
	return nil
}

// ResolveTrackedHead returns the commit SHA the repository's tracking
// config points at, using the freshly scanned remote refs. A tag
// pattern with no matching tag is an error; an unset or branch config
// that resolves nowhere falls back to the default branch head.
func resolveTrackedHead(
	repo repository.Repository,
	branches []repository.Branch,
	tags []repository.Tag,
) (string, error) {
	if repo.HasTrackingConfig() {
		tc := repo.TrackingConfig()
		switch {
		case tc.IsBranch():
			for _, b := range branches {
				if b.Name() == tc.Branch() {
					return b.HeadCommitSHA(), nil
				}
			}
		case tc.IsTag():
			return resolveTagPattern(tc.Tag(), tags)
		case tc.IsCommit():
			return tc.Commit(), nil
		}
	}

	for _, b := range branches {
		if b.IsDefault() {
			return b.HeadCommitSHA(), nil
		}
	}
	if len(branches) > 0 {
		return branches[0].HeadCommitSHA(), nil
	}
	return "", nil
}

// resolveTagPattern picks, among tags whose name matches the glob, the
// most recently tagged one and returns its target commit.
func resolveTagPattern(pattern string, tags []repository.Tag) (string, error) {
	var (
		bestSHA  string
		bestTime time.Time
		found    bool
	)
	for _, t := range tags {
		ok, err := path.Match(pattern, t.Name())
		if err != nil {
			return "", fmt.Errorf("invalid tag pattern %q: %w", pattern, err)
		}
		if !ok {
			continue
		}
		if !found || t.TaggedAt().After(bestTime) {
			bestSHA = t.CommitSHA()
			bestTime = t.TaggedAt()
			found = true
		}
	}
	if !found {
		return "", fmt.Errorf("no tag matches pattern %q", pattern)
	}
	return bestSHA, nil
}
