package dvc

import (
	"context"
	"fmt"
	"strings"

	"dvc-go/internal/database/sqlc"
)

// CreateRepository registers a repository rooted at the drive folder
// rootExternalID and creates its first branch.
func (s *DVCService) CreateRepository(ctx context.Context, name string, rootExternalID string, branchName string) (*sqlc.Repository, *sqlc.Branch, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil, invalidError("repository", "name", "can't be blank")
	}
	if rootExternalID == "" {
		return nil, nil, invalidError("repository", "root", "can't be blank")
	}

	var repo sqlc.Repository
	var branch *sqlc.Branch
	err := s.database.Tx(ctx, func(q sqlc.Querier) error {
		id, err := q.InsertRepository(ctx, sqlc.InsertRepositoryParams{
			Name:           name,
			RootExternalID: rootExternalID,
			CreatedAt:      s.now(),
		})
		if err != nil {
			if s.database.IsUniqueViolation(err) {
				return &Error{Kind: ErrConflict, Entity: "repository", Field: "name", Message: "has already been taken"}
			}
			return fmt.Errorf("inserting repository: %w", err)
		}
		repo, err = q.GetRepositoryByID(ctx, id)
		if err != nil {
			return fmt.Errorf("loading repository: %w", err)
		}
		branch, err = s.createBranch(ctx, q, &repo, branchName)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("repository created", "repository", repo.Name, "root", repo.RootExternalID, "branch", branch.Name)
	return &repo, branch, nil
}

// GetRepository looks a repository up by name.
func (s *DVCService) GetRepository(ctx context.Context, name string) (*sqlc.Repository, error) {
	repo, err := s.database.Queries().GetRepositoryByName(ctx, name)
	if err != nil {
		if isNoRows(err) {
			return nil, notFoundError("repository", name)
		}
		return nil, fmt.Errorf("finding repository: %w", err)
	}
	return &repo, nil
}

// CreateBranch adds an empty branch with its root working-tree entry.
func (s *DVCService) CreateBranch(ctx context.Context, repositoryID int64, name string) (*sqlc.Branch, error) {
	var branch *sqlc.Branch
	err := s.database.Tx(ctx, func(q sqlc.Querier) error {
		repo, err := getRepository(ctx, q, repositoryID)
		if err != nil {
			return err
		}
		branch, err = s.createBranch(ctx, q, repo, name)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("branch created", "repository_id", repositoryID, "branch", branch.Name)
	return branch, nil
}

// GetBranch looks a branch up by name within a repository.
func (s *DVCService) GetBranch(ctx context.Context, repositoryID int64, name string) (*sqlc.Branch, error) {
	branch, err := s.database.Queries().GetBranchByName(ctx, sqlc.GetBranchByNameParams{
		RepositoryID: repositoryID,
		Name:         name,
	})
	if err != nil {
		if isNoRows(err) {
			return nil, notFoundError("branch", name)
		}
		return nil, fmt.Errorf("finding branch: %w", err)
	}
	return &branch, nil
}

// ListBranches returns every branch of a repository ordered by name.
func (s *DVCService) ListBranches(ctx context.Context, repositoryID int64) ([]sqlc.Branch, error) {
	branches, err := s.database.Queries().ListBranchesByRepository(ctx, repositoryID)
	if err != nil {
		return nil, fmt.Errorf("listing branches: %w", err)
	}
	return branches, nil
}

// DeleteBranch removes a branch with its working tree and commits.
// Files, versions and backups belong to the repository and survive.
func (s *DVCService) DeleteBranch(ctx context.Context, branchID int64) error {
	err := s.database.Tx(ctx, func(q sqlc.Querier) error {
		if _, err := getBranch(ctx, q, branchID); err != nil {
			return err
		}
		if err := q.DeleteBranch(ctx, branchID); err != nil {
			return fmt.Errorf("deleting branch: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("branch deleted", "branch_id", branchID)
	return nil
}

// ForkBranch creates a branch whose working tree and first published
// commit reproduce the head of source. Forking a branch with no published
// commits yields an empty branch.
func (s *DVCService) ForkBranch(ctx context.Context, sourceID int64, name string, author string) (*sqlc.Branch, error) {
	author = strings.TrimSpace(author)
	if author == "" {
		return nil, invalidError("commit", "author", "can't be blank")
	}
	var branch *sqlc.Branch
	err := s.database.Tx(ctx, func(q sqlc.Querier) error {
		source, err := getBranch(ctx, q, sourceID)
		if err != nil {
			return err
		}
		repo, err := getRepository(ctx, q, source.RepositoryID)
		if err != nil {
			return err
		}
		branch, err = s.createBranch(ctx, q, repo, name)
		if err != nil {
			return err
		}

		head, err := branchHead(ctx, q, source.ID)
		if err != nil {
			return err
		}
		if head == nil {
			return nil
		}

		versions, err := q.ListCommittedVersions(ctx, head.ID)
		if err != nil {
			return fmt.Errorf("listing committed versions: %w", err)
		}
		now := s.now()
		for _, v := range versions {
			_, err := q.InsertWorkingTreeEntry(ctx, sqlc.InsertWorkingTreeEntryParams{
				BranchID:           branch.ID,
				FileID:             v.FileID,
				ParentID:           v.ParentID,
				Name:               v.Name,
				IsFolder:           v.IsFolder,
				ContentID:          v.ContentID,
				Thumbnail:          v.Thumbnail,
				CurrentVersionID:   validID(v.ID),
				CommittedVersionID: validID(v.ID),
				CreatedAt:          now,
				UpdatedAt:          now,
			})
			if err != nil {
				return fmt.Errorf("inserting forked entry for file %d: %w", v.FileID, err)
			}
		}

		commitID, err := q.InsertCommit(ctx, sqlc.InsertCommitParams{
			BranchID:  branch.ID,
			Author:    author,
			CreatedAt: now,
		})
		if err != nil {
			return fmt.Errorf("inserting fork commit: %w", err)
		}
		if _, err := q.CaptureWorkingTree(ctx, sqlc.CaptureWorkingTreeParams{CommitID: commitID, BranchID: branch.ID}); err != nil {
			return fmt.Errorf("capturing forked tree: %w", err)
		}
		commit, err := getCommit(ctx, q, commitID)
		if err != nil {
			return err
		}
		if err := s.computeDiffs(ctx, q, commit); err != nil {
			return err
		}
		_, err = q.PublishCommit(ctx, sqlc.PublishCommitParams{
			BranchID:    branch.ID,
			Author:      author,
			Title:       "Forked from " + source.Name,
			Summary:     "",
			PublishedAt: validTime(now),
			ID:          commitID,
		})
		if err != nil {
			return fmt.Errorf("publishing fork commit: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("branch forked", "source_id", sourceID, "branch", branch.Name)
	return branch, nil
}

// createBranch inserts the branch and its root entry. The root entry tracks
// the repository's root folder and never carries a version.
func (s *DVCService) createBranch(ctx context.Context, q sqlc.Querier, repo *sqlc.Repository, name string) (*sqlc.Branch, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalidError("branch", "name", "can't be blank")
	}

	id, err := q.InsertBranch(ctx, sqlc.InsertBranchParams{
		RepositoryID: repo.ID,
		Name:         name,
		CreatedAt:    s.now(),
	})
	if err != nil {
		if s.database.IsUniqueViolation(err) {
			return nil, &Error{Kind: ErrConflict, Entity: "branch", Field: "name", Message: "has already been taken"}
		}
		return nil, fmt.Errorf("inserting branch: %w", err)
	}

	root, err := s.ensureFile(ctx, q, repo.ID, repo.RootExternalID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	_, err = q.InsertWorkingTreeEntry(ctx, sqlc.InsertWorkingTreeEntryParams{
		BranchID:  id,
		FileID:    root.ID,
		IsFolder:  true,
		IsRoot:    true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("inserting root entry: %w", err)
	}

	branch, err := q.GetBranchByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading branch: %w", err)
	}
	return &branch, nil
}

func getRepository(ctx context.Context, q sqlc.Querier, id int64) (*sqlc.Repository, error) {
	repo, err := q.GetRepositoryByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, notFoundError("repository", id)
		}
		return nil, fmt.Errorf("loading repository: %w", err)
	}
	return &repo, nil
}

func getBranch(ctx context.Context, q sqlc.Querier, id int64) (*sqlc.Branch, error) {
	branch, err := q.GetBranchByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, notFoundError("branch", id)
		}
		return nil, fmt.Errorf("loading branch: %w", err)
	}
	return &branch, nil
}
