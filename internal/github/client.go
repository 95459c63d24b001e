package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	api "github.com/google/go-github/v71/github"
)

// apiClient implements Client on top of the GitHub REST API. Repositories are
// addressed by name under a single configured owner. Calls use a fixed HTTP
// timeout and are never retried.
type apiClient struct {
	gh         *api.Client
	owner      string
	baseBranch string
}

// NewClient builds a Client for repositories under owner. token may be empty
// for anonymous access (read-only endpoints only).
func NewClient(token, owner, baseBranch string, timeout time.Duration) Client {
	httpClient := &http.Client{Timeout: timeout}
	gh := api.NewClient(httpClient)
	if token != "" {
		gh = gh.WithAuthToken(token)
	}
	return &apiClient{gh: gh, owner: owner, baseBranch: baseBranch}
}

func (c *apiClient) CreateBranch(ctx context.Context, repo, branch string) error {
	baseRef, _, err := c.gh.Git.GetRef(ctx, c.owner, repo, "refs/heads/"+c.baseBranch)
	if err != nil {
		return fmt.Errorf("resolve base branch %s: %w", c.baseBranch, err)
	}
	_, _, err = c.gh.Git.CreateRef(ctx, c.owner, repo, &api.Reference{
		Ref:    api.Ptr("refs/heads/" + branch),
		Object: &api.GitObject{SHA: baseRef.Object.SHA},
	})
	if err != nil {
		return fmt.Errorf("create branch %s: %w", branch, err)
	}
	return nil
}

func (c *apiClient) AddCollaborator(ctx context.Context, repo, username, permission string) (CollaboratorOutcome, error) {
	already, _, err := c.gh.Repositories.IsCollaborator(ctx, c.owner, repo, username)
	if err == nil && already {
		return CollaboratorAlready, nil
	}

	invitation, _, err := c.gh.Repositories.AddCollaborator(ctx, c.owner, repo, username,
		&api.RepositoryAddCollaboratorOptions{Permission: permission})
	if err != nil {
		return 0, fmt.Errorf("add collaborator %s: %w", username, err)
	}
	if invitation != nil {
		return CollaboratorInvited, nil
	}
	return CollaboratorAdded, nil
}

func (c *apiClient) GetBranchProtection(ctx context.Context, repo, branch string) (*Protection, error) {
	prot, _, err := c.gh.Repositories.GetBranchProtection(ctx, c.owner, repo, branch)
	if err != nil {
		if errors.Is(err, api.ErrBranchNotProtected) {
			return nil, nil
		}
		return nil, fmt.Errorf("get branch protection: %w", err)
	}

	out := &Protection{}
	if reviews := prot.GetRequiredPullRequestReviews(); reviews != nil {
		out.RequiredApprovingReviews = reviews.RequiredApprovingReviewCount
	}
	if prot.GetEnforceAdmins() != nil {
		out.EnforceAdmins = prot.GetEnforceAdmins().Enabled
	}
	if prot.GetAllowForcePushes() != nil {
		out.AllowForcePushes = prot.GetAllowForcePushes().Enabled
	}
	if prot.GetAllowDeletions() != nil {
		out.AllowDeletions = prot.GetAllowDeletions().Enabled
	}
	return out, nil
}

func (c *apiClient) ProtectBranch(ctx context.Context, repo, branch string, rules Protection) error {
	req := &api.ProtectionRequest{
		RequiredStatusChecks: nil,
		RequiredPullRequestReviews: &api.PullRequestReviewsEnforcementRequest{
			RequiredApprovingReviewCount: rules.RequiredApprovingReviews,
		},
		EnforceAdmins:    rules.EnforceAdmins,
		Restrictions:     nil,
		AllowForcePushes: api.Ptr(rules.AllowForcePushes),
		AllowDeletions:   api.Ptr(rules.AllowDeletions),
	}
	if _, _, err := c.gh.Repositories.UpdateBranchProtection(ctx, c.owner, repo, branch, req); err != nil {
		return fmt.Errorf("update branch protection: %w", err)
	}
	return nil
}

func (c *apiClient) CompareBranches(ctx context.Context, repo, base, head string) ([]ChangedFile, error) {
	cmp, _, err := c.gh.Repositories.CompareCommits(ctx, c.owner, repo, base, head, nil)
	if err != nil {
		return nil, fmt.Errorf("compare %s...%s: %w", base, head, err)
	}

	out := make([]ChangedFile, 0, len(cmp.Files))
	for _, f := range cmp.Files {
		out = append(out, ChangedFile{
			Filename: f.GetFilename(),
			Status:   f.GetStatus(),
			SHA:      f.GetSHA(),
			BlobURL:  f.GetBlobURL(),
		})
	}
	return out, nil
}

func (c *apiClient) GetFileContent(ctx context.Context, repo, path, ref string) ([]byte, error) {
	file, _, _, err := c.gh.Repositories.GetContents(ctx, c.owner, repo, path,
		&api.RepositoryContentGetOptions{Ref: ref})
	if err != nil {
		return nil, fmt.Errorf("get contents %s@%s: %w", path, ref, err)
	}
	if file == nil {
		return nil, fmt.Errorf("path %s@%s is a directory", path, ref)
	}
	content, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("decode contents %s@%s: %w", path, ref, err)
	}
	return []byte(content), nil
}
