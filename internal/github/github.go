// Package github defines the capability surface the submission workflow needs
// from a GitHub-like host, with typed per-operation results. Workflow code
// depends on the Client interface only; the API adapter lives in client.go.
package github

import "context"

// CollaboratorOutcome distinguishes the success variants of AddCollaborator.
type CollaboratorOutcome int

const (
	CollaboratorAdded CollaboratorOutcome = iota
	CollaboratorInvited
	CollaboratorAlready
)

// Protection describes branch protection rules.
type Protection struct {
	RequiredApprovingReviews int
	EnforceAdmins            bool
	AllowForcePushes         bool
	AllowDeletions           bool
}

// ChangedFile is one file-level change from a branch comparison.
type ChangedFile struct {
	Filename string
	Status   string // "added", "modified", "removed", "renamed"
	SHA      string
	BlobURL  string
}

// Diff statuses a user contribution can carry.
const (
	ChangeAdded    = "added"
	ChangeModified = "modified"
	ChangeRemoved  = "removed"
)

// Client is the GitHub capability used by the sync workflow and the branch
// diff resolver. Every call is blocking, fallible I/O; callers handle failure
// locally and degrade rather than retry.
type Client interface {
	// CreateBranch creates branch from the HEAD of the repository's base branch.
	CreateBranch(ctx context.Context, repo, branch string) error

	// AddCollaborator grants username the given permission ("pull", "push", ...).
	AddCollaborator(ctx context.Context, repo, username, permission string) (CollaboratorOutcome, error)

	// GetBranchProtection returns the branch's protection rules, or (nil, nil)
	// when the branch is not protected.
	GetBranchProtection(ctx context.Context, repo, branch string) (*Protection, error)

	// ProtectBranch applies protection rules to the branch.
	ProtectBranch(ctx context.Context, repo, branch string, rules Protection) error

	// CompareBranches returns the file-level changes of head relative to base.
	CompareBranches(ctx context.Context, repo, base, head string) ([]ChangedFile, error)

	// GetFileContent fetches a file's raw content at the given ref.
	GetFileContent(ctx context.Context, repo, path, ref string) ([]byte, error)
}
