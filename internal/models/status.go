package models

import (
	"fmt"
)

// ProjectStatus is the lifecycle state of a submitted project. The wire and
// storage form is the legacy single-character code ("0".."3").
type ProjectStatus string

const (
	StatusPending   ProjectStatus = "0"
	StatusApproved  ProjectStatus = "1"
	StatusRejected  ProjectStatus = "2"
	StatusCompleted ProjectStatus = "3"
)

// transitions is the closed transition table. Rejected and Completed are
// terminal; nothing ever returns to Pending.
var transitions = map[ProjectStatus][]ProjectStatus{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {StatusRejected, StatusCompleted},
}

// ParseProjectStatus validates a raw status code at the boundary.
func ParseProjectStatus(s string) (ProjectStatus, error) {
	switch ProjectStatus(s) {
	case StatusPending, StatusApproved, StatusRejected, StatusCompleted:
		return ProjectStatus(s), nil
	}
	return "", fmt.Errorf("unknown project status %q", s)
}

// CanTransition reports whether moving from s to next is a legal transition.
func (s ProjectStatus) CanTransition(next ProjectStatus) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are possible.
func (s ProjectStatus) Terminal() bool {
	return len(transitions[s]) == 0
}

// Label returns the human-readable name of the status.
func (s ProjectStatus) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusApproved:
		return "Approved"
	case StatusRejected:
		return "Rejected"
	case StatusCompleted:
		return "Completed"
	}
	return "Unknown"
}

// CollaborationStatus summarizes the outcome of GitHub collaborator
// provisioning for a project. It is set after every upload attempt that
// touches GitHub, success or failure.
type CollaborationStatus string

const (
	CollabNone                 CollaborationStatus = "none"
	CollabInvitationSent       CollaborationStatus = "invitation_sent"
	CollabAlreadyCollaborator  CollaborationStatus = "already_collaborator"
	CollabAdded                CollaborationStatus = "added"
	CollabFailed               CollaborationStatus = "failed"
	CollabNoGithubUsername     CollaborationStatus = "no_github_username"
	CollabInvalidGithubURL     CollaborationStatus = "invalid_github_url"
	CollabBranchCreationFailed CollaborationStatus = "branch_creation_failed"
	CollabOperationsFailed     CollaborationStatus = "github_operations_failed"
	CollabUnknown              CollaborationStatus = "unknown"
)
