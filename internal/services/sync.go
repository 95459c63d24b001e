package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/backloghub/engine/internal/github"
	"github.com/backloghub/engine/internal/models"
	"github.com/backloghub/engine/internal/repository"
	"github.com/backloghub/engine/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Syncer provisions GitHub-side collaboration scaffolding for a new project.
type Syncer interface {
	SyncNewProject(ctx context.Context, project *models.Project, user *models.User) SyncReport
}

// SyncReport summarizes a best-effort GitHub provisioning run. It is embedded
// in the submit response as the github_operations object; it never carries an
// error the caller must act on.
type SyncReport struct {
	RepoName            string
	BranchName          string
	BranchCreated       bool
	BranchError         string
	CollaborationStatus models.CollaborationStatus
	CollaborationError  string
	Warning             string
	Error               string

	// Messages are appended to the human-readable response message in order.
	Messages []string
}

// Operations renders the report as the response's github_operations object.
func (r SyncReport) Operations() map[string]any {
	ops := map[string]any{}
	if r.Warning != "" {
		ops["warning"] = r.Warning
	}
	if r.BranchCreated {
		ops["branch_creation"] = "success"
		ops["branch_name"] = r.BranchName
	} else if r.BranchError != "" {
		ops["branch_creation"] = "failed"
		ops["branch_error"] = r.BranchError
	}
	if r.CollaborationStatus != "" && r.CollaborationStatus != models.CollabNone {
		ops["collaboration_status"] = r.CollaborationStatus
	}
	if r.CollaborationError != "" {
		ops["collaboration_error"] = r.CollaborationError
	}
	if r.Error != "" {
		ops["error"] = r.Error
	}
	return ops
}

// SyncWorkflow orchestrates branch creation, collaborator invitation, and
// base-branch protection for newly submitted projects. Every step is isolated:
// a failure narrows to a collaboration status, never an error that would fail
// the submission.
type SyncWorkflow struct {
	gh       github.Client
	projects repository.ProjectRepository
	base     string
	now      func() time.Time
}

func NewSyncWorkflow(gh github.Client, projects repository.ProjectRepository, baseBranch string) *SyncWorkflow {
	return &SyncWorkflow{gh: gh, projects: projects, base: baseBranch, now: time.Now}
}

var _ Syncer = (*SyncWorkflow)(nil)

// repoNamePattern tolerates github.com/owner/repo with or without a .git
// suffix or a trailing path.
var repoNamePattern = regexp.MustCompile(`github\.com/[^/]+/([^/.]+)(?:\.git)?(?:/.*)?$`)

// repoNameLoosePattern handles dotted repository names, where a trailing path
// segment is needed to tell where the name ends.
var repoNameLoosePattern = regexp.MustCompile(`github\.com/[^/]+/([^/]+)/.*$`)

// ExtractRepoName pulls the repository name out of a GitHub URL, or returns
// "" when the URL doesn't look like one.
func ExtractRepoName(gitURL string) string {
	if m := repoNamePattern.FindStringSubmatch(gitURL); m != nil {
		return m[1]
	}
	if m := repoNameLoosePattern.FindStringSubmatch(gitURL); m != nil {
		return m[1]
	}
	return ""
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]`)

// GenerateBranchName builds the deterministic per-submission branch name:
// feature/backlog-{backlogID}-{sanitizedName}-{YYYYMMDD-HHMMSS}. The second
// resolution of the timestamp keeps repeat submissions by the same user on
// distinct branches.
func GenerateBranchName(backlogID, userID uuid.UUID, displayName string, t time.Time) string {
	name := nonAlnum.ReplaceAllString(strings.ToLower(displayName), "")
	if name == "" {
		name = nonAlnum.ReplaceAllString("user"+userID.String(), "")
	}
	return fmt.Sprintf("feature/backlog-%s-%s-%s", backlogID, name, t.Format("20060102-150405"))
}

// SyncNewProject runs the provisioning steps for a just-created project. The
// project row is updated with whatever GitHub state was established; the
// returned report feeds the response payload.
func (w *SyncWorkflow) SyncNewProject(ctx context.Context, project *models.Project, user *models.User) (report SyncReport) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.L().Error("github sync panicked",
				zap.String("project_id", project.ID.String()),
				zap.Any("panic", rec),
			)
			report.Error = fmt.Sprint(rec)
			report.CollaborationStatus = models.CollabOperationsFailed
			report.Messages = append(report.Messages, "(Warning: GitHub integration failed)")
			w.persist(ctx, project, map[string]any{"collaboration_status": models.CollabOperationsFailed})
		}
	}()

	repoName := ExtractRepoName(project.GitURL)
	if repoName == "" {
		logger.L().Warn("could not extract repository name from URL",
			zap.String("project_id", project.ID.String()),
			zap.String("git_url", project.GitURL),
		)
		report.CollaborationStatus = models.CollabInvalidGithubURL
		report.Warning = "Invalid GitHub URL format"
		report.Messages = append(report.Messages, "(Warning: Invalid GitHub URL - branch creation skipped)")
		w.persist(ctx, project, map[string]any{"collaboration_status": models.CollabInvalidGithubURL})
		return report
	}
	report.RepoName = repoName

	branch := GenerateBranchName(project.BacklogID, user.ID, user.Name, w.now())
	if err := w.gh.CreateBranch(ctx, repoName, branch); err != nil {
		logger.L().Error("branch creation failed",
			zap.String("project_id", project.ID.String()),
			zap.String("repo", repoName),
			zap.Error(err),
		)
		report.BranchError = err.Error()
		report.CollaborationStatus = models.CollabBranchCreationFailed
		report.Messages = append(report.Messages, "(Warning: Branch creation failed - please create manually)")
		w.persist(ctx, project, map[string]any{
			"github_repo":          repoName,
			"collaboration_status": models.CollabBranchCreationFailed,
		})
		return report
	}

	report.BranchCreated = true
	report.BranchName = branch
	report.Messages = append(report.Messages, fmt.Sprintf("Branch '%s' created for development.", branch))

	report.CollaborationStatus, report.CollaborationError = w.addCollaborator(ctx, repoName, user, &report)

	w.ensureBaseProtection(ctx, repoName)

	w.persist(ctx, project, map[string]any{
		"github_branch":        branch,
		"github_repo":          repoName,
		"collaboration_status": report.CollaborationStatus,
	})
	report.Messages = append(report.Messages, "Files will be uploaded to GitHub when project is approved.")
	return report
}

func (w *SyncWorkflow) addCollaborator(ctx context.Context, repoName string, user *models.User, report *SyncReport) (models.CollaborationStatus, string) {
	if user.GithubUsername == "" {
		logger.L().Warn("no github username on file", zap.String("user_id", user.ID.String()))
		report.Messages = append(report.Messages, "Warning: No GitHub username found - please add collaborator manually.")
		return models.CollabNoGithubUsername, ""
	}

	outcome, err := w.gh.AddCollaborator(ctx, repoName, user.GithubUsername, "pull")
	if err != nil {
		logger.L().Warn("failed to add collaborator",
			zap.String("repo", repoName),
			zap.String("username", user.GithubUsername),
			zap.Error(err),
		)
		report.Messages = append(report.Messages,
			fmt.Sprintf("Warning: Failed to add %s as collaborator - %s", user.GithubUsername, err.Error()))
		return models.CollabFailed, err.Error()
	}

	switch outcome {
	case github.CollaboratorInvited:
		report.Messages = append(report.Messages, fmt.Sprintf("Collaboration invitation sent to %s.", user.GithubUsername))
		return models.CollabInvitationSent, ""
	case github.CollaboratorAlready:
		report.Messages = append(report.Messages, fmt.Sprintf("User %s already has repository access.", user.GithubUsername))
		return models.CollabAlreadyCollaborator, ""
	default:
		report.Messages = append(report.Messages, fmt.Sprintf("User %s added as collaborator with read access.", user.GithubUsername))
		return models.CollabAdded, ""
	}
}

// ensureBaseProtection idempotently applies the review/force-push/deletion
// rules to the base branch. Failures are logged and swallowed; this step
// never changes the collaboration status.
func (w *SyncWorkflow) ensureBaseProtection(ctx context.Context, repoName string) {
	existing, err := w.gh.GetBranchProtection(ctx, repoName, w.base)
	if err != nil {
		logger.L().Warn("branch protection check failed", zap.String("repo", repoName), zap.Error(err))
		return
	}
	if existing != nil {
		logger.L().Debug("branch protection already present", zap.String("repo", repoName))
		return
	}

	rules := github.Protection{
		RequiredApprovingReviews: 1,
		EnforceAdmins:            false,
		AllowForcePushes:         false,
		AllowDeletions:           false,
	}
	if err := w.gh.ProtectBranch(ctx, repoName, w.base, rules); err != nil {
		logger.L().Warn("enabling branch protection failed", zap.String("repo", repoName), zap.Error(err))
		return
	}
	logger.L().Info("branch protection enabled", zap.String("repo", repoName), zap.String("branch", w.base))
}

func (w *SyncWorkflow) persist(ctx context.Context, project *models.Project, fields map[string]any) {
	if err := w.projects.UpdateFields(ctx, project.ID, fields); err != nil {
		logger.L().Warn("persisting github state failed",
			zap.String("project_id", project.ID.String()),
			zap.Error(err),
		)
		return
	}
	if v, ok := fields["github_repo"].(string); ok {
		project.GithubRepo = v
	}
	if v, ok := fields["github_branch"].(string); ok {
		project.GithubBranch = v
	}
	if v, ok := fields["collaboration_status"].(models.CollaborationStatus); ok {
		project.CollaborationStatus = v
	}
}
