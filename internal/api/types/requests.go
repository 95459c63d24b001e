package types

type RegisterRequest struct {
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=8"`
	Name           string `json:"name" validate:"required"`
	GithubUsername string `json:"github_username"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ProjectSubmitRequest is the non-file portion of the multipart submission.
type ProjectSubmitRequest struct {
	BacklogID   string `validate:"required,uuid4"`
	Title       string `validate:"required,max=100"`
	Description string `validate:"required,max=255"`
	// GitURL is length-checked only: malformed URLs are accepted here and
	// classified as a warning inside the sync workflow.
	GitURL string `validate:"required,max=255"`
}

type VoteRequest struct {
	ProjectID string `json:"project_id" validate:"required,uuid4"`
	VoteType  string `json:"vote_type" validate:"required,max=32"`
	VoteMode  string `json:"vote_mode" validate:"required,oneof=named anonymous"`
	Comment   string `json:"comment" validate:"max=500"`
}
