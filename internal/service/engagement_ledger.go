package service

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"devhub/internal/authz"
	"devhub/internal/middleware"
	"devhub/internal/models"
	"devhub/internal/observability"
	"devhub/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

const maxCommentLen = 5000

// Ledger operation names used in metrics and spans.
const (
	OpUpvoteAdd     = "upvote_add"
	OpUpvoteRemove  = "upvote_remove"
	OpCommentCreate = "comment_create"
)

// UpvoteResult reports the state after an upvote mutation.
type UpvoteResult struct {
	ProjectID    uint `json:"project_id"`
	Changed      bool `json:"-"`
	Upvoted      bool `json:"upvoted"`
	UpvotesCount int  `json:"upvotes_count"`
}

// EngagementLedger records upvotes and comments as uniquely keyed facts and
// keeps the project counters in step with them.
type EngagementLedger struct {
	engagement repository.EngagementRepository
	projects   repository.ProjectRepository
}

func NewEngagementLedger(engagement repository.EngagementRepository, projects repository.ProjectRepository) *EngagementLedger {
	return &EngagementLedger{engagement: engagement, projects: projects}
}

func outcome(err error, changed bool) string {
	switch {
	case err == nil && changed:
		return observability.OutcomeApplied
	case err == nil:
		return observability.OutcomeNoop
	case models.StatusFor(err) < 500:
		return observability.OutcomeRejected
	default:
		return observability.OutcomeFailed
	}
}

func (l *EngagementLedger) record(ctx context.Context, span *observability.Span, op string, projectID uint, err error, changed bool) {
	result := outcome(err, changed)
	observability.EngagementOperations.WithLabelValues(op, result).Inc()
	span.AddAttributes(attribute.String("ledger.outcome", result))
	if result == observability.OutcomeFailed {
		span.SetError(err)
		middleware.Logger.ErrorContext(ctx, "ledger operation failed",
			slog.String("operation", op),
			slog.Uint64("project_id", uint64(projectID)),
			slog.String("error", err.Error()))
	}
}

// AddUpvote records the caller's upvote. Upvoting twice is a successful no-op.
func (l *EngagementLedger) AddUpvote(ctx context.Context, id authz.Identity, projectID uint) (res *UpvoteResult, err error) {
	span, ctx := observability.NewSpan(ctx, "ledger."+OpUpvoteAdd,
		attribute.Int64("project.id", int64(projectID)),
		attribute.Int64("user.id", int64(id.AccountID)))
	defer span.End()
	defer func() { l.record(ctx, span, OpUpvoteAdd, projectID, err, res != nil && res.Changed) }()

	if err := authz.Authorize(id, authz.UpvoteAdd, authz.Resource{}); err != nil {
		return nil, err
	}

	changed, count, err := l.engagement.AddUpvote(ctx, projectID, id.AccountID)
	if err != nil {
		return nil, err
	}
	return &UpvoteResult{ProjectID: projectID, Changed: changed, Upvoted: true, UpvotesCount: count}, nil
}

// RemoveUpvote withdraws the caller's upvote. Removing a missing upvote is a
// successful no-op.
func (l *EngagementLedger) RemoveUpvote(ctx context.Context, id authz.Identity, projectID uint) (res *UpvoteResult, err error) {
	span, ctx := observability.NewSpan(ctx, "ledger."+OpUpvoteRemove,
		attribute.Int64("project.id", int64(projectID)),
		attribute.Int64("user.id", int64(id.AccountID)))
	defer span.End()
	defer func() { l.record(ctx, span, OpUpvoteRemove, projectID, err, res != nil && res.Changed) }()

	if err := authz.Authorize(id, authz.UpvoteRemove, authz.Resource{}); err != nil {
		return nil, err
	}

	changed, count, err := l.engagement.RemoveUpvote(ctx, projectID, id.AccountID)
	if err != nil {
		return nil, err
	}
	return &UpvoteResult{ProjectID: projectID, Changed: changed, Upvoted: false, UpvotesCount: count}, nil
}

// AddComment appends a comment and returns it with its author's name and role.
func (l *EngagementLedger) AddComment(ctx context.Context, id authz.Identity, projectID uint, content string) (comment *models.Comment, err error) {
	span, ctx := observability.NewSpan(ctx, "ledger."+OpCommentCreate,
		attribute.Int64("project.id", int64(projectID)),
		attribute.Int64("user.id", int64(id.AccountID)))
	defer span.End()
	defer func() { l.record(ctx, span, OpCommentCreate, projectID, err, comment != nil) }()

	if err := authz.Authorize(id, authz.CommentCreate, authz.Resource{}); err != nil {
		return nil, err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, models.NewValidationError("Comment content is required")
	}
	if utf8.RuneCountInString(content) > maxCommentLen {
		return nil, models.NewValidationError("Comment content is too long (max 5000 characters)")
	}

	comment = &models.Comment{ProjectID: projectID, UserID: id.AccountID, Content: content}
	if _, err := l.engagement.AddComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// ListComments returns the project's comments oldest first.
func (l *EngagementLedger) ListComments(ctx context.Context, projectID uint) ([]models.Comment, error) {
	if _, err := l.projects.OwnerOf(ctx, projectID); err != nil {
		return nil, err
	}
	comments, err := l.engagement.ListComments(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	return comments, nil
}

// HasUpvoted reports whether the caller upvoted the project. Anonymous
// callers never have.
func (l *EngagementLedger) HasUpvoted(ctx context.Context, id authz.Identity, projectID uint) (bool, error) {
	if !id.Authenticated() {
		return false, nil
	}
	return l.engagement.HasUpvoted(ctx, projectID, id.AccountID)
}
