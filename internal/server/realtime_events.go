package server

import (
	"context"
	"log/slog"
	"time"

	"devhub/internal/middleware"
	"devhub/internal/models"
	"devhub/internal/notifications"
)

// Events are published after the mutation committed. Delivery is best
// effort and never fails the request.

func (s *Server) publishUserEvent(ctx context.Context, userID uint, eventType string, payload map[string]any) {
	if s.notifier == nil || userID == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)
	if err := s.notifier.PublishEvent(ctx, userID, notifications.NewEvent(eventType, payload)); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish event",
			slog.String("type", eventType),
			slog.Uint64("user_id", uint64(userID)),
			slog.String("error", err.Error()))
	}
}

func (s *Server) publishBroadcastEvent(ctx context.Context, eventType string, payload map[string]any) {
	if s.notifier == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	if err := s.notifier.BroadcastEvent(ctx, notifications.NewEvent(eventType, payload)); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish broadcast event",
			slog.String("type", eventType),
			slog.String("error", err.Error()))
	}
}

func (s *Server) projectCreated(ctx context.Context, project *models.Project) {
	s.publishBroadcastEvent(ctx, notifications.EventProjectCreated, map[string]any{
		"project_id":   project.ID,
		"developer_id": project.DeveloperID,
		"title":        project.Title,
		"created_at":   project.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
}

// projectUpvoted tells the owner about a new upvote. Self-upvotes are not
// announced.
func (s *Server) projectUpvoted(ctx context.Context, ownerID, voterID, projectID uint, count int) {
	if ownerID == voterID {
		return
	}
	s.publishUserEvent(ctx, ownerID, notifications.EventProjectUpvoted, map[string]any{
		"project_id":    projectID,
		"user_id":       voterID,
		"upvotes_count": count,
	})
}

func (s *Server) commentCreated(ctx context.Context, ownerID uint, comment *models.Comment) {
	if ownerID == comment.UserID {
		return
	}
	payload := map[string]any{
		"project_id": comment.ProjectID,
		"comment_id": comment.ID,
		"user_id":    comment.UserID,
	}
	if comment.Author != nil {
		payload["author_name"] = comment.Author.Name
	}
	s.publishUserEvent(ctx, ownerID, notifications.EventCommentCreated, payload)
}

func (s *Server) contactRequestReceived(ctx context.Context, req *models.ContactRequest) {
	s.publishUserEvent(ctx, req.DeveloperID, notifications.EventContactRequestReceived, map[string]any{
		"contact_request_id": req.ID,
		"name":               req.Name,
		"created_at":         req.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
}
