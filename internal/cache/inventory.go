package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	ProjectKeyPrefix     = "project:%d"
	ProfileRoleKeyPrefix = "profile:role:%d"
)

const (
	ProjectTTL = 30 * time.Minute
	// Roles never change after registration.
	ProfileRoleTTL = 24 * time.Hour
)

func ProjectKey(projectID uint) string {
	return fmt.Sprintf(ProjectKeyPrefix, projectID)
}

func ProfileRoleKey(profileID uint) string {
	return fmt.Sprintf(ProfileRoleKeyPrefix, profileID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateProject(ctx context.Context, projectID uint) {
	Invalidate(ctx, ProjectKey(projectID))
}
