package repository

import (
	"errors"

	"devhub/internal/models"
)

// upstream passes AppErrors through and wraps store failures.
func upstream(err error) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return models.NewUpstreamError(err)
}
