package repository

import (
	"context"

	"citywatch/internal/domain/entity"
)

// ReportFilter fields combine independently; zero values match all.
type ReportFilter struct {
	Status    entity.ReportStatus
	Category  string
	Emergency *bool
}

type ReportRepository interface {
	Create(ctx context.Context, report *entity.Report) error
	GetByID(ctx context.Context, id string) (*entity.Report, error)
	List(ctx context.Context, filter ReportFilter) ([]*entity.Report, error)
	Update(ctx context.Context, report *entity.Report) error
	Delete(ctx context.Context, id string) error
}
