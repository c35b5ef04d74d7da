package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"citywatch/internal/domain/entity"
	"citywatch/internal/domain/repository"
	"citywatch/pkg/errors"
)

type firestoreReportRepository struct {
	client *firestore.Client
}

func NewFirestoreReportRepository(client *firestore.Client) repository.ReportRepository {
	return &firestoreReportRepository{
		client: client,
	}
}

func (r *firestoreReportRepository) Create(ctx context.Context, report *entity.Report) error {
	if report.ID == "" {
		report.ID = uuid.New().String()
	}

	now := time.Now()
	if report.CreatedAt.IsZero() {
		report.CreatedAt = now
	}
	report.UpdatedAt = now

	_, err := r.client.Collection("reports").Doc(report.ID).Set(ctx, report)
	if err != nil {
		return errors.Internal("Failed to create report", err)
	}

	return nil
}

func (r *firestoreReportRepository) GetByID(ctx context.Context, id string) (*entity.Report, error) {
	doc, err := r.client.Collection("reports").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Report", err)
		}
		return nil, errors.Internal("Failed to get report", err)
	}

	var report entity.Report
	if err := doc.DataTo(&report); err != nil {
		return nil, errors.Internal("Failed to parse report data", err)
	}

	return &report, nil
}

func (r *firestoreReportRepository) List(ctx context.Context, filter repository.ReportFilter) ([]*entity.Report, error) {
	query := r.client.Collection("reports").Query

	if filter.Status != "" {
		query = query.Where("status", "==", string(filter.Status))
	}
	if filter.Category != "" {
		query = query.Where("category", "==", filter.Category)
	}
	if filter.Emergency != nil {
		query = query.Where("emergency", "==", *filter.Emergency)
	}

	query = query.OrderBy("createdAt", firestore.Desc)

	iter := query.Documents(ctx)
	var reports []*entity.Report

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to list reports", err)
		}

		var report entity.Report
		if err := doc.DataTo(&report); err != nil {
			return nil, errors.Internal("Failed to parse report data", err)
		}
		reports = append(reports, &report)
	}

	return reports, nil
}

func (r *firestoreReportRepository) Update(ctx context.Context, report *entity.Report) error {
	report.UpdatedAt = time.Now()

	_, err := r.client.Collection("reports").Doc(report.ID).Set(ctx, report)
	if err != nil {
		return errors.Internal("Failed to update report", err)
	}

	return nil
}

func (r *firestoreReportRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.Collection("reports").Doc(id).Delete(ctx)
	if err != nil {
		return errors.Internal("Failed to delete report", err)
	}

	return nil
}
