package usecase

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"

	"citywatch/internal/domain/entity"
	"citywatch/internal/domain/repository"
	"citywatch/internal/domain/service"
	"citywatch/pkg/errors"
	"citywatch/pkg/logger"
)

const maxPhotosPerReport = 5

type ReportUseCase struct {
	reportRepo repository.ReportRepository
	userRepo   repository.UserRepository
	blobs      service.BlobStore
	geocoder   service.Geocoder
	notifier   service.Notifier
}

func NewReportUseCase(
	reportRepo repository.ReportRepository,
	userRepo repository.UserRepository,
	blobs service.BlobStore,
	geocoder service.Geocoder,
	notifier service.Notifier,
) *ReportUseCase {
	return &ReportUseCase{
		reportRepo: reportRepo,
		userRepo:   userRepo,
		blobs:      blobs,
		geocoder:   geocoder,
		notifier:   notifier,
	}
}

type PhotoUpload struct {
	Content     io.Reader
	ContentType string
}

type CreateReportInput struct {
	Title       string
	Description string
	Category    string
	Location    *entity.Location
	Anonymous   bool
	Emergency   bool
	Photos      []PhotoUpload
}

// violations checks the whole input and reports every problem at once.
func (in *CreateReportInput) violations() []string {
	var v []string
	if in.Title == "" {
		v = append(v, "title is required")
	}
	if in.Description == "" {
		v = append(v, "description is required")
	}
	if in.Category == "" {
		v = append(v, "category is required")
	} else if !entity.ValidCategory(in.Category) {
		v = append(v, "category must be one of the supported departments")
	}
	if in.Location == nil {
		v = append(v, "location is required")
	} else if !in.Location.Valid() {
		v = append(v, "location must have lat in [-90,90] and lon in [-180,180]")
	}
	if len(in.Photos) > maxPhotosPerReport {
		v = append(v, fmt.Sprintf("at most %d photos are allowed", maxPhotosPerReport))
	}
	return v
}

func (uc *ReportUseCase) CreateReport(ctx context.Context, creator entity.CreatedBy, input CreateReportInput) (*entity.Report, error) {
	if violations := input.violations(); len(violations) > 0 {
		return nil, errors.Validation(violations)
	}

	// Best-effort: a geocoder failure never fails the create.
	address := ""
	if resolved, err := uc.geocoder.ReverseGeocode(ctx, input.Location.Point()); err != nil {
		logger.Warn("Reverse geocoding failed for (%f, %f): %v", input.Location.Lat, input.Location.Lon, err)
	} else {
		address = resolved
	}

	photoIDs, err := uc.storePhotos(ctx, input.Photos)
	if err != nil {
		return nil, err
	}
	if photoIDs == nil {
		photoIDs = []string{}
	}

	report := &entity.Report{
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Location:    *input.Location,
		Address:     address,
		Photos:      photoIDs,
		Anonymous:   input.Anonymous,
		Emergency:   input.Emergency,
		Status:      entity.StatusPending,
		CreatedBy:   creator,
	}

	if err := uc.reportRepo.Create(ctx, report); err != nil {
		uc.discardBlobs(ctx, photoIDs)
		return nil, err
	}

	uc.notifyCreator(ctx, report, "Your report was received", func(name string) string {
		return fmt.Sprintf("<p>Hi %s,</p><p>We received your report titled \"<strong>%s</strong>\".</p><p>Current status: <strong>%s</strong></p><p>Thank you for helping improve your city!</p>", name, report.Title, report.Status)
	})

	return report, nil
}

// storePhotos writes uploads one at a time; the first failure aborts the whole
// create and removes anything already written, so no partial submission survives.
func (uc *ReportUseCase) storePhotos(ctx context.Context, photos []PhotoUpload) ([]string, error) {
	var ids []string
	for _, photo := range photos {
		id, err := uc.blobs.Store(ctx, photo.Content, photo.ContentType)
		if err != nil {
			uc.discardBlobs(ctx, ids)
			return nil, errors.Storage("Failed to store photo", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (uc *ReportUseCase) discardBlobs(ctx context.Context, ids []string) {
	for _, id := range ids {
		if err := uc.blobs.Delete(ctx, id); err != nil && !stderrors.Is(err, service.ErrBlobNotFound) {
			logger.Warn("Failed to clean up photo blob %s: %v", id, err)
		}
	}
}

func (uc *ReportUseCase) ListReports(ctx context.Context, filter repository.ReportFilter, viewerRole string) ([]*entity.Report, error) {
	reports, err := uc.reportRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	for i, report := range reports {
		reports[i] = concealCreator(report, viewerRole)
	}
	if reports == nil {
		reports = []*entity.Report{}
	}
	return reports, nil
}

func (uc *ReportUseCase) GetReport(ctx context.Context, id string, viewerRole string) (*entity.Report, error) {
	report, err := uc.reportRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return concealCreator(report, viewerRole), nil
}

// concealCreator hides who filed an anonymous-flagged report from non-admins.
// The creator kind stays visible; only the identity is blanked.
func concealCreator(report *entity.Report, viewerRole string) *entity.Report {
	if !report.Anonymous || viewerRole == entity.RoleAdmin {
		return report
	}
	hidden := *report
	hidden.CreatedBy.UserID = ""
	return &hidden
}

func (uc *ReportUseCase) GetPhoto(ctx context.Context, id string) (io.ReadCloser, string, error) {
	rc, contentType, err := uc.blobs.Open(ctx, id)
	if err != nil {
		if stderrors.Is(err, service.ErrBlobNotFound) {
			return nil, "", errors.NotFound("Photo", err)
		}
		return nil, "", errors.Internal("Failed to retrieve photo", err)
	}
	return rc, contentType, nil
}

type CreatorInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type AdminReportView struct {
	*entity.Report
	Creator CreatorInfo `json:"creator"`
}

// ListReportsForAdmin resolves each report's creator to a display name and
// email, falling back to an anonymous placeholder when unresolvable.
func (uc *ReportUseCase) ListReportsForAdmin(ctx context.Context) ([]*AdminReportView, error) {
	reports, err := uc.reportRepo.List(ctx, repository.ReportFilter{})
	if err != nil {
		return nil, err
	}

	views := make([]*AdminReportView, 0, len(reports))
	for _, report := range reports {
		creator := CreatorInfo{Name: "anonymous"}
		if report.CreatedBy.Identified() {
			if user, err := uc.userRepo.GetByID(ctx, report.CreatedBy.UserID); err == nil {
				creator = CreatorInfo{Name: user.Name, Email: user.Email}
			}
		}
		views = append(views, &AdminReportView{Report: report, Creator: creator})
	}

	return views, nil
}

func (uc *ReportUseCase) UpdateStatus(ctx context.Context, actorRole, id string, newStatus entity.ReportStatus) (*entity.Report, error) {
	if actorRole != entity.RoleAdmin {
		return nil, errors.Forbidden("Admin privileges required", nil)
	}
	if !entity.ValidStatus(newStatus) {
		return nil, errors.Validation([]string{"status must be one of: Pending, In Progress, Finished"})
	}

	report, err := uc.reportRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	report.Status = newStatus
	if err := uc.reportRepo.Update(ctx, report); err != nil {
		return nil, err
	}

	uc.notifyCreator(ctx, report, fmt.Sprintf("Your report is now %q", newStatus), func(name string) string {
		return fmt.Sprintf("<p>Hi %s,</p><p>Your report \"<strong>%s</strong>\" is now <strong>%s</strong>.</p>", name, report.Title, newStatus)
	})

	return report, nil
}

func (uc *ReportUseCase) DeleteReport(ctx context.Context, actorRole, id string) error {
	if actorRole != entity.RoleAdmin {
		return errors.Forbidden("Admin privileges required", nil)
	}

	report, err := uc.reportRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := uc.reportRepo.Delete(ctx, id); err != nil {
		return err
	}

	// Attached photos go with the report, best-effort.
	uc.discardBlobs(ctx, report.Photos)

	uc.notifyCreator(ctx, report, "Your report was deleted", func(name string) string {
		return fmt.Sprintf("<p>Hi %s,</p><p>Your report \"<strong>%s</strong>\" was deleted by an admin.</p>", name, report.Title)
	})

	return nil
}

// notifyCreator emails the registered creator, fire-and-forget.
func (uc *ReportUseCase) notifyCreator(ctx context.Context, report *entity.Report, subject string, body func(name string) string) {
	if !report.CreatedBy.Identified() {
		return
	}

	user, err := uc.userRepo.GetByID(ctx, report.CreatedBy.UserID)
	if err != nil {
		logger.Warn("Could not resolve creator %s for notification: %v", report.CreatedBy.UserID, err)
		return
	}
	if user.Email == "" {
		return
	}

	uc.notifier.Send(user.Email, subject, body(user.Name))
}
