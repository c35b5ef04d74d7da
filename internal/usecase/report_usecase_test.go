package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"citywatch/internal/domain/entity"
	"citywatch/internal/domain/repository"
	"citywatch/internal/domain/service"
	"citywatch/pkg/errors"
)

type fakeReportRepo struct {
	reports map[string]*entity.Report
	nextID  int
}

func newFakeReportRepo() *fakeReportRepo {
	return &fakeReportRepo{reports: make(map[string]*entity.Report)}
}

func (r *fakeReportRepo) Create(ctx context.Context, report *entity.Report) error {
	if report.ID == "" {
		r.nextID++
		report.ID = fmt.Sprintf("report-%d", r.nextID)
	}
	now := time.Now()
	report.CreatedAt = now
	report.UpdatedAt = now
	clone := *report
	r.reports[report.ID] = &clone
	return nil
}

func (r *fakeReportRepo) GetByID(ctx context.Context, id string) (*entity.Report, error) {
	report, ok := r.reports[id]
	if !ok {
		return nil, errors.NotFound("Report", nil)
	}
	clone := *report
	return &clone, nil
}

func (r *fakeReportRepo) List(ctx context.Context, filter repository.ReportFilter) ([]*entity.Report, error) {
	var out []*entity.Report
	for _, report := range r.reports {
		if filter.Status != "" && report.Status != filter.Status {
			continue
		}
		if filter.Category != "" && report.Category != filter.Category {
			continue
		}
		if filter.Emergency != nil && report.Emergency != *filter.Emergency {
			continue
		}
		clone := *report
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeReportRepo) Update(ctx context.Context, report *entity.Report) error {
	if _, ok := r.reports[report.ID]; !ok {
		return errors.NotFound("Report", nil)
	}
	report.UpdatedAt = time.Now()
	clone := *report
	r.reports[report.ID] = &clone
	return nil
}

func (r *fakeReportRepo) Delete(ctx context.Context, id string) error {
	delete(r.reports, id)
	return nil
}

type fakeUserRepo struct {
	users map[string]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*entity.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	if user.ID == "" {
		user.ID = fmt.Sprintf("user-%d", len(r.users)+1)
	}
	user.Email = strings.ToLower(user.Email)
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	clone := *user
	return &clone, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	for _, user := range r.users {
		if user.Email == strings.ToLower(email) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, errors.NotFound("User", nil)
}

func (r *fakeUserRepo) GetByVerificationCode(ctx context.Context, code string) (*entity.User, error) {
	for _, user := range r.users {
		if user.VerificationCode != "" && user.VerificationCode == code {
			clone := *user
			return &clone, nil
		}
	}
	return nil, errors.NotFound("User", nil)
}

func (r *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return errors.NotFound("User", nil)
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

type fakeBlobStore struct {
	blobs    map[string][]byte
	types    map[string]string
	nextID   int
	failAt   int // fail the Nth Store call (1-based); 0 disables
	storeNum int
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{blobs: make(map[string][]byte), types: make(map[string]string)}
}

func (b *fakeBlobStore) Store(ctx context.Context, r io.Reader, contentType string) (string, error) {
	b.storeNum++
	if b.failAt > 0 && b.storeNum == b.failAt {
		return "", fmt.Errorf("bucket unavailable")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	b.nextID++
	id := fmt.Sprintf("blob-%d", b.nextID)
	b.blobs[id] = data
	b.types[id] = contentType
	return id, nil
}

func (b *fakeBlobStore) Open(ctx context.Context, id string) (io.ReadCloser, string, error) {
	data, ok := b.blobs[id]
	if !ok {
		return nil, "", service.ErrBlobNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), b.types[id], nil
}

func (b *fakeBlobStore) Delete(ctx context.Context, id string) error {
	if _, ok := b.blobs[id]; !ok {
		return service.ErrBlobNotFound
	}
	delete(b.blobs, id)
	delete(b.types, id)
	return nil
}

func (b *fakeBlobStore) Close() error { return nil }

type fakeGeocoder struct {
	address string
	err     error
}

func (g *fakeGeocoder) ReverseGeocode(ctx context.Context, pt orb.Point) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	return g.address, nil
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type fakeNotifier struct {
	sent []sentMail
}

func (n *fakeNotifier) Send(to, subject, body string) {
	n.sent = append(n.sent, sentMail{To: to, Subject: subject, Body: body})
}

type reportFixture struct {
	uc       *ReportUseCase
	reports  *fakeReportRepo
	users    *fakeUserRepo
	blobs    *fakeBlobStore
	geocoder *fakeGeocoder
	notifier *fakeNotifier
}

func newReportFixture() *reportFixture {
	f := &reportFixture{
		reports:  newFakeReportRepo(),
		users:    newFakeUserRepo(),
		blobs:    newFakeBlobStore(),
		geocoder: &fakeGeocoder{address: "1 City Hall Square"},
		notifier: &fakeNotifier{},
	}
	f.uc = NewReportUseCase(f.reports, f.users, f.blobs, f.geocoder, f.notifier)
	return f
}

func validInput() CreateReportInput {
	return CreateReportInput{
		Title:       "Broken light",
		Description: "Pole #4 dark",
		Category:    "Public Lighting",
		Location:    &entity.Location{Lat: 40.64, Lon: 22.94},
	}
}

func TestCreateReport(t *testing.T) {
	f := newReportFixture()

	report, err := f.uc.CreateReport(context.Background(), entity.AnonymousCreator(), validInput())
	require.NoError(t, err)

	assert.NotEmpty(t, report.ID)
	assert.Equal(t, entity.StatusPending, report.Status)
	assert.Equal(t, "1 City Hall Square", report.Address)
	assert.Equal(t, []string{}, report.Photos)
	assert.Equal(t, entity.CreatorAnonymous, report.CreatedBy.Kind)
	assert.Empty(t, f.notifier.sent, "anonymous creator has no address to notify")
}

func TestCreateReportUniqueIDs(t *testing.T) {
	f := newReportFixture()

	first, err := f.uc.CreateReport(context.Background(), entity.AnonymousCreator(), validInput())
	require.NoError(t, err)
	second, err := f.uc.CreateReport(context.Background(), entity.AnonymousCreator(), validInput())
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
}

func TestCreateReportValidation(t *testing.T) {
	f := newReportFixture()

	_, err := f.uc.CreateReport(context.Background(), entity.AnonymousCreator(), CreateReportInput{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, "VALIDATION_ERROR"))

	appErr := err.(*errors.AppError)
	assert.Len(t, appErr.Details, 4, "title, description, category and location should all be reported")
	assert.Empty(t, f.reports.reports, "nothing may be persisted on validation failure")
}

func TestCreateReportRejectsOutOfRangeLocation(t *testing.T) {
	f := newReportFixture()

	input := validInput()
	input.Location = &entity.Location{Lat: 95, Lon: 22.94}

	_, err := f.uc.CreateReport(context.Background(), entity.AnonymousCreator(), input)
	require.Error(t, err)
	assert.True(t, errors.Is(err, "VALIDATION_ERROR"))
	assert.Empty(t, f.reports.reports)
}

func TestCreateReportTooManyPhotos(t *testing.T) {
	f := newReportFixture()

	input := validInput()
	for i := 0; i < 6; i++ {
		input.Photos = append(input.Photos, PhotoUpload{Content: strings.NewReader("x"), ContentType: "image/jpeg"})
	}

	_, err := f.uc.CreateReport(context.Background(), entity.AnonymousCreator(), input)
	require.Error(t, err)
	assert.True(t, errors.Is(err, "VALIDATION_ERROR"))
	assert.Empty(t, f.blobs.blobs)
}

func TestCreateReportGeocodeFailureTolerated(t *testing.T) {
	f := newReportFixture()
	f.geocoder.err = fmt.Errorf("geocoder timeout")

	report, err := f.uc.CreateReport(context.Background(), entity.AnonymousCreator(), validInput())
	require.NoError(t, err)

	assert.Equal(t, "", report.Address)
	assert.Equal(t, entity.StatusPending, report.Status)
}

func TestCreateReportStorageFailureAborts(t *testing.T) {
	f := newReportFixture()
	f.blobs.failAt = 2

	input := validInput()
	input.Photos = []PhotoUpload{
		{Content: strings.NewReader("first"), ContentType: "image/jpeg"},
		{Content: strings.NewReader("second"), ContentType: "image/png"},
	}

	_, err := f.uc.CreateReport(context.Background(), entity.AnonymousCreator(), input)
	require.Error(t, err)
	assert.True(t, errors.Is(err, "STORAGE_ERROR"))
	assert.Empty(t, f.reports.reports, "no partial report may survive")
	assert.Empty(t, f.blobs.blobs, "the already-stored photo must be cleaned up")
}

func TestCreateReportPhotoRoundTrip(t *testing.T) {
	f := newReportFixture()

	input := validInput()
	input.Photos = []PhotoUpload{
		{Content: strings.NewReader("photo-a"), ContentType: "image/jpeg"},
		{Content: strings.NewReader("photo-b"), ContentType: "image/png"},
	}

	report, err := f.uc.CreateReport(context.Background(), entity.AnonymousCreator(), input)
	require.NoError(t, err)
	require.Len(t, report.Photos, 2)

	rc, contentType, err := f.uc.GetPhoto(context.Background(), report.Photos[0])
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "photo-a", string(data))
	assert.Equal(t, "image/jpeg", contentType)
}

func TestCreateReportNotifiesCreator(t *testing.T) {
	f := newReportFixture()
	f.users.users["user-1"] = &entity.User{ID: "user-1", Name: "Maria", Email: "maria@example.com"}

	_, err := f.uc.CreateReport(context.Background(), entity.IdentifiedBy("user-1"), validInput())
	require.NoError(t, err)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "maria@example.com", f.notifier.sent[0].To)
	assert.Contains(t, f.notifier.sent[0].Body, "Broken light")
}

func TestGetPhotoNotFound(t *testing.T) {
	f := newReportFixture()

	_, _, err := f.uc.GetPhoto(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, "NOT_FOUND"))
}

func TestGetReportNotFound(t *testing.T) {
	f := newReportFixture()

	_, err := f.uc.GetReport(context.Background(), "missing", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, "NOT_FOUND"))
}

func TestGetReportIdempotent(t *testing.T) {
	f := newReportFixture()

	created, err := f.uc.CreateReport(context.Background(), entity.AnonymousCreator(), validInput())
	require.NoError(t, err)

	first, err := f.uc.GetReport(context.Background(), created.ID, "")
	require.NoError(t, err)
	second, err := f.uc.GetReport(context.Background(), created.ID, "")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGetReportConcealsAnonymousCreator(t *testing.T) {
	f := newReportFixture()

	input := validInput()
	input.Anonymous = true

	created, err := f.uc.CreateReport(context.Background(), entity.IdentifiedBy("user-7"), input)
	require.NoError(t, err)

	public, err := f.uc.GetReport(context.Background(), created.ID, "")
	require.NoError(t, err)
	assert.Empty(t, public.CreatedBy.UserID)

	adminView, err := f.uc.GetReport(context.Background(), created.ID, entity.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, "user-7", adminView.CreatedBy.UserID)
}

func TestListReportsFilters(t *testing.T) {
	f := newReportFixture()
	ctx := context.Background()

	lighting := validInput()
	_, err := f.uc.CreateReport(ctx, entity.AnonymousCreator(), lighting)
	require.NoError(t, err)

	waste := validInput()
	waste.Category = "Waste Management"
	waste.Emergency = true
	_, err = f.uc.CreateReport(ctx, entity.AnonymousCreator(), waste)
	require.NoError(t, err)

	all, err := f.uc.ListReports(ctx, repository.ReportFilter{}, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byCategory, err := f.uc.ListReports(ctx, repository.ReportFilter{Category: "Waste Management"}, "")
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.True(t, byCategory[0].Emergency)

	emergency := false
	calm, err := f.uc.ListReports(ctx, repository.ReportFilter{Emergency: &emergency}, "")
	require.NoError(t, err)
	require.Len(t, calm, 1)
	assert.Equal(t, "Public Lighting", calm[0].Category)

	byStatus, err := f.uc.ListReports(ctx, repository.ReportFilter{Status: entity.StatusFinished}, "")
	require.NoError(t, err)
	assert.Empty(t, byStatus)
}

func TestUpdateStatus(t *testing.T) {
	f := newReportFixture()
	f.users.users["user-1"] = &entity.User{ID: "user-1", Name: "Maria", Email: "maria@example.com"}
	ctx := context.Background()

	created, err := f.uc.CreateReport(ctx, entity.IdentifiedBy("user-1"), validInput())
	require.NoError(t, err)
	f.notifier.sent = nil

	time.Sleep(10 * time.Millisecond)

	updated, err := f.uc.UpdateStatus(ctx, entity.RoleAdmin, created.ID, entity.StatusFinished)
	require.NoError(t, err)

	assert.Equal(t, entity.StatusFinished, updated.Status)
	assert.True(t, updated.UpdatedAt.After(created.CreatedAt))

	require.Len(t, f.notifier.sent, 1)
	assert.Contains(t, f.notifier.sent[0].Subject, "Finished")
}

func TestUpdateStatusInvalidValue(t *testing.T) {
	f := newReportFixture()
	ctx := context.Background()

	created, err := f.uc.CreateReport(ctx, entity.AnonymousCreator(), validInput())
	require.NoError(t, err)

	_, err = f.uc.UpdateStatus(ctx, entity.RoleAdmin, created.ID, "Resolved")
	require.Error(t, err)
	assert.True(t, errors.Is(err, "VALIDATION_ERROR"))

	stored, err := f.uc.GetReport(ctx, created.ID, entity.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPending, stored.Status, "a rejected transition must not change the stored report")
}

func TestUpdateStatusRequiresAdmin(t *testing.T) {
	f := newReportFixture()
	ctx := context.Background()

	created, err := f.uc.CreateReport(ctx, entity.AnonymousCreator(), validInput())
	require.NoError(t, err)

	_, err = f.uc.UpdateStatus(ctx, entity.RoleUser, created.ID, entity.StatusFinished)
	require.Error(t, err)
	assert.True(t, errors.Is(err, "FORBIDDEN"))
}

func TestUpdateStatusNotFound(t *testing.T) {
	f := newReportFixture()

	_, err := f.uc.UpdateStatus(context.Background(), entity.RoleAdmin, "missing", entity.StatusFinished)
	require.Error(t, err)
	assert.True(t, errors.Is(err, "NOT_FOUND"))
}

func TestDeleteReport(t *testing.T) {
	f := newReportFixture()
	f.users.users["user-1"] = &entity.User{ID: "user-1", Name: "Maria", Email: "maria@example.com"}
	ctx := context.Background()

	input := validInput()
	input.Photos = []PhotoUpload{{Content: strings.NewReader("pic"), ContentType: "image/jpeg"}}

	created, err := f.uc.CreateReport(ctx, entity.IdentifiedBy("user-1"), input)
	require.NoError(t, err)
	f.notifier.sent = nil

	err = f.uc.DeleteReport(ctx, entity.RoleAdmin, created.ID)
	require.NoError(t, err)

	_, err = f.uc.GetReport(ctx, created.ID, entity.RoleAdmin)
	assert.True(t, errors.Is(err, "NOT_FOUND"))
	assert.Empty(t, f.blobs.blobs, "attached photos go with the report")

	require.Len(t, f.notifier.sent, 1)
	assert.Contains(t, f.notifier.sent[0].Subject, "deleted")
}

func TestDeleteReportRequiresAdmin(t *testing.T) {
	f := newReportFixture()
	ctx := context.Background()

	created, err := f.uc.CreateReport(ctx, entity.AnonymousCreator(), validInput())
	require.NoError(t, err)

	err = f.uc.DeleteReport(ctx, entity.RoleUser, created.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, "FORBIDDEN"))
}

func TestDeleteReportNotFound(t *testing.T) {
	f := newReportFixture()

	err := f.uc.DeleteReport(context.Background(), entity.RoleAdmin, "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, "NOT_FOUND"))
}

func TestListReportsForAdminResolvesCreators(t *testing.T) {
	f := newReportFixture()
	f.users.users["user-1"] = &entity.User{ID: "user-1", Name: "Maria", Email: "maria@example.com"}
	ctx := context.Background()

	_, err := f.uc.CreateReport(ctx, entity.IdentifiedBy("user-1"), validInput())
	require.NoError(t, err)
	_, err = f.uc.CreateReport(ctx, entity.AnonymousCreator(), validInput())
	require.NoError(t, err)

	views, err := f.uc.ListReportsForAdmin(ctx)
	require.NoError(t, err)
	require.Len(t, views, 2)

	byName := make(map[string]string)
	for _, view := range views {
		byName[view.Creator.Name] = view.Creator.Email
	}
	assert.Equal(t, "maria@example.com", byName["Maria"])
	assert.Contains(t, byName, "anonymous")
	assert.Equal(t, "", byName["anonymous"])
}
