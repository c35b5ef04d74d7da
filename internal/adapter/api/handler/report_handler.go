package handler

import (
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"citywatch/internal/domain/entity"
	"citywatch/internal/domain/repository"
	"citywatch/internal/usecase"
	"citywatch/pkg/errors"
	"citywatch/pkg/response"
)

type ReportHandler struct {
	reportUseCase *usecase.ReportUseCase
}

func NewReportHandler(reportUseCase *usecase.ReportUseCase) *ReportHandler {
	return &ReportHandler{
		reportUseCase: reportUseCase,
	}
}

// CreateReport accepts a multipart form: title, description, category,
// location (JSON {lat,lon}), anonymous, emergency, photos[0..5].
func (h *ReportHandler) CreateReport(c echo.Context) error {
	input := usecase.CreateReportInput{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Category:    c.FormValue("category"),
		Anonymous:   c.FormValue("anonymous") == "true",
		Emergency:   c.FormValue("emergency") == "true",
	}

	if raw := c.FormValue("location"); raw != "" {
		var parsed struct {
			Lat *float64 `json:"lat"`
			Lon *float64 `json:"lon"`
		}
		if err := json.Unmarshal([]byte(raw), &parsed); err == nil && parsed.Lat != nil && parsed.Lon != nil {
			input.Location = &entity.Location{Lat: *parsed.Lat, Lon: *parsed.Lon}
		}
	}

	files, err := photoFiles(c)
	if err != nil {
		return response.Error(c, errors.BadRequest("Malformed multipart form", err))
	}

	for _, fh := range files {
		src, err := fh.Open()
		if err != nil {
			return response.Error(c, errors.BadRequest("Unable to read uploaded photo", err))
		}
		defer src.Close()

		input.Photos = append(input.Photos, usecase.PhotoUpload{
			Content:     src,
			ContentType: fh.Header.Get("Content-Type"),
		})
	}

	creator := entity.AnonymousCreator()
	if uid := getUserIDFromContext(c); uid != "" {
		creator = entity.IdentifiedBy(uid)
	}

	report, err := h.reportUseCase.CreateReport(c.Request().Context(), creator, input)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, report)
}

func photoFiles(c echo.Context) ([]*multipart.FileHeader, error) {
	form, err := c.MultipartForm()
	if err != nil {
		if err == http.ErrNotMultipart || err == http.ErrMissingBoundary {
			return nil, nil
		}
		return nil, err
	}
	return form.File["photos"], nil
}

func (h *ReportHandler) ListReports(c echo.Context) error {
	filter := repository.ReportFilter{
		Status:   entity.ReportStatus(c.QueryParam("status")),
		Category: c.QueryParam("category"),
	}

	if raw := c.QueryParam("emergency"); raw != "" {
		emergency, err := strconv.ParseBool(raw)
		if err != nil {
			return response.Error(c, errors.BadRequest("Invalid emergency value", err))
		}
		filter.Emergency = &emergency
	}

	reports, err := h.reportUseCase.ListReports(c.Request().Context(), filter, getRoleFromContext(c))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, reports)
}

func (h *ReportHandler) GetReport(c echo.Context) error {
	report, err := h.reportUseCase.GetReport(c.Request().Context(), c.Param("id"), getRoleFromContext(c))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, report)
}

func (h *ReportHandler) GetPhoto(c echo.Context) error {
	rc, contentType, err := h.reportUseCase.GetPhoto(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	defer rc.Close()

	return c.Stream(http.StatusOK, contentType, rc)
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *ReportHandler) UpdateStatus(c echo.Context) error {
	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	report, err := h.reportUseCase.UpdateStatus(c.Request().Context(), getRoleFromContext(c), c.Param("id"), entity.ReportStatus(req.Status))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, report)
}

func (h *ReportHandler) DeleteReport(c echo.Context) error {
	if err := h.reportUseCase.DeleteReport(c.Request().Context(), getRoleFromContext(c), c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"message": "Report deleted"})
}

func getUserIDFromContext(c echo.Context) string {
	if uid, ok := c.Get("uid").(string); ok {
		return uid
	}
	return ""
}

func getRoleFromContext(c echo.Context) string {
	if role, ok := c.Get("role").(string); ok {
		return role
	}
	return ""
}
