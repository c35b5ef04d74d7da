package handler

import (
	"github.com/labstack/echo/v4"

	"citywatch/internal/usecase"
	"citywatch/pkg/response"
)

type AdminHandler struct {
	reportUseCase *usecase.ReportUseCase
}

func NewAdminHandler(reportUseCase *usecase.ReportUseCase) *AdminHandler {
	return &AdminHandler{
		reportUseCase: reportUseCase,
	}
}

// ListReports returns every report with its creator resolved to name/email.
func (h *AdminHandler) ListReports(c echo.Context) error {
	reports, err := h.reportUseCase.ListReportsForAdmin(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, reports)
}
