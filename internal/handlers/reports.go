package handlers

import (
	"context"
	"encoding/json"
	"log"

	"github.com/sowhat1234/yazamutforum/internal/service"
)

type ReportHandler struct {
	svc *service.ReportService
	log *log.Logger
}

func NewReportHandler(svc *service.ReportService, log *log.Logger) *ReportHandler {
	return &ReportHandler{svc: svc, log: log}
}

func (h *ReportHandler) Register(rt *Router) {
	rt.Mutation("report.create", h.SubmitReport)
	rt.ProtectedQuery("report.getAll", h.ListReports)
	rt.Mutation("report.close", h.CloseReport)
}

// SubmitReport files a report on an idea or comment
func (h *ReportHandler) SubmitReport(ctx context.Context, userID string, input json.RawMessage) (any, error) {
	in, err := decode[service.CreateReportInput](input)
	if err != nil {
		return nil, err
	}
	return h.svc.Create(ctx, userID, in)
}

// ListReports shows all reports (admin only)
func (h *ReportHandler) ListReports(ctx context.Context, userID string, _ json.RawMessage) (any, error) {
	return h.svc.GetAll(ctx, userID)
}

// CloseReport closes a report (admin only)
func (h *ReportHandler) CloseReport(ctx context.Context, userID string, input json.RawMessage) (any, error) {
	in, err := decode[idInput](input)
	if err != nil {
		return nil, err
	}
	if err := h.svc.Close(ctx, userID, in.ID); err != nil {
		return nil, err
	}
	h.log.Printf("report %s closed by %s", in.ID, userID)
	return success, nil
}
