package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/aicte-approval-api/internal/dto"
	"github.com/noah-isme/aicte-approval-api/internal/models"
	appErrors "github.com/noah-isme/aicte-approval-api/pkg/errors"
	"github.com/noah-isme/aicte-approval-api/pkg/export"
)

type trackerProvider interface {
	Tracker(ctx context.Context, actor models.Actor) (*dto.TrackerView, error)
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
	Extension() string
}

var trackerHeaders = []string{
	"Application Number", "Type", "Status", "Institution", "Submitted", "Current Stage", "Verification %", "Latest Recommendation",
}

// ExportService renders the tracker view as a downloadable file.
type ExportService struct {
	tracker   trackerProvider
	renderers map[dto.ExportFormat]datasetRenderer
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService constructs the exporter with CSV and PDF renderers.
func NewExportService(tracker trackerProvider, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		tracker: tracker,
		renderers: map[dto.ExportFormat]datasetRenderer{
			dto.ExportCSV: export.NewCSVExporter(),
			dto.ExportPDF: export.NewPDFExporter(),
		},
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// ExportTracker renders the actor's tracker view in the requested format.
func (s *ExportService) ExportTracker(ctx context.Context, actor models.Actor, format dto.ExportFormat) (*dto.ExportResult, error) {
	format = dto.ExportFormat(strings.ToLower(strings.TrimSpace(string(format))))
	if format == "" {
		format = dto.ExportCSV
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	view, err := s.tracker.Tracker(ctx, actor)
	if err != nil {
		return nil, err
	}

	now := s.now()
	dataset := BuildTrackerDataset(view, now)
	payload, err := renderer.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	s.logger.Info("tracker exported",
		zap.String("actor_id", actor.UserID),
		zap.String("format", string(format)),
		zap.Int("rows", len(dataset.Rows)))
	return &dto.ExportResult{
		FileName:    fmt.Sprintf("application_tracker_%s.%s", now.Format("20060102_150405"), renderer.Extension()),
		ContentType: renderer.ContentType(),
		Data:        payload,
	}, nil
}

// BuildTrackerDataset flattens tracker entries into export rows.
func BuildTrackerDataset(view *dto.TrackerView, generatedAt time.Time) export.Dataset {
	dataset := export.Dataset{
		Title:       "Application Tracker",
		GeneratedAt: generatedAt,
		Headers:     trackerHeaders,
	}
	if view == nil {
		return dataset
	}
	rows := make([]map[string]string, 0, len(view.Entries))
	for _, entry := range view.Entries {
		submitted := ""
		if entry.SubmittedAt != nil {
			submitted = entry.SubmittedAt.UTC().Format("2006-01-02")
		}
		rows = append(rows, map[string]string{
			"Application Number":    entry.ApplicationNumber,
			"Type":                  string(entry.Type),
			"Status":                string(entry.Status),
			"Institution":           entry.InstitutionID,
			"Submitted":             submitted,
			"Current Stage":         entry.CurrentStage,
			"Verification %":        strconv.Itoa(entry.VerificationProgress),
			"Latest Recommendation": string(entry.LatestRecommendation),
		})
	}
	dataset.Rows = rows
	return dataset
}
