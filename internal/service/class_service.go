package service

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/codetrio/codetrio-web/internal/model"
)

// ClassSource lists class summaries with their aggregated student counts.
// accessToken scopes the query to the caller where the source enforces
// row-level security.
type ClassSource interface {
	ListClassSummaries(ctx context.Context, accessToken string) ([]model.ClassSummary, error)
}

// ClassService handles class listing and export.
type ClassService struct {
	source ClassSource
	log    zerolog.Logger
}

// NewClassService creates a new ClassService.
func NewClassService(source ClassSource, log zerolog.Logger) *ClassService {
	return &ClassService{
		source: source,
		log:    log.With().Str("component", "class_service").Logger(),
	}
}

// List retrieves all classes visible to accessToken. A nil slice is never
// returned on success.
func (s *ClassService) List(ctx context.Context, accessToken string) ([]model.ClassSummary, error) {
	classes, err := s.source.ListClassSummaries(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	if classes == nil {
		classes = []model.ClassSummary{}
	}
	return classes, nil
}

const exportSheet = "Lớp học"

var exportHeader = []interface{}{"Tên lớp", "Mô tả", "Ngôn ngữ", "Số học sinh"}

// Export writes the class list as an xlsx workbook to w.
func (s *ClassService) Export(ctx context.Context, accessToken string, w io.Writer) error {
	classes, err := s.List(ctx, accessToken)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.log.Warn().Err(err).Msg("close workbook")
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, c := range classes {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{c.Name, c.DescriptionOr(""), c.Language, c.StudentCount}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
