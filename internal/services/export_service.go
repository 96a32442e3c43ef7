package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/confhub/proposal-service/internal/models"
	"github.com/confhub/proposal-service/internal/repositories"
)

const exportSheet = "Proposals"

// Export pages through proposals in fixed batches.
const exportBatchSize = 200

type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

// NewExportService creates the admin Excel export service.
func NewExportService(repo repositories.Repository, logger *slog.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

func (s *exportService) ProposalsWorkbook(ctx context.Context) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("remove default sheet: %w", err)
	}

	headers := []string{"ID", "Title", "Speaker", "Email", "Status", "Tags", "Average Rating", "Reviews", "Submitted At"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(exportSheet, cell, header); err != nil {
			return nil, err
		}
	}

	row := 2
	offset := 0
	for {
		proposals, _, err := s.repo.Proposal().List(ctx, repositories.ProposalFilters{
			Limit:  exportBatchSize,
			Offset: offset,
		})
		if err != nil {
			return nil, fmt.Errorf("list proposals for export: %w", err)
		}
		if len(proposals) == 0 {
			break
		}

		for _, p := range proposals {
			average, count, err := s.repo.Proposal().ReviewAggregates(ctx, p.ID)
			if err != nil {
				return nil, err
			}

			if err := s.writeRow(f, row, p, average, count); err != nil {
				return nil, err
			}
			row++
		}

		offset += exportBatchSize
	}

	s.logger.Info("Proposals exported", "rows", row-2)

	return f, nil
}

func (s *exportService) writeRow(f *excelize.File, row int, p *models.Proposal, average float64, reviewCount int64) error {
	speaker := ""
	email := ""
	if p.User != nil {
		speaker = p.User.Name
		email = p.User.Email
	}

	tagNames := make([]string, len(p.Tags))
	for i, tag := range p.Tags {
		tagNames[i] = tag.Name
	}

	values := []interface{}{
		p.ID,
		p.Title,
		speaker,
		email,
		string(p.Status),
		strings.Join(tagNames, ", "),
		average,
		reviewCount,
		p.CreatedAt.Format("2006-01-02 15:04:05"),
	}

	for i, value := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(exportSheet, cell, value); err != nil {
			return err
		}
	}

	return nil
}
