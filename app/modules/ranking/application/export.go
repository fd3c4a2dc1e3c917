package rankingservice

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/spit-hierarchy/spit-backend/app/shared"
)

const standingsSheet = "Standings"

// ExportStandings renders the current ranking view as an xlsx workbook.
func (s *RankingService) ExportStandings(ctx context.Context, rankingID shared.RankingID) ([]byte, error) {
	view, err := s.GetRankingView(ctx, rankingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ranking view for export: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(standingsSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create standings sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Position", "Rapper", "Weighted Votes", "Delta", "24h Velocity", "Hot", "Editorial Position", "Reason"}
	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to address header cell: %w", err)
		}
		if err := f.SetCellValue(standingsSheet, cell, h); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for row, entry := range view.Entries {
		values := []any{
			entry.DynamicPosition,
			entry.RapperName,
			entry.TotalVotes,
			entry.PositionDelta,
			entry.Velocity24h,
			entry.Hot,
			entry.EditorialPos,
			entry.Reason,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, fmt.Errorf("failed to address cell: %w", err)
			}
			if err := f.SetCellValue(standingsSheet, cell, v); err != nil {
				return nil, fmt.Errorf("failed to write standings row: %w", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}
