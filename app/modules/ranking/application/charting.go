package rankingservice

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/spit-hierarchy/spit-backend/app/shared"
)

// PositionChart produces a PNG line chart of a rapper's dynamic-position
// history within a ranking, newest snapshot rightmost.
func (s *RankingService) PositionChart(ctx context.Context, rankingID shared.RankingID, rapperID shared.RapperID) ([]byte, error) {
	history, err := s.repo.PositionHistory(ctx, rankingID, rapperID)
	if err != nil {
		return nil, fmt.Errorf("failed to load position history: %w", err)
	}

	if len(history) == 0 {
		return renderNoDataPlaceholder()
	}

	xValues := make([]time.Time, len(history))
	yValues := make([]float64, len(history))
	for i, entry := range history {
		xValues[i] = entry.SnapshotAt
		yValues[i] = float64(entry.DynamicPosition)
	}

	mainSeries := chart.TimeSeries{
		Name:    "Position History",
		XValues: xValues,
		YValues: yValues,
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("d4a017"),
			StrokeWidth: 2,
			DotWidth:    4,
			DotColor:    drawing.ColorFromHex("1b1b1b"),
		},
	}

	graph := chart.Chart{
		Width:  800,
		Height: 400,
		XAxis: chart.XAxis{
			Name:           "Date",
			ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01-02"),
		},
		YAxis: chart.YAxis{
			Name: "Position",
			Range: &chart.ContinuousRange{
				Descending: true, // invert so #1 is at the top
			},
		},
		Series: []chart.Series{mainSeries},
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}

	return buffer.Bytes(), nil
}

func renderNoDataPlaceholder() ([]byte, error) {
	graph := chart.Chart{
		Width:  800,
		Height: 400,
		Series: []chart.Series{
			chart.ContinuousSeries{
				XValues: []float64{0, 1},
				YValues: []float64{0, 0},
				Style: chart.Style{
					StrokeColor: drawing.ColorFromHex("cccccc"),
					StrokeWidth: 1,
				},
			},
		},
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render placeholder chart: %w", err)
	}
	return buffer.Bytes(), nil
}
