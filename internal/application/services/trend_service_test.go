package services

import (
	"testing"
	"time"

	"github.com/pulsekit/pulse-go/internal/domain/entities/engagement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func historySeries(scores ...int) []engagement.HistoryPoint {
	points := make([]engagement.HistoryPoint, len(scores))
	base := time.Now().UTC().Add(-time.Duration(len(scores)) * time.Hour)
	for i, score := range scores {
		points[i] = engagement.HistoryPoint{
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Score:     score,
		}
	}
	return points
}

func TestAnalyzeTrend_InsufficientData(t *testing.T) {
	assert.Equal(t, engagement.TrendInsufficientData, AnalyzeTrend("u", nil).Trend)
	assert.Equal(t, engagement.TrendInsufficientData, AnalyzeTrend("u", historySeries(50)).Trend)
}

func TestAnalyzeTrend_Improving(t *testing.T) {
	// Older window averages 50, recent window averages 60: +20%.
	series := historySeries(50, 50, 50, 50, 50, 50, 50, 50, 50, 50,
		60, 60, 60, 60, 60, 60, 60, 60, 60, 60)

	summary := AnalyzeTrend("u", series)

	assert.Equal(t, engagement.TrendImproving, summary.Trend)
	assert.Equal(t, 20, summary.ChangePercentage)
	assert.Equal(t, 60, summary.RecentAverage)
	assert.Equal(t, 50, summary.OlderAverage)
}

func TestAnalyzeTrend_Declining(t *testing.T) {
	series := historySeries(50, 50, 50, 50, 50, 50, 50, 50, 50, 50,
		40, 40, 40, 40, 40, 40, 40, 40, 40, 40)

	summary := AnalyzeTrend("u", series)

	assert.Equal(t, engagement.TrendDeclining, summary.Trend)
	assert.Equal(t, -20, summary.ChangePercentage)
}

func TestAnalyzeTrend_StableWithinTolerance(t *testing.T) {
	// +10% exactly is still stable; the threshold is strict.
	series := historySeries(50, 50, 50, 50, 50, 50, 50, 50, 50, 50,
		55, 55, 55, 55, 55, 55, 55, 55, 55, 55)

	summary := AnalyzeTrend("u", series)

	assert.Equal(t, engagement.TrendStable, summary.Trend)
	assert.Equal(t, 10, summary.ChangePercentage)
}

func TestAnalyzeTrend_ShortSeriesHasNoBaseline(t *testing.T) {
	// Ten points or fewer all land in the recent window; with no older
	// baseline the trend reads stable at zero change.
	series := historySeries(10, 90, 10, 90, 10)

	summary := AnalyzeTrend("u", series)

	assert.Equal(t, engagement.TrendStable, summary.Trend)
	assert.Equal(t, 0, summary.ChangePercentage)
	assert.Equal(t, 0, summary.OlderAverage)
}

func TestAnalyzeTrend_RecentWindowIsLastTen(t *testing.T) {
	series := historySeries(1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12)

	summary := AnalyzeTrend("u", series)

	require.Len(t, summary.DataPoints, 10)
	assert.Equal(t, 3, summary.DataPoints[0].Score)
	assert.Equal(t, 12, summary.DataPoints[9].Score)
	assert.Equal(t, 2, summary.OlderAverage) // mean of the first two points
}
