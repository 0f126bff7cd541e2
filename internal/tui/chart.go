// ABOUTME: ntcharts bar chart of a metric trend bucketed by local day.
// ABOUTME: Used by the trend command when --chart is set.
package tui

import (
	"sort"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"
	"github.com/harperreed/lifeos/internal/metrics"
)

// DayBucket is the mean of one day's points.
type DayBucket struct {
	Day   time.Time
	Mean  float64
	Count int
}

// BucketByDay averages points per day in loc, oldest first.
func BucketByDay(points []metrics.Point, loc *time.Location) []DayBucket {
	if loc == nil {
		loc = time.Local
	}
	sums := map[time.Time]*DayBucket{}
	for _, p := range points {
		t := p.RecordedAt.In(loc)
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
		b, ok := sums[day]
		if !ok {
			b = &DayBucket{Day: day}
			sums[day] = b
		}
		b.Mean += p.Value
		b.Count++
	}

	out := make([]DayBucket, 0, len(sums))
	for _, b := range sums {
		b.Mean /= float64(b.Count)
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out
}

// TrendChart draws daily means of points as vertical bars.
func TrendChart(points []metrics.Point, width, height int) string {
	width = max(width, 20)
	height = max(height, 6)

	chart := barchart.New(width, height)
	style := lipgloss.NewStyle().Foreground(colorHighlight)

	var bars []barchart.BarData
	for _, b := range BucketByDay(points, time.Local) {
		bars = append(bars, barchart.BarData{
			Label:  b.Day.Format("Mon 02"),
			Values: []barchart.BarValue{{Name: "mean", Value: b.Mean, Style: style}},
		})
	}
	if len(bars) == 0 {
		return mutedStyle.Render("no data")
	}

	chart.PushAll(bars)
	chart.Draw()
	return chart.View()
}
