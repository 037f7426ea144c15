package client

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rcrowley/go-metrics"
)

// OpStats are the latency statistics of one operation
type OpStats struct {
	Op    string
	Count int64
	Mean  time.Duration
	P50   time.Duration
	P99   time.Duration
	Max   time.Duration
}

func (c *restClient) Stats() []OpStats {
	var out []OpStats
	c.registry.Each(func(name string, m interface{}) {
		timer, ok := m.(metrics.Timer)
		if !ok {
			return
		}
		snap := timer.Snapshot()
		ps := snap.Percentiles([]float64{0.5, 0.99})
		out = append(out, OpStats{
			Op:    name,
			Count: snap.Count(),
			Mean:  time.Duration(snap.Mean()),
			P50:   time.Duration(ps[0]),
			P99:   time.Duration(ps[1]),
			Max:   time.Duration(snap.Max()),
		})
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Op < out[j].Op })
	return out
}

// FormatStats renders statistics as a table
func FormatStats(stats []OpStats) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-14s %8s %12s %12s %12s %12s\n", "OPERATION", "COUNT", "MEAN", "P50", "P99", "MAX"))
	for _, s := range stats {
		sb.WriteString(fmt.Sprintf("%-14s %8d %12s %12s %12s %12s\n",
			s.Op, s.Count, s.Mean.Round(time.Microsecond), s.P50.Round(time.Microsecond),
			s.P99.Round(time.Microsecond), s.Max.Round(time.Microsecond)))
	}
	return sb.String()
}
