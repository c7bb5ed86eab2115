package scraper

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMetricsSnapshotTracksCounters(t *testing.T) {
	before, err := MetricsSnapshot()
	require.NoError(t, err)
	for _, name := range []string{
		"propscrape_properties_total",
		"propscrape_load_attempts_total",
		"propscrape_retries_total",
		"propscrape_soft_blocks_total",
		"propscrape_failures_total",
	} {
		require.Contains(t, before, name)
	}

	TotalRetries.Inc()
	TotalSoftBlocks.Add(2)

	after, err := MetricsSnapshot()
	require.NoError(t, err)
	require.InDelta(t, before["propscrape_retries_total"]+1, after["propscrape_retries_total"], 1e-9)
	require.InDelta(t, before["propscrape_soft_blocks_total"]+2, after["propscrape_soft_blocks_total"], 1e-9)
}
