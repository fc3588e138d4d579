package cli

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/shelf/internal/core/domain"
)

func TestSummaryCmd_NoRuns(t *testing.T) {
	defer setupPipelineTest(&mockPipeline{})()

	out, err := execute(t, "summary")

	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded yet.")
}

func TestSummaryCmd_RendersLastRun(t *testing.T) {
	last := domain.NewRunSummary("run-7", domain.StageBuild, time.Date(2024, 5, 6, 4, 8, 9, 0, time.UTC))
	last.BlocksParsed = 12
	last.ProductsIngested = 3
	last.Drop(domain.DropSpam)
	last.Backup = "backups/catalog.20240506T040809Z.run-7.json"
	defer setupPipelineTest(&mockPipeline{last: last})()

	out, err := execute(t, "summary")

	require.NoError(t, err)
	assert.Contains(t, out, "Run run-7 (build)")
	assert.Contains(t, out, "parsed 12")
	assert.Contains(t, out, "spam 1")
	assert.Contains(t, out, "backups/catalog.20240506T040809Z.run-7.json")
}

func TestSummaryCmd_JSON(t *testing.T) {
	last := domain.NewRunSummary("run-8", domain.StageRecategorise, time.Date(2024, 5, 6, 4, 8, 9, 0, time.UTC))
	last.ProductsChanged = 4
	defer setupPipelineTest(&mockPipeline{last: last})()
	defer func() { summaryJSON = false }()

	out, err := execute(t, "summary", "--json")

	require.NoError(t, err)
	var got domain.RunSummary
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "run-8", got.RunID)
	assert.Equal(t, domain.StageRecategorise, got.Stage)
	assert.Equal(t, 4, got.ProductsChanged)
}
