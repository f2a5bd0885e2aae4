package export

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"essay-duet-api/internal/domain/entity"
)

func completedEssay() *entity.Essay {
	essay := entity.NewEssay("creator", "Alice", "The Old Lighthouse", false)
	essay.OpeningContent = "it began at dusk and the light held"
	essay.ContinuationContent = "the waves rose higher still"
	essay.Status = entity.EssayStatusComplete
	essay.Partner = entity.NewPartner(essay.ID, "partner", "Bob", true)
	return essay
}

func TestExportWritesPDF(t *testing.T) {
	dir := t.TempDir()
	exporter := NewPDFExporter(dir)
	essay := completedEssay()

	path, err := exporter.Export(context.Background(), essay)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, essay.ID+".pdf"), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestExportWithoutPartner(t *testing.T) {
	exporter := NewPDFExporter(t.TempDir())
	essay := entity.NewEssay("creator", "Alice", "Solo Draft", false)
	essay.OpeningContent = "it began at dusk"

	path, err := exporter.Export(context.Background(), essay)
	require.NoError(t, err)
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestExportCreatesOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "essays")
	exporter := NewPDFExporter(dir)

	path, err := exporter.Export(context.Background(), completedEssay())
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))
}
