// Package export 生成文章的 PDF 成品文档
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"essay-duet-api/internal/domain/entity"
)

var tracer = otel.Tracer("export")

// PDFExporter 把完成的文章渲染为 PDF 文件
// 文档中始终使用参与者真名，匿名只作用于协作过程中的通知
type PDFExporter struct {
	outputDir string
}

// NewPDFExporter 创建 PDF 导出器
func NewPDFExporter(outputDir string) *PDFExporter {
	if outputDir == "" {
		outputDir = "essays"
	}
	return &PDFExporter{outputDir: outputDir}
}

// Export 渲染文章并写入输出目录，返回产物路径
func (e *PDFExporter) Export(ctx context.Context, essay *entity.Essay) (string, error) {
	_, span := tracer.Start(ctx, "export.PDFExporter.Export")
	span.SetAttributes(attribute.String("essay.id", essay.ID))
	defer span.End()

	if err := os.MkdirAll(e.outputDir, 0o755); err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	// 标题
	pdf.SetFont("Helvetica", "B", 24)
	pdf.SetTextColor(31, 71, 136)
	pdf.MultiCell(0, 12, essay.Topic, "", "C", false)
	pdf.Ln(4)

	// 创建日期
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(102, 102, 102)
	pdf.CellFormat(0, 6, "Created: "+essay.CreatedAt.Format("January 2, 2006"),
		"", 1, "C", false, 0, "")
	pdf.Ln(8)

	// 正文
	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(0, 0, 0)
	pdf.MultiCell(0, 6, essay.FullContent(), "", "L", false)
	pdf.Ln(8)

	// 参与者名单
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(153, 153, 153)
	pdf.CellFormat(0, 5, "Contributors:", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 5, fmt.Sprintf("1. %s (Opening)", essay.CreatorName),
		"", 1, "L", false, 0, "")
	if essay.Partner != nil {
		pdf.CellFormat(0, 5, fmt.Sprintf("2. %s (Continuation)", essay.Partner.PartnerName),
			"", 1, "L", false, 0, "")
	}

	path := filepath.Join(e.outputDir, essay.ID+".pdf")
	if err := pdf.OutputFileAndClose(path); err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to write pdf: %w", err)
	}
	return path, nil
}
