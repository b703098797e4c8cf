package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"gradguide/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoRows       = errors.New("该周期内所有课题均已达标")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 未达标名单导出为 Excel (.xlsx)，供教务线下催办
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportUnmetRequirements 导出周期内未达标名单为 Excel
	ExportUnmetRequirements(ctx context.Context, periodID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo        *repository.Repository
	requirement RequirementService
	logger      *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, requirement RequirementService, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, requirement: requirement, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportUnmetRequirements — 导出未达标名单为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 单 Sheet "未达标名单"
//   - 列：学生姓名 | 学号 | 课题 | 论文类型 | 导师 | 检查点 | 要求次数 | 已完成
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportUnmetRequirements(ctx context.Context, periodID string) (*bytes.Buffer, string, error) {
	period, err := s.repo.AcademicPeriod.GetByID(ctx, periodID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrPeriodNotFound
		}
		s.logger.Error("查询学业周期失败", zap.Error(err))
		return nil, "", err
	}

	rows, err := s.requirement.ListUnmet(ctx, periodID)
	if err != nil {
		return nil, "", err
	}
	if len(rows) == 0 {
		return nil, "", ErrExportNoRows
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "未达标名单"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	// 列宽
	widths := []float64{16, 16, 40, 12, 24, 10, 10, 10}
	for i, w := range widths {
		col := colName(i)
		f.SetColWidth(sheetName, col, col, w)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s — 指导未达标名单", period.Name))
	f.MergeCell(sheetName, "A1", cell(colName(len(widths)-1), 1))
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	headers := []string{"学生姓名", "学号", "课题", "论文类型", "导师", "检查点", "要求次数", "已完成"}
	row := 2
	for i, h := range headers {
		f.SetCellValue(sheetName, cell(colName(i), row), h)
		f.SetCellStyle(sheetName, cell(colName(i), row), cell(colName(i), row), headerStyle)
	}

	thesisTypeNames := map[string]string{"bachelor": "本科", "master": "硕士"}
	checkpointNames := map[string]string{"cp1": "检查点1", "cp2": "检查点2"}

	// 数据行
	row = 3
	for _, r := range rows {
		thesisType := r.ThesisType
		if name, ok := thesisTypeNames[r.ThesisType]; ok {
			thesisType = name
		}
		checkpoint := r.Checkpoint
		if name, ok := checkpointNames[r.Checkpoint]; ok {
			checkpoint = name
		}

		f.SetCellValue(sheetName, cell("A", row), r.StudentName)
		f.SetCellValue(sheetName, cell("B", row), r.StudentNIM)
		f.SetCellValue(sheetName, cell("C", row), r.Title)
		f.SetCellValue(sheetName, cell("D", row), thesisType)
		f.SetCellValue(sheetName, cell("E", row), r.AdvisorNames)
		f.SetCellValue(sheetName, cell("F", row), checkpoint)
		f.SetCellValue(sheetName, cell("G", row), r.Required)
		f.SetCellValue(sheetName, cell("H", row), r.Completed)
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("未达标名单_%s.xlsx", period.Name)
	return buf, filename, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
