package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"needletrack/internal/domain"
)

// RosterHeader 患者名册导出表头（取每位患者最近一次治疗）
var RosterHeader = []string{
	"病歷號",
	"姓名",
	"性別",
	"床號",
	"組別",
	"治療時間",
	"拔針時間",
	"主治醫師",
	"總針數",
	"穴位",
}

const rosterSheetName = "患者名冊"

// PatientsWorkbook 生成患者名册 Excel 档
func PatientsWorkbook(patients []domain.Patient) ([]byte, error) {
	f := excelize.NewFile()
	// WriteTo 之前不能关档，出错路径各自 Close

	index, err := f.NewSheet(rosterSheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range RosterHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(rosterSheetName, cell, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(rosterSheetName, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
	}

	columnWidths := []float64{14, 14, 8, 10, 8, 18, 18, 14, 10, 40}
	for i := range RosterHeader {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(rosterSheetName, col, col, columnWidths[i]); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for rowIdx, p := range patients {
		row := rowIdx + 2 // 第 1 行是表头
		values := rosterRow(p)
		for colIdx, v := range values {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, row)
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to convert coordinates: %w", err)
			}
			if err := f.SetCellValue(rosterSheetName, cell, v); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func rosterRow(p domain.Patient) []any {
	values := []any{
		p.MedicalRecordNumber,
		p.Name,
		p.Gender,
		p.BedNumber,
		p.Team,
	}
	if s, ok := p.CurrentSession(); ok {
		values = append(values,
			s.StartTime,
			orNotRecorded(s.RemovalTime),
			orNotRecorded(s.AttendingPhysician),
			s.TotalNeedles,
			strings.Join(s.Acupoints, ", "),
		)
	} else {
		values = append(values, "", "", "", "", "")
	}
	return values
}
