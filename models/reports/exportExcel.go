package reports

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Sheet1"

// WriteReceiptWorkbook renders receipt rows as a spreadsheet. Every receipt
// report shares the row shape, so the union export and the per-table exports
// all funnel through here.
func WriteReceiptWorkbook(w io.Writer, rows []*ReceiptRow) error {
	f := excelize.NewFile()
	defer f.Close()
	if _, err := f.NewSheet(exportSheet); err != nil {
		return err
	}

	// Add headers
	f.SetCellValue(exportSheet, "A1", "Data")
	f.SetCellValue(exportSheet, "B1", "Hora")
	f.SetCellValue(exportSheet, "C1", "Cliente")
	f.SetCellValue(exportSheet, "D1", "Valor")
	f.SetCellValue(exportSheet, "E1", "Atividade")
	f.SetCellValue(exportSheet, "F1", "Forma Pgto")
	f.SetCellValue(exportSheet, "G1", "Tipo")
	f.SetCellValue(exportSheet, "H1", "Funcionario")
	f.SetCellValue(exportSheet, "I1", "Origem")

	// Add data
	for i, r := range rows {
		row := fmt.Sprint(i + 2)
		f.SetCellValue(exportSheet, "A"+row, r.Data)
		f.SetCellValue(exportSheet, "B"+row, r.Hora)
		f.SetCellValue(exportSheet, "C"+row, r.Cliente)
		f.SetCellValue(exportSheet, "D"+row, r.Valor.InexactFloat64())
		f.SetCellValue(exportSheet, "E"+row, r.Atividade)
		f.SetCellValue(exportSheet, "F"+row, r.FormaPgto)
		f.SetCellValue(exportSheet, "G"+row, r.TipoCliente)
		f.SetCellValue(exportSheet, "H"+row, r.Funcionario)
		f.SetCellValue(exportSheet, "I"+row, r.Origem)
	}

	return f.Write(w)
}

// WriteAttendanceWorkbook renders attendance events as a spreadsheet.
func WriteAttendanceWorkbook(w io.Writer, rows []*AttendanceRow) error {
	f := excelize.NewFile()
	defer f.Close()
	if _, err := f.NewSheet(exportSheet); err != nil {
		return err
	}

	// Add headers
	f.SetCellValue(exportSheet, "A1", "Data")
	f.SetCellValue(exportSheet, "B1", "Hora")
	f.SetCellValue(exportSheet, "C1", "Cliente")
	f.SetCellValue(exportSheet, "D1", "Tipo Acesso")
	f.SetCellValue(exportSheet, "E1", "Motivo")

	// Add data
	for i, r := range rows {
		row := fmt.Sprint(i + 2)
		f.SetCellValue(exportSheet, "A"+row, r.Data)
		f.SetCellValue(exportSheet, "B"+row, r.Hora)
		f.SetCellValue(exportSheet, "C"+row, r.Cliente)
		f.SetCellValue(exportSheet, "D"+row, r.TipoAcesso)
		f.SetCellValue(exportSheet, "E"+row, r.Motivo)
	}

	return f.Write(w)
}
