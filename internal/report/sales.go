// Package report builds spreadsheet exports for backoffice.
package report

import (
	"database/sql/driver"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"winsales/internal/models"
)

const SalesSheet = "Ventas"

var salesHeader = []interface{}{
	"Fecha", "Cliente", "DNI", "Teléfono", "Correo", "Dirección", "Tipo de vivienda",
	"Distrito", "Provincia", "Departamento", "Operador", "Plan", "Precio", "Score",
	"Estado solicitud", "Estado orden", "ID externo", "N° contrato", "Instalación", "Asesor",
}

func nullText(s driver.Valuer) interface{} {
	v, _ := s.Value()
	if v == nil {
		return ""
	}
	return v
}

func dateCell(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

func saleRow(s models.Sale, loc *time.Location) []interface{} {
	installation := ""
	if s.InstallationDate.Valid {
		installation = s.InstallationDate.Time.Format("2006-01-02")
	}
	var score interface{} = ""
	if s.Score.Valid {
		score = s.Score.Int32
	}
	return []interface{}{
		dateCell(s.CreatedAt, loc),
		s.FullName,
		s.DNI,
		s.Phone,
		nullText(s.Email),
		s.Address,
		models.AddressTypeLabel(s.AddressType),
		s.District,
		s.Province,
		s.Department,
		nullText(s.OperatorName),
		nullText(s.PlanName),
		s.Price.InexactFloat64(),
		score,
		models.GetRequestStatusDisplay(s.RequestStatus).DisplayName,
		models.GetOrderStatusDisplay(s.OrderStatus).DisplayName,
		nullText(s.ExternalID),
		nullText(s.ContractNumber),
		installation,
		nullText(s.UserName),
	}
}

// WriteSalesXLSX writes one row per sale under a bold header row.
func WriteSalesXLSX(w io.Writer, sales []models.Sale, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SalesSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#1F4E78"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	priceStyle, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return fmt.Errorf("price style: %w", err)
	}

	if err := f.SetSheetRow(SalesSheet, "A1", &salesHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(salesHeader))
	if err := f.SetCellStyle(SalesSheet, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	if err := f.SetColWidth(SalesSheet, "A", lastCol, 18); err != nil {
		return fmt.Errorf("column width: %w", err)
	}

	for i, s := range sales {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := saleRow(s, loc)
		if err := f.SetSheetRow(SalesSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if len(sales) > 0 {
		priceCol, _ := excelize.ColumnNumberToName(13)
		if err := f.SetCellStyle(SalesSheet, priceCol+"2", fmt.Sprintf("%s%d", priceCol, len(sales)+1), priceStyle); err != nil {
			return fmt.Errorf("style prices: %w", err)
		}
	}

	return f.Write(w)
}

// SalesFilename names an export taken at now.
func SalesFilename(now time.Time) string {
	return fmt.Sprintf("ventas-%s.xlsx", now.Format("20060102-1504"))
}
