package reports

import (
	"context"

	"github.com/melsolucoesdeinformatica-prog/melfitness-backend/models"
	"github.com/melsolucoesdeinformatica-prog/melfitness-backend/utils"
)

// AttendanceRow carries no monetary fields; access type and reason replace
// amount/payment method.
type AttendanceRow struct {
	Data       string `json:"data"`
	Hora       string `json:"hora"`
	Cliente    string `json:"cliente"`
	TipoAcesso string `json:"tipo_acesso"`
	Motivo     string `json:"motivo"`
}

// AttendanceReport projects the frequencia access log. The table is optional
// in older deployments and degrades to an empty report.
func (e *Engine) AttendanceReport(ctx context.Context, gymIds []int, period *models.Period) ([]*AttendanceRow, error) {
	if len(gymIds) == 0 {
		return nil, utils.ErrInvalidGymSet
	}

	sqlT := `
		SELECT
			DATE_FORMAT(data, '%Y-%m-%d') AS data,
			TIME_FORMAT(hora, '%H:%i:%s') AS hora,
			COALESCE(cliente, '') AS cliente,
			COALESCE(tipo_acesso, '') AS tipo_acesso,
			COALESCE(motivo, '') AS motivo
		FROM frequencia
		WHERE id_academia IN ?
		{{- if .period }}
		AND data BETWEEN ? AND ?
		{{- end }}
		ORDER BY data DESC, hora DESC`

	sql, err := utils.ExecTemplate(sqlT, map[string]interface{}{"period": period != nil})
	if err != nil {
		return nil, err
	}
	args := []interface{}{gymIds}
	if period != nil {
		args = append(args, period.Start, period.End)
	}

	rows := []*AttendanceRow{}
	if err := e.db.WithContext(ctx).Raw(sql, args...).Scan(&rows).Error; err != nil {
		if isMissingTableErr(err) {
			e.warnMissingTable("AttendanceReport", "frequencia", err)
			return []*AttendanceRow{}, nil
		}
		return nil, e.storeErr(err)
	}
	return rows, nil
}
