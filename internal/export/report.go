package export

import (
	"fmt"

	"github.com/gyeh/clinicload/internal/model"
)

// ReportFileName is the billing report's file name.
const ReportFileName = "LCH_Billing_Report.xlsx"

const reportSheet = "Billing Report"

// WriteReport writes the billing report result set to path.
func WriteReport(path string, rs *model.ResultSet) error {
	if rs == nil {
		return fmt.Errorf("write report: no result set")
	}
	return WriteWorkbook(path, reportSheet, rs.Columns, rs.Rows)
}
