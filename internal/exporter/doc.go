// Package exporter renders reconciliation results as report files.
//
// Results are first turned into a Table (header plus rows) by one of the
// *Table functions, then written as CSV through CSVWriter or collected into
// an .xlsx Workbook with one sheet per section and a "Run" sheet describing
// the run. WriteChanges produces the plain-text change report.
//
// Example usage:
//
//	writer := exporter.NewCSVWriter(files.NewManager(paths, logger), logger)
//	err := writer.WriteSimpleCSV(path, exporter.SubmissionsTable(stats).Headers,
//		exporter.SubmissionsTable(stats).Records)
//
//	wb, err := exporter.NewWorkbook()
//	defer wb.Close()
//	err = wb.AddSheet("Changes", exporter.ChangesTable(diff.Deltas))
//	err = wb.AddRunSheet(report)
//	err = manager.WriteFile(workbookPath, wb.Write)
package exporter
