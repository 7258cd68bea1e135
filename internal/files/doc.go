// Package files locates gradebook exports on disk, reads them as UTF-8 text
// and writes report files.
//
// Discovery walks the data directory for exports whose name matches a
// configured pattern and orders them newest first. Reader decodes CSV
// exports (BOM, UTF-16 and Windows-1252 aware) and renders .xlsx exports as CSV.
// Manager writes reports atomically under the configured paths.
//
//	discovery := files.NewDiscovery(paths.DataDir)
//	exports, err := discovery.FindExports("", "Canvas", cfg.Reconcile.OutputSuffixes.All())
//	latest, ok := files.GetLatestFile(exports)
package files
