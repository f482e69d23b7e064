// Package fileutil walks local directory trees for the catalog.
//
// ScanDirectory is the single place where the local filesystem is traversed.
// It returns paths relative to the scanned root, joined with "/" on every
// platform, so they can be matched directly against compiled templates.
//
// Entries whose name starts with "." are never visited. A root that does not
// exist yields an empty result rather than an error, since an experiment whose
// output has not been produced yet is a normal situation. Errors below the
// root (permission denied on a subdirectory and similar) are collected in
// ScanResult.Errors and the walk carries on.
//
// Example:
//
//	result, err := fileutil.ScanDirectory("/scratch/exp", fileutil.ScanOptions{
//	    Recursive: true,
//	})
//	if err != nil {
//	    return err
//	}
//	for _, rel := range result.Files {
//	    fmt.Println(rel) // e.g. "2023/06/01/00/fc2023060100+006.grib"
//	}
package fileutil
