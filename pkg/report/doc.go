// Package report handles the CSV edges of a batch run: decoding package
// requests from input files and encoding result records to output files.
//
// # Input Format
//
// Input is CSV with at least two columns per row:
//
//	Package Path,Package Type
//	pypi-local/requests/2.31.0,python
//	npm-registry/@angular/core/15.2.0,npm
//	maven-central/org/apache/commons/commons-lang3/3.12.0,maven
//
// A header row is optional: the first row is treated as a header when its
// type column is not a recognized package type. Rows with fewer than two
// columns are skipped with a warning. Rows whose type tag is unknown are
// kept and fail individually during resolution, so a typo in one row never
// shrinks the batch silently.
//
// # Output Format
//
// Output is one CSV row per input request:
//
//	Package Path,Package Name,Type,Version,Found,Repositories,Error
//
// Version is empty when neither the request nor the server supplied one.
// Repositories joins every hosting repository with ";" in candidate
// priority order. Error is empty for clean results, including packages
// that are simply absent.
//
// # Streaming
//
// Use [NewWriter] to stream rows as records complete, or [WriteRecords] /
// [ExportRecords] to encode a finished batch in one call. [Writer] keeps
// rows buffered until Flush, so partial output on interrupt ends at a row
// boundary.
package report
