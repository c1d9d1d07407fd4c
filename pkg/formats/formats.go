// Package formats provides parsers for mesh source formats.
//
// Only Wavefront OBJ is supported (obj.go). Parsing is best-effort: malformed lines
// are skipped and recorded rather than failing the file.
package formats
