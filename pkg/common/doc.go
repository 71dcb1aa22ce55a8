// Package common is the configuration and artifact I/O layer shared by the
// pipeline stages.
//
// A stage typically loads its parameters with LoadConfig, materialises the
// directories it expects with EnsureDirectories, does its work, and persists
// outputs for downstream stages with SaveRecord (small structured results,
// indented JSON) or SaveObject (arrays, weights and other values, in a
// versioned binary format). DecodeImage and EncodeImageToText move image files
// across text-only boundaries as base64.
//
// Every operation blocks until the whole file has been read or written and
// releases its file handle before returning. Files are written to a temporary
// file next to the target and renamed into place, so a reader sees either the
// previous or the new content. Concurrent writers to the same path are not
// coordinated.
//
// Errors are never retried or swallowed. Taxonomy errors (ErrParse,
// ErrEmptyConfig, ...) are reported through *Error and match with errors.Is,
// and filesystem errors keep matching fs.ErrNotExist and fs.ErrPermission.
package common
