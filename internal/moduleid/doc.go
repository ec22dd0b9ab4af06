// internal/moduleid/doc.go

/*
Package moduleid turns the identifiers used in dependency lists into the
canonical, absolute module ids the runtime keys its registry by, and maps a
canonical id onto the locator a source fetcher understands.

Ids are slash-separated paths, e.g. `pkg/sub/mod`. A dependency path whose
first segment is `.` or `..` is relative to the directory of the module that
declares it; every other path is already canonical.
*/
package moduleid
