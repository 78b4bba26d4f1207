package shared

import "regexp"

// CategoryIDRegex is the slug pattern category ids must match. Category ids
// double as file and directory names under the library root, so the pattern
// is deliberately strict.
var CategoryIDRegex = regexp.MustCompile(`^[a-z0-9-]+$`)

// ShapeIDRegex constrains shape ids to filename-safe characters. Shape ids
// name the preview and native files on disk.
var ShapeIDRegex = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// ValidCategoryID reports whether id is a well-formed category slug.
func ValidCategoryID(id string) bool {
	return CategoryIDRegex.MatchString(id)
}

// ValidShapeID reports whether id can safely be used as a file name stem.
func ValidShapeID(id string) bool {
	return id != "" && id != "." && id != ".." && ShapeIDRegex.MatchString(id)
}
