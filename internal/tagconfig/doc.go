// Package tagconfig persists the tag taxonomy as a single JSON file.
//
// The file lives at <dir>/tags.json and holds
//
//	{"available_tags": [...], "tag_colors": {...}}
//
// Read prefers the file on disk and falls back to the default compiled into
// the binary when no file exists yet. Writes always replace the whole file;
// AddTag and RemoveTag are read-modify-write. Nothing is locked: concurrent
// writers race and the last write wins.
//
// Content is checked against an embedded CUE schema before it is decoded.
package tagconfig
