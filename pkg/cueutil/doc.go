// SPDX-License-Identifier: MPL-2.0

// Package cueutil compiles CUE documents against an embedded schema and
// decodes them into Go structs.
//
// Both the workspace descriptor (genlayout.cue) and the application config
// (config.cue) go through ParseAndDecode:
//
//	//go:embed workspace_schema.cue
//	var schema []byte
//
//	res, err := cueutil.ParseAndDecode[Workspace](schema, data, "#Workspace",
//	    cueutil.WithFilename("genlayout.cue"))
//
// Errors carry the file name and the JSON-style path of the offending field.
package cueutil
