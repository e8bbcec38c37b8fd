// Package schemas embeds the JSON Schemas shipped with bearcheck.
package schemas

import _ "embed"

// BearcheckSchemaJSON is the JSON Schema for .bearcheck.yaml files.
//
//go:embed bearcheck.schema.json
var BearcheckSchemaJSON string
