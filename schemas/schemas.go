// Package schemas embeds the JSON schemas for luxeval input documents.
package schemas

import _ "embed"

//go:embed scores.schema.json
var ScoresSchemaJSON string

//go:embed thresholds.schema.json
var ThresholdsSchemaJSON string
