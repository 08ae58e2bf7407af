package validation

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/luxeval/luxeval/schemas"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// Kind selects the schema a document is checked against.
type Kind string

const (
	KindScores     Kind = "scores"
	KindThresholds Kind = "thresholds"
)

// defaultPrinter is used to format schema validation error messages.
var defaultPrinter = message.NewPrinter(language.English)

var (
	scoresSchema     *jsonschema.Schema
	thresholdsSchema *jsonschema.Schema
)

func init() {
	scoresSchema = mustCompileSchema(schemas.ScoresSchemaJSON, "scores.schema.json")
	thresholdsSchema = mustCompileSchema(schemas.ThresholdsSchemaJSON, "thresholds.schema.json")
}

func mustCompileSchema(raw string, name string) *jsonschema.Schema {
	var schemaDoc any
	if err := json.Unmarshal([]byte(raw), &schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to parse embedded %s: %v", name, err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
	}

	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", name, err))
	}
	return sch
}

// ValidateFile validates the document at path against the schema for kind.
// The returned slice lists schema violations; err is non-nil only when the
// file cannot be read or kind is unknown.
func ValidateFile(path string, kind Kind) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return ValidateBytes(data, kind)
}

// ValidateBytes validates a YAML or JSON document against the schema for kind.
func ValidateBytes(data []byte, kind Kind) ([]string, error) {
	switch kind {
	case KindScores:
		return ValidateScoresBytes(data), nil
	case KindThresholds:
		return ValidateThresholdsBytes(data), nil
	default:
		return nil, fmt.Errorf("unknown document kind %q", kind)
	}
}

// ValidateScoresBytes validates a score document.
func ValidateScoresBytes(data []byte) []string {
	return validateYAMLBytes(scoresSchema, data)
}

// ValidateThresholdsBytes validates a threshold profile document.
func ValidateThresholdsBytes(data []byte) []string {
	return validateYAMLBytes(thresholdsSchema, data)
}

func validateYAMLBytes(schema *jsonschema.Schema, data []byte) []string {
	// JSON documents parse as YAML too.
	var yamlDoc any
	if err := yaml.Unmarshal(data, &yamlDoc); err != nil {
		return []string{fmt.Sprintf("YAML parse error: %v", err)}
	}

	return validateAgainstSchema(schema, convertToJSONCompatible(yamlDoc))
}

func validateAgainstSchema(schema *jsonschema.Schema, instance any) []string {
	err := schema.Validate(instance)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []string{fmt.Sprintf("schema: %v", err)}
	}
	var errs []string
	collectSchemaErrors(ve, &errs)
	return errs
}

func collectSchemaErrors(ve *jsonschema.ValidationError, errs *[]string) {
	if len(ve.Causes) == 0 {
		loc := "/"
		if len(ve.InstanceLocation) > 0 {
			loc = "/" + strings.Join(ve.InstanceLocation, "/")
		}
		*errs = append(*errs, fmt.Sprintf("%s: %s", loc, ve.ErrorKind.LocalizedString(defaultPrinter)))
		return
	}
	for _, c := range ve.Causes {
		collectSchemaErrors(c, errs)
	}
}

// convertToJSONCompatible rewrites YAML-decoded values into the types the
// schema validator accepts. Non-string map keys (e.g. a metric named 2020)
// become strings.
func convertToJSONCompatible(v any) any {
	switch val := v.(type) {
	case map[string]any:
		result := make(map[string]any, len(val))
		for k, v2 := range val {
			result[k] = convertToJSONCompatible(v2)
		}
		return result
	case map[any]any:
		result := make(map[string]any, len(val))
		for k, v2 := range val {
			result[fmt.Sprint(k)] = convertToJSONCompatible(v2)
		}
		return result
	case []any:
		result := make([]any, len(val))
		for i, v2 := range val {
			result[i] = convertToJSONCompatible(v2)
		}
		return result
	default:
		return val
	}
}
