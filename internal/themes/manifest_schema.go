package themes

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrManifestInvalid is returned when a manifest does not match the manifest schema.
var ErrManifestInvalid = errors.New("themes: manifest does not match schema")

const manifestSchemaURL = "theme.schema.json"

const manifestSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "id": {"type": "string"},
    "base": {"type": "string"},
    "online_url": {"type": "string"},
    "tokens": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "properties": {
          "local": {"type": "string"},
          "remote": {"type": "string"}
        },
        "required": ["local"],
        "additionalProperties": false
      }
    }
  }
}`

var (
	manifestSchemaOnce     sync.Once
	manifestSchemaCompiled *jsonschema.Schema
	manifestSchemaErr      error
)

func compiledManifestSchema() (*jsonschema.Schema, error) {
	manifestSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource(manifestSchemaURL, strings.NewReader(manifestSchema)); err != nil {
			manifestSchemaErr = err
			return
		}
		manifestSchemaCompiled, manifestSchemaErr = compiler.Compile(manifestSchemaURL)
	})
	return manifestSchemaCompiled, manifestSchemaErr
}

// validateManifest checks a JSON-decoded manifest document.
func validateManifest(doc any) error {
	schema, err := compiledManifestSchema()
	if err != nil {
		return err
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %s", ErrManifestInvalid, strings.Join(manifestIssues(err), "; "))
	}
	return nil
}

func manifestIssues(err error) []string {
	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) {
		return []string{err.Error()}
	}
	var issues []string
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if len(node.Causes) == 0 {
			location := node.InstanceLocation
			if location == "" {
				location = "/"
			}
			issues = append(issues, location+": "+node.Message)
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(validationErr)
	return issues
}
