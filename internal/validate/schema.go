package validate

import (
	_ "embed"
	"encoding/json"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/gmggroup/omf-go/internal/omferr"
)

//go:embed schema/index.schema.json
var indexSchemaText string

const indexSchemaURL = "https://omf-go/internal/validate/schema/index.schema.json"

var (
	indexSchemaOnce sync.Once
	indexSchema     *jsonschema.Schema
	indexSchemaErr  error
)

func compiledIndexSchema() (*jsonschema.Schema, error) {
	indexSchemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource(indexSchemaURL, strings.NewReader(indexSchemaText)); err != nil {
			indexSchemaErr = err
			return
		}
		indexSchema, indexSchemaErr = c.Compile(indexSchemaURL)
	})
	return indexSchema, indexSchemaErr
}

// CheckStructure runs the embedded structural schema over the decoded index
// document before the semantic Validator traversal walks it (spec.md §4.5):
// a cheap, generic "does this even look like a project" pass that rejects
// grossly malformed input with a precise JSON-pointer path, before the
// cross-field invariants in tree.go ever run.
func CheckStructure(data []byte) error {
	schema, err := compiledIndexSchema()
	if err != nil {
		return omferr.Wrap(omferr.DeserializationFailed, err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return omferr.Wrap(omferr.DeserializationFailed, err)
	}
	if err := schema.Validate(doc); err != nil {
		return omferr.ValidationFailedErr(Problems{{
			Reason:   InvalidData,
			TypeName: "Project",
			Detail:   err.Error(),
		}})
	}
	return nil
}
