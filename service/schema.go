package service

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/atanasg/ProteoVisualizer/errors"
)

const retrieveSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["query"],
  "properties": {
    "query": {"type": "string", "minLength": 1},
    "delimiter": {"type": "string", "minLength": 1},
    "taxon_id": {"type": "integer", "minimum": 1},
    "species": {"type": "string"},
    "cutoff": {"type": "number", "minimum": 0, "maximum": 1},
    "network_type": {"type": "string", "enum": ["functional", "physical"]},
    "network_name": {"type": "string"}
  },
  "additionalProperties": false
}`

const groupStateSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["network_id", "group", "collapsed"],
  "properties": {
    "network_id": {"type": "string", "format": "uuid"},
    "group": {"type": "string", "minLength": 1},
    "collapsed": {"type": "boolean"}
  },
  "additionalProperties": false
}`

const networkRefSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["network_id"],
  "properties": {
    "network_id": {"type": "string", "format": "uuid"}
  },
  "additionalProperties": false
}`

// validator checks request bodies against a compiled JSON schema.
type validator struct {
	name   string
	schema *gojsonschema.Schema
}

func newValidator(name, schema string) (*validator, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		return nil, errors.WrapFatal(err, "Handler", "newValidator", "schema compile "+name)
	}
	return &validator{name: name, schema: s}, nil
}

// validate returns an invalid-class ErrInvalidRequest listing every violation.
func (v *validator) validate(data []byte) error {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return errors.WrapInvalid(fmt.Errorf("%w: %v", errors.ErrInvalidRequest, err), "Handler", "validate", v.name+" decode")
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	return errors.WrapInvalid(fmt.Errorf("%w: %s", errors.ErrInvalidRequest, strings.Join(msgs, "; ")),
		"Handler", "validate", v.name+" schema check")
}
