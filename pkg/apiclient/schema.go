package apiclient

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	envelopeSchemaURL       = "https://gema.local/schemas/envelope.json"
	assignmentListSchemaURL = "https://gema.local/schemas/assignment-list.json"
)

// EnvelopeSchema describes every API response.
const EnvelopeSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["success", "message"],
  "properties": {
    "success": {"type": "boolean"},
    "message": {"type": "string"}
  }
}`

// AssignmentListSchema describes the read endpoint; data is required when success is true.
const AssignmentListSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "allOf": [{"$ref": "envelope.json"}],
  "if": {"properties": {"success": {"const": true}}},
  "then": {
    "required": ["data"],
    "properties": {
      "data": {
        "type": "array",
        "items": {
          "type": "object",
          "required": ["_id", "AssignmentName", "PostedBy", "PostedOn", "DueTimestamp", "Batches", "Questions", "SubmittedBy"],
          "properties": {
            "_id": {"type": "string", "minLength": 1},
            "AssignmentName": {"type": "string"},
            "PostedBy": {
              "type": "object",
              "required": ["Name"],
              "properties": {"Name": {"type": "string"}}
            },
            "PostedOn": {"type": "string"},
            "DueTimestamp": {"type": "string"},
            "Batches": {"type": "array", "items": {"type": "string"}},
            "Questions": {"type": "array", "items": {"type": "string"}},
            "SubmittedBy": {"type": "array", "items": {"type": "string"}}
          }
        }
      }
    }
  }
}`

type schemas struct {
	envelope       *jsonschema.Schema
	assignmentList *jsonschema.Schema
}

func compileSchemas() (schemas, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(envelopeSchemaURL, strings.NewReader(EnvelopeSchema)); err != nil {
		return schemas{}, fmt.Errorf("add envelope schema: %w", err)
	}
	if err := compiler.AddResource(assignmentListSchemaURL, strings.NewReader(AssignmentListSchema)); err != nil {
		return schemas{}, fmt.Errorf("add assignment list schema: %w", err)
	}

	envelope, err := compiler.Compile(envelopeSchemaURL)
	if err != nil {
		return schemas{}, fmt.Errorf("compile envelope schema: %w", err)
	}
	list, err := compiler.Compile(assignmentListSchemaURL)
	if err != nil {
		return schemas{}, fmt.Errorf("compile assignment list schema: %w", err)
	}

	return schemas{envelope: envelope, assignmentList: list}, nil
}

// validate checks body against schema and returns the ErrMalformedResponse family on mismatch.
func validate(schema *jsonschema.Schema, body []byte) error {
	var document interface{}
	if err := json.Unmarshal(body, &document); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if err := schema.Validate(document); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}
