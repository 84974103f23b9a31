package leads

import (
	"encoding/json"
	"strings"

	stderrors "madsag-engine/internal/common/errors"

	"github.com/xeipuuv/gojsonschema"
)

// wireSchema is the backend's declared attribute set for the leads
// collection. additionalProperties is false on purpose: an undeclared key
// makes the backend reject the whole request, so it must never leave this
// process.
const wireSchema = `{
  "type": "object",
  "properties": {
    "FullName":        {"type": "string", "minLength": 1},
    "email":           {"type": "string", "minLength": 1},
    "phone":           {"type": "string", "minLength": 1},
    "subject":         {"type": "string", "minLength": 1},
    "description":     {"type": "string", "minLength": 1},
    "projectType":     {"type": "string"},
    "budget":          {"type": "string"},
    "url":             {"type": "string"},
    "whatsappConsent": {"type": "boolean"}
  },
  "required": ["FullName", "email", "phone", "subject", "description"],
  "additionalProperties": false
}`

var wireSchemaLoader = gojsonschema.NewStringLoader(wireSchema)

// CheckWirePayload validates the outgoing data object against the
// backend's declared schema. This guards the hard field-name contract:
// renames, re-casings, and stray keys fail here instead of server-side.
func CheckWirePayload(payload map[string]interface{}) error {
	result, err := gojsonschema.Validate(wireSchemaLoader, gojsonschema.NewGoLoader(payload))
	if err != nil {
		return stderrors.NewSchemaViolationError(err.Error())
	}
	if result.Valid() {
		return nil
	}

	details := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		details = append(details, desc.String())
	}
	return stderrors.NewSchemaViolationError(strings.Join(details, "; "))
}

// envelope is the backend's required request wrapper for collection types.
type envelope struct {
	Data map[string]interface{} `json:"data"`
}

func marshalEnvelope(payload map[string]interface{}) ([]byte, error) {
	return json.Marshal(envelope{Data: payload})
}
