package reply

import (
	_ "embed"
	"encoding/json"
	"sync"

	"github.com/invopop/jsonschema"
)

//go:embed instruction.tmpl
var baseInstruction string

// DefaultInstruction returns the system instruction asking the model for a
// Reply document, followed by the JSON schema of that document.
var DefaultInstruction = sync.OnceValue(func() string {
	reflector := jsonschema.Reflector{DoNotReference: true}
	schema := reflector.Reflect(&Reply{})

	schemaString, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		logger.Warn("could not render reply schema, using the plain instruction", "error", err)
		return baseInstruction
	}
	return baseInstruction + "\nThe reply must validate against this JSON schema:\n" + string(schemaString) + "\n"
})
