package history

import (
	_ "embed"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cuejson "cuelang.org/go/encoding/json"
)

//go:embed schema.cue
var schemaCUE string

var (
	schemaOnce  sync.Once
	schemaValue cue.Value
)

// schema compiles the embedded CUE schema once.
func schema() cue.Value {
	schemaOnce.Do(func() {
		schemaValue = cuecontext.New().CompileString(schemaCUE, cue.Filename("schema.cue"))
	})
	return schemaValue
}

// validateDocument checks a loaded JSON document against the CUE schema.
//
// This is an explicit shape check, not duck typing: every required field's
// presence and type is verified before the document is accepted. A missing
// top-level field (version, cards, metadata) fails validation.
func validateDocument(data []byte) error {
	v := schema()
	if err := v.Err(); err != nil {
		return fmt.Errorf("compile history schema: %w", err)
	}
	if err := cuejson.Validate(data, v); err != nil {
		return fmt.Errorf("history document does not match schema: %w", err)
	}
	return nil
}
