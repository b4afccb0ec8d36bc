package scenario

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaSource string

var (
	// cue.Context is not safe for concurrent use.
	schemaMu   sync.Mutex
	schemaOnce sync.Once
	schemaCtx  *cue.Context
	schemaDef  cue.Value
	schemaErr  error
)

func scenarioSchema() (*cue.Context, cue.Value, error) {
	schemaOnce.Do(func() {
		schemaCtx = cuecontext.New()
		v := schemaCtx.CompileString(schemaSource, cue.Filename("schema.cue"))
		if err := v.Err(); err != nil {
			schemaErr = fmt.Errorf("compile scenario schema: %w", err)
			return
		}
		schemaDef = v.LookupPath(cue.ParsePath("#Scenario"))
		if err := schemaDef.Err(); err != nil {
			schemaErr = fmt.Errorf("lookup #Scenario: %w", err)
		}
	})
	return schemaCtx, schemaDef, schemaErr
}

// SchemaError lists every schema violation found in a scenario.
type SchemaError struct {
	Issues []string
}

func (e *SchemaError) Error() string {
	return "schema: " + strings.Join(e.Issues, "; ")
}

// CheckSchema validates s against the embedded CUE schema. s should have
// had defaults applied.
func CheckSchema(s *Scenario) error {
	schemaMu.Lock()
	defer schemaMu.Unlock()

	ctx, def, err := scenarioSchema()
	if err != nil {
		return err
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode scenario: %w", err)
	}
	v := ctx.CompileBytes(data, cue.Filename("scenario.json"))
	if err := v.Err(); err != nil {
		return fmt.Errorf("encode scenario: %w", err)
	}

	if err := def.Unify(v).Validate(cue.Concrete(true)); err != nil {
		return &SchemaError{Issues: cueIssues(err)}
	}
	return nil
}

func cueIssues(err error) []string {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return []string{err.Error()}
	}
	seen := make(map[string]bool, len(errs))
	issues := make([]string, 0, len(errs))
	for _, e := range errs {
		msg := e.Error()
		if seen[msg] {
			continue
		}
		seen[msg] = true
		issues = append(issues, msg)
	}
	return issues
}
