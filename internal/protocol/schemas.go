package protocol

import (
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	schemasOnce sync.Once
	schemas     map[string]*jsonschema.Schema
	schemasErr  error
)

func loadSchemas() (map[string]*jsonschema.Schema, error) {
	schemasOnce.Do(func() {
		c := jsonschema.NewCompiler()
		names := []string{"hello.schema.json", "act.schema.json", "obs.schema.json"}
		for _, n := range names {
			f, err := schemaFS.Open("schemas/" + n)
			if err != nil {
				schemasErr = err
				return
			}
			err = c.AddResource(n, f)
			f.Close()
			if err != nil {
				schemasErr = fmt.Errorf("schema %s: %w", n, err)
				return
			}
		}
		out := map[string]*jsonschema.Schema{}
		for _, n := range names {
			s, err := c.Compile(n)
			if err != nil {
				schemasErr = fmt.Errorf("compile %s: %w", n, err)
				return
			}
			out[n] = s
		}
		schemas = out
	})
	return schemas, schemasErr
}

// Validate checks a raw message against the schema for its type. Types without a schema pass.
func Validate(msgType string, raw []byte) error {
	var name string
	switch msgType {
	case TypeHello:
		name = "hello.schema.json"
	case TypeAct:
		name = "act.schema.json"
	case TypeObs:
		name = "obs.schema.json"
	default:
		return nil
	}
	all, err := loadSchemas()
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	return all[name].Validate(v)
}
