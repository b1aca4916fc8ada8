package storage

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrInvalidSnapshot is returned by Import when the document does not match
// the snapshot schema. Nothing is written in that case.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

const snapshotSchemaURL = "snapshot.schema.json"

//go:embed snapshot.schema.json
var snapshotSchemaJSON []byte

var (
	snapshotSchemaOnce sync.Once
	snapshotSchema     *jsonschema.Schema
	snapshotSchemaErr  error
)

func compiledSnapshotSchema() (*jsonschema.Schema, error) {
	snapshotSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(snapshotSchemaURL, bytes.NewReader(snapshotSchemaJSON)); err != nil {
			snapshotSchemaErr = fmt.Errorf("load snapshot schema: %w", err)
			return
		}
		snapshotSchema, snapshotSchemaErr = compiler.Compile(snapshotSchemaURL)
	})
	return snapshotSchema, snapshotSchemaErr
}

// validateSnapshot checks snap against the embedded schema. The snapshot is
// marshalled back to JSON first so both input formats are checked the same way.
func validateSnapshot(snap Snapshot) error {
	schema, err := compiledSnapshotSchema()
	if err != nil {
		return err
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot for validation: %w", err)
	}
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("unmarshal snapshot for validation: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			return err
		}
		var problems []string
		collectSchemaProblems(ve, &problems)
		return fmt.Errorf("%w: %s", ErrInvalidSnapshot, strings.Join(problems, "; "))
	}
	return nil
}

func collectSchemaProblems(ve *jsonschema.ValidationError, out *[]string) {
	if len(ve.Causes) == 0 {
		loc := ve.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		*out = append(*out, loc+": "+ve.Message)
		return
	}
	for _, c := range ve.Causes {
		collectSchemaProblems(c, out)
	}
}
