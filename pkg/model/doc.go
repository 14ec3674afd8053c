// Package model declares the typed field schema of a building block and the
// value containers that flow through the configuration pipeline. A Block lists
// its fields as a tagged set of FieldType variants (boolean, string, enum,
// number); a FieldSet holds the raw values edited for the current scope;
// Defaults carries the values inherited from the parent scope; and Change is
// the batch of edits handed to the caller when the debounced emitter flushes.
//
// Values are plain Go values as produced by encoding/json or yaml.v3. Use
// Block.Accepts to check whether a value fits a field and Block.Normalize to
// obtain the canonical form used for equality (numbers as float64,
// multi-select enums as []string).
package model
