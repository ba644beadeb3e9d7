// Package internal provides the normalization engine.
//
// An Engine runs an ordered rule catalog (package rules) over a piece of text.
// Each rule runs once, in catalog order, and sees the output of the rules
// before it. All matches of one rule are found in, and resolved against, the
// same input, then spliced into the output in a single pass.
//
// Context-sensitive rules consult package resolver for the usage intent
// around a match. `modernize:ignore` comments (package directive) keep rules
// away from lines or whole documents.
//
// Usage:
//
//	catalog, err := rules.DefaultCatalog(rules.ModelSet{})
//	if err != nil {
//	    // handle error
//	}
//	engine, err := internal.NewEngine(catalog, internal.WithRadius(400))
//	if err != nil {
//	    // handle error
//	}
//
//	result := engine.NormalizeWithTrace(source)
//	for _, rw := range result.Applied {
//	    fmt.Printf("%s at %s\n", rw.Rule, rw.Start)
//	}
//
// This package is intended for internal use; external callers go through
// package normalize.
package internal
