// Package analysis defines the plain data records exchanged between pipeline
// stages and exposed to downstream consumers.
//
// Every type here serializes to JSON with no references back into pipeline
// working state. The package also owns the two-valued privacy mode and the
// fixed depression severity mapping shared by the text pipeline and the
// heuristic scorer.
package analysis
