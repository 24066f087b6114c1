// Package ubjson implements the core of the UBJSON draft-12 binary
// serialization format: the marker alphabet, a closed Value tree, a
// container-optimization analyzer, and a writer/reader pair built on that
// analysis.
//
// A document is read or written through one of four entry points:
// WriteValue and ReadValue operate on a materialized Value tree.
// ReadWithVisitor lets a caller consume a document without holding the
// whole tree in memory, through the Visitor interface. WriteStream takes an
// EventSource that hands complete Values to a Sink; each of those values,
// containers included, is materialized before it is written.
package ubjson
