// Package render turns a named template plus a caller-supplied data model
// into a plain string, outside any request-dispatch path. The Service
// composes a Resolver and a Runtime supplied at construction; each call gets
// its own session and output sink, so concurrent renders are independent.
package render
