// Package openapi imports configuration schemas from OpenAPI component
// schemas. Object schemas become groups, scalar properties become fields, and
// shared component references are kept as schema definitions so the tree
// builder expands them like any other $ref.
package openapi
