// Package openapi embeds the OpenAPI document for the visa tracker API.
// It is served by the HTTP server at /openapi.yaml.
package openapi

import _ "embed"

// Document contains the raw bytes of openapi.yaml, embedded at compile time.
// Serving it from the binary means the document and the running code ship together.
//
//go:embed openapi.yaml
var Document []byte
