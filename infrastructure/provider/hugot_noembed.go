//go:build !embed_model

package provider

import "embed"

// Built without -tags embed_model: no ONNX model ships inside the binary.
var embeddedModelFS embed.FS

const hasEmbeddedModel = false
