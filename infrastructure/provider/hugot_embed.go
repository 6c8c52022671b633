//go:build embed_model

package provider

import "embed"

// Built with -tags embed_model: the ONNX model ships inside the binary.
//
//go:embed all:models
var embeddedModelFS embed.FS

const hasEmbeddedModel = true
