//go:build !ORT

package provider

import "github.com/knights-analytics/hugot"

// Pure-Go inference backend; build with -tags ORT for onnxruntime.
func newHugotSession() (*hugot.Session, error) {
	return hugot.NewGoSession()
}
