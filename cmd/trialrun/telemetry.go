package main

import (
	"io"

	"github.com/m-mizutani/goerr/v2"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkTrace "go.opentelemetry.io/otel/sdk/trace"
)

// newStdoutTracerProvider exports spans synchronously as pretty-printed JSON.
// Callers must Shutdown the provider.
func newStdoutTracerProvider(w io.Writer) (*sdkTrace.TracerProvider, error) {
	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(w),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create stdout trace exporter")
	}
	return sdkTrace.NewTracerProvider(sdkTrace.WithSyncer(exporter)), nil
}
