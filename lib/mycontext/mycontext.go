package mycontext

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
)

// CtxTraceContext is the context key of the trace used by mylog.
type CtxTraceContext struct{}

// ContextFromHTTPRequest picks up the trace of the load balancer: X-Cloud-Trace-Context when present,
// the W3C traceparent header otherwise.
func ContextFromHTTPRequest(r *http.Request) context.Context {
	traceID := cloudTraceID(r.Header.Get("X-Cloud-Trace-Context"))
	if traceID == "" {
		traceID = w3cTraceID(r.Header.Get("traceparent"))
	}

	trace := ""
	if traceID != "" {
		trace = fmt.Sprintf("projects/%s/traces/%s", os.Getenv("GOOGLE_CLOUD_PROJECT"), traceID)
	}

	return context.WithValue(r.Context(), CtxTraceContext{}, trace)
}

// "TRACE_ID/SPAN_ID;o=OPTIONS"
func cloudTraceID(header string) string {
	traceID, _, _ := strings.Cut(header, "/")
	return strings.TrimSpace(traceID)
}

// "VERSION-TRACE_ID-PARENT_ID-FLAGS"
func w3cTraceID(header string) string {
	parts := strings.Split(strings.TrimSpace(header), "-")
	if len(parts) != 4 || len(parts[1]) != 32 {
		return ""
	}
	return parts[1]
}

func TraceFromContext(c context.Context) string {
	if c == nil {
		return ""
	}
	trace, _ := c.Value(CtxTraceContext{}).(string)
	return trace
}
