// Package metrics provides Prometheus metrics for pokeart components.
package metrics

// Label names shared by the downloader metrics.
const (
	LabelResult   = "result"
	LabelCategory = "category"
	LabelHost     = "host"
	LabelStatus   = "status"
)

// statusTransportError labels HTTP requests that never produced a response.
const statusTransportError = "transport_error"
