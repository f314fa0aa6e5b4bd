package edm

import (
	"net/http"

	servertiming "github.com/mitchellh/go-server-timing"
)

// MetadataHandler returns an http.Handler serving the CSDL $metadata document.
//
// The handler answers GET requests with the serialized model and a strong
// ETag, and replies 304 Not Modified when If-None-Match carries the current
// tag. When the request passed through a servertiming.Middleware, an
// edm-metadata metric is reported in the Server-Timing header.
func (p *Provider) MetadataHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		etag := p.MetadataETag()
		w.Header().Set("ETag", etag)
		if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}

		var metric *servertiming.Metric
		if timing := servertiming.FromContext(r.Context()); timing != nil {
			metric = timing.NewMetric("edm-metadata").WithDesc("metadata document").Start()
		}
		w.Header().Set("Content-Type", "application/xml; charset=utf-8")
		// The timing header goes out with the first body write, so the
		// metric has to be stopped before writing.
		if metric != nil {
			metric.Stop()
		}
		if err := p.WriteMetadata(w); err != nil {
			p.logger.Error("failed to write metadata document", "error", err)
		}
	})
}
