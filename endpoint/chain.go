package endpoint

import (
	"context"
	"net/http"
)

// commitWriter runs the deferred hooks just before the first byte of the
// response, for handlers that write directly instead of going through a
// Renderer.
type commitWriter struct {
	http.ResponseWriter
	ctx       context.Context
	committed bool
}

func (cw *commitWriter) commit() {
	if !cw.committed {
		cw.committed = true
		Commit(cw.ctx, cw.ResponseWriter)
	}
}

func (cw *commitWriter) WriteHeader(status int) {
	cw.commit()
	cw.ResponseWriter.WriteHeader(status)
}

func (cw *commitWriter) Write(b []byte) (int, error) {
	cw.commit()
	return cw.ResponseWriter.Write(b)
}

// Middleware adapts a processor chain to a standard net/http middleware, for
// handlers that are not EndpointFuncs. Deferred hooks fire before the wrapped
// handler's first write.
func Middleware(processors ...Processor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Context().Value(hooksKey{}) == nil {
				var hooks []func(http.ResponseWriter)
				r = r.WithContext(context.WithValue(r.Context(), hooksKey{}, &hooks))
			}
			cw := &commitWriter{ResponseWriter: w, ctx: r.Context()}

			var run func(i int, w2 http.ResponseWriter, r2 *http.Request) error
			run = func(i int, w2 http.ResponseWriter, r2 *http.Request) error {
				if i == len(processors) {
					next.ServeHTTP(w2, r2)
					return nil
				}
				return processors[i].Process(w2, r2, func(w3 http.ResponseWriter, r3 *http.Request) error {
					return run(i+1, w3, r3)
				})
			}
			if err := run(0, cw, r); err != nil {
				if !cw.committed {
					http.Error(cw, err.Error(), http.StatusInternalServerError)
				}
				return
			}
			cw.commit()
		})
	}
}
