package router

import (
	"context"
	"net/http"
	"time"

	"github.com/koinonia-lab/backend/config"
	"github.com/koinonia-lab/backend/pkg/errorx"
	"github.com/koinonia-lab/backend/pkg/xcontext"
	"github.com/rs/cors"
)

type HandlerFunc[Request, Response any] func(ctx context.Context, req *Request) (*Response, error)

// MiddlewareFunc runs before the handler. It may enrich the context or stop
// the request by returning an error.
type MiddlewareFunc func(ctx context.Context) (context.Context, error)

// CloserFunc runs after the response was written, even if the request failed.
type CloserFunc func(ctx context.Context)

type Router struct {
	mux     *http.ServeMux
	ctx     context.Context
	befores []MiddlewareFunc
	closers []CloserFunc
}

// New creates a root router. Every request context inherits the values of
// ctx (configs, logger, database).
func New(ctx context.Context) *Router {
	return &Router{mux: http.NewServeMux(), ctx: ctx}
}

// Branch returns a router sharing the same mux. Middlewares added to the
// branch do not affect the parent.
func (r *Router) Branch() *Router {
	return &Router{
		mux:     r.mux,
		ctx:     r.ctx,
		befores: append([]MiddlewareFunc{}, r.befores...),
		closers: append([]CloserFunc{}, r.closers...),
	}
}

func (r *Router) Before(middleware MiddlewareFunc) {
	r.befores = append(r.befores, middleware)
}

func (r *Router) AddCloser(closer CloserFunc) {
	r.closers = append(r.closers, closer)
}

// Handle registers a raw http handler, for example the metrics endpoint.
func (r *Router) Handle(pattern string, handler http.Handler) {
	r.mux.Handle(pattern, handler)
}

// Websocket registers an endpoint which is upgraded by the handler itself.
// Before middlewares still run, so the handler can rely on the request user.
func (r *Router) Websocket(pattern string, handler func(ctx context.Context, w http.ResponseWriter, req *http.Request)) {
	r.mux.HandleFunc(pattern, func(w http.ResponseWriter, req *http.Request) {
		ctx, ok := r.prepare(w, req)
		if !ok {
			return
		}

		handler(ctx, w, req)
		r.close(ctx)
	})
}

// Handler returns the http.Handler of the whole router wrapped by CORS.
func (r *Router) Handler(cfg config.APIServerConfigs) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Content-Length", "Authorization"},
		AllowCredentials: true,
	})

	return c.Handler(r.mux)
}

func GET[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.mux.HandleFunc(pattern, wrap(r, http.MethodGet, handler))
}

func POST[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.mux.HandleFunc(pattern, wrap(r, http.MethodPost, handler))
}

func wrap[Request, Response any](
	r *Router, method string, handler HandlerFunc[Request, Response],
) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if req.Method != method {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		ctx, ok := r.prepare(w, req)
		if !ok {
			return
		}

		resp, err := func() (*Response, error) {
			var request Request
			if err := parseRequest(req, &request); err != nil {
				xcontext.Logger(ctx).Debugf("Cannot parse request: %v", err)
				return nil, errorx.New(errorx.BadRequest, "Invalid request")
			}

			return handler(ctx, &request)
		}()

		ctx = xcontext.WithError(ctx, err)
		if err != nil {
			WriteError(ctx, w, err)
		} else {
			writeResponse(ctx, w, resp)
		}

		r.close(ctx)
	}
}

func (r *Router) prepare(w http.ResponseWriter, req *http.Request) (context.Context, bool) {
	ctx := mergeContext(req.Context(), r.ctx)
	ctx = xcontext.WithHTTPRequest(ctx, req)
	ctx = xcontext.WithHTTPWriter(ctx, w)
	ctx = xcontext.WithStartTime(ctx, time.Now())

	for _, before := range r.befores {
		var err error
		ctx, err = before(ctx)
		if err != nil {
			ctx = xcontext.WithError(ctx, err)
			WriteError(ctx, w, err)
			r.close(ctx)
			return nil, false
		}
	}

	return ctx, true
}

func (r *Router) close(ctx context.Context) {
	for _, closer := range r.closers {
		closer(ctx)
	}
}

// mergeContext keeps the cancellation of the request context and copies the
// values set on the root context.
func mergeContext(reqCtx, rootCtx context.Context) context.Context {
	ctx := xcontext.WithConfigs(reqCtx, xcontext.Configs(rootCtx))
	ctx = xcontext.WithLogger(ctx, xcontext.Logger(rootCtx))
	if db := xcontext.DB(rootCtx); db != nil {
		ctx = xcontext.WithDB(ctx, db)
	}

	return ctx
}
