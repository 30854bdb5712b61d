package bundler

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/evanw/esbuild/pkg/api"
)

// Context is an incremental build context, reused across rebuilds.
type Context struct {
	opts Options
	ctx  api.BuildContext
}

// ServeResult describes where a Context is being served.
type ServeResult struct {
	Host string
	Port uint16
}

// NewContext creates an incremental build context for opts.
// The caller must call Dispose when done.
func NewContext(opts Options) (*Context, error) {
	if err := cleanOutDir(opts); err != nil {
		return nil, err
	}
	ctx, ctxErr := api.Context(opts.esbuildOptions())
	if ctxErr != nil {
		return nil, newBuildError(ctxErr.Errors)
	}
	return &Context{opts: opts, ctx: ctx}, nil
}

// Rebuild builds the client again, reusing work from previous builds.
func (c *Context) Rebuild(ctx context.Context) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	return finish(c.opts, c.ctx.Rebuild(), start)
}

// Serve starts serving the output directory over HTTP.
// Each request waits for any in-progress build to complete.
func (c *Context) Serve(host string, port int) (ServeResult, error) {
	res, err := c.ctx.Serve(api.ServeOptions{
		Host:     host,
		Port:     uint16(port),
		Servedir: c.opts.OutDir(),
	})
	if err != nil {
		return ServeResult{}, errors.Wrap(err, "start server")
	}
	return ServeResult{Host: res.Host, Port: res.Port}, nil
}

// Dispose releases the resources held by the context, stopping the server.
func (c *Context) Dispose() {
	c.ctx.Dispose()
}
