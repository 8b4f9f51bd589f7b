package main

import (
	"fmt"

	serphttp "github.com/fwojciec/serpdump/http"
)

// Run executes the serve command.
func (c *ServeCmd) Run(deps *Dependencies) error {
	opts := []serphttp.ServerOption{serphttp.WithLogger(deps.Logger)}
	if deps.Metrics != nil {
		opts = append(opts, serphttp.WithMetricsHandler(deps.Metrics))
	}
	srv := serphttp.NewServer(deps.Gateway, deps.Search, opts...)

	fmt.Fprintf(deps.Stdout, "Listening on %s\n", c.Addr)
	return srv.ListenAndServe(deps.Ctx, c.Addr)
}
