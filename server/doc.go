// Package server exposes template management and template search over HTTP.
//
// Routes:
//
//	GET    /templates                    list templates
//	GET    /templates/{name}             get a template
//	PUT    /templates/{name}             save a template
//	DELETE /templates/{name}             delete a template
//	GET    /templates/{name}/ecl         compiled domain, logical and combined queries
//	GET    /templates/{name}/concepts    search concepts by template
//	GET    /metrics                      Prometheus metrics
//	GET    /healthz                      liveness
//
// Template names containing '/' are sent with the slash escaped as %2F.
package server
