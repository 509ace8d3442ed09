// Package snowstorm implements terminology.Client against the REST API of a
// Snowstorm terminology server.
//
// Queries use GET {base}/{branch}/concepts with the ecl (or statedEcl)
// parameter, paging with searchAfter until the requested cap is reached.
// Concept details are loaded with POST {base}/browser/{branch}/concepts/bulk-load
// in fixed-size batches. Requests are rate limited and transient failures
// (transport errors, 5xx, 429) are retried with exponential backoff.
package snowstorm
