// Package terminology defines the terminology server operations used by the
// search orchestrator: evaluating expression constraint queries and fetching
// concept details.
//
// Implementations live in subpackages:
//
//   - snowstorm: REST client for a Snowstorm terminology server
//   - mock: test double with injectable behavior and call counts
package terminology
