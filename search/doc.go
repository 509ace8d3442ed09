// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package search finds the concepts of a terminology branch that conform, or
// fail to conform, to a concept template.
//
// A search runs as a sequential pipeline:
//   - load the template and parse its logical template
//   - compile the domain and logical ECL and combine them with AND or MINUS
//   - evaluate the combined query, capped at MaxResults
//   - fetch concept details and drop the concepts the exact-match verifier rejects
//   - optionally keep only the concepts whose terms do or do not fit the term templates
//
// The Searcher holds no per-search state and is safe for concurrent use.
// SearchMonitor hooks observe each stage; MetricsMonitor reports them to Prometheus.
package search
