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

// Package ecl compiles logical templates into Expression Constraint Language
// refinement queries.
//
// A compiled query has the form
//
//	<<focus:attr=value,...,[min..max]{attr=value,...},...
//
// Literal values take priority over allowable ranges, which take priority
// over slot references. Ranges containing AND or OR are parenthesized.
// Slot references are resolved by a final textual substitution of each
// exact "=name" token.
//
// Example:
//
//	lt, _ := logical.Parse(text)
//	domain, _ := ecl.CompileDomainOnly(lt.FocusConcepts)
//	refined, _ := ecl.CompileTemplate(lt)
//	query := ecl.Combine(domain, refined, true)
package ecl
