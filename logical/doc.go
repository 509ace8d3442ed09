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

// Package logical parses logical-template text into core.LogicalTemplate values.
//
// The accepted grammar:
//
//	template    = focus ('+' focus)* [':' refinement]
//	refinement  = item (',' item)*
//	item        = [card] ('{' attribute (',' attribute)* '}' | attributeBody)
//	attribute   = [card] attributeBody
//	attributeBody = conceptRef '=' value
//	conceptRef  = sctid ['|' term '|']
//	card        = '[[' ['~'] [min] '..' [max | '*'] ']]'
//	value       = conceptRef | '[[+id' ['(' range ')'] ['@' name] ['$' ref] ']]'
//
// Allowable ranges are kept verbatim (trimmed); this package does not parse ECL.
// Parse errors match core.ErrParse and carry the byte offset.
package logical
