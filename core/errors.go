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


package core

import "errors"

// Domain errors shared across packages. Callers match them with errors.Is.
var (
	// ErrInvalidArgument indicates an invalid combination of request parameters.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound indicates that a template does not exist.
	ErrNotFound = errors.New("not found")

	// ErrParse indicates malformed logical-template or term-template grammar.
	ErrParse = errors.New("parse error")

	// ErrInvalidTemplate indicates a structurally invalid template.
	ErrInvalidTemplate = errors.New("invalid template")

	// ErrNoFocusConcept indicates a logical template without focus concepts.
	ErrNoFocusConcept = errors.New("no focus concepts defined")

	// ErrEmptyAttributeType indicates an attribute without a type.
	ErrEmptyAttributeType = errors.New("attribute type cannot be empty")

	// ErrEmptyAttributeGroup indicates an attribute group without attributes.
	ErrEmptyAttributeGroup = errors.New("attribute group cannot be empty")

	// ErrAmbiguousAttributeValue indicates an attribute with more than one of
	// value, allowable range and slot reference.
	ErrAmbiguousAttributeValue = errors.New("attribute has more than one value source")

	// ErrEmptyTemplateName indicates a template without a name.
	ErrEmptyTemplateName = errors.New("template name cannot be empty")

	// ErrEmptyLogicalTemplate indicates a template without logical template text.
	ErrEmptyLogicalTemplate = errors.New("logical template cannot be empty")
)
