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


package search

import (
	"errors"
	"fmt"

	"github.com/poiesic/conformit/core"
)

var (
	// ErrTemplateLoaderRequired is returned when a template loader is not provided.
	ErrTemplateLoaderRequired = errors.New("template loader required")

	// ErrClientRequired is returned when a terminology client is not provided.
	ErrClientRequired = errors.New("terminology client required")

	// ErrLogicalMatchRequired is returned when a request leaves LogicalMatch unset.
	ErrLogicalMatchRequired = fmt.Errorf("%w: logicalMatch must be specified", core.ErrInvalidArgument)

	// ErrLexicalRequiresLogical is returned when LexicalMatch is set while LogicalMatch is false.
	ErrLexicalRequiresLogical = fmt.Errorf("%w: logicalMatch must be true when lexicalMatch is set", core.ErrInvalidArgument)

	// ErrService wraps failures of the collaborators of a search: template
	// loading and parsing, query evaluation and concept retrieval.
	ErrService = errors.New("template search failed")
)
