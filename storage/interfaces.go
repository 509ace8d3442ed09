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

package storage

import (
	"context"

	"github.com/poiesic/conformit/core"
)

// TemplateRepository stores concept templates keyed by name.
type TemplateRepository interface {
	// SaveTemplates inserts or replaces templates by name.
	SaveTemplates(ctx context.Context, templates ...*core.ConceptTemplate) error

	// GetTemplate retrieves a template by name.
	// Returns ErrNotFound if the template doesn't exist.
	GetTemplate(ctx context.Context, name string) (*core.ConceptTemplate, error)

	// ListTemplates returns every stored template ordered by name.
	ListTemplates(ctx context.Context) ([]*core.ConceptTemplate, error)

	// DeleteTemplates removes templates by name.
	// Returns ErrNotFound if any template doesn't exist.
	DeleteTemplates(ctx context.Context, names ...string) error

	// Close closes the repository and releases resources.
	Close() error
}
