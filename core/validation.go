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

import (
	"fmt"
	"strings"
)

// ValidateConceptTemplate validates a ConceptTemplate according to domain rules.
//
// Validation rules:
//   - Name must not be empty
//   - LogicalTemplate must not be blank
//
// NOT validated (derived on save):
//   - FocusConcept
//   - Relationships
//   - Descriptions' InitialTerm
func ValidateConceptTemplate(template *ConceptTemplate) error {
	if template == nil {
		return fmt.Errorf("%w: template is nil", ErrInvalidTemplate)
	}

	if template.Name == "" {
		return fmt.Errorf("%w: %w", ErrInvalidTemplate, ErrEmptyTemplateName)
	}

	if strings.TrimSpace(template.LogicalTemplate) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidTemplate, ErrEmptyLogicalTemplate)
	}

	return nil
}

// ValidateLogicalTemplate validates a parsed LogicalTemplate.
//
// Validation rules:
//   - At least one focus concept
//   - Every attribute has a type
//   - Every attribute has at most one of Value, ValueAllowableRangeECL, ValueSlotReference
//   - Every attribute group has at least one attribute
func ValidateLogicalTemplate(template *LogicalTemplate) error {
	if template == nil {
		return fmt.Errorf("%w: logical template is nil", ErrInvalidTemplate)
	}

	if len(template.FocusConcepts) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidTemplate, ErrNoFocusConcept)
	}

	for i, group := range template.AttributeGroups {
		if len(group.Attributes) == 0 {
			return fmt.Errorf("%w: group %d: %w", ErrInvalidTemplate, i+1, ErrEmptyAttributeGroup)
		}
	}

	for _, attr := range template.AllAttributes() {
		if err := ValidateAttribute(attr); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidTemplate, err)
		}
	}

	return nil
}

// ValidateAttribute checks a single attribute.
func ValidateAttribute(attr Attribute) error {
	if attr.Type == "" {
		return ErrEmptyAttributeType
	}

	sources := 0
	for _, v := range []string{attr.Value, attr.ValueAllowableRangeECL, attr.ValueSlotReference} {
		if v != "" {
			sources++
		}
	}
	if sources > 1 {
		return fmt.Errorf("%w: type %s", ErrAmbiguousAttributeValue, attr.Type)
	}

	return nil
}
