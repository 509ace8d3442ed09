package core

import (
	"errors"
	"testing"
)

func TestValidateConceptTemplate(t *testing.T) {
	tests := []struct {
		name     string
		template *ConceptTemplate
		wantErr  error
	}{
		{
			name: "valid template",
			template: &ConceptTemplate{
				Name:            "CT guided procedure",
				LogicalTemplate: "71388002 |Procedure|",
			},
			wantErr: nil,
		},
		{
			name:     "nil template",
			template: nil,
			wantErr:  ErrInvalidTemplate,
		},
		{
			name: "empty name",
			template: &ConceptTemplate{
				LogicalTemplate: "71388002",
			},
			wantErr: ErrEmptyTemplateName,
		},
		{
			name: "blank logical template",
			template: &ConceptTemplate{
				Name:            "x",
				LogicalTemplate: "   ",
			},
			wantErr: ErrEmptyLogicalTemplate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConceptTemplate(tt.template)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateConceptTemplate() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateConceptTemplate() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidTemplate) {
				t.Errorf("ValidateConceptTemplate() error = %v, want wrapped ErrInvalidTemplate", err)
			}
		})
	}
}

func TestValidateLogicalTemplate(t *testing.T) {
	tests := []struct {
		name     string
		template *LogicalTemplate
		wantErr  error
	}{
		{
			name: "valid template",
			template: &LogicalTemplate{
				FocusConcepts: []string{"71388002"},
				AttributeGroups: []AttributeGroup{
					{Attributes: []Attribute{{Type: "260686004", Value: "312251004"}}},
				},
			},
			wantErr: nil,
		},
		{
			name: "slot name alongside range is allowed",
			template: &LogicalTemplate{
				FocusConcepts: []string{"71388002"},
				UngroupedAttributes: []Attribute{
					{Type: "246075003", ValueAllowableRangeECL: "<105590001", ValueSlotName: "substance"},
				},
			},
			wantErr: nil,
		},
		{
			name:     "nil template",
			template: nil,
			wantErr:  ErrInvalidTemplate,
		},
		{
			name:     "no focus concept",
			template: &LogicalTemplate{},
			wantErr:  ErrNoFocusConcept,
		},
		{
			name: "empty attribute type",
			template: &LogicalTemplate{
				FocusConcepts:       []string{"71388002"},
				UngroupedAttributes: []Attribute{{Value: "1"}},
			},
			wantErr: ErrEmptyAttributeType,
		},
		{
			name: "empty group",
			template: &LogicalTemplate{
				FocusConcepts:   []string{"71388002"},
				AttributeGroups: []AttributeGroup{{Cardinality: Exactly(1)}},
			},
			wantErr: ErrEmptyAttributeGroup,
		},
		{
			name: "value and range both set",
			template: &LogicalTemplate{
				FocusConcepts: []string{"71388002"},
				AttributeGroups: []AttributeGroup{
					{Attributes: []Attribute{{Type: "t", Value: "1", ValueAllowableRangeECL: "<2"}}},
				},
			},
			wantErr: ErrAmbiguousAttributeValue,
		},
		{
			name: "range and slot reference both set",
			template: &LogicalTemplate{
				FocusConcepts:       []string{"71388002"},
				UngroupedAttributes: []Attribute{{Type: "t", ValueAllowableRangeECL: "<2", ValueSlotReference: "x"}},
			},
			wantErr: ErrAmbiguousAttributeValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLogicalTemplate(tt.template)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateLogicalTemplate() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateLogicalTemplate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
