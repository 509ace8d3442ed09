package templates

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/poiesic/conformit/core"
	"github.com/poiesic/conformit/lexical"
	"github.com/poiesic/conformit/logical"
	"github.com/poiesic/conformit/storage"
)

// ErrRepositoryRequired is returned when NewService is called without a repository.
var ErrRepositoryRequired = errors.New("template repository is required")

// Service loads and saves concept templates.
type Service struct {
	repo   storage.TemplateRepository
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewService creates a template service backed by repo.
func NewService(repo storage.TemplateRepository, opts ...Option) (*Service, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	s := &Service{
		repo:   repo,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// LoadTemplate returns the template with the given name.
// Returns an error wrapping core.ErrNotFound when no such template exists.
func (s *Service) LoadTemplate(ctx context.Context, name string) (*core.ConceptTemplate, error) {
	template, err := s.repo.GetTemplate(ctx, name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: template %q", core.ErrNotFound, name)
		}
		return nil, err
	}
	return template, nil
}

// List returns every stored template ordered by name.
func (s *Service) List(ctx context.Context) ([]*core.ConceptTemplate, error) {
	return s.repo.ListTemplates(ctx)
}

// Save derives the computed parts of template and stores it.
// The caller's template is not modified; the stored form is returned.
func (s *Service) Save(ctx context.Context, template *core.ConceptTemplate) (*core.ConceptTemplate, error) {
	prepared, err := Prepare(template)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveTemplates(ctx, prepared); err != nil {
		return nil, err
	}
	s.logger.Debug("saved template", "name", prepared.Name, "version", prepared.Version)
	return prepared, nil
}

// Delete removes the named templates.
// Returns an error wrapping core.ErrNotFound if any of them does not exist.
func (s *Service) Delete(ctx context.Context, names ...string) error {
	err := s.repo.DeleteTemplates(ctx, names...)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: %w", core.ErrNotFound, err)
	}
	return err
}

// Prepare returns a copy of template with its derived parts recomputed:
// the focus concept, the outline relationships and each description's initial term.
func Prepare(template *core.ConceptTemplate) (*core.ConceptTemplate, error) {
	if err := core.ValidateConceptTemplate(template); err != nil {
		return nil, err
	}
	out := strip(template)

	lt, err := logical.Parse(out.LogicalTemplate)
	if err != nil {
		return nil, fmt.Errorf("template %q: %w", out.Name, err)
	}
	if err := core.ValidateLogicalTemplate(lt); err != nil {
		return nil, fmt.Errorf("template %q: %w", out.Name, err)
	}

	out.FocusConcept = lt.FocusConcepts[0]
	out.Relationships = outlineRelationships(lt)
	if err := fillInitialTerms(out); err != nil {
		return nil, fmt.Errorf("template %q: %w", out.Name, err)
	}
	return out, nil
}

// strip copies template without its derived parts.
func strip(template *core.ConceptTemplate) *core.ConceptTemplate {
	out := *template
	out.FocusConcept = ""
	out.Relationships = nil
	out.LexicalTemplates = slices.Clone(template.LexicalTemplates)
	out.AdditionalSlots = slices.Clone(template.AdditionalSlots)
	out.Descriptions = slices.Clone(template.Descriptions)
	for i := range out.Descriptions {
		out.Descriptions[i].InitialTerm = ""
	}
	return &out
}

// outlineRelationships lists an IS-A relationship per focus concept and the
// ungrouped attributes in group 0, then the attributes of the i-th group in group i+1.
func outlineRelationships(lt *core.LogicalTemplate) []core.RelationshipTemplate {
	var rels []core.RelationshipTemplate
	for _, focus := range lt.FocusConcepts {
		rels = append(rels, core.RelationshipTemplate{GroupID: 0, Type: core.IsA, Target: focus})
	}
	for _, attr := range lt.UngroupedAttributes {
		rels = append(rels, relationshipFor(0, attr))
	}
	for i, group := range lt.AttributeGroups {
		for _, attr := range group.Attributes {
			rels = append(rels, relationshipFor(i+1, attr))
		}
	}
	return rels
}

func relationshipFor(groupID int, attr core.Attribute) core.RelationshipTemplate {
	rel := core.RelationshipTemplate{
		GroupID:     groupID,
		Type:        attr.Type,
		Target:      attr.Value,
		Cardinality: attr.Cardinality,
	}
	if attr.ValueAllowableRangeECL != "" {
		rel.TargetSlot = attr.ValueSlotName
		rel.TargetRange = attr.ValueAllowableRangeECL
	}
	if attr.ValueSlotReference != "" {
		rel.TargetSlot = attr.ValueSlotReference
	}
	return rel
}

// fillInitialTerms replaces each $slot$ of a term template with the bracketed
// display name of its lexical template, or the bracketed slot name for additional slots.
func fillInitialTerms(t *core.ConceptTemplate) error {
	displayNames := make(map[string]string, len(t.LexicalTemplates))
	for _, lt := range t.LexicalTemplates {
		name := lt.DisplayName
		if name == "" {
			name = lt.Name
		}
		displayNames[lt.Name] = name
	}

	for i := range t.Descriptions {
		d := &t.Descriptions[i]
		slots, err := lexical.SlotNames(d.TermTemplate)
		if err != nil {
			return err
		}
		term := d.TermTemplate
		for _, slot := range slots {
			replacement, ok := displayNames[slot]
			if !ok {
				if !slices.Contains(t.AdditionalSlots, slot) {
					return fmt.Errorf("%w: term template names undeclared lexical template %q", core.ErrParse, slot)
				}
				replacement = slot
			}
			term = strings.ReplaceAll(term, "$"+slot+"$", "["+replacement+"]")
		}
		d.InitialTerm = term
	}
	return nil
}
