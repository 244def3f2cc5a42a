package service

import (
	"context"
	"fmt"

	"github.com/AlexDev08/OpenCRE-migration/defs"
	"github.com/AlexDev08/OpenCRE-migration/internal/model"
	mapset "github.com/deckarep/golang-set/v2"
)

// Import registers a document tree, the inverse of Export. Linked documents
// are imported with their own links, each document once. A CRE linking
// another CRE as Is Part Of becomes the child of that CRE, an untyped link
// between CREs is Contains.
func (s *CREService) Import(ctx context.Context, doc defs.Document) error {
	visited := mapset.NewThreadUnsafeSet[string]()
	switch {
	case doc.IsCRE():
		_, err := s.importCRE(ctx, doc, visited)
		return err
	case doc.IsStandard():
		_, err := s.importStandard(ctx, doc, visited)
		return err
	}
	return fmt.Errorf("%w: unknown doctype %q", ErrInvalidDocument, doc.Doctype)
}

func (s *CREService) importCRE(ctx context.Context, doc defs.Document, visited mapset.Set[string]) (*model.CRE, error) {
	cre, err := s.AddCRE(ctx, doc)
	if err != nil {
		return nil, err
	}
	// shallow copies and documents already walked are only registered
	if len(doc.Links) == 0 || !visited.Add(doc.Key()) {
		return cre, nil
	}

	for _, l := range doc.Links {
		switch {
		case l.Document.IsStandard():
			standard, err := s.importStandard(ctx, l.Document, visited)
			if err != nil {
				return nil, err
			}
			if err := s.AddLink(ctx, cre, standard, l.Type); err != nil {
				return nil, err
			}
		case l.Document.IsCRE():
			other, err := s.importCRE(ctx, l.Document, visited)
			if err != nil {
				return nil, err
			}
			if err := s.importInternalLink(ctx, cre, other, l.Type); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("%w: %q links a document without doctype", ErrInvalidDocument, doc.Name)
		}
	}

	return cre, nil
}

func (s *CREService) importInternalLink(ctx context.Context, cre, other *model.CRE, lt defs.LinkType) error {
	if lt == "" {
		return s.AddInternalLink(ctx, cre, other, defs.LinkTypeContains)
	}

	lt, err := defs.ParseLinkType(string(lt))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLinkType, err)
	}

	if lt == defs.LinkTypePartOf {
		return s.AddInternalLink(ctx, other, cre, defs.LinkTypeContains)
	}
	return s.AddInternalLink(ctx, cre, other, lt)
}

func (s *CREService) importStandard(ctx context.Context, doc defs.Document, visited mapset.Set[string]) (*model.Standard, error) {
	standard, err := s.AddStandard(ctx, doc)
	if err != nil {
		return nil, err
	}
	if len(doc.Links) == 0 || !visited.Add(doc.Key()) {
		return standard, nil
	}

	for _, l := range doc.Links {
		if !l.Document.IsCRE() {
			return nil, fmt.Errorf("%w: standard %q can only link CREs", ErrInvalidDocument, doc.Name)
		}

		cre, err := s.importCRE(ctx, l.Document, visited)
		if err != nil {
			return nil, err
		}
		if err := s.AddLink(ctx, cre, standard, l.Type); err != nil {
			return nil, err
		}
	}

	return standard, nil
}
