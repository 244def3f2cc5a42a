// Package defs holds the public document model: CREs and Standards with their typed links.
// Documents are projections rebuilt from the store on every read, never persisted directly.
package defs

import (
	"errors"
	"fmt"
	"strings"
)

// Doctype discriminates the document union.
type Doctype string

const (
	DoctypeCRE      Doctype = "CRE"
	DoctypeStandard Doctype = "Standard"
)

// ParseDoctype parses a doctype case-insensitively.
func ParseDoctype(s string) (Doctype, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cre":
		return DoctypeCRE, nil
	case "standard":
		return DoctypeStandard, nil
	}
	return "", fmt.Errorf("unknown doctype %q", s)
}

// LinkType is the type of an edge between two documents.
type LinkType string

const (
	LinkTypeSame     LinkType = "SAME"
	LinkTypeLinkedTo LinkType = "Linked To"
	LinkTypePartOf   LinkType = "Is Part Of"
	LinkTypeContains LinkType = "Contains"
	LinkTypeRelated  LinkType = "Related"
)

var ErrUnknownLinkType = errors.New("unknown link type")

var linkTypes = []LinkType{LinkTypeSame, LinkTypeLinkedTo, LinkTypePartOf, LinkTypeContains, LinkTypeRelated}

// ParseLinkType accepts both the stored value ("Linked To") and the
// compact name ("LinkedTo"), case-insensitively. Empty input parses as LinkedTo.
func ParseLinkType(s string) (LinkType, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return LinkTypeLinkedTo, nil
	}

	compact := strings.ToLower(strings.ReplaceAll(s, " ", ""))
	for _, lt := range linkTypes {
		if strings.ToLower(strings.ReplaceAll(string(lt), " ", "")) == compact {
			return lt, nil
		}
	}

	// "PartOf" is the name of "Is Part Of"
	if compact == "partof" {
		return LinkTypePartOf, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownLinkType, s)
}

// Inverse returns the type seen from the other end of the link.
func (t LinkType) Inverse() LinkType {
	switch t {
	case LinkTypeContains:
		return LinkTypePartOf
	case LinkTypePartOf:
		return LinkTypeContains
	}
	return t
}

// Link is a typed edge to another document.
type Link struct {
	Type     LinkType `json:"type" yaml:"type"`
	Document Document `json:"document" yaml:"document"`
}

// Document is either a CRE or a Standard, selected by Doctype.
// For CREs ID is the caller-assigned external id; Standards leave it empty.
type Document struct {
	Doctype     Doctype  `json:"doctype" yaml:"doctype"`
	ID          string   `json:"id,omitempty" yaml:"id,omitempty"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Section     string   `json:"section,omitempty" yaml:"section,omitempty"`
	Subsection  string   `json:"subsection,omitempty" yaml:"subsection,omitempty"`
	Hyperlink   string   `json:"hyperlink,omitempty" yaml:"hyperlink,omitempty"`
	Version     string   `json:"version,omitempty" yaml:"version,omitempty"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Links       []Link   `json:"links,omitempty" yaml:"links,omitempty"`
}

// NewCRE creates a linkless CRE document.
func NewCRE(id, name, description string) Document {
	return Document{Doctype: DoctypeCRE, ID: id, Name: name, Description: description}
}

// NewStandard creates a linkless Standard document.
func NewStandard(name, section, subsection, hyperlink string) Document {
	return Document{Doctype: DoctypeStandard, Name: name, Section: section, Subsection: subsection, Hyperlink: hyperlink}
}

func (d Document) IsCRE() bool {
	return d.Doctype == DoctypeCRE
}

func (d Document) IsStandard() bool {
	return d.Doctype == DoctypeStandard
}

// AddLink appends a link and returns the document for chaining.
func (d *Document) AddLink(l Link) *Document {
	d.Links = append(d.Links, l)
	return d
}

// Shallow returns a copy of the document without links.
func (d Document) Shallow() Document {
	d.Links = nil
	if d.Tags != nil {
		d.Tags = append([]string(nil), d.Tags...)
	}
	return d
}

// Key identifies the stored entity behind the document: the name for CREs,
// the name/section/subsection triple for Standards.
func (d Document) Key() string {
	if d.IsStandard() {
		return strings.Join([]string{string(DoctypeStandard), d.Name, d.Section, d.Subsection}, ":")
	}
	return string(DoctypeCRE) + ":" + d.Name
}

// Equal compares scalar fields and, recursively and in order, the links.
// Nil and empty slices are considered equal.
func (d Document) Equal(o Document) bool {
	if d.Doctype != o.Doctype ||
		d.ID != o.ID ||
		d.Name != o.Name ||
		d.Description != o.Description ||
		d.Section != o.Section ||
		d.Subsection != o.Subsection ||
		d.Hyperlink != o.Hyperlink ||
		d.Version != o.Version {
		return false
	}

	if len(d.Tags) != len(o.Tags) || len(d.Links) != len(o.Links) {
		return false
	}

	for i := range d.Tags {
		if d.Tags[i] != o.Tags[i] {
			return false
		}
	}

	for i := range d.Links {
		if d.Links[i].Type != o.Links[i].Type || !d.Links[i].Document.Equal(o.Links[i].Document) {
			return false
		}
	}

	return true
}

func (d Document) String() string {
	return d.Key()
}
