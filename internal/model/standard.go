package model

import (
	"github.com/AlexDev08/OpenCRE-migration/defs"
	"github.com/AlexDev08/OpenCRE-migration/internal/search"
	"gorm.io/gorm"
)

// Standard is a section of an external document. Changing any of name,
// section or subsection yields a different standard.
type Standard struct {
	gorm.Model
	Name       string `gorm:"uniqueIndex:idx_standard_key;not null"`
	Section    string `gorm:"uniqueIndex:idx_standard_key"`
	Subsection string `gorm:"uniqueIndex:idx_standard_key"`
	Hyperlink  string `gorm:"column:link"`
	Version    string
	Tags       string // comma delimited
}

func (s *Standard) TableName() string {
	return "standards"
}

// StandardFromDB converts a stored standard into a linkless document.
func StandardFromDB(s *Standard) defs.Document {
	doc := defs.NewStandard(s.Name, s.Section, s.Subsection, s.Hyperlink)
	doc.Version = s.Version
	doc.Tags = search.SplitTags(s.Tags)
	return doc
}

// StandardToDB converts a document into an unsaved standard row.
func StandardToDB(doc defs.Document) *Standard {
	return &Standard{
		Name:       doc.Name,
		Section:    doc.Section,
		Subsection: doc.Subsection,
		Hyperlink:  doc.Hyperlink,
		Version:    doc.Version,
		Tags:       search.JoinTags(doc.Tags),
	}
}
