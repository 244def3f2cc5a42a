package model

import (
	"github.com/AlexDev08/OpenCRE-migration/defs"
	"github.com/AlexDev08/OpenCRE-migration/internal/search"
	"gorm.io/gorm"
)

// CRE is a reusable requirement. The name identifies it, the external id is an
// optional alternate key assigned by the caller.
type CRE struct {
	gorm.Model
	ExternalID  string `gorm:"index:idx_cre_external_id"`
	Name        string `gorm:"uniqueIndex:idx_cre_name;not null"`
	Description string
	Tags        string // comma delimited
}

func (c *CRE) TableName() string {
	return "cre"
}

// CREFromDB converts a stored CRE into a linkless document.
func CREFromDB(c *CRE) defs.Document {
	doc := defs.NewCRE(c.ExternalID, c.Name, c.Description)
	doc.Tags = search.SplitTags(c.Tags)
	return doc
}

// CREToDB converts a document into an unsaved CRE row.
func CREToDB(doc defs.Document) *CRE {
	return &CRE{
		ExternalID:  doc.ID,
		Name:        doc.Name,
		Description: doc.Description,
		Tags:        search.JoinTags(doc.Tags),
	}
}
