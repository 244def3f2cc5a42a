package model

import (
	"gorm.io/gorm"
)

// Link connects a CRE to a standard. A (cre, standard, type) triple is stored once.
type Link struct {
	gorm.Model
	Type       string    `gorm:"not null;default:'Linked To';uniqueIndex:idx_link_key"`
	CreID      uint      `gorm:"not null;uniqueIndex:idx_link_key;index:idx_links_cre_id"`
	StandardID uint      `gorm:"not null;uniqueIndex:idx_link_key;index:idx_links_standard_id"`
	CRE        *CRE      `gorm:"foreignKey:CreID;references:ID"`
	Standard   *Standard `gorm:"foreignKey:StandardID;references:ID"`
}

func (l *Link) TableName() string {
	return "cre_links"
}

// InternalLink is a directed group -> cre edge of the CRE hierarchy.
// The edges never form a cycle.
type InternalLink struct {
	gorm.Model
	Type    string `gorm:"not null;default:'Contains'"`
	GroupID uint   `gorm:"not null;uniqueIndex:idx_internal_link_key;index:idx_internal_links_group_id"`
	CreID   uint   `gorm:"not null;uniqueIndex:idx_internal_link_key;index:idx_internal_links_cre_id"`
	Group   *CRE   `gorm:"foreignKey:GroupID;references:ID"`
	CRE     *CRE   `gorm:"foreignKey:CreID;references:ID"`
}

func (l *InternalLink) TableName() string {
	return "cre_internal_links"
}
