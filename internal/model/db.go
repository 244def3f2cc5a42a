package model

import "gorm.io/gorm"

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&CRE{}); err != nil {
		return err
	}

	if err := db.AutoMigrate(&Standard{}); err != nil {
		return err
	}

	if err := db.AutoMigrate(&Link{}); err != nil {
		return err
	}

	if err := db.AutoMigrate(&InternalLink{}); err != nil {
		return err
	}

	return nil
}
