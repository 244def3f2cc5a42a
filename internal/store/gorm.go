package store

import (
	"context"
	"errors"

	"github.com/AlexDev08/OpenCRE-migration/internal/model"
	"github.com/AlexDev08/OpenCRE-migration/internal/search"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db: db,
	}
}

var _ Store = (*GormStore)(nil)

type GormStore struct {
	db *gorm.DB
}

// first loads a single row into dest, ErrNotFound when nothing matches.
// Limit+Find keeps gorm from logging a missing row as an error.
func first(tx *gorm.DB, dest any) error {
	res := tx.Limit(1).Find(dest)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// filterColumn adds an exact or LIKE condition for a non-empty filter value.
func filterColumn(tx *gorm.DB, column, value string, partial bool) *gorm.DB {
	if value == "" {
		return tx
	}
	if partial {
		return tx.Where(column+` LIKE ? ESCAPE '\'`, search.LikePattern(value))
	}
	return tx.Where(column+" = ?", value)
}

// like is the substring pattern for free text.
func like(text string) string {
	return "%" + search.EscapeLike(text) + "%"
}

func (g *GormStore) FindOrCreateCRE(ctx context.Context, cre *model.CRE) (*model.CRE, bool, error) {
	existing, err := g.GetCREByName(ctx, cre.Name)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	res := g.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(cre)
	if res.Error != nil {
		return nil, false, res.Error
	}

	// someone else inserted the same name in the meantime
	if res.RowsAffected == 0 {
		existing, err = g.GetCREByName(ctx, cre.Name)
		return existing, false, err
	}

	return cre, true, nil
}

func (g *GormStore) GetCRE(ctx context.Context, id uint) (*model.CRE, error) {
	var cre model.CRE
	if err := first(g.db.WithContext(ctx).Where("id = ?", id), &cre); err != nil {
		return nil, err
	}
	return &cre, nil
}

func (g *GormStore) GetCREByName(ctx context.Context, name string) (*model.CRE, error) {
	var cre model.CRE
	if err := first(g.db.WithContext(ctx).Where("name = ?", name), &cre); err != nil {
		return nil, err
	}
	return &cre, nil
}

func (g *GormStore) ListCREs(ctx context.Context, filter CREFilter) ([]*model.CRE, error) {
	tx := g.db.WithContext(ctx).Model(&model.CRE{})
	tx = filterColumn(tx, "external_id", filter.ExternalID, filter.Partial)
	tx = filterColumn(tx, "name", filter.Name, filter.Partial)
	tx = filterColumn(tx, "description", filter.Description, filter.Partial)

	var cres []*model.CRE
	if err := tx.Order("id").Find(&cres).Error; err != nil {
		return nil, err
	}

	if !filter.Partial {
		return cres, nil
	}

	// LIKE ignores case on sqlite, partial filters do not
	matched := cres[:0]
	for _, c := range cres {
		if matchFilter(filter.ExternalID, c.ExternalID, true) &&
			matchFilter(filter.Name, c.Name, true) &&
			matchFilter(filter.Description, c.Description, true) {
			matched = append(matched, c)
		}
	}
	return matched, nil
}

func (g *GormStore) ListCREsFromIDs(ctx context.Context, ids []uint) ([]*model.CRE, error) {
	var cres []*model.CRE
	if len(ids) == 0 {
		return cres, nil
	}
	err := g.db.WithContext(ctx).Where("id in (?)", ids).Order("id").Find(&cres).Error
	return cres, err
}

func (g *GormStore) ListAllCREs(ctx context.Context) ([]*model.CRE, error) {
	var cres []*model.CRE
	err := g.db.WithContext(ctx).Order("name").Find(&cres).Error
	return cres, err
}

func (g *GormStore) ListCREsByTags(ctx context.Context, tags []string) ([]*model.CRE, error) {
	if len(tags) == 0 {
		return nil, nil
	}

	tx := g.db.WithContext(ctx).Model(&model.CRE{})
	for _, tag := range tags {
		tx = tx.Where(`tags LIKE ? ESCAPE '\'`, like(tag))
	}

	var cres []*model.CRE
	if err := tx.Order("id").Find(&cres).Error; err != nil {
		return nil, err
	}

	matched := cres[:0]
	for _, c := range cres {
		if search.MatchTags(c.Tags, tags) {
			matched = append(matched, c)
		}
	}
	return matched, nil
}

func (g *GormStore) SearchCREs(ctx context.Context, text string) ([]*model.CRE, error) {
	if text == "" {
		return nil, nil
	}

	var cres []*model.CRE
	pattern := like(text)
	err := g.db.WithContext(ctx).
		Where(`name LIKE ? ESCAPE '\' OR external_id LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\'`, pattern, pattern, pattern).
		Order("id").
		Find(&cres).Error
	if err != nil {
		return nil, err
	}

	matched := cres[:0]
	for _, c := range cres {
		if search.ContainsAny(text, c.Name, c.ExternalID, c.Description) {
			matched = append(matched, c)
		}
	}
	return matched, nil
}

func (g *GormStore) FindOrCreateStandard(ctx context.Context, standard *model.Standard) (*model.Standard, bool, error) {
	existing, err := g.getStandardByKey(ctx, standard.Name, standard.Section, standard.Subsection)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	res := g.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(standard)
	if res.Error != nil {
		return nil, false, res.Error
	}

	if res.RowsAffected == 0 {
		existing, err = g.getStandardByKey(ctx, standard.Name, standard.Section, standard.Subsection)
		return existing, false, err
	}

	return standard, true, nil
}

func (g *GormStore) getStandardByKey(ctx context.Context, name, section, subsection string) (*model.Standard, error) {
	var standard model.Standard
	tx := g.db.WithContext(ctx).Where("name = ? AND section = ? AND subsection = ?", name, section, subsection)
	if err := first(tx, &standard); err != nil {
		return nil, err
	}
	return &standard, nil
}

func (g *GormStore) GetStandard(ctx context.Context, id uint) (*model.Standard, error) {
	var standard model.Standard
	if err := first(g.db.WithContext(ctx).Where("id = ?", id), &standard); err != nil {
		return nil, err
	}
	return &standard, nil
}

func (g *GormStore) ListStandards(ctx context.Context, filter StandardFilter) ([]*model.Standard, error) {
	tx := g.db.WithContext(ctx).Model(&model.Standard{})
	tx = filterColumn(tx, "name", filter.Name, filter.Partial)
	tx = filterColumn(tx, "section", filter.Section, filter.Partial)
	tx = filterColumn(tx, "subsection", filter.Subsection, filter.Partial)
	tx = filterColumn(tx, "link", filter.Hyperlink, filter.Partial)
	tx = filterColumn(tx, "version", filter.Version, filter.Partial)

	var standards []*model.Standard
	if err := tx.Order("name").Order("section").Order("subsection").Order("id").Find(&standards).Error; err != nil {
		return nil, err
	}

	if !filter.Partial {
		return standards, nil
	}

	matched := standards[:0]
	for _, s := range standards {
		if matchFilter(filter.Name, s.Name, true) &&
			matchFilter(filter.Section, s.Section, true) &&
			matchFilter(filter.Subsection, s.Subsection, true) &&
			matchFilter(filter.Hyperlink, s.Hyperlink, true) &&
			matchFilter(filter.Version, s.Version, true) {
			matched = append(matched, s)
		}
	}
	return matched, nil
}

func (g *GormStore) ListStandardsFromIDs(ctx context.Context, ids []uint) ([]*model.Standard, error) {
	var standards []*model.Standard
	if len(ids) == 0 {
		return standards, nil
	}
	err := g.db.WithContext(ctx).Where("id in (?)", ids).Order("id").Find(&standards).Error
	return standards, err
}

func (g *GormStore) ListStandardsWithAnyField(ctx context.Context, values []string) ([]*model.Standard, error) {
	var standards []*model.Standard
	if len(values) == 0 {
		return standards, nil
	}
	err := g.db.WithContext(ctx).
		Where("name in (?) OR section in (?) OR subsection in (?)", values, values, values).
		Order("name").Order("section").Order("subsection").Order("id").
		Find(&standards).Error
	return standards, err
}

func (g *GormStore) ListStandardNames(ctx context.Context) ([]string, error) {
	var names []string
	err := g.db.WithContext(ctx).Model(&model.Standard{}).Distinct("name").Order("name").Pluck("name", &names).Error
	return names, err
}

func (g *GormStore) ListStandardsByTags(ctx context.Context, tags []string) ([]*model.Standard, error) {
	if len(tags) == 0 {
		return nil, nil
	}

	tx := g.db.WithContext(ctx).Model(&model.Standard{})
	for _, tag := range tags {
		tx = tx.Where(`tags LIKE ? ESCAPE '\'`, like(tag))
	}

	var standards []*model.Standard
	if err := tx.Order("id").Find(&standards).Error; err != nil {
		return nil, err
	}

	matched := standards[:0]
	for _, s := range standards {
		if search.MatchTags(s.Tags, tags) {
			matched = append(matched, s)
		}
	}
	return matched, nil
}

func (g *GormStore) SearchStandards(ctx context.Context, text string) ([]*model.Standard, error) {
	if text == "" {
		return nil, nil
	}

	var standards []*model.Standard
	pattern := like(text)
	err := g.db.WithContext(ctx).
		Where(`name LIKE ? ESCAPE '\' OR section LIKE ? ESCAPE '\' OR subsection LIKE ? ESCAPE '\' OR link LIKE ? ESCAPE '\'`, pattern, pattern, pattern, pattern).
		Order("id").
		Find(&standards).Error
	if err != nil {
		return nil, err
	}

	matched := standards[:0]
	for _, s := range standards {
		if search.ContainsAny(text, s.Name, s.Section, s.Subsection, s.Hyperlink) {
			matched = append(matched, s)
		}
	}
	return matched, nil
}

func (g *GormStore) CreateLink(ctx context.Context, link *model.Link) (bool, error) {
	var existing model.Link
	err := first(g.db.WithContext(ctx).Where("cre_id = ? AND standard_id = ? AND type = ?", link.CreID, link.StandardID, link.Type), &existing)
	if err == nil {
		*link = existing
		return false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return false, err
	}

	res := g.db.WithContext(ctx).Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(link)
	return res.RowsAffected > 0, res.Error
}

func (g *GormStore) ListLinks(ctx context.Context) ([]*model.Link, error) {
	var links []*model.Link
	err := g.db.WithContext(ctx).Order("id").Find(&links).Error
	return links, err
}

func (g *GormStore) ListLinksOfCREs(ctx context.Context, creIDs []uint) ([]*model.Link, error) {
	var links []*model.Link
	if len(creIDs) == 0 {
		return links, nil
	}
	err := g.db.WithContext(ctx).Where("cre_id in (?)", creIDs).Order("id").Find(&links).Error
	return links, err
}

func (g *GormStore) ListLinksOfStandards(ctx context.Context, standardIDs []uint) ([]*model.Link, error) {
	var links []*model.Link
	if len(standardIDs) == 0 {
		return links, nil
	}
	err := g.db.WithContext(ctx).Where("standard_id in (?)", standardIDs).Order("id").Find(&links).Error
	return links, err
}

func (g *GormStore) ListCREsOfStandard(ctx context.Context, standardID uint) ([]*model.CRE, error) {
	var cres []*model.CRE
	err := g.db.WithContext(ctx).Model(&model.CRE{}).
		Select("cre.*").
		Joins("JOIN cre_links ON cre_links.cre_id = cre.id AND cre_links.deleted_at IS NULL").
		Where("cre_links.standard_id = ?", standardID).
		Order("cre_links.id").
		Find(&cres).Error
	return cres, err
}

func (g *GormStore) CreateInternalLink(ctx context.Context, link *model.InternalLink) (bool, error) {
	var existing model.InternalLink
	err := first(g.db.WithContext(ctx).Where("group_id = ? AND cre_id = ?", link.GroupID, link.CreID), &existing)
	if err == nil {
		if existing.Type != link.Type {
			logrus.Warnf("internal link %d -> %d exists with type %q, ignoring type %q", link.GroupID, link.CreID, existing.Type, link.Type)
		}
		*link = existing
		return false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return false, err
	}

	res := g.db.WithContext(ctx).Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(link)
	return res.RowsAffected > 0, res.Error
}

func (g *GormStore) ListInternalLinks(ctx context.Context) ([]*model.InternalLink, error) {
	var links []*model.InternalLink
	err := g.db.WithContext(ctx).Order("id").Find(&links).Error
	return links, err
}

func (g *GormStore) ListInternalLinksOf(ctx context.Context, creID uint) ([]*model.InternalLink, error) {
	var links []*model.InternalLink
	err := g.db.WithContext(ctx).Where("group_id = ? OR cre_id = ?", creID, creID).Order("id").Find(&links).Error
	return links, err
}

func (g *GormStore) ListGroupsOf(ctx context.Context, creID uint) ([]*model.CRE, error) {
	var cres []*model.CRE
	err := g.db.WithContext(ctx).Model(&model.CRE{}).
		Select("cre.*").
		Joins("JOIN cre_internal_links ON cre_internal_links.group_id = cre.id AND cre_internal_links.deleted_at IS NULL").
		Where("cre_internal_links.cre_id = ?", creID).
		Order("cre_internal_links.id").
		Find(&cres).Error
	return cres, err
}

func (g *GormStore) MaxInternalConnections(ctx context.Context) (int64, error) {
	var counts []int64
	err := g.db.WithContext(ctx).Model(&model.InternalLink{}).
		Select("COUNT(DISTINCT cre_id) AS children").
		Group("group_id").
		Order("children DESC").
		Limit(1).
		Pluck("children", &counts).Error
	if err != nil || len(counts) == 0 {
		return 0, err
	}
	return counts[0], nil
}

func (g *GormStore) Migrate() error {
	return model.Migrate(g.db)
}

func (g *GormStore) Transaction(ctx context.Context, f func(tx Store) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return f(&GormStore{db: tx})
	})
}

func matchFilter(filter, value string, partial bool) bool {
	return filter == "" || search.MatchFilter(filter, value, partial)
}
