package store

import (
	"fmt"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/Mx2468/bellman-ford-arbitrage/pkg/types"
)

// Dao provides opportunity persistence.
type Dao struct {
	db *gorm.DB
}

// NewDao opens a MySQL connection and migrates the schema.
func NewDao(addr, schema, user, password string) (*Dao, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=utf8mb4&parseTime=true", user, password, addr, schema)
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	if err := db.AutoMigrate(&OpportunityRecord{}, &LegRecord{}); err != nil {
		return nil, fmt.Errorf("migrating store schema: %w", err)
	}
	return &Dao{db: db}, nil
}

// SaveOpportunities persists a detection run's opportunities.
func (d *Dao) SaveOpportunities(opportunities []*types.Opportunity) error {
	for _, opp := range opportunities {
		record := toRecord(opp)
		if err := d.db.Create(record).Error; err != nil {
			return fmt.Errorf("saving opportunity %s: %w", opp.ID, err)
		}
	}
	return nil
}

// Recent returns the most recent opportunities, newest first.
func (d *Dao) Recent(limit int) ([]*types.Opportunity, error) {
	if limit <= 0 {
		limit = 100
	}
	var records []*OpportunityRecord
	err := d.db.Order("detected_at desc").Limit(limit).Preload("Legs").Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("loading opportunities: %w", err)
	}

	opportunities := make([]*types.Opportunity, 0, len(records))
	for _, r := range records {
		opportunities = append(opportunities, fromRecord(r))
	}
	return opportunities, nil
}

func toRecord(opp *types.Opportunity) *OpportunityRecord {
	record := &OpportunityRecord{
		ExternalID: opp.ID,
		Path:       strings.Join(opp.Path, "->"),
		Multiplier: opp.Multiplier,
		ProfitBps:  opp.ProfitBps,
		Hops:       opp.Hops(),
		DetectedAt: opp.DetectedAt,
	}
	for i, leg := range opp.Legs {
		record.Legs = append(record.Legs, &LegRecord{
			Position:     i,
			FromCurrency: leg.From,
			ToCurrency:   leg.To,
			Rate:         leg.Rate,
			Fee:          leg.Fee,
		})
	}
	return record
}

func fromRecord(r *OpportunityRecord) *types.Opportunity {
	opp := &types.Opportunity{
		ID:         r.ExternalID,
		Path:       strings.Split(r.Path, "->"),
		Multiplier: r.Multiplier,
		ProfitBps:  r.ProfitBps,
		DetectedAt: r.DetectedAt,
	}
	legs := make([]types.Leg, len(r.Legs))
	for _, l := range r.Legs {
		if l.Position >= 0 && l.Position < len(legs) {
			legs[l.Position] = types.Leg{From: l.FromCurrency, To: l.ToCurrency, Rate: l.Rate, Fee: l.Fee}
		}
	}
	opp.Legs = legs
	return opp
}
