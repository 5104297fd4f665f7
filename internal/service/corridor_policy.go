package service

import (
	"github.com/shopspring/decimal"

	"github.com/przhevallsky/transferboss/internal/models"
)

type CorridorPolicy interface {
	Rule(corridor models.Corridor) (models.CorridorRule, bool)
}

type StaticCorridorPolicy struct {
	rules map[string]models.CorridorRule
}

func NewStaticCorridorPolicy(rules []models.CorridorRule) *StaticCorridorPolicy {
	p := &StaticCorridorPolicy{rules: make(map[string]models.CorridorRule, len(rules))}
	for _, r := range rules {
		p.rules[r.Corridor.ID()] = r
	}
	return p
}

func (p *StaticCorridorPolicy) Rule(corridor models.Corridor) (models.CorridorRule, bool) {
	r, ok := p.rules[corridor.ID()]
	return r, ok
}

func DefaultCorridorRules() []models.CorridorRule {
	return []models.CorridorRule{
		{
			Corridor:        models.Corridor{SourceCountry: "US", DestCountry: "PH"},
			DeliveryMethods: []models.DeliveryMethod{models.DeliveryBankDeposit, models.DeliveryCashPickup, models.DeliveryMobileWallet},
			MinimumAmount:   decimal.RequireFromString("10.00"),
		},
		{
			Corridor:        models.Corridor{SourceCountry: "US", DestCountry: "MX"},
			DeliveryMethods: []models.DeliveryMethod{models.DeliveryBankDeposit, models.DeliveryCashPickup},
			MinimumAmount:   decimal.RequireFromString("10.00"),
		},
		{
			Corridor:        models.Corridor{SourceCountry: "GB", DestCountry: "IN"},
			DeliveryMethods: []models.DeliveryMethod{models.DeliveryBankDeposit, models.DeliveryMobileWallet},
			MinimumAmount:   decimal.RequireFromString("5.00"),
		},
		{
			Corridor:        models.Corridor{SourceCountry: "US", DestCountry: "IN"},
			DeliveryMethods: []models.DeliveryMethod{models.DeliveryBankDeposit, models.DeliveryMobileWallet},
			MinimumAmount:   decimal.RequireFromString("10.00"),
		},
	}
}
