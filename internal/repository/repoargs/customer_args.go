package repoargs

import (
	"github.com/shopspring/decimal"

	"github.com/fsdevblog/groph-market/internal/domain"
)

type CustomerCreate struct {
	Name       string
	Tier       domain.CustomerTier
	Budget     decimal.Decimal
	TotalSpent decimal.Decimal
}

type CustomerUpdate struct {
	Name   string
	Tier   domain.CustomerTier
	Budget decimal.Decimal
}
