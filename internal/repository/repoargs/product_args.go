package repoargs

import "github.com/shopspring/decimal"

type ProductCreate struct {
	Name  string
	Stock int64
	Price decimal.Decimal
}

type ProductUpdate struct {
	Name  string
	Stock int64
	Price decimal.Decimal
}
