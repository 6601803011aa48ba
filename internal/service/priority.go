package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fsdevblog/groph-market/internal/domain"
)

var (
	basePriorityStandard = decimal.NewFromInt(10)
	basePriorityPremium  = decimal.NewFromInt(20)
	// waitingSecondFactor - прибавка к скору за каждую секунду ожидания.
	waitingSecondFactor = decimal.NewFromFloat(0.5)
)

// ScoreBreakdown - разложение скора приоритета по слагаемым. Используется целиком
// в записи аудита этапа подтверждения; в самом заказе замораживается только Total.
type ScoreBreakdown struct {
	Base           decimal.Decimal
	WaitingSeconds float64
	WaitingScore   decimal.Decimal
	Total          decimal.Decimal
}

// ScoreOrder считает скор приоритета: база 20 для Premium и 10 для Standard плюс
// 0.5 за каждую секунду ожидания (доли секунд учитываются). Чистая функция,
// детерминирована по своим трем аргументам. Больший скор - выше приоритет.
func ScoreOrder(tier domain.CustomerTier, createdAt, now time.Time) ScoreBreakdown {
	base := basePriorityStandard
	if tier == domain.TierPremium {
		base = basePriorityPremium
	}

	waitingSeconds := now.Sub(createdAt).Seconds()
	waitingScore := decimal.NewFromFloat(waitingSeconds).Mul(waitingSecondFactor)

	return ScoreBreakdown{
		Base:           base,
		WaitingSeconds: waitingSeconds,
		WaitingScore:   waitingScore,
		Total:          base.Add(waitingScore),
	}
}

// PriorityScore - сокращение для вызывающих, которым нужен только итоговый скор.
func PriorityScore(tier domain.CustomerTier, createdAt, now time.Time) decimal.Decimal {
	return ScoreOrder(tier, createdAt, now).Total
}
