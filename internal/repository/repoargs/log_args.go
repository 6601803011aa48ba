package repoargs

import "github.com/fsdevblog/groph-market/internal/domain"

type LogCreate struct {
	CustomerID int64
	// OrderID опционален: часть записей аудита (например об ошибках валидации)
	// не привязана к конкретному заказу.
	OrderID *int64
	LogType domain.LogType
	Details string
}
