// Package fsm проверяет переходы статусов заказа по закрытой таблице domain.Transitions.
package fsm

import (
	"context"
	"errors"

	loopfsm "github.com/looplab/fsm"

	"github.com/fsdevblog/groph-market/internal/domain"
)

// events - таблица domain.Transitions, сгруппированная в формат looplab/fsm.
// Переходы с одинаковой парой событие+назначение объединяются в один EventDesc
// с несколькими исходными статусами.
var events = buildEvents()

func buildEvents() []loopfsm.EventDesc {
	type key struct {
		event string
		dst   string
	}
	grouped := make(map[key][]string)
	var order []key

	for _, t := range domain.Transitions {
		k := key{event: string(t.Event), dst: string(t.Dst)}
		if _, ok := grouped[k]; !ok {
			order = append(order, k)
		}
		grouped[k] = append(grouped[k], string(t.Src))
	}

	out := make([]loopfsm.EventDesc, 0, len(order))
	for _, k := range order {
		out = append(out, loopfsm.EventDesc{
			Name: k.event,
			Src:  grouped[k],
			Dst:  k.dst,
		})
	}
	return out
}

type Validator struct{}

func New() *Validator {
	return &Validator{}
}

// Apply проверяет допустимость события event из статуса current и возвращает
// целевой статус. looplab/fsm хранит текущее состояние внутри себя, поэтому
// на каждый вызов создается короткоживущий экземпляр машины.
// Для недопустимого перехода возвращается *domain.TransitionError.
func (v *Validator) Apply(
	ctx context.Context,
	current domain.OrderStatusType,
	event domain.OrderEvent,
) (domain.OrderStatusType, error) {
	machine := loopfsm.NewFSM(string(current), events, nil)

	if err := machine.Event(ctx, string(event)); err != nil {
		var invalidEvent loopfsm.InvalidEventError
		var noTransition loopfsm.NoTransitionError
		if errors.As(err, &invalidEvent) || errors.As(err, &noTransition) {
			return "", &domain.TransitionError{
				Event:   event,
				Current: current,
			}
		}
		return "", err //nolint:wrapcheck
	}

	return domain.OrderStatusType(machine.Current()), nil
}
