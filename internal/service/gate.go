package service

import "sync"

// AdmissionGate - единая точка сериализации мутирующих операций над заказами,
// клиентами и товарами. В системе существует ровно один экземпляр (создается в
// Factory), и любая операция вида "прочитал-изменил" обязана пройти через него.
//
// Блокировка бинарная, невозвратная (non-reentrant), без таймаута и приоритетов:
// порядок обслуживания определяется очередью sync.Mutex. Операции только на
// чтение шлюз не берут и могут наблюдать состояние посреди пачки распределения.
type AdmissionGate struct {
	mu sync.Mutex
}

func NewAdmissionGate() *AdmissionGate {
	return &AdmissionGate{}
}

// Acquire захватывает шлюз и возвращает функцию освобождения. Вызывающий обязан
// выполнить ее на каждом пути выхода:
//
//	release := gate.Acquire()
//	defer release()
func (g *AdmissionGate) Acquire() func() {
	g.mu.Lock()
	return g.mu.Unlock
}
