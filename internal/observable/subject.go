// Package observable содержит подписываемое состояние и тип результата
// асинхронного чтения (загрузка, ошибка, успех)
package observable

import "sync"

// Subject хранит последнее значение и рассылает его подписчикам.
// Медленный подписчик пропускает промежуточные значения и всегда
// получает самое свежее.
type Subject[T any] struct {
	mu     sync.Mutex
	value  T
	subs   map[int]chan T
	nextID int
	closed bool
}

// NewSubject создает Subject с начальным значением
func NewSubject[T any](initial T) *Subject[T] {
	return &Subject[T]{
		value: initial,
		subs:  make(map[int]chan T),
	}
}

// Value возвращает текущее значение
func (s *Subject[T]) Value() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Publish сохраняет новое значение и уведомляет подписчиков
func (s *Subject[T]) Publish(value T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.value = value
	for _, ch := range s.subs {
		offer(ch, value)
	}
}

// Subscribe возвращает канал, в котором сразу лежит текущее значение,
// и функцию отмены подписки. Канал закрывается при отмене или Close.
func (s *Subject[T]) Subscribe() (<-chan T, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan T, 1)
	if s.closed {
		close(ch)
		return ch, func() {}
	}

	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	ch <- s.value

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if sub, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(sub)
			}
		})
	}
	return ch, cancel
}

// Close закрывает все подписки; последующие Publish игнорируются
func (s *Subject[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}

// offer кладет значение в канал емкостью 1, вытесняя непрочитанное
func offer[T any](ch chan T, value T) {
	for {
		select {
		case ch <- value:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
