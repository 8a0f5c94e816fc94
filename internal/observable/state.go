package observable

// State результат асинхронного чтения из хранилища: Loading, Failure или Success.
// Набор вариантов закрыт неэкспортируемым методом.
type State[T any] interface {
	isState()
}

// Loading данные еще не получены
type Loading[T any] struct{}

// Failure чтение завершилось ошибкой
type Failure[T any] struct {
	Err error
}

// Success данные получены
type Success[T any] struct {
	Data T
}

func (Loading[T]) isState() {}
func (Failure[T]) isState() {}
func (Success[T]) isState() {}

// Match выбирает обработчик по варианту состояния
func Match[T, R any](s State[T], loading func() R, failure func(error) R, success func(T) R) R {
	switch v := s.(type) {
	case Success[T]:
		return success(v.Data)
	case Failure[T]:
		return failure(v.Err)
	default:
		return loading()
	}
}

// DataOr возвращает данные успешного состояния или fallback
func DataOr[T any](s State[T], fallback T) T {
	if v, ok := s.(Success[T]); ok {
		return v.Data
	}
	return fallback
}
