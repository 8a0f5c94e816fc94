package observable

import (
	"errors"
	"testing"
)

func TestSubscribeReceivesCurrentValue(t *testing.T) {
	s := NewSubject(1)
	ch, cancel := s.Subscribe()
	defer cancel()

	if v := <-ch; v != 1 {
		t.Errorf("Ожидалось 1, получено %d", v)
	}
}

func TestSlowSubscriberSeesLatest(t *testing.T) {
	s := NewSubject(0)
	ch, cancel := s.Subscribe()
	defer cancel()

	for i := 1; i <= 5; i++ {
		s.Publish(i)
	}

	if v := <-ch; v != 5 {
		t.Errorf("Ожидалось последнее значение 5, получено %d", v)
	}
	if s.Value() != 5 {
		t.Errorf("Ожидалось Value() == 5, получено %d", s.Value())
	}
}

func TestCancelClosesChannel(t *testing.T) {
	s := NewSubject("a")
	ch, cancel := s.Subscribe()
	<-ch
	cancel()
	cancel()

	if _, ok := <-ch; ok {
		t.Error("Канал должен быть закрыт после отмены подписки")
	}

	// Публикация после отмены не должна паниковать
	s.Publish("b")
}

func TestCloseSubject(t *testing.T) {
	s := NewSubject(0)
	ch, _ := s.Subscribe()
	<-ch
	s.Close()

	if _, ok := <-ch; ok {
		t.Error("Канал должен быть закрыт после Close")
	}

	late, _ := s.Subscribe()
	if _, ok := <-late; ok {
		t.Error("Подписка после Close должна вернуть закрытый канал")
	}
}

func TestMatchState(t *testing.T) {
	describe := func(s State[int]) string {
		return Match(s,
			func() string { return "loading" },
			func(err error) string { return "failure: " + err.Error() },
			func(v int) string { return "success" },
		)
	}

	tests := []struct {
		state State[int]
		want  string
	}{
		{Loading[int]{}, "loading"},
		{Failure[int]{Err: errors.New("boom")}, "failure: boom"},
		{Success[int]{Data: 3}, "success"},
	}

	for _, tt := range tests {
		if got := describe(tt.state); got != tt.want {
			t.Errorf("Ожидалось %q, получено %q", tt.want, got)
		}
	}

	if DataOr[int](Success[int]{Data: 3}, 0) != 3 {
		t.Error("DataOr должен вернуть данные успешного состояния")
	}
	if DataOr[int](Loading[int]{}, 7) != 7 {
		t.Error("DataOr должен вернуть значение по умолчанию")
	}
}
