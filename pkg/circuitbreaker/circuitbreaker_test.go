package circuitbreaker

import (
	"errors"
	"testing"
	"time"
)

var errIndexDown = errors.New("search index unavailable")

// newTestBreaker 统一的测试配置:连续失败threshold次熔断
func newTestBreaker(threshold uint32, timeout time.Duration) *CircuitBreaker {
	return NewCircuitBreaker("search-index", Config{
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     timeout,
		ReadyToTrip: func(counts Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
	})
}

// TestCircuitBreaker_StaysClosedOnSuccess 全部成功时保持关闭
func TestCircuitBreaker_StaysClosedOnSuccess(t *testing.T) {
	cb := newTestBreaker(5, 30*time.Second)

	for i := 0; i < 20; i++ {
		if err := cb.Execute(func() error { return nil }); err != nil {
			t.Fatalf("第%d次请求期望成功，实际: %v", i+1, err)
		}
	}

	if cb.State() != StateClosed {
		t.Errorf("期望状态CLOSED，实际%s", cb.State())
	}
	if counts := cb.Counts(); counts.TotalSuccesses != 20 {
		t.Errorf("期望成功计数20，实际%d", counts.TotalSuccesses)
	}
}

// TestCircuitBreaker_TripsAndFailsFast 连续失败后熔断,后续请求快速失败
func TestCircuitBreaker_TripsAndFailsFast(t *testing.T) {
	cb := newTestBreaker(5, 30*time.Second)

	for i := 0; i < 5; i++ {
		_ = cb.Execute(func() error { return errIndexDown })
	}
	if cb.State() != StateOpen {
		t.Fatalf("连续失败5次后期望OPEN，实际%s", cb.State())
	}

	// 熔断期间下游不应被触达
	touched := false
	err := cb.Execute(func() error {
		touched = true
		return nil
	})
	if err != ErrOpenState {
		t.Errorf("期望ErrOpenState，实际%v", err)
	}
	if touched {
		t.Error("熔断打开时不应调用下游")
	}
}

// TestCircuitBreaker_RecoveryProbe 超时后半开探测:成功恢复,失败回到熔断
func TestCircuitBreaker_RecoveryProbe(t *testing.T) {
	t.Run("探测成功转CLOSED", func(t *testing.T) {
		cb := newTestBreaker(3, 80*time.Millisecond)
		for i := 0; i < 3; i++ {
			_ = cb.Execute(func() error { return errIndexDown })
		}

		time.Sleep(120 * time.Millisecond)

		probed := false
		if err := cb.Execute(func() error { probed = true; return nil }); err != nil {
			t.Errorf("半开探测期望放行并成功，实际: %v", err)
		}
		if !probed {
			t.Error("半开状态应放行探测请求")
		}
		if cb.State() != StateClosed {
			t.Errorf("探测成功后期望CLOSED，实际%s", cb.State())
		}
	})

	t.Run("探测失败转回OPEN", func(t *testing.T) {
		cb := newTestBreaker(3, 80*time.Millisecond)
		for i := 0; i < 3; i++ {
			_ = cb.Execute(func() error { return errIndexDown })
		}

		time.Sleep(120 * time.Millisecond)

		_ = cb.Execute(func() error { return errIndexDown })
		if cb.State() != StateOpen {
			t.Errorf("探测失败后期望回到OPEN，实际%s", cb.State())
		}
	})
}

// TestCircuitBreaker_StateChangeCallback 状态迁移按序回调
func TestCircuitBreaker_StateChangeCallback(t *testing.T) {
	cb := newTestBreaker(3, 80*time.Millisecond)

	var transitions []string
	cb.SetStateChangeCallback(func(name string, from, to State) {
		transitions = append(transitions, from.String()+"->"+to.String())
	})

	for i := 0; i < 3; i++ {
		_ = cb.Execute(func() error { return errIndexDown })
	}
	time.Sleep(120 * time.Millisecond)
	_ = cb.Execute(func() error { return nil })

	want := []string{"CLOSED->OPEN", "OPEN->HALF_OPEN", "HALF_OPEN->CLOSED"}
	if len(transitions) != len(want) {
		t.Fatalf("期望%d次迁移，实际%d次: %v", len(want), len(transitions), transitions)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("第%d次迁移期望%s，实际%s", i+1, want[i], transitions[i])
		}
	}
}

// TestCircuitBreaker_FailureRateTrip 按失败率熔断(查询路径的实际配置形态)
func TestCircuitBreaker_FailureRateTrip(t *testing.T) {
	cb := NewCircuitBreaker("search-index", Config{
		MaxRequests: 3,
		Interval:    time.Hour, // 长窗口,计数不被重置
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts Counts) bool {
			return counts.Requests >= 10 && counts.FailureRate() > 0.5
		},
	})

	// 10次请求:4成功6失败,失败率60%
	for i := 0; i < 10; i++ {
		ok := i < 4
		_ = cb.Execute(func() error {
			if ok {
				return nil
			}
			return errIndexDown
		})
	}

	if cb.State() != StateOpen {
		t.Errorf("失败率60%%期望OPEN，实际%s", cb.State())
	}
}

// TestCircuitBreaker_ShieldsFlakyIndex 故障索引只被实际触达到熔断阈值为止
func TestCircuitBreaker_ShieldsFlakyIndex(t *testing.T) {
	var reached int
	failUntil := 5

	cb := newTestBreaker(5, 150*time.Millisecond)
	query := func() error {
		reached++
		if reached <= failUntil {
			return errIndexDown
		}
		return nil
	}

	for i := 0; i < 10; i++ {
		_ = cb.Execute(query)
	}

	// 前5次触达并失败,第6-10次被熔断挡住
	if reached != 5 {
		t.Errorf("期望下游只被触达5次，实际%d次", reached)
	}

	time.Sleep(200 * time.Millisecond)

	if err := cb.Execute(query); err != nil {
		t.Errorf("索引恢复后探测期望成功，实际: %v", err)
	}
	if cb.State() != StateClosed {
		t.Errorf("期望恢复为CLOSED，实际%s", cb.State())
	}
}

func BenchmarkCircuitBreaker(b *testing.B) {
	cb := newTestBreaker(5, 30*time.Second)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = cb.Execute(func() error { return nil })
	}
}
