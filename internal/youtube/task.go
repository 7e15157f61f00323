package youtube

import "time"

// Status は非同期取得の状態。
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Result は非同期取得のある時点での結果。
// StatusSuccessのときのみValue、StatusFailureのときのみErrが有効。
type Result[T any] struct {
	Status Status
	Value  T
	Err    error
}

// Task は一度だけ実行される非同期取得。キャンセルと再試行は行わない。
type Task[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Start はfnを別のゴルーチンで実行するTaskを返す。
func Start[T any](fn func() (T, error)) *Task[T] {
	t := &Task[T]{done: make(chan struct{})}
	go func() {
		defer close(t.done)
		t.value, t.err = fn()
	}()
	return t
}

// Done は取得が完了すると閉じられるチャネルを返す。
func (t *Task[T]) Done() <-chan struct{} {
	return t.done
}

// Result は現在の結果を返す。ブロックしない。
func (t *Task[T]) Result() Result[T] {
	select {
	case <-t.done:
	default:
		return Result[T]{Status: StatusPending}
	}
	if t.err != nil {
		return Result[T]{Status: StatusFailure, Err: t.err}
	}
	return Result[T]{Status: StatusSuccess, Value: t.value}
}

// Wait は最大dだけ完了を待ち、その時点の結果を返す。
func (t *Task[T]) Wait(d time.Duration) Result[T] {
	if d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-t.done:
		case <-timer.C:
		}
	}
	return t.Result()
}
