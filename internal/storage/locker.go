package storage

import "sync"

// lockEntry はクライアントごとのミューテックスと参照数。
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Locker はクライアント単位で読み込み・変更・保存の一連の処理を直列化する。
// 同一クライアントからの同時リクエストが互いの変更を上書きしないようにする。
// 使用中でなくなったエントリは即座に解放する。
type Locker struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

// NewLocker はLockerを生成する。
func NewLocker() *Locker {
	return &Locker{entries: make(map[string]*lockEntry)}
}

// Lock は指定クライアントのロックを取得し、解放関数を返す。
func (l *Locker) Lock(clientID string) (unlock func()) {
	l.mu.Lock()
	e, ok := l.entries[clientID]
	if !ok {
		e = &lockEntry{}
		l.entries[clientID] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()

		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.entries, clientID)
		}
		l.mu.Unlock()
	}
}

// Len は現在保持しているエントリ数を返す。テスト用。
func (l *Locker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
