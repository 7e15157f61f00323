package repository

import (
	"context"
	"slices"
	"sync"
	"time"
)

// memoryEntry はインメモリストアの1エントリ。
type memoryEntry struct {
	value     []byte
	updatedAt time.Time
}

// MemoryClientStorageRepo はプロセス内メモリを使用したクライアントストレージリポジトリ。
// テストおよび STORAGE_BACKEND=memory で使用する。プロセス終了で内容は失われる。
type MemoryClientStorageRepo struct {
	mu      sync.RWMutex
	entries map[string]map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryClientStorageRepo はMemoryClientStorageRepoを生成する。
func NewMemoryClientStorageRepo() *MemoryClientStorageRepo {
	return &MemoryClientStorageRepo{
		entries: make(map[string]map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get は指定クライアント・キーの値のコピーを返す。存在しない場合はfalseを返す。
func (r *MemoryClientStorageRepo) Get(_ context.Context, clientID, key string) ([]byte, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[clientID][key]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(e.value), true, nil
}

// Put は指定クライアント・キーに値のコピーを保存する。
func (r *MemoryClientStorageRepo) Put(_ context.Context, clientID, key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ns, ok := r.entries[clientID]
	if !ok {
		ns = make(map[string]memoryEntry)
		r.entries[clientID] = ns
	}
	ns[key] = memoryEntry{value: slices.Clone(value), updatedAt: r.now()}
	return nil
}

// DeleteStale はolderThan以降に一度も書き込みのないクライアントのエントリをまとめて削除し、削除件数を返す。
func (r *MemoryClientStorageRepo) DeleteStale(_ context.Context, olderThan time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for clientID, ns := range r.entries {
		var latest time.Time
		for _, e := range ns {
			if e.updatedAt.After(latest) {
				latest = e.updatedAt
			}
		}
		if latest.Before(olderThan) {
			deleted += int64(len(ns))
			delete(r.entries, clientID)
		}
	}
	return deleted, nil
}

// compile-time interface check
var _ ClientStorageRepository = (*MemoryClientStorageRepo)(nil)
