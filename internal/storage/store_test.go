package storage

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hitoshi/merchshop/internal/model"
	"github.com/hitoshi/merchshop/internal/repository"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// failingRepo は常にエラーを返すClientStorageRepositoryのモック実装。
type failingRepo struct {
	err error
}

func (r *failingRepo) Get(ctx context.Context, clientID, key string) ([]byte, bool, error) {
	return nil, false, r.err
}

func (r *failingRepo) Put(ctx context.Context, clientID, key string, value []byte) error {
	return r.err
}

func (r *failingRepo) DeleteStale(ctx context.Context, olderThan time.Time) (int64, error) {
	return 0, r.err
}

// recordingFallback はFallbackRecorderのモック実装。
type recordingFallback struct {
	keys    []string
	reasons []string
}

func (r *recordingFallback) RecordStorageFallback(key, reason string) {
	r.keys = append(r.keys, key)
	r.reasons = append(r.reasons, reason)
}

var (
	productA = model.Product{ID: "a", Name: "A", Price: "$10.00", PriceValue: 10.00, Category: model.CategoryApparel}
	productB = model.Product{ID: "b", Name: "B", Price: "$5.50", PriceValue: 5.50, Category: model.CategoryLifestyle}
)

func TestStore_CartRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	store := NewStore(repository.NewMemoryClientStorageRepo(), newTestLogger(&buf), nil)
	ctx := context.Background()

	cart := []model.Product{productA, productA, productB}
	if err := store.SaveCart(ctx, "client-1", cart); err != nil {
		t.Fatalf("SaveCart がエラーを返した: %v", err)
	}

	loaded := store.LoadCart(ctx, "client-1")
	if len(loaded) != 3 {
		t.Fatalf("len = %d, want 3", len(loaded))
	}
	for i := range cart {
		if loaded[i] != cart[i] {
			t.Errorf("loaded[%d] = %+v, want %+v", i, loaded[i], cart[i])
		}
	}
}

func TestStore_LoadCart_Missing_ReturnsEmpty(t *testing.T) {
	var buf bytes.Buffer
	rec := &recordingFallback{}
	store := NewStore(repository.NewMemoryClientStorageRepo(), newTestLogger(&buf), rec)

	cart := store.LoadCart(context.Background(), "new-client")
	if cart == nil || len(cart) != 0 {
		t.Errorf("cart = %v, want empty non-nil slice", cart)
	}
	// キー未設定はフォールバックとして扱わない
	if len(rec.keys) != 0 {
		t.Errorf("fallback recorded %v, want none", rec.keys)
	}
	if buf.Len() != 0 {
		t.Errorf("unexpected log output: %s", buf.String())
	}
}

func TestStore_LoadCart_Corrupted_FallsBackToEmpty(t *testing.T) {
	var buf bytes.Buffer
	rec := &recordingFallback{}
	repo := repository.NewMemoryClientStorageRepo()
	store := NewStore(repo, newTestLogger(&buf), rec)
	ctx := context.Background()

	_ = repo.Put(ctx, "client-1", KeyCart, []byte(`[{"id": "a", "priceValue": `))

	cart := store.LoadCart(ctx, "client-1")
	if len(cart) != 0 {
		t.Errorf("len = %d, want 0", len(cart))
	}
	if len(rec.keys) != 1 || rec.keys[0] != KeyCart || rec.reasons[0] != "malformed" {
		t.Errorf("fallback = %v/%v, want [cart]/[malformed]", rec.keys, rec.reasons)
	}
	if !strings.Contains(buf.String(), `"level":"WARN"`) {
		t.Errorf("expected WARN log, got: %s", buf.String())
	}
}

func TestStore_LoadCart_WrongShape_FallsBackToEmpty(t *testing.T) {
	var buf bytes.Buffer
	repo := repository.NewMemoryClientStorageRepo()
	store := NewStore(repo, newTestLogger(&buf), nil)
	ctx := context.Background()

	_ = repo.Put(ctx, "client-1", KeyCart, []byte(`{"not":"an array"}`))

	if cart := store.LoadCart(ctx, "client-1"); len(cart) != 0 {
		t.Errorf("len = %d, want 0", len(cart))
	}
}

func TestStore_LoadCart_JSONNull_ReturnsEmpty(t *testing.T) {
	var buf bytes.Buffer
	repo := repository.NewMemoryClientStorageRepo()
	store := NewStore(repo, newTestLogger(&buf), nil)
	ctx := context.Background()

	_ = repo.Put(ctx, "client-1", KeyCart, []byte(`null`))

	cart := store.LoadCart(ctx, "client-1")
	if cart == nil || len(cart) != 0 {
		t.Errorf("cart = %v, want empty non-nil slice", cart)
	}
}

func TestStore_LoadCart_ReadError_FallsBackToEmpty(t *testing.T) {
	var buf bytes.Buffer
	rec := &recordingFallback{}
	store := NewStore(&failingRepo{err: errors.New("connection refused")}, newTestLogger(&buf), rec)

	if cart := store.LoadCart(context.Background(), "client-1"); len(cart) != 0 {
		t.Errorf("len = %d, want 0", len(cart))
	}
	if len(rec.reasons) != 1 || rec.reasons[0] != "read_error" {
		t.Errorf("reasons = %v, want [read_error]", rec.reasons)
	}
}

func TestStore_UserRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	store := NewStore(repository.NewMemoryClientStorageRepo(), newTestLogger(&buf), nil)
	ctx := context.Background()

	want := model.UserSession{IsAuthenticated: true, Name: "Marques"}
	if err := store.SaveUser(ctx, "client-1", want); err != nil {
		t.Fatalf("SaveUser がエラーを返した: %v", err)
	}

	if got := store.LoadUser(ctx, "client-1"); got != want {
		t.Errorf("LoadUser = %+v, want %+v", got, want)
	}
}

func TestStore_LoadUser_Fallbacks(t *testing.T) {
	tests := []struct {
		name   string
		stored []byte
	}{
		{name: "missing", stored: nil},
		{name: "malformed", stored: []byte(`{isAuthenticated: true}`)},
		{name: "wrong type", stored: []byte(`{"isAuthenticated":"yes","name":"x"}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			repo := repository.NewMemoryClientStorageRepo()
			store := NewStore(repo, newTestLogger(&buf), nil)
			ctx := context.Background()

			if tt.stored != nil {
				_ = repo.Put(ctx, "client-1", KeyUser, tt.stored)
			}

			got := store.LoadUser(ctx, "client-1")
			if got != model.DefaultUserSession() {
				t.Errorf("LoadUser = %+v, want default", got)
			}
		})
	}
}

func TestStore_StoredFormat(t *testing.T) {
	var buf bytes.Buffer
	repo := repository.NewMemoryClientStorageRepo()
	store := NewStore(repo, newTestLogger(&buf), nil)
	ctx := context.Background()

	_ = store.SaveUser(ctx, "client-1", model.UserSession{IsAuthenticated: false, Name: ""})
	raw, _, _ := repo.Get(ctx, "client-1", KeyUser)
	if string(raw) != `{"isAuthenticated":false,"name":""}` {
		t.Errorf("user = %s", raw)
	}

	_ = store.SaveCart(ctx, "client-1", nil)
	raw, _, _ = repo.Get(ctx, "client-1", KeyCart)
	if string(raw) != `[]` {
		t.Errorf("cart = %s, want []", raw)
	}
}

func TestStore_Save_PropagatesError(t *testing.T) {
	var buf bytes.Buffer
	store := NewStore(&failingRepo{err: errors.New("disk full")}, newTestLogger(&buf), nil)

	if err := store.SaveCart(context.Background(), "c", []model.Product{productA}); err == nil {
		t.Error("SaveCart のエラーが伝播していない")
	}
	if err := store.SaveUser(context.Background(), "c", model.UserSession{}); err == nil {
		t.Error("SaveUser のエラーが伝播していない")
	}
}

func TestLocker_SerializesSameClient(t *testing.T) {
	l := NewLocker()
	counter := 0
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock("client-1")
			defer unlock()
			v := counter
			time.Sleep(time.Microsecond)
			counter = v + 1
		}()
	}
	wg.Wait()

	if counter != 50 {
		t.Errorf("counter = %d, want 50", counter)
	}
	if l.Len() != 0 {
		t.Errorf("Len = %d, want 0", l.Len())
	}
}

func TestLocker_DifferentClientsDoNotBlock(t *testing.T) {
	l := NewLocker()

	unlockA := l.Lock("a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := l.Lock("b")
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("別クライアントのロックがブロックされた")
	}
}
