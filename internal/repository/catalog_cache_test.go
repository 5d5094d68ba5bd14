package repository

import (
	"context"
	"course_exam_backend/internal/testutil"
	"testing"
	"time"
)

type cachedCourse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func TestCatalogCacheGenerations(t *testing.T) {
	rdb, mr := testutil.NewRedis(t)
	cache := NewCatalogCache(rdb, time.Minute)
	ctx := context.Background()

	var got cachedCourse
	if cache.Get(ctx, "course:1", &got) {
		t.Fatal("empty cache should miss")
	}

	cache.Set(ctx, "course:1", cachedCourse{ID: 1, Name: "Go"})
	if !mr.Exists("catalog:v0:course:1") {
		t.Fatalf("keys = %v, want catalog:v0:course:1", mr.Keys())
	}
	if !cache.Get(ctx, "course:1", &got) || got.ID != 1 || got.Name != "Go" {
		t.Fatalf("hit = %+v", got)
	}
	if ttl := mr.TTL("catalog:v0:course:1"); ttl != time.Minute {
		t.Errorf("ttl = %v, want 1m", ttl)
	}

	cache.Invalidate(ctx)
	if gen, _ := mr.Get(catalogGenerationKey); gen != "1" {
		t.Errorf("generation = %q, want 1", gen)
	}
	got = cachedCourse{}
	if cache.Get(ctx, "course:1", &got) {
		t.Fatalf("stale entry served after invalidate: %+v", got)
	}

	cache.Set(ctx, "course:1", cachedCourse{ID: 1, Name: "Go 2"})
	if !cache.Get(ctx, "course:1", &got) || got.Name != "Go 2" {
		t.Fatalf("hit after invalidate = %+v", got)
	}
	if !mr.Exists("catalog:v1:course:1") {
		t.Errorf("keys = %v, want entry under generation 1", mr.Keys())
	}
}

func TestCatalogCacheUnavailableServer(t *testing.T) {
	rdb, mr := testutil.NewRedis(t)
	cache := NewCatalogCache(rdb, time.Minute)
	ctx := context.Background()

	cache.Set(ctx, "courses", []cachedCourse{{ID: 1}})
	mr.Close()

	// 服务端不可用时降级为未命中，不 panic
	var got []cachedCourse
	if cache.Get(ctx, "courses", &got) {
		t.Fatal("closed server should miss")
	}
	cache.Set(ctx, "courses", got)
	cache.Invalidate(ctx)
}

func TestCatalogCacheDisabled(t *testing.T) {
	ctx := context.Background()
	for _, cache := range []*CatalogCache{nil, NewCatalogCache(nil, time.Minute)} {
		var got cachedCourse
		cache.Set(ctx, "course:1", cachedCourse{ID: 1})
		cache.Invalidate(ctx)
		if cache.Get(ctx, "course:1", &got) {
			t.Error("disabled cache should always miss")
		}
	}
}
