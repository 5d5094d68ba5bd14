package database

import (
	"context"
	"course_exam_backend/internal/config"
	"net"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/spf13/cast"
)

func TestDialectorSelection(t *testing.T) {
	cases := []struct {
		driver string
		name   string
	}{
		{config.DriverMySQL, "mysql"},
		{config.DriverPostgres, "postgres"},
		{config.DriverSQLite, "sqlite"},
	}
	for _, tc := range cases {
		d, err := Dialector(&config.DatabaseConfig{Driver: tc.driver, Host: "localhost", Port: 1})
		if err != nil {
			t.Fatalf("%s: %v", tc.driver, err)
		}
		if d.Name() != tc.name {
			t.Errorf("driver %s: dialector name = %q, want %q", tc.driver, d.Name(), tc.name)
		}
	}

	if _, err := Dialector(&config.DatabaseConfig{Driver: "oracle"}); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestInitRedisDisabled(t *testing.T) {
	rdb, err := InitRedis(context.Background(), &config.RedisConfig{Enabled: false})
	if err != nil || rdb != nil {
		t.Fatalf("disabled redis should return nil, nil; got %v, %v", rdb, err)
	}
}

func TestInitRedisPingsServer(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port, err := net.SplitHostPort(mr.Addr())
	if err != nil {
		t.Fatal(err)
	}
	cfg := &config.RedisConfig{Enabled: true, Host: host, Port: cast.ToInt(port), TimeoutSeconds: 1}

	rdb, err := InitRedis(context.Background(), cfg)
	if err != nil || rdb == nil {
		t.Fatalf("InitRedis = %v, %v", rdb, err)
	}
	defer rdb.Close()
	if opts := rdb.Options(); opts.PoolSize != redisPoolSize || opts.ReadTimeout != time.Second {
		t.Errorf("options = pool %d, read timeout %v", opts.PoolSize, opts.ReadTimeout)
	}

	mr.Close()
	if err := PingRedis(context.Background(), rdb, time.Second); err == nil {
		t.Error("ping against a stopped server should fail")
	}
	if _, err := InitRedis(context.Background(), cfg); err == nil {
		t.Error("InitRedis should fail when the server is down")
	}
	if err := PingRedis(context.Background(), nil, time.Second); err != nil {
		t.Errorf("nil client should be treated as disabled, got %v", err)
	}
}
