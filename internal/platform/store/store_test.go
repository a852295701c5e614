package store

import (
	"context"
	"net"
	"testing"

	"github.com/rs/zerolog"
)

// TestOpen_NoBackends leaves every seam nil
func TestOpen_NoBackends(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, err := Open(ctx, Config{}, WithLogger(zerolog.Nop()))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if s.PG != nil || s.RDS != nil {
		t.Fatalf("unexpected seams set PG=%T RDS=%T", s.PG, s.RDS)
	}
	if e := s.Close(ctx); e != nil {
		t.Fatalf("Close on empty store returned error: %v", e)
	}
}

// TestOpen_PGEnabled_BadURL_BubblesError covers the PG error path
func TestOpen_PGEnabled_BadURL_BubblesError(t *testing.T) {
	t.Parallel()

	s, err := Open(context.Background(), Config{
		PG: PGConfig{Enabled: true, URL: "://bad", MaxConns: 1},
	})
	if err == nil {
		t.Fatalf("expected Open error for bad PG URL, got store=%#v", s)
	}
	if s != nil {
		t.Fatalf("expected nil store on error, got %#v", s)
	}
}

// TestOpen_PGEnabled_CanceledContext stops retrying once ctx is done
func TestOpen_PGEnabled_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Open(ctx, Config{
		PG: PGConfig{Enabled: true, URL: "postgres://u:p@127.0.0.1:1/db?sslmode=disable", ConnectRetries: 50},
	})
	if err == nil {
		t.Fatalf("expected error on canceled context")
	}
}

// TestOpen_RDSEnabled_Unreachable bubbles the ping failure
func TestOpen_RDSEnabled_Unreachable(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	s, err := Open(context.Background(), Config{RDS: RedisConfig{Enabled: true, Addr: addr}})
	if err == nil {
		t.Fatalf("expected Open error for unreachable redis, got %#v", s)
	}
}
