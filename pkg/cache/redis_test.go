package cache

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"path"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/redis/go-redis/v9"
)

// fakeRedis speaks enough RESP2 for RedisCache: PING, GET, SET with EX or
// PX, DEL and SCAN with MATCH. Every other command gets an error reply,
// which go-redis tolerates for its connection handshake.
type fakeRedis struct {
	ln net.Listener

	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
}

func newFakeRedis(t *testing.T) *fakeRedis {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	f := &fakeRedis{ln: ln, data: map[string]string{}, ttls: map[string]time.Duration{}}
	t.Cleanup(func() { ln.Close() })
	go f.serve()
	return f
}

func (f *fakeRedis) url() string {
	return "redis://" + f.ln.Addr().String() + "/0?protocol=2"
}

func (f *fakeRedis) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.data))
	for k := range f.data {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

func (f *fakeRedis) ttl(key string) time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ttls[key]
}

func (f *fakeRedis) put(key, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
}

func (f *fakeRedis) serve() {
	for {
		conn, err := f.ln.Accept()
		if err != nil {
			return
		}
		go f.handle(conn)
	}
}

func (f *fakeRedis) handle(conn net.Conn) {
	defer conn.Close()
	r := bufio.NewReader(conn)
	w := bufio.NewWriter(conn)
	for {
		args, err := readCommand(r)
		if err != nil {
			return
		}
		f.exec(w, args)
		if err := w.Flush(); err != nil {
			return
		}
	}
}

func readCommand(r *bufio.Reader) ([]string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(line, "*") {
		return nil, fmt.Errorf("unexpected line %q", line)
	}
	n, err := strconv.Atoi(strings.TrimSpace(line[1:]))
	if err != nil {
		return nil, err
	}
	args := make([]string, n)
	for i := range args {
		if line, err = r.ReadString('\n'); err != nil {
			return nil, err
		}
		size, err := strconv.Atoi(strings.TrimSpace(line[1:]))
		if err != nil {
			return nil, err
		}
		buf := make([]byte, size+2)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		args[i] = string(buf[:size])
	}
	return args, nil
}

func (f *fakeRedis) exec(w *bufio.Writer, args []string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	bulk := func(s string) { fmt.Fprintf(w, "$%d\r\n%s\r\n", len(s), s) }

	switch strings.ToUpper(args[0]) {
	case "PING":
		w.WriteString("+PONG\r\n")
	case "GET":
		v, ok := f.data[args[1]]
		if !ok {
			w.WriteString("$-1\r\n")
			return
		}
		bulk(v)
	case "SET":
		key := args[1]
		f.data[key] = args[2]
		delete(f.ttls, key)
		for i := 3; i+1 < len(args); i += 2 {
			n, _ := strconv.Atoi(args[i+1])
			switch strings.ToUpper(args[i]) {
			case "EX":
				f.ttls[key] = time.Duration(n) * time.Second
			case "PX":
				f.ttls[key] = time.Duration(n) * time.Millisecond
			}
		}
		w.WriteString("+OK\r\n")
	case "DEL":
		n := 0
		for _, k := range args[1:] {
			if _, ok := f.data[k]; ok {
				delete(f.data, k)
				delete(f.ttls, k)
				n++
			}
		}
		fmt.Fprintf(w, ":%d\r\n", n)
	case "SCAN":
		pattern := "*"
		for i := 2; i+1 < len(args); i += 2 {
			if strings.EqualFold(args[i], "MATCH") {
				pattern = args[i+1]
			}
		}
		var matched []string
		for k := range f.data {
			if ok, _ := path.Match(pattern, k); ok {
				matched = append(matched, k)
			}
		}
		w.WriteString("*2\r\n")
		bulk("0")
		fmt.Fprintf(w, "*%d\r\n", len(matched))
		for _, k := range matched {
			bulk(k)
		}
	default:
		fmt.Fprintf(w, "-ERR unknown command '%s'\r\n", args[0])
	}
}

func TestRedisCache(t *testing.T) {
	srv := newFakeRedis(t)
	ctx := context.Background()

	c, err := NewRedisCache(ctx, srv.url(), WithKeyPrefix("test:"))
	if err != nil {
		t.Fatalf("NewRedisCache error: %v", err)
	}
	defer c.Close()

	if data, hit, err := c.Get(ctx, "series:abc"); err != nil || hit || data != nil {
		t.Errorf("Get on empty cache = %v, %v, %v; want a miss", data, hit, err)
	}

	if err := c.Set(ctx, "series:abc", []byte("samples"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if err := c.Set(ctx, "artifact:def", []byte("<svg/>"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "series:abc")
	if err != nil || !hit || string(data) != "samples" {
		t.Errorf("Get = %q, %v, %v; want a hit", data, hit, err)
	}

	if diff := cmp.Diff([]string{"test:artifact:def", "test:series:abc"}, srv.keys()); diff != "" {
		t.Errorf("stored keys mismatch (-want +got):\n%s", diff)
	}
	if got := srv.ttl("test:series:abc"); got != time.Hour {
		t.Errorf("ttl = %v, want 1h", got)
	}
	if got := srv.ttl("test:artifact:def"); got != 0 {
		t.Errorf("ttl without expiry = %v, want none", got)
	}

	if err := c.Delete(ctx, "series:abc"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "series:abc"); hit {
		t.Error("Get after Delete should miss")
	}

	srv.put("other:keep", "foreign")
	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if diff := cmp.Diff([]string{"other:keep"}, srv.keys()); diff != "" {
		t.Errorf("Clear should only remove prefixed keys (-want +got):\n%s", diff)
	}
}

func TestRedisCacheDefaultPrefix(t *testing.T) {
	srv := newFakeRedis(t)
	ctx := context.Background()

	client := redis.NewClient(&redis.Options{
		Addr:            srv.ln.Addr().String(),
		Protocol:        2,
		DisableIdentity: true,
	})
	c := NewRedisCacheFromClient(client)
	defer c.Close()

	if err := c.Set(ctx, "k", []byte("v"), 1500*time.Millisecond); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if diff := cmp.Diff([]string{"funcplot:k"}, srv.keys()); diff != "" {
		t.Errorf("stored keys mismatch (-want +got):\n%s", diff)
	}
	if got := srv.ttl("funcplot:k"); got != 1500*time.Millisecond {
		t.Errorf("ttl = %v, want 1.5s", got)
	}
}

func TestRedisCacheClosed(t *testing.T) {
	srv := newFakeRedis(t)
	ctx := context.Background()

	c, err := NewRedisCache(ctx, srv.url())
	if err != nil {
		t.Fatalf("NewRedisCache error: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	if _, _, err := c.Get(ctx, "k"); err == nil || !strings.Contains(err.Error(), "redis get") {
		t.Errorf("Get on closed client = %v, want a wrapped redis error", err)
	}
}
