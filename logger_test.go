package asynclog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_InitializeStartStop(t *testing.T) {
	dir := t.TempDir()
	l := NewLogger()
	n, err := l.Initialize(Options{Directory: dir, Consumers: 2})
	if err != nil {
		t.Fatalf("Initialize error: %v", err)
	}
	if n != 2 {
		t.Fatalf("ConsumerCount = %d, want 2", n)
	}
	if err := l.Start(); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	if !l.Running() {
		t.Error("Logger should report Running after Start")
	}
	if err := l.Stop(); err != nil {
		t.Fatalf("Stop error: %v", err)
	}
	if l.Running() {
		t.Error("Logger should not report Running after Stop")
	}
}

func TestLogger_LogBeforeStartRejected(t *testing.T) {
	dir := t.TempDir()
	l := NewLogger()
	if _, err := l.Initialize(Options{Directory: dir, Consumers: 1}); err != nil {
		t.Fatalf("Initialize error: %v", err)
	}
	if ok := l.Log(INFO, 0, "too early"); ok {
		t.Error("Log before Start should return false")
	}
}

func TestLogger_LogInvalidShardRejected(t *testing.T) {
	dir := t.TempDir()
	l := NewLogger()
	if _, err := l.Initialize(Options{Directory: dir, Consumers: 2}); err != nil {
		t.Fatalf("Initialize error: %v", err)
	}
	if err := l.Start(); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	defer l.Stop()

	if ok := l.Log(INFO, -1, "bad shard"); ok {
		t.Error("negative shard should be rejected")
	}
	if ok := l.Log(INFO, 2, "out of range shard"); ok {
		t.Error("out-of-range shard should be rejected")
	}
}

func TestLogger_StartWithoutInitialize(t *testing.T) {
	l := NewLogger()
	if err := l.Start(); err != ErrNotInitialized {
		t.Errorf("Start on uninitialized Logger = %v, want ErrNotInitialized", err)
	}
}

func TestLogger_EndToEndWritesSinkFile(t *testing.T) {
	dir := t.TempDir()
	l := NewLogger()
	_, err := l.Initialize(Options{Directory: dir, Consumers: 1})
	require.NoError(t, err)
	require.NoError(t, l.Start())

	for i := 0; i < 20; i++ {
		require.True(t, l.Log(INFO, 0, "request {} took {}ms", i, i*2), "Log call %d should have been accepted", i)
	}

	require.NoError(t, l.Stop())

	data, err := os.ReadFile(filepath.Join(dir, "logs", "INFO.log"))
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, sessionBanner, "sink file should open with a session banner")
	assert.True(t, strings.Index(text, sessionBanner)+len(sessionBanner) <= strings.Index(text, "request 0 took 0ms"),
		"the banner must precede every line written in the session")
	for i := 0; i < 20; i++ {
		want := fmt.Sprintf("request %d took %dms", i, i*2)
		assert.Contains(t, text, want)
	}

	assert.EqualValues(t, 20, l.Stats()[INFO])
}

func TestLogger_StopDrainsEverythingAcceptedBeforeStop(t *testing.T) {
	dir := t.TempDir()
	l := NewLogger()
	if _, err := l.Initialize(Options{Directory: dir, Consumers: 4}); err != nil {
		t.Fatalf("Initialize error: %v", err)
	}
	if err := l.Start(); err != nil {
		t.Fatalf("Start error: %v", err)
	}

	const perShard = 2000
	var wg sync.WaitGroup
	accepted := make([]int64, 4)
	for shard := 0; shard < 4; shard++ {
		wg.Add(1)
		go func(shard int) {
			defer wg.Done()
			count := int64(0)
			for i := 0; i < perShard; i++ {
				if l.Log(DEBUG, shard, "tick {}", i) {
					count++
				}
			}
			accepted[shard] = count
		}(shard)
	}
	wg.Wait()

	if err := l.Stop(); err != nil {
		t.Fatalf("Stop error: %v", err)
	}

	var wantTotal int64
	for _, c := range accepted {
		wantTotal += c
	}

	stats := l.Stats()
	if stats[DEBUG] != wantTotal {
		// every accepted record is written before Stop returns; a record
		// counted as dropped made Log return false, so it was never accepted.
		t.Errorf("written(%d) != accepted(%d), dropped(%d)", stats[DEBUG], wantTotal, stats[Dropped])
	}
	if stats[Dropped] != 0 {
		t.Logf("observed %d dropped records under contention, written %d", stats[Dropped], stats[DEBUG])
	}
}

func TestLogger_ReinitializeAfterStop(t *testing.T) {
	dir := t.TempDir()
	l := NewLogger()
	if _, err := l.Initialize(Options{Directory: dir, Consumers: 1}); err != nil {
		t.Fatalf("first Initialize error: %v", err)
	}
	if err := l.Start(); err != nil {
		t.Fatalf("first Start error: %v", err)
	}
	l.Log(INFO, 0, "session one")
	if err := l.Stop(); err != nil {
		t.Fatalf("first Stop error: %v", err)
	}

	if _, err := l.Initialize(Options{Directory: dir, Consumers: 1}); err != nil {
		t.Fatalf("second Initialize error: %v", err)
	}
	if err := l.Start(); err != nil {
		t.Fatalf("second Start error: %v", err)
	}
	if !l.Log(INFO, 0, "session two") {
		t.Error("Log should succeed again after re-Initialize/Start")
	}
	if err := l.Stop(); err != nil {
		t.Fatalf("second Stop error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "logs", "INFO.log"))
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	text := string(data)
	if got := strings.Count(text, sessionBanner); got != 2 {
		t.Errorf("INFO.log should carry one session banner per Initialize/Start cycle, got %d: %q", got, text)
	}
	if !strings.Contains(text, "session one") || !strings.Contains(text, "session two") {
		t.Errorf("INFO.log missing lines from one of the two sessions: %q", text)
	}
}

func TestLogger_InitializeIsIdempotentWhileActive(t *testing.T) {
	dir := t.TempDir()
	l := NewLogger()
	n1, err := l.Initialize(Options{Directory: dir, Consumers: 3})
	if err != nil {
		t.Fatalf("Initialize error: %v", err)
	}
	n2, err := l.Initialize(Options{Directory: dir, Consumers: 7})
	if err != nil {
		t.Fatalf("second Initialize error: %v", err)
	}
	if n1 != n2 {
		t.Errorf("second Initialize changed consumer count: %d -> %d", n1, n2)
	}
	l.Stop()
}

func TestLogger_RejectsInvalidOptions(t *testing.T) {
	l := NewLogger()
	if _, err := l.Initialize(Options{Consumers: -3}); err == nil {
		t.Error("expected Initialize to reject negative Consumers")
	}
}

func TestLogger_LogIsNonBlocking(t *testing.T) {
	dir := t.TempDir()
	l := NewLogger()
	if _, err := l.Initialize(Options{Directory: dir, Consumers: 1}); err != nil {
		t.Fatalf("Initialize error: %v", err)
	}
	if err := l.Start(); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	defer l.Stop()

	start := time.Now()
	for i := 0; i < 1000; i++ {
		l.Log(TRACE, 0, "burst {}", i)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("1000 Log calls took %v, expected producer-side work to stay cheap", elapsed)
	}
}

func TestGlobal_Convenience(t *testing.T) {
	dir := t.TempDir()
	if _, err := Initialize(Options{Directory: dir, Consumers: 1}); err != nil {
		t.Fatalf("Initialize error: %v", err)
	}
	if err := Start(); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	if !Log(INFO, 0, "via package-level helpers") {
		t.Error("package-level Log should succeed once started")
	}
	if err := Stop(); err != nil {
		t.Fatalf("Stop error: %v", err)
	}
}
