//go:build !linux

package asynclog

// pinAdvisory is a no-op on platforms without a CPU-affinity syscall
// exposed through golang.org/x/sys/unix. The hint never affects
// correctness, so its absence here is harmless.
func pinAdvisory(shard, consumerCount int) error {
	return nil
}
