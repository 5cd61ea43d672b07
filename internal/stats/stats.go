package stats

import (
	"fmt"
	"time"
)

// Summary describes one pass over an input stream.
type Summary struct {
	Tokens     int64
	InputBytes int64
	TermBytes  int64 // total length of emitted terms
	Elapsed    time.Duration
}

// KBPerSecond returns the input throughput in KiB per second, or 0 when no
// time elapsed.
func (s Summary) KBPerSecond() float64 {
	sec := s.Elapsed.Seconds()
	if sec <= 0 {
		return 0
	}
	return float64(s.InputBytes) / 1024 / sec
}

// AvgTermLen returns the mean term length in bytes.
func (s Summary) AvgTermLen() float64 {
	if s.Tokens == 0 {
		return 0
	}
	return float64(s.TermBytes) / float64(s.Tokens)
}

// Add accumulates o into s.
func (s *Summary) Add(o Summary) {
	s.Tokens += o.Tokens
	s.InputBytes += o.InputBytes
	s.TermBytes += o.TermBytes
	s.Elapsed += o.Elapsed
}

func (s Summary) String() string {
	return fmt.Sprintf("tokens=%d bytes=%d avg_len=%.2f elapsed=%s speed=%.2fKB/s",
		s.Tokens, s.InputBytes, s.AvgTermLen(), s.Elapsed.Round(time.Millisecond), s.KBPerSecond())
}
