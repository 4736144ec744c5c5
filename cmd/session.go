package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mnavickas/buddyalloc/allocator"
)

// newAllocator builds a fresh allocator from the root command's
// persistent flags. Every one-shot command (alloc, free, dump,
// inspect) calls this and gets its own arena; nothing survives between
// separate invocations of the binary.
func newAllocator() (*allocator.Allocator, error) {
	return allocator.New(flagMinOrder, flagMaxOrder,
		allocator.WithDebug(flagDebug),
		allocator.WithLogger(newLogger()),
	)
}

// parseSize parses a byte count with an optional K/M/G suffix (binary,
// 1024-based — "4K" is 4096 bytes).
func parseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty size")
	}

	unit := int64(1)
	numeric := s
	switch last := s[len(s)-1]; last {
	case 'k', 'K':
		unit = 1024
		numeric = s[:len(s)-1]
	case 'm', 'M':
		unit = 1024 * 1024
		numeric = s[:len(s)-1]
	case 'g', 'G':
		unit = 1024 * 1024 * 1024
		numeric = s[:len(s)-1]
	}
	numeric = strings.TrimSuffix(numeric, "iB")
	numeric = strings.TrimSuffix(numeric, "B")

	n, err := strconv.ParseInt(numeric, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	return n * unit, nil
}

// parseAddr parses a hex ("0x...") or decimal address argument.
func parseAddr(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base = 16
		s = s[2:]
	}
	return strconv.ParseUint(s, base, 64)
}
