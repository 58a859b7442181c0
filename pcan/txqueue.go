package pcan

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// MinTxQueueLen is the smallest usable transmit queue length. Block writes
// burst up to a full block of back-to-back frames; shorter queues drop
// frames and corrupt the transfer.
const MinTxQueueLen = 500

// checkTxQueueLen verifies the interface's transmit queue length before
// the session starts.
func checkTxQueueLen(ifname string) error {
	fd, err := unix.Socket(unix.AF_CAN, unix.SOCK_RAW|unix.SOCK_CLOEXEC, unix.CAN_RAW)
	if err != nil {
		return fmt.Errorf("open CAN socket: %w", err)
	}
	defer unix.Close(fd)

	ifr, err := unix.NewIfreq(ifname)
	if err != nil {
		return fmt.Errorf("interface name %q: %w", ifname, err)
	}
	if err := unix.IoctlIfreq(fd, unix.SIOCGIFTXQLEN, ifr); err != nil {
		return fmt.Errorf("query tx queue length of %s: %w", ifname, err)
	}

	if qlen := ifr.Uint32(); qlen < MinTxQueueLen {
		return fmt.Errorf("tx queue len %d of %s is too small, must be at least %d",
			qlen, ifname, MinTxQueueLen)
	}
	return nil
}
