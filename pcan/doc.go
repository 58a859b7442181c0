// Package pcan implements the flash-protocol transport over a Linux
// SocketCAN interface.
//
// A Conn wraps one raw CAN socket (go.einride.tech/can) and exposes the
// blocking request/acknowledgment operations the flasher session drives:
// discovery, status and configuration queries, bootloader switch, sector
// erase, block write, end programming and reset. Exchanges that time out
// are retried a fixed number of times inside the transport; a still
// failing exchange surfaces as an error and ends the run.
//
// Dial refuses interfaces whose transmit queue length is below
// MinTxQueueLen, since block writes burst frames faster than short queues
// absorb them.
package pcan
