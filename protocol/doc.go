// Package protocol implements the CAN frame codec of the PCAN router flash
// protocol.
//
// The protocol runs on a single 11-bit CAN identifier (CANID) in strict
// request/response lockstep. A request frame carries the opcode and the
// addressed module id in its first two bytes; replies are raw payloads
// consumed in order by the transport session.
//
// # Commands
//
// Frame builders return ready-to-send go.einride.tech/can frames:
//
//	f := protocol.GetStatusFrame(3)
//	tx.TransmitFrame(ctx, f)
//
// Block writes are opened with WriteStartFrame and streamed as raw data
// frames of the negotiated transfer width (6 or 8 bytes):
//
//	frames, err := protocol.WriteDataFrames(block, protocol.WideTransferWidth)
//
// # Responses
//
// ParseAnnouncement, ParseStatus, ParseAck and ParseExtendedConfig decode
// the module replies. A module whose status reports the ExtendedConfigType
// sentinel (250) in its hardware or flash type byte is described by a
// NUL-terminated JSON configuration string instead of the fixed status
// fields.
//
// This package builds and decodes frames only; timeouts, retries and the
// request/response pairing live in the transport session.
package protocol
