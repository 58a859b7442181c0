// Package flasher orchestrates reflashing a CAN-attached PCAN router
// module from a firmware binary.
//
// # Overview
//
// A Session owns one Transport and one open firmware image and runs the
// phases strictly in order:
//
//	Discover -> select module -> resolve hardware ->
//	[bootloader switch] -> erase -> write blocks ->
//	[end programming] -> [reset]
//
// The bracketed phases are gated by the hardware profile's capability
// flags (package hwdb). Blocks consisting only of erased-flash bytes are
// never transmitted; every other block runs through the CRC patch engine
// (package fwimage) before it goes out.
//
// # Basic Usage
//
//	conn, err := pcan.Dial(ctx, "can0")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conn.Close()
//
//	img, err := fwimage.Open("firmware.bin", 0)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer img.Close()
//
//	sess := flasher.New(conn, flasher.WithModuleID(2))
//	if err := sess.Flash(ctx, img); err != nil {
//	    log.Fatal(err)
//	}
//
// # Module Selection
//
// With exactly one module on the bus, it is selected automatically. An
// explicit id is requested with WithModuleID and must exist. When several
// modules answer and no id was requested, the Selector supplied via
// WithSelector decides; without one the run fails before any destructive
// phase.
//
// # Failure Semantics
//
// Resolution failures (requested module missing, hardware/flash type
// mismatch, missing image support tag, empty sector table) and transport
// failures are fatal and abort the run. CRC ident mismatches and
// unsupported CRC array modes are diagnostics only: the block is still
// transmitted unpatched. Nothing is rolled back; physical flash state is
// the ground truth and a rerun is idempotent.
package flasher
