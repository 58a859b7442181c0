package hwdb

// Flash type bytes and their memory technology names.
const (
	FlashLPC2194   = 4
	FlashLPC2368   = 6
	FlashLPC4078   = 10
	FlashM29W160EB = 12
	FlashLPC54618  = 14
)

var flashTypeNames = map[byte]string{
	FlashLPC2194:   "LPC2194",
	FlashLPC2368:   "LPC2368",
	FlashLPC4078:   "LPC4078",
	FlashM29W160EB: "M29W160EB",
	FlashLPC54618:  "LPC54618",
}

// Hardware type bytes as reported in the status reply.
const (
	HwRouterPro   = 16
	HwRouter      = 19
	HwRS232       = 25
	HwGPS         = 31
	HwRouterDR    = 35
	HwMIO         = 37
	HwRouterFD    = 40
	HwGPSFD       = 42
	HwRouterProFD = 43
)

// uniformBlocks builds count sectors of size each, starting at addr.
func uniformBlocks(addr, size uint32, count int) []FlashBlock {
	blocks := make([]FlashBlock, count)
	for i := range blocks {
		blocks[i] = FlashBlock{Addr: addr + uint32(i)*size, Len: size}
	}
	return blocks
}

// lpc21Blocks is the LPC21xx sector map above the bootloader: eight 4 KiB
// sectors followed by coarse 32 KiB sectors.
func lpc21Blocks(count32k int) []FlashBlock {
	blocks := uniformBlocks(0x2000, 0x1000, 8)
	return append(blocks, uniformBlocks(0xA000, 0x8000, count32k)...)
}

var profiles = map[byte]*Profile{
	HwRouterPro: {
		Name:           "PCAN-Router Pro",
		Flags:          FlagBootloaderSwitch | FlagInvertData | FlagResetAfterFlash,
		FlashTypes:     []byte{FlashM29W160EB},
		Blocks:         uniformBlocks(0x0000, 0x10000, 31),
		CRCTableOffset: 0,
		FlashOffset:    0x40000,
		ImageTag:       "",
	},
	HwRouter: {
		Name:           "PCAN-Router",
		Flags:          0,
		FlashTypes:     []byte{FlashLPC2194, FlashLPC2368},
		Blocks:         lpc21Blocks(7),
		CRCTableOffset: 0x2100,
		FlashOffset:    0,
		ImageTag:       "pcan_router",
	},
	HwRS232: {
		Name:           "PCAN-RS-232",
		Flags:          0,
		FlashTypes:     []byte{FlashLPC2194},
		Blocks:         lpc21Blocks(7),
		CRCTableOffset: 0x2100,
		FlashOffset:    0,
		ImageTag:       "pcan_rs232",
	},
	HwGPS: {
		Name:           "PCAN-GPS",
		Flags:          FlagWideTransfer,
		FlashTypes:     []byte{FlashLPC4078},
		Blocks:         lpc21Blocks(14),
		CRCTableOffset: 0x2100,
		FlashOffset:    0,
		ImageTag:       "pcan_gps",
	},
	HwRouterDR: {
		Name:           "PCAN-Router DR",
		Flags:          FlagWideTransfer,
		FlashTypes:     []byte{FlashLPC4078},
		Blocks:         lpc21Blocks(14),
		CRCTableOffset: 0x2100,
		FlashOffset:    0,
		ImageTag:       "pcan_router_dr",
	},
	HwMIO: {
		Name:           "PCAN-MIO",
		Flags:          FlagWideTransfer | FlagEndProgramming,
		FlashTypes:     []byte{FlashLPC4078},
		Blocks:         lpc21Blocks(14),
		CRCTableOffset: 0x2100,
		FlashOffset:    0,
		ImageTag:       "pcan_mio",
	},
	HwRouterFD: {
		Name:           "PCAN-Router FD",
		Flags:          FlagWideTransfer | FlagEndProgramming,
		FlashTypes:     []byte{FlashLPC54618},
		Blocks:         uniformBlocks(0x8000, 0x8000, 15),
		CRCTableOffset: 0x8100,
		FlashOffset:    0,
		ImageTag:       "pcan_router_fd",
	},
	HwGPSFD: {
		Name:           "PCAN-GPS FD",
		Flags:          FlagWideTransfer | FlagEndProgramming,
		FlashTypes:     []byte{FlashLPC54618},
		Blocks:         uniformBlocks(0x8000, 0x8000, 15),
		CRCTableOffset: 0x8100,
		FlashOffset:    0,
		ImageTag:       "pcan_gps_fd",
	},
	HwRouterProFD: {
		Name:           "PCAN-Router Pro FD",
		Flags:          FlagWideTransfer | FlagEndProgramming | FlagResetAfterFlash,
		FlashTypes:     []byte{FlashLPC54618},
		Blocks:         uniformBlocks(0x8000, 0x8000, 31),
		CRCTableOffset: 0x8100,
		FlashOffset:    0,
		ImageTag:       "pcan_router_pro_fd",
	},
}
