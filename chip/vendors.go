package chip

// vendors maps JEDEC manufacturer codes (bank 1) to names.
var vendors = map[byte]string{
	0x01: "Spansion",
	0x0B: "XTX",
	0x1C: "EON",
	0x1F: "Adesto",
	0x20: "Micron",
	0x37: "AMIC",
	0x5E: "Zbit",
	0x62: "ON Semiconductor",
	0x68: "Boya",
	0x85: "Puya",
	0x8C: "ESMT",
	0x9D: "ISSI",
	0xA1: "Fudan",
	0xBF: "SST",
	0xC2: "Macronix",
	0xC8: "GigaDevice",
	0xEF: "Winbond",
}

// VendorName returns the manufacturer name for a JEDEC code, or "" if unknown.
func VendorName(code byte) string {
	return vendors[code]
}
