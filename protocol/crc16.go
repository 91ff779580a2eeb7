package protocol

// crcInit is the CRC-16/MCRF4XX seed. The reflected CCITT polynomial is
// applied bytewise with no final xor.
const crcInit uint16 = 0xFFFF

// UpdateCRC16 folds data into a running checksum.
func UpdateCRC16(crc uint16, data []byte) uint16 {
	for _, b := range data {
		b ^= uint8(crc)
		b ^= b << 4
		w := uint16(b)
		crc = (w<<8 | crc>>8) ^ (w >> 4) ^ (w << 3)
	}
	return crc
}

// CRC16 returns the frame checksum of data.
func CRC16(data []byte) uint16 {
	return UpdateCRC16(crcInit, data)
}
