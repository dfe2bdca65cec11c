package netstring

import "github.com/sigurn/crc16"

var crcTable = crc16.MakeTable(crc16.CRC16_MODBUS)

// Checksum returns the CRC-16/MODBUS of a payload. It is a trace aid
// for correlating frames across both ends of the link; the wire format
// itself carries no checksum field.
func Checksum(payload []byte) uint16 {
	return crc16.Checksum(payload, crcTable)
}
