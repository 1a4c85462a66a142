// Package wire implements the binary transaction format shared by the TCP
// protocol and the binary log.
//
// A non-Create transaction is laid out as
//
//	[command:1][object:8][key_len:8][key][value_len:8][value][other:8]
//
// with every integer little-endian. Create is the command byte alone.
// Decoding is command-driven: Get stops after the key, Set stops after the
// value, Link and GetRaw skip the value and read other.
//
// On the socket every request and response is prefixed by its own 8-byte
// little-endian length (see WriteFrame and ReadFrame).
package wire
