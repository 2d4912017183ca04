// Package serializer encodes common.Message values for the RPC transports.
//
// Implementations:
//
//   - binarySerializerImpl (NewBinarySerializer, "binary"): A compact flag based format.
//     A flags byte after the message type marks the optional fields that follow, so
//     absent fields cost nothing. Range pages are written as a pair count followed by
//     length prefixed keys and values. It is the only format that keeps nil and
//     empty byte slices apart, and the default of the CLI.
//
//   - jsonSerializerImpl (NewJSONSerializer, "json"): encoding/json with readable
//     message type names. Byte fields are base64 encoded. Useful for debugging.
//
//   - gobSerializerImpl (NewGOBSerializer, "gob"): encoding/gob. The largest and slowest
//     of the three, kept for comparison in the benchmarks.
//
// ByName resolves the names above for the command line.
//
// Deserialize overwrites every field of the target message, so a message value can be
// reused across calls. Errors travel as text plus a store.RetCode, and
// Message.Error rebuilds the *store.Error on the receiving side.
//
// All serializers are stateless and safe for concurrent use.
//
//	s := serializer.NewBinarySerializer()
//	data, err := s.Serialize(*common.NewGetRequest([]byte("user/1")))
//	...
//	var resp common.Message
//	err = s.Deserialize(respData, &resp)
package serializer
