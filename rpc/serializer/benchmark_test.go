package serializer

import (
	"fmt"
	"github.com/ValentinKolb/metasync/rpc/common"
	"testing"
)

// benchmarkMessages returns a set of messages for targeted benchmarking
func benchmarkMessages() map[string]common.Message {
	keys := make([]string, 100)
	for i := range keys {
		keys[i] = fmt.Sprintf("%d-organization-%d", i, i%7)
	}

	return map[string]common.Message{
		"Empty": {
			MsgType: common.MsgTSuccess,
		},
		"GetRequest": {
			MsgType: common.MsgTKVGet,
			Key:     "7-organization-42",
		},
		"SmallRecord": {
			MsgType: common.MsgTKVSet,
			Key:     "7-organization-42",
			Value:   []byte(`{"theme":"dark","sidebar":true}`),
		},
		"LargeRecord": {
			MsgType: common.MsgTKVSet,
			Key:     "7-organization-42",
			Value:   make([]byte, 1024*16), // 16KB of data
		},
		"KeysResponse": {
			MsgType: common.MsgTKVKeys,
			Keys:    keys,
		},
	}
}

// BenchmarkSerializers measures a serialize + deserialize round trip per message
func BenchmarkSerializers(b *testing.B) {
	for name, factory := range testSerializers {
		for msgName, msg := range benchmarkMessages() {
			b.Run(fmt.Sprintf("%s/%s", name, msgName), func(b *testing.B) {
				s := factory()
				var result common.Message
				b.ReportAllocs()
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					data, err := s.Serialize(msg)
					if err != nil {
						b.Fatal(err)
					}
					if err := s.Deserialize(data, &result); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}
