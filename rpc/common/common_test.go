package common

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseShardType(t *testing.T) {
	tests := []struct {
		in      string
		want    ServerShardType
		wantErr bool
	}{
		{in: "lstore", want: ShardTypeLocalStore},
		{in: " FStore ", want: ShardTypeFileStore},
		{in: "sqlstore", want: ShardTypeSQLiteStore},
		{in: "dstore", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseShardType(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseShardType(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestServerConfigString(t *testing.T) {
	c := ServerConfig{
		Shards: []ServerShard{
			{ShardID: 100, Type: ShardTypeLocalStore},
			{ShardID: 300, Type: ShardTypeSQLiteStore},
		},
		DataDir:  "/data",
		Endpoint: ":8080",
		LogLevel: "info",
	}
	out := c.String()
	for _, want := range []string{":8080", "lstore", "sqlstore (/data/shard-300.db)", "DATA DIRECTORY"} {
		if !strings.Contains(strings.ToUpper(out), strings.ToUpper(want)) {
			t.Errorf("Expected %q in config output:\n%s", want, out)
		}
	}
}

func TestMessageTypeJSON(t *testing.T) {
	msg := NewKeysResponse([]string{"a"}, nil)
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `"msg_type":"keys"`) {
		t.Errorf("Expected readable message type, got %s", data)
	}

	var decoded Message
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if decoded.MsgType != MsgTKVKeys || len(decoded.Keys) != 1 {
		t.Errorf("Unexpected message %+v", decoded)
	}

	var bad MessageType
	if err := bad.UnmarshalJSON([]byte(`"acquire"`)); err == nil {
		t.Errorf("Expected error for unknown message type")
	}
}

func TestParseLogLevel(t *testing.T) {
	if _, err := ParseLogLevel("WARN"); err != nil {
		t.Errorf("Expected WARN to parse, got %v", err)
	}
	if _, err := ParseLogLevel("verbose"); err == nil {
		t.Errorf("Expected error for unknown level")
	}
}
