package maple

import (
	"bytes"
	"testing"

	"github.com/ValentinKolb/tKV/lib/db"
	dbtesting "github.com/ValentinKolb/tKV/lib/db/testing"
)

func Test(t *testing.T) {
	dbtesting.RunKVDBTests(t, "MapleDB", func() db.KVDB {
		return NewMapleDB(nil)
	})
}

func TestSingleShard(t *testing.T) {
	dbtesting.RunKVDBTests(t, "MapleDB(1 shard)", func() db.KVDB {
		return NewMapleDB(&DBOptions{NumShards: 1})
	})
}

func TestSnapshotHeader(t *testing.T) {
	database := NewMapleDB(nil)
	defer database.Close()

	database.Set([]byte{0x00}, []byte{0x2a})

	var buf bytes.Buffer
	if err := database.Save(&buf); err != nil {
		t.Fatalf("Unexpected error during Save: %v", err)
	}

	data := buf.Bytes()
	if !bytes.HasPrefix(data, []byte(magicNum)) {
		t.Fatalf("Snapshot does not start with the magic number")
	}
	if data[len(magicNum)] != mapleVersion {
		t.Errorf("Expected version %d, got %d", mapleVersion, data[len(magicNum)])
	}

	// a different version must be rejected
	data[len(magicNum)] = mapleVersion - 1
	if err := NewMapleDB(nil).Load(bytes.NewReader(data)); err == nil {
		t.Errorf("Expected Load to reject an older snapshot version")
	}

	// a truncated snapshot must be rejected
	if err := NewMapleDB(nil).Load(bytes.NewReader(buf.Bytes()[:buf.Len()-1])); err == nil {
		t.Errorf("Expected Load to reject a truncated snapshot")
	}
}

func TestInfo(t *testing.T) {
	database := NewMapleDB(&DBOptions{NumShards: 4})
	defer database.Close()

	for i := 0; i < 50; i++ {
		database.Set([]byte{byte(i)}, bytes.Repeat([]byte{1}, 100))
	}

	info := database.GetInfo()
	if info.DbType != db.ImplMaple {
		t.Errorf("Expected db type %s, got %s", db.ImplMaple, info.DbType)
	}
	if info.KeyCount != 50 {
		t.Errorf("Expected 50 keys, got %d", info.KeyCount)
	}
	if info.SizeBytes <= 0 {
		t.Errorf("Expected a positive size estimate, got %d", info.SizeBytes)
	}
	if len(info.SupportedFeatures) != len(db.AllFeatures) {
		t.Errorf("Expected all features to be reported, got %v", info.SupportedFeatures)
	}
}

func Benchmark(t *testing.B) {
	dbtesting.RunKVDBBenchmarks(t, "MapleDB", func() db.KVDB {
		return NewMapleDB(nil)
	})
}
