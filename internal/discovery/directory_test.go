package discovery

import (
	"errors"
	"testing"
	"time"

	"github.com/nerrad567/wiz-local-core/internal/protocol"
)

func testRecord(id, ip string) *DeviceRecord {
	return &DeviceRecord{
		ID:       id,
		IP:       ip,
		Model:    "ESP01_SHRGB1C_31",
		LastSeen: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestDirectoryGetUnknown(t *testing.T) {
	dir := NewDirectory()
	if _, err := dir.Get("a1b2c3d4e5f6"); !errors.Is(err, ErrUnknownDevice) {
		t.Fatalf("Get on empty directory: err = %v, want ErrUnknownDevice", err)
	}
}

func TestDirectoryGetReturnsCopy(t *testing.T) {
	dir := NewDirectory()
	dir.Swap(map[string]*DeviceRecord{
		"a1b2c3d4e5f6": testRecord("a1b2c3d4e5f6", "192.168.1.40"),
	})

	got, err := dir.Get("a1b2c3d4e5f6")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	got.IP = "10.0.0.1"

	again, err := dir.Get("a1b2c3d4e5f6")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if again.IP != "192.168.1.40" {
		t.Errorf("mutating a returned record leaked into the directory: IP = %s", again.IP)
	}
}

func TestDirectoryListSortedByID(t *testing.T) {
	dir := NewDirectory()
	dir.Swap(map[string]*DeviceRecord{
		"cc0011223344": testRecord("cc0011223344", "192.168.1.42"),
		"a1b2c3d4e5f6": testRecord("a1b2c3d4e5f6", "192.168.1.40"),
		"b2c3d4e5f6a1": testRecord("b2c3d4e5f6a1", "192.168.1.41"),
	})

	list := dir.List()
	if len(list) != 3 {
		t.Fatalf("List returned %d records, want 3", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i-1].ID >= list[i].ID {
			t.Fatalf("List not sorted: %s before %s", list[i-1].ID, list[i].ID)
		}
	}
}

func TestDirectorySwapReplacesWholesale(t *testing.T) {
	dir := NewDirectory()
	dir.Swap(map[string]*DeviceRecord{
		"a1b2c3d4e5f6": testRecord("a1b2c3d4e5f6", "192.168.1.40"),
		"b2c3d4e5f6a1": testRecord("b2c3d4e5f6a1", "192.168.1.41"),
	})

	dir.Swap(map[string]*DeviceRecord{
		"cc0011223344": testRecord("cc0011223344", "192.168.1.42"),
	})

	if dir.Count() != 1 {
		t.Fatalf("Count after swap = %d, want 1", dir.Count())
	}
	if _, err := dir.Get("a1b2c3d4e5f6"); !errors.Is(err, ErrUnknownDevice) {
		t.Errorf("record from previous generation still visible after swap")
	}
}

func TestDirectoryRecordState(t *testing.T) {
	dir := NewDirectory()
	dir.Swap(map[string]*DeviceRecord{
		"a1b2c3d4e5f6": testRecord("a1b2c3d4e5f6", "192.168.1.40"),
	})

	seen := time.Date(2026, 8, 2, 9, 30, 0, 0, time.UTC)
	dir.RecordState("a1b2c3d4e5f6", protocol.StateSnapshot{Power: true, Brightness: 80}, seen)

	rec, err := dir.Get("a1b2c3d4e5f6")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.LastState == nil || !rec.LastState.Power || rec.LastState.Brightness != 80 {
		t.Errorf("LastState = %+v, want power on at 80%%", rec.LastState)
	}
	if !rec.LastSeen.Equal(seen) {
		t.Errorf("LastSeen = %v, want %v", rec.LastSeen, seen)
	}
}

func TestDirectoryRecordStateUnknownIgnored(t *testing.T) {
	dir := NewDirectory()
	// A control call can race an eviction; the late state write must not
	// resurrect the record.
	dir.RecordState("a1b2c3d4e5f6", protocol.StateSnapshot{Power: true}, time.Now())
	if dir.Count() != 0 {
		t.Fatal("RecordState on unknown id created a record")
	}
}

func TestDeviceRecordDeepCopy(t *testing.T) {
	state := protocol.StateSnapshot{Power: true, Color: &protocol.RGB{R: 255}}
	orig := testRecord("a1b2c3d4e5f6", "192.168.1.40")
	orig.LastState = &state
	orig.Capabilities = CapabilitiesFor(BulbClassRGB)

	cpy := orig.DeepCopy()
	cpy.LastState.Color.R = 0
	cpy.Capabilities.SceneIDs[0] = -1

	if orig.LastState.Color.R != 255 {
		t.Error("mutating copied state leaked into the original")
	}
	if orig.Capabilities.SceneIDs[0] == -1 {
		t.Error("mutating copied capabilities leaked into the original")
	}
}
