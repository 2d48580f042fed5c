package sh2

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"sh2-save-edit/memory"
)

func filler(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = 0xAA
	}
	return b
}

func floatPropertyEntry(name string, value float32) []byte {
	b := append([]byte(name), 0x00)
	b = append(b, []byte(FloatPropertyType)...)
	b = append(b, 0x00)
	b = binary.LittleEndian.AppendUint32(b, 4)      // size field
	b = append(b, make([]byte, propertyMetaLen)...) // metadata block
	b = binary.LittleEndian.AppendUint32(b, math.Float32bits(value))
	return b
}

func intPropertyEntry(name string, value int32) []byte {
	b := append([]byte(name), 0x00)
	b = append(b, []byte(IntPropertyType)...)
	b = append(b, 0x00)
	b = binary.LittleEndian.AppendUint32(b, 4)
	b = append(b, make([]byte, propertyMetaLen)...)
	b = binary.LittleEndian.AppendUint32(b, uint32(value))
	return b
}

func weaponEntry(name string, ammo int32) []byte {
	b := append([]byte(name), 0x00)
	return binary.LittleEndian.AppendUint32(b, uint32(ammo))
}

// itemEntry places a Quantity token gap bytes after the item name token ends,
// with the value at the fixed skip from the token start.
func itemEntry(name string, gap int, quantity int32) []byte {
	b := append([]byte(name), 0x00)
	b = append(b, filler(gap)...)
	b = append(b, []byte(quantityToken)...)
	b = append(b, 0x00)
	b = append(b, filler(quantityValueSkip-len(quantityToken)-1)...)
	return binary.LittleEndian.AppendUint32(b, uint32(quantity))
}

func payloadOf(parts ...[]byte) []byte {
	var payload []byte
	for _, part := range parts {
		payload = append(payload, part...)
	}
	return payload
}

func TestFindToken(t *testing.T) {
	payload := payloadOf([]byte("Pistol"), []byte{0x00}, filler(8))

	pos, ok := findToken(payload, "Pistol")
	if !ok || pos != 0 {
		t.Errorf("findToken(Pistol) = (%d, %v), want (0, true)", pos, ok)
	}

	// Absence must be reported distinctly, not as an offset.
	if _, ok := findToken(payload, "Shotgun"); ok {
		t.Error("findToken(Shotgun) reported a match in a payload without one")
	}

	// Name without the zero terminator must not match.
	if _, ok := findToken(payloadOf([]byte("PistolX")), "Pistol"); ok {
		t.Error("findToken matched an unterminated name")
	}
}

func TestHealthReadWrite(t *testing.T) {
	s := &SaveFile{Payload: payloadOf(filler(16), floatPropertyEntry("HealthValue", 75.0), filler(16))}

	health, err := s.Health()
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if health != 75.0 {
		t.Errorf("Health = %v, want 75.0", health)
	}

	if err := s.SetHealth(100.0); err != nil {
		t.Fatalf("SetHealth: %v", err)
	}
	health, err = s.Health()
	if err != nil {
		t.Fatalf("Health after write: %v", err)
	}
	if health != 100.0 {
		t.Errorf("Health after write = %v, want 100.0", health)
	}
}

func TestIntPropertyReadWrite(t *testing.T) {
	s := &SaveFile{Payload: payloadOf(filler(8), intPropertyEntry("SaveCount", 3))}

	value, err := s.IntProperty("SaveCount")
	if err != nil {
		t.Fatalf("IntProperty: %v", err)
	}
	if value != 3 {
		t.Errorf("IntProperty = %d, want 3", value)
	}

	if err := s.SetIntProperty("SaveCount", -42); err != nil {
		t.Fatalf("SetIntProperty: %v", err)
	}
	value, err = s.IntProperty("SaveCount")
	if err != nil {
		t.Fatalf("IntProperty after write: %v", err)
	}
	if value != -42 {
		t.Errorf("IntProperty after write = %d, want -42", value)
	}
}

func TestWeaponAmmoReadWrite(t *testing.T) {
	s := &SaveFile{Payload: payloadOf(filler(8), weaponEntry("Pistol", 12), filler(8))}

	ammo, err := s.WeaponAmmo("Pistol")
	if err != nil {
		t.Fatalf("WeaponAmmo: %v", err)
	}
	if ammo != 12 {
		t.Errorf("WeaponAmmo = %d, want 12", ammo)
	}

	before := s.Payload[7] // byte immediately preceding the name token
	if err := s.SetWeaponAmmo("Pistol", 999); err != nil {
		t.Fatalf("SetWeaponAmmo: %v", err)
	}
	ammo, err = s.WeaponAmmo("Pistol")
	if err != nil {
		t.Fatalf("WeaponAmmo after write: %v", err)
	}
	if ammo != 999 {
		t.Errorf("WeaponAmmo after write = %d, want 999", ammo)
	}
	if s.Payload[7] != before {
		t.Error("byte preceding the name token changed")
	}
}

func TestItemQuantityReadWrite(t *testing.T) {
	s := &SaveFile{Payload: payloadOf(filler(8), itemEntry("HealthDrink", 20, 3), filler(8))}

	quantity, err := s.ItemQuantity("HealthDrink")
	if err != nil {
		t.Fatalf("ItemQuantity: %v", err)
	}
	if quantity != 3 {
		t.Errorf("ItemQuantity = %d, want 3", quantity)
	}

	if err := s.SetItemQuantity("HealthDrink", 99); err != nil {
		t.Fatalf("SetItemQuantity: %v", err)
	}
	quantity, err = s.ItemQuantity("HealthDrink")
	if err != nil {
		t.Fatalf("ItemQuantity after write: %v", err)
	}
	if quantity != 99 {
		t.Errorf("ItemQuantity after write = %d, want 99", quantity)
	}
}

func TestItemQuantityOutsideWindow(t *testing.T) {
	// Quantity token starts past the search window measured from the item
	// name token, so the item must read as absent.
	s := &SaveFile{Payload: payloadOf(itemEntry("HealthDrink", 120, 3))}

	if _, err := s.ItemQuantity("HealthDrink"); !errors.Is(err, ErrFieldNotFound) {
		t.Errorf("err = %v, want ErrFieldNotFound", err)
	}
}

func TestItemQuantityOutOfBounds(t *testing.T) {
	// A Quantity match whose value would run past the end of the payload.
	payload := payloadOf([]byte("HealthDrink"), []byte{0x00}, []byte(quantityToken), []byte{0x00}, filler(10))

	s := &SaveFile{Payload: payload}
	if _, err := s.ItemQuantity("HealthDrink"); !errors.Is(err, ErrFieldOutOfBounds) {
		t.Errorf("read err = %v, want ErrFieldOutOfBounds", err)
	}
	if err := s.SetItemQuantity("HealthDrink", 5); !errors.Is(err, ErrFieldOutOfBounds) {
		t.Errorf("write err = %v, want ErrFieldOutOfBounds", err)
	}
}

func TestFieldAbsent(t *testing.T) {
	s := &SaveFile{Payload: filler(256)}

	if _, err := s.Health(); !errors.Is(err, ErrFieldNotFound) {
		t.Errorf("Health err = %v, want ErrFieldNotFound", err)
	}
	if _, err := s.WeaponAmmo("Chainsaw"); !errors.Is(err, ErrFieldNotFound) {
		t.Errorf("WeaponAmmo err = %v, want ErrFieldNotFound", err)
	}
	if _, err := s.ItemQuantity("Nothing"); !errors.Is(err, ErrFieldNotFound) {
		t.Errorf("ItemQuantity err = %v, want ErrFieldNotFound", err)
	}
	if err := s.SetHealth(1.0); !errors.Is(err, ErrFieldNotFound) {
		t.Errorf("SetHealth err = %v, want ErrFieldNotFound", err)
	}
}

func TestWritesDoNotInterfere(t *testing.T) {
	s := &SaveFile{Payload: payloadOf(
		floatPropertyEntry("HealthValue", 50.0),
		filler(8),
		weaponEntry("Pistol", 12),
		filler(8),
		itemEntry("HealthDrink", 20, 3),
	)}

	if err := s.SetHealth(100.0); err != nil {
		t.Fatalf("SetHealth: %v", err)
	}
	if err := s.SetWeaponAmmo("Pistol", 999); err != nil {
		t.Fatalf("SetWeaponAmmo: %v", err)
	}

	if ammo, _ := s.WeaponAmmo("Pistol"); ammo != 999 {
		t.Errorf("Pistol ammo = %d, want 999", ammo)
	}
	if health, _ := s.Health(); health != 100.0 {
		t.Errorf("health = %v, want 100.0", health)
	}
	if quantity, _ := s.ItemQuantity("HealthDrink"); quantity != 3 {
		t.Errorf("HealthDrink quantity = %d, want 3 (untouched)", quantity)
	}
}

func TestDuplicateTokenFirstWins(t *testing.T) {
	first := weaponEntry("Pistol", 5)
	second := weaponEntry("Pistol", 7)
	s := &SaveFile{Payload: payloadOf(first, filler(8), second)}

	if err := s.SetWeaponAmmo("Pistol", 99); err != nil {
		t.Fatalf("SetWeaponAmmo: %v", err)
	}

	if got := memory.Int32At(s.Payload, len("Pistol")+1); got != 99 {
		t.Errorf("first instance = %d, want 99", got)
	}
	secondOff := len(first) + 8 + len("Pistol") + 1
	if got := memory.Int32At(s.Payload, secondOff); got != 7 {
		t.Errorf("second instance = %d, want 7 (untouched)", got)
	}
}
