package sh2

import (
	"bytes"
	"fmt"

	"github.com/rs/zerolog/log"

	"sh2-save-edit/memory"
)

// Property type tokens as they appear in the payload, zero-terminated.
const (
	FloatPropertyType = "FloatProperty"
	IntPropertyType   = "IntProperty"
)

// Skip distances between a matched name token and its value. These are
// empirical constants from the 2024 remake's save format; the property-bag
// grammar is undocumented, so they are not cross-checked against the
// property's own size field and may break on another save version.
const (
	// propertySizeLen + propertyMetaLen sit between a typed property's type
	// token and its value.
	propertySizeLen = 4
	propertyMetaLen = 8

	// quantityValueSkip is the distance from the start of a "Quantity" token
	// to its int32 value.
	quantityValueSkip = 34

	// quantitySearchWindow bounds how far past an item name token the
	// "Quantity" token may start.
	quantitySearchWindow = 100

	// fieldWidth is the width of every addressable value, float32 or int32.
	fieldWidth = 4
)

const (
	healthProperty = "HealthValue"
	quantityToken  = "Quantity"
)

// findToken returns the offset of the first occurrence of name followed by a
// zero terminator, scanning forward from the payload start. Absence stays a
// distinct boolean rather than a sentinel offset. When the payload holds the
// same token more than once, only the first instance is addressable.
func findToken(payload []byte, name string) (int, bool) {
	pos := bytes.Index(payload, append([]byte(name), 0x00))
	if pos < 0 {
		return 0, false
	}
	return pos, true
}

// propertyValueOffset computes the value offset of a typed scalar property.
// Layout after the name token: <TypeName>\x00, a 4-byte size field, an 8-byte
// metadata block, then the value.
func propertyValueOffset(payload []byte, name, typeName string) (int, error) {
	pos, ok := findToken(payload, name)
	if !ok {
		return 0, fmt.Errorf("property %q: %w", name, ErrFieldNotFound)
	}
	off := pos + len(name) + 1 + len(typeName) + 1 + propertySizeLen + propertyMetaLen
	log.Debug().Str("property", name).Int("token", pos).Int("value", off).Msg("located property")
	return off, nil
}

// weaponAmmoOffset computes the value offset of a weapon's ammo count, which
// is stored as a bare int32 immediately after the weapon name token, with no
// type tag or size preamble.
func weaponAmmoOffset(payload []byte, name string) (int, error) {
	pos, ok := findToken(payload, name)
	if !ok {
		return 0, fmt.Errorf("weapon %q: %w", name, ErrFieldNotFound)
	}
	return pos + len(name) + 1, nil
}

// itemQuantityOffset computes the value offset of an inventory item's
// quantity: the "Quantity" token must start within quantitySearchWindow bytes
// of the item name token, and the value sits quantityValueSkip bytes after it.
func itemQuantityOffset(payload []byte, name string) (int, error) {
	pos, ok := findToken(payload, name)
	if !ok {
		return 0, fmt.Errorf("item %q: %w", name, ErrFieldNotFound)
	}

	end := pos + quantitySearchWindow
	if end > len(payload) {
		end = len(payload)
	}
	rel := bytes.Index(payload[pos:end], append([]byte(quantityToken), 0x00))
	if rel < 0 {
		return 0, fmt.Errorf("item %q: no quantity entry: %w", name, ErrFieldNotFound)
	}

	return pos + rel + quantityValueSkip, nil
}

// checkBounds rejects offsets whose 4-byte value would run past the payload.
func (s *SaveFile) checkBounds(name string, off int) error {
	if off < 0 || off+fieldWidth > len(s.Payload) {
		return fmt.Errorf("field %q at 0x%X: %w", name, off, ErrFieldOutOfBounds)
	}
	return nil
}

// FloatProperty reads a float-typed scalar property. The offset is recomputed
// on every call; nothing is cached across accesses.
func (s *SaveFile) FloatProperty(name string) (float32, error) {
	off, err := propertyValueOffset(s.Payload, name, FloatPropertyType)
	if err != nil {
		return 0, err
	}
	if err := s.checkBounds(name, off); err != nil {
		return 0, err
	}
	return memory.Float32At(s.Payload, off), nil
}

// SetFloatProperty overwrites a float-typed scalar property in place. No
// range validation is applied to value.
func (s *SaveFile) SetFloatProperty(name string, value float32) error {
	off, err := propertyValueOffset(s.Payload, name, FloatPropertyType)
	if err != nil {
		return err
	}
	if err := s.checkBounds(name, off); err != nil {
		return err
	}
	memory.PutFloat32At(s.Payload, off, value)
	return nil
}

// IntProperty reads an int-typed scalar property.
func (s *SaveFile) IntProperty(name string) (int32, error) {
	off, err := propertyValueOffset(s.Payload, name, IntPropertyType)
	if err != nil {
		return 0, err
	}
	if err := s.checkBounds(name, off); err != nil {
		return 0, err
	}
	return memory.Int32At(s.Payload, off), nil
}

// SetIntProperty overwrites an int-typed scalar property in place.
func (s *SaveFile) SetIntProperty(name string, value int32) error {
	off, err := propertyValueOffset(s.Payload, name, IntPropertyType)
	if err != nil {
		return err
	}
	if err := s.checkBounds(name, off); err != nil {
		return err
	}
	memory.PutInt32At(s.Payload, off, value)
	return nil
}

// Health reads the player health property.
func (s *SaveFile) Health() (float32, error) {
	return s.FloatProperty(healthProperty)
}

// SetHealth overwrites the player health property.
func (s *SaveFile) SetHealth(value float32) error {
	return s.SetFloatProperty(healthProperty, value)
}

// WeaponAmmo reads a weapon's loaded ammo count.
func (s *SaveFile) WeaponAmmo(name string) (int32, error) {
	off, err := weaponAmmoOffset(s.Payload, name)
	if err != nil {
		return 0, err
	}
	if err := s.checkBounds(name, off); err != nil {
		return 0, err
	}
	return memory.Int32At(s.Payload, off), nil
}

// SetWeaponAmmo overwrites a weapon's loaded ammo count.
func (s *SaveFile) SetWeaponAmmo(name string, ammo int32) error {
	off, err := weaponAmmoOffset(s.Payload, name)
	if err != nil {
		return err
	}
	if err := s.checkBounds(name, off); err != nil {
		return err
	}
	memory.PutInt32At(s.Payload, off, ammo)
	return nil
}

// ItemQuantity reads an inventory item's quantity.
func (s *SaveFile) ItemQuantity(name string) (int32, error) {
	off, err := itemQuantityOffset(s.Payload, name)
	if err != nil {
		return 0, err
	}
	if err := s.checkBounds(name, off); err != nil {
		return 0, err
	}
	return memory.Int32At(s.Payload, off), nil
}

// SetItemQuantity overwrites an inventory item's quantity.
func (s *SaveFile) SetItemQuantity(name string, quantity int32) error {
	off, err := itemQuantityOffset(s.Payload, name)
	if err != nil {
		return err
	}
	if err := s.checkBounds(name, off); err != nil {
		return err
	}
	memory.PutInt32At(s.Payload, off, quantity)
	return nil
}
