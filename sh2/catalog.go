package sh2

import (
	"github.com/rs/zerolog/log"
	"gopkg.in/ini.v1"
)

// Names seen in 2024 remake saves. Not every save contains every entry;
// lookups that miss are reported as absent, not errors.
var (
	knownWeapons = []string{"Pistol", "Shotgun", "Rifle", "Handgun", "SteelPipe"}

	knownItems = []string{
		"HealthDrink", "Syringe", "HandgunAmmo", "ShotgunAmmo",
		"ShotgunShells", "RifleAmmo", "FirstAidKit",
	}
)

// Catalog lists the field names the info report scans a save for.
type Catalog struct {
	Weapons []string
	Items   []string
}

// DefaultCatalog returns the built-in weapon and item name lists.
func DefaultCatalog() Catalog {
	return Catalog{
		Weapons: append([]string(nil), knownWeapons...),
		Items:   append([]string(nil), knownItems...),
	}
}

// LoadCatalog extends the default catalog with names from an ini file, one
// name per line under [weapons] and [items] sections. A missing or unreadable
// file just yields the defaults, so new field names can be tried without a
// rebuild but nothing depends on the file existing.
func LoadCatalog(path string) Catalog {
	catalog := DefaultCatalog()

	cfg, err := ini.LoadSources(ini.LoadOptions{AllowBooleanKeys: true}, path)
	if err != nil {
		log.Debug().Err(err).Str("path", path).Msg("no field catalog file")
		return catalog
	}

	catalog.Weapons = append(catalog.Weapons, cfg.Section("weapons").KeyStrings()...)
	catalog.Items = append(catalog.Items, cfg.Section("items").KeyStrings()...)

	log.Debug().
		Str("path", path).
		Int("weapons", len(catalog.Weapons)).
		Int("items", len(catalog.Items)).
		Msg("loaded field catalog")

	return catalog
}
