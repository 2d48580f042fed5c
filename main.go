package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"sh2-save-edit/config"
	"sh2-save-edit/sh2"
	"sh2-save-edit/utils"
)

// pairList collects repeatable Name=Value flags.
type pairList struct {
	pairs []string
}

func (p *pairList) String() string {
	return strings.Join(p.pairs, ",")
}

func (p *pairList) Set(value string) error {
	p.pairs = append(p.pairs, value)
	return nil
}

type modification struct {
	desc  string
	apply func(*sh2.SaveFile) error
}

func splitPair(s string) (string, string, error) {
	name, value, ok := strings.Cut(s, "=")
	if !ok || name == "" || value == "" {
		return "", "", fmt.Errorf("expected Name=Value, got %q", s)
	}
	return name, value, nil
}

func displayInfo(save *sh2.SaveFile, catalog sh2.Catalog, path string) {
	fmt.Printf("Save file: %s\n", filepath.Base(path))
	fmt.Printf("  compressed %d bytes, uncompressed %d bytes, stream at 0x%X\n",
		save.CompressedSize, save.UncompressedSize, save.StreamOffset)

	if health, err := save.Health(); err == nil {
		fmt.Printf("\nHealth: %.2f\n", health)
	} else {
		fmt.Println("\nHealth: (not found)")
	}

	fmt.Println("\nWeapon ammo:")
	found := false
	for _, weapon := range catalog.Weapons {
		if ammo, err := save.WeaponAmmo(weapon); err == nil {
			fmt.Printf("  %s: %d\n", weapon, ammo)
			found = true
		}
	}
	if !found {
		fmt.Println("  (no weapons found)")
	}

	fmt.Println("\nInventory items:")
	found = false
	for _, item := range catalog.Items {
		if quantity, err := save.ItemQuantity(item); err == nil {
			fmt.Printf("  %s: %d\n", item, quantity)
			found = true
		}
	}
	if !found {
		fmt.Println("  (no items found)")
	}
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if config.DEBUG {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	var (
		info     = flag.Bool("info", false, "display save file information")
		health   = flag.Float64("health", 0, "set health (e.g. 100.0)")
		output   = flag.String("output", "", "output file (default: overwrite input)")
		noBackup = flag.Bool("no-backup", false, "skip the timestamped backup")

		ammoFlags  pairList
		itemFlags  pairList
		floatFlags pairList
		intFlags   pairList
	)
	weaponShortcuts := map[string]*int{
		"pistol":  flag.Int("pistol", 0, "set pistol ammo"),
		"shotgun": flag.Int("shotgun", 0, "set shotgun ammo"),
		"rifle":   flag.Int("rifle", 0, "set rifle ammo"),
	}
	weaponNames := map[string]string{"pistol": "Pistol", "shotgun": "Shotgun", "rifle": "Rifle"}
	itemShortcuts := map[string]*int{
		"healthdrink": flag.Int("healthdrink", 0, "set health drink quantity"),
		"syringe":     flag.Int("syringe", 0, "set syringe quantity"),
		"handgunammo": flag.Int("handgunammo", 0, "set handgun ammo quantity (inventory)"),
		"shotgunammo": flag.Int("shotgunammo", 0, "set shotgun ammo quantity (inventory)"),
		"rifleammo":   flag.Int("rifleammo", 0, "set rifle ammo quantity (inventory)"),
	}
	itemNames := map[string]string{
		"healthdrink": "HealthDrink",
		"syringe":     "Syringe",
		"handgunammo": "HandgunAmmo",
		"shotgunammo": "ShotgunAmmo",
		"rifleammo":   "RifleAmmo",
	}
	flag.Var(&ammoFlags, "ammo", "set weapon ammo by name, Weapon=Count (repeatable)")
	flag.Var(&itemFlags, "item", "set item quantity by name, Item=Count (repeatable)")
	flag.Var(&floatFlags, "float", "set a float property, Name=Value (repeatable)")
	flag.Var(&intFlags, "int", "set an int property, Name=Value (repeatable)")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Silent Hill 2 (2024 Remake) save editor\n\n")
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <save-file>\n\n", os.Args[0])
		flag.PrintDefaults()
		fmt.Fprintf(flag.CommandLine.Output(), `
Examples:
  %[1]s -info SaveGameData_2.sav
  %[1]s -health 100 -pistol 999 SaveGameData_2.sav
  %[1]s -item HealthDrink=99 -output modified.sav SaveGameData_2.sav
`, os.Args[0])
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}
	savePath := flag.Arg(0)

	save, err := sh2.OpenSaveFile(savePath)
	if err != nil {
		log.Fatal().Err(err).Msg("could not load save file")
	}

	if err := utils.DumpPayload(savePath, save.Payload); err != nil {
		log.Warn().Err(err).Msg("could not dump payload")
	}

	catalog := sh2.LoadCatalog(config.CatalogFile)

	if *info {
		displayInfo(save, catalog, savePath)
		return
	}

	// Collect requested writes. Each is applied independently: a field that
	// is missing from this save must not block the others.
	var mods []modification
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "health" {
			value := float32(*health)
			mods = append(mods, modification{
				desc:  fmt.Sprintf("health = %.2f", value),
				apply: func(s *sh2.SaveFile) error { return s.SetHealth(value) },
			})
			return
		}
		if ptr, ok := weaponShortcuts[f.Name]; ok {
			name, value := weaponNames[f.Name], int32(*ptr)
			mods = append(mods, modification{
				desc:  fmt.Sprintf("%s ammo = %d", name, value),
				apply: func(s *sh2.SaveFile) error { return s.SetWeaponAmmo(name, value) },
			})
			return
		}
		if ptr, ok := itemShortcuts[f.Name]; ok {
			name, value := itemNames[f.Name], int32(*ptr)
			mods = append(mods, modification{
				desc:  fmt.Sprintf("%s quantity = %d", name, value),
				apply: func(s *sh2.SaveFile) error { return s.SetItemQuantity(name, value) },
			})
		}
	})
	for _, pair := range ammoFlags.pairs {
		name, raw, err := splitPair(pair)
		if err != nil {
			log.Fatal().Err(err).Msg("bad -ammo flag")
		}
		value, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			log.Fatal().Err(err).Str("value", raw).Msg("bad -ammo count")
		}
		mods = append(mods, modification{
			desc:  fmt.Sprintf("%s ammo = %d", name, value),
			apply: func(s *sh2.SaveFile) error { return s.SetWeaponAmmo(name, int32(value)) },
		})
	}
	for _, pair := range itemFlags.pairs {
		name, raw, err := splitPair(pair)
		if err != nil {
			log.Fatal().Err(err).Msg("bad -item flag")
		}
		value, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			log.Fatal().Err(err).Str("value", raw).Msg("bad -item count")
		}
		mods = append(mods, modification{
			desc:  fmt.Sprintf("%s quantity = %d", name, value),
			apply: func(s *sh2.SaveFile) error { return s.SetItemQuantity(name, int32(value)) },
		})
	}
	for _, pair := range floatFlags.pairs {
		name, raw, err := splitPair(pair)
		if err != nil {
			log.Fatal().Err(err).Msg("bad -float flag")
		}
		value, err := strconv.ParseFloat(raw, 32)
		if err != nil {
			log.Fatal().Err(err).Str("value", raw).Msg("bad -float value")
		}
		mods = append(mods, modification{
			desc:  fmt.Sprintf("%s = %g", name, value),
			apply: func(s *sh2.SaveFile) error { return s.SetFloatProperty(name, float32(value)) },
		})
	}
	for _, pair := range intFlags.pairs {
		name, raw, err := splitPair(pair)
		if err != nil {
			log.Fatal().Err(err).Msg("bad -int flag")
		}
		value, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			log.Fatal().Err(err).Str("value", raw).Msg("bad -int value")
		}
		mods = append(mods, modification{
			desc:  fmt.Sprintf("%s = %d", name, value),
			apply: func(s *sh2.SaveFile) error { return s.SetIntProperty(name, int32(value)) },
		})
	}

	if len(mods) == 0 {
		fmt.Println("No modifications specified. Use -info to view save data.")
		return
	}

	outPath := savePath
	if *output != "" {
		outPath = *output
	} else if !*noBackup {
		backupName, err := utils.Backup(savePath)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create backup")
		}
		fmt.Printf("Backup created: %s\n", backupName)
	}

	fmt.Println("Applying modifications:")
	failed := 0
	for _, mod := range mods {
		if err := mod.apply(save); err != nil {
			failed++
			if errors.Is(err, sh2.ErrFieldNotFound) || errors.Is(err, sh2.ErrFieldOutOfBounds) {
				fmt.Printf("  FAILED %s: %v\n", mod.desc, err)
				continue
			}
			log.Fatal().Err(err).Str("field", mod.desc).Msg("unexpected write failure")
		}
		fmt.Printf("  set %s\n", mod.desc)
	}

	if failed == len(mods) {
		fmt.Println("\nNo fields were modified, leaving the save untouched.")
		os.Exit(1)
	}

	if err := save.WriteAtomic(outPath); err != nil {
		log.Fatal().Err(err).Msg("could not write save file")
	}

	fmt.Printf("\nSaved to: %s\n", outPath)
	fmt.Printf("  original payload size: %d bytes\n", save.UncompressedSize)
	fmt.Printf("  new payload size: %d bytes\n", len(save.Payload))
	if failed > 0 {
		os.Exit(1)
	}
}
