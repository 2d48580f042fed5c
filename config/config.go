package config

import "os"

// CatalogFile is the optional ini file with extra weapon and item names,
// looked up in the working directory.
const CatalogFile = "sh2save.ini"

var (
	DEBUG                   = os.Getenv("DEBUG") != ""
	DEBUG_SAVE_DECOMPRESSED = os.Getenv("DEBUG_SAVE_DECOMPRESSED") != ""
)
