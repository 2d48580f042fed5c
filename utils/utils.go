package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"sh2-save-edit/config"
)

// Backup copies the file to a timestamped sibling so the original survives an
// in-place edit. Returns the backup path.
func Backup(filename string) (string, error) {
	src, err := os.Open(filename)
	if err != nil {
		return "", err
	}
	defer src.Close()

	backupName := fmt.Sprintf("%s.backup_%s", filename, time.Now().Format("20060102_150405"))

	dst, err := os.Create(backupName)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(backupName)
		return "", err
	}
	if err := dst.Close(); err != nil {
		os.Remove(backupName)
		return "", err
	}

	return backupName, nil
}

// DumpPayload writes the decompressed payload next to the save file for
// offline analysis when DEBUG_SAVE_DECOMPRESSED is set.
func DumpPayload(savePath string, payload []byte) error {
	if !config.DEBUG_SAVE_DECOMPRESSED {
		return nil
	}

	filename := filepath.Base(savePath)
	extension := filepath.Ext(filename)
	filenameWithoutExt := filename[0 : len(filename)-len(extension)]

	return os.WriteFile(filenameWithoutExt+"_decompressed.bin", payload, 0644)
}
