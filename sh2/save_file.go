package sh2

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zlib"
	"github.com/rs/zerolog/log"
)

const (
	// signatureScanWindow bounds the forward scan for the zlib stream header.
	// Every observed save puts the stream within the first 300 bytes; the
	// window is from one format version and may need widening for others.
	signatureScanWindow = 300

	// sizeInfoLen covers the two u32 size fields immediately preceding the
	// stream: compressed size first, then uncompressed size.
	sizeInfoLen = 8

	maxCompressedSize   = 10 * 1024 * 1024
	maxDecompressedSize = 20 * 1024 * 1024
)

// isZlibHeader reports whether the byte pair starts a zlib stream.
// 78 9C is default compression, 78 DA best compression.
func isZlibHeader(a, b byte) bool {
	return a == 0x78 && (b == 0x9C || b == 0xDA)
}

func inflate(data []byte) ([]byte, error) {
	if len(data) > maxCompressedSize {
		return nil, fmt.Errorf("compressed data is too large (%d bytes)", len(data))
	}

	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	var buf bytes.Buffer
	_, err = io.Copy(&buf, io.LimitReader(zr, maxDecompressedSize))
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// LocateSaveData finds the compressed payload inside a raw save container and
// decompresses it. The scan accepts the first zlib header pair in the window;
// the size-info block sits exactly 8 bytes before it, so matches closer to the
// file start than that cannot be real streams and are skipped.
func LocateSaveData(raw []byte) (*SaveFile, error) {
	for i := sizeInfoLen; i < signatureScanWindow && i+2 <= len(raw); i++ {
		if !isZlibHeader(raw[i], raw[i+1]) {
			continue
		}

		compressedSize := binary.LittleEndian.Uint32(raw[i-sizeInfoLen:])
		uncompressedSize := binary.LittleEndian.Uint32(raw[i-sizeInfoLen+4:])

		log.Debug().
			Int("streamOffset", i).
			Uint32("compressedSize", compressedSize).
			Uint32("uncompressedSize", uncompressedSize).
			Msg("found zlib signature")

		end := i + int(compressedSize)
		if end > len(raw) {
			log.Warn().
				Uint32("declared", compressedSize).
				Int("available", len(raw)-i).
				Msg("declared compressed size runs past end of file")
			end = len(raw)
		}

		payload, err := inflate(raw[i:end])
		if err != nil {
			return nil, fmt.Errorf("inflate stream at 0x%X: %w: %w", i, ErrPayloadCorrupt, err)
		}

		if uncompressedSize != uint32(len(payload)) {
			log.Warn().
				Uint32("declared", uncompressedSize).
				Int("actual", len(payload)).
				Msg("declared uncompressed size does not match payload")
		}

		header := make([]byte, i-sizeInfoLen)
		copy(header, raw[:i-sizeInfoLen])

		return &SaveFile{
			Header:           header,
			Payload:          payload,
			SizeInfoOffset:   i - sizeInfoLen,
			StreamOffset:     i,
			CompressedSize:   compressedSize,
			UncompressedSize: uncompressedSize,
		}, nil
	}

	return nil, fmt.Errorf("scanned first %d bytes: %w", signatureScanWindow, ErrSignatureNotFound)
}

// OpenSaveFile reads and locates a save container from disk.
func OpenSaveFile(path string) (*SaveFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read save file: %w", err)
	}

	save, err := LocateSaveData(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return save, nil
}

// Rebuild recompresses the payload and reassembles the container:
// [header][compressedSize:u32][uncompressedSize:u32][stream]. Header bytes
// pass through untouched; both size fields are recomputed from the actual
// lengths, so the output sizes normally differ from the loaded ones.
func (s *SaveFile) Rebuild() ([]byte, error) {
	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(s.Payload); err != nil {
		return nil, fmt.Errorf("failed to compress payload: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to compress payload: %w", err)
	}
	compressed := buf.Bytes()

	out := make([]byte, 0, len(s.Header)+sizeInfoLen+len(compressed))
	out = append(out, s.Header...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(compressed)))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(s.Payload)))
	out = append(out, compressed...)

	return out, nil
}

// Write rebuilds the container and overwrites path in one call.
func (s *SaveFile) Write(path string) error {
	out, err := s.Rebuild()
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0644)
}

// WriteAtomic rebuilds into a temp file in the destination directory and
// renames it into place, so an interrupted write never leaves a truncated
// save behind.
func (s *SaveFile) WriteAtomic(path string) error {
	out, err := s.Rebuild()
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".sh2save-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(out); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	return os.Rename(tmpName, path)
}
