package analyzer

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Discovery is the set of CSV inputs found for one batch, plus the
// extraction dirs to clean up once the batch is done.
type Discovery struct {
	Files       []string
	extractDirs []string
}

// Cleanup removes any ZIP extraction directories created during discovery.
func (d *Discovery) Cleanup() {
	for _, dir := range d.extractDirs {
		os.RemoveAll(dir)
	}
}

// Discover walks inputDir for *.csv and *.zip, extracts CSV members of the
// archives into temp dirs, and deduplicates the result by (base name, size)
// so the same export delivered both loose and zipped is analyzed once.
func Discover(inputDir string) (*Discovery, error) {
	d := &Discovery{}

	var csvs, zips []string
	err := filepath.WalkDir(inputDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".csv":
			csvs = append(csvs, path)
		case ".zip":
			zips = append(zips, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory %q: %w", inputDir, err)
	}

	for _, archive := range zips {
		extracted, dir, err := extractCSVs(archive)
		if err != nil {
			// A bad archive fails itself, not the batch.
			continue
		}
		if dir != "" {
			d.extractDirs = append(d.extractDirs, dir)
		}
		csvs = append(csvs, extracted...)
	}

	seen := make(map[string]struct{})
	for _, path := range csvs {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		key := fmt.Sprintf("%s|%d", strings.ToLower(filepath.Base(path)), info.Size())
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		d.Files = append(d.Files, path)
	}
	return d, nil
}

// extractCSVs unpacks the CSV members of one archive into a fresh temp dir.
func extractCSVs(archive string) (files []string, dir string, err error) {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open archive %q: %w", archive, err)
	}
	defer zr.Close()

	dir, err = os.MkdirTemp("", "forensicflow-extract-*")
	if err != nil {
		return nil, "", fmt.Errorf("failed to create extraction dir: %w", err)
	}

	for _, member := range zr.File {
		if member.FileInfo().IsDir() || strings.ToLower(filepath.Ext(member.Name)) != ".csv" {
			continue
		}
		// Flatten archive paths; member names are untrusted.
		dst := filepath.Join(dir, filepath.Base(member.Name))
		if err := extractMember(member, dst); err != nil {
			continue
		}
		files = append(files, dst)
	}
	return files, dir, nil
}

func extractMember(member *zip.File, dst string) error {
	src, err := member.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, src)
	return err
}
