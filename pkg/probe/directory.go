package probe

import (
	"fmt"
	"os"
	"path/filepath"
)

// SkippedFile holds information about the path of file that is skipped from probing results and the reason for why it's skipped
type SkippedFile struct {
	Path string
	Err  error
}

// Directory takes a single directory path that should be checked for media files.
// Subdirectories are walked only when recursive is set.
func Directory(path string, recursive bool, prober Prober) ([]Result, []SkippedFile) {
	var results []Result
	var skippedFiles []SkippedFile

	filepath.Walk(path, func(filePath string, info os.FileInfo, err error) error {
		if err != nil {
			skippedFiles = append(skippedFiles, SkippedFile{
				Path: filePath,
				Err:  err,
			})
			return nil
		}

		if info.IsDir() {
			if filePath != path && !recursive {
				return filepath.SkipDir
			}

			return nil
		}

		result := prober(filePath)
		if result.Err != nil {
			skippedFiles = append(skippedFiles, SkippedFile{
				Path: filePath,
				Err:  fmt.Errorf("file probing unsuccessful: %w", result.Err),
			})
			return nil
		}

		results = append(results, result)
		return nil
	})

	return results, skippedFiles
}
