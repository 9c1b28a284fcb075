package api

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/sarpt/mpv-repeat-player/internal/common"
	"github.com/sarpt/mpv-repeat-player/pkg/probe"
	"github.com/sarpt/mpv-repeat-player/pkg/state/pkg/media_files"
)

// readDirectory probes files directly inside the directory,
// adding found media files to the library.
func (s *Server) readDirectory(path string) int {
	s.outLog.Printf("reading directory %s\n", path)

	results, skipped := probe.Directory(path, false, s.prober)
	for _, skippedFile := range skipped {
		s.errLog.Printf("skipped '%s': %s\n", skippedFile.Path, skippedFile.Err)
	}

	var added int
	for _, result := range results {
		if !result.IsMediaFile() {
			continue
		}

		s.statesRepository.MediaFiles().Add(media_files.MapProbeResultToMediaFile(result))
		added++
	}

	return added
}

// AddRootDirectories adds root directories with media files to be handled by the server.
// If the Directory entries are already present, they are overwritten along with their properties
// (watched, recursive).
func (s *Server) AddRootDirectories(rootDirectories []common.Directory) {
	for _, rootDir := range rootDirectories {
		rootPath := filepath.Clean(rootDir.Path)

		walkErr := filepath.WalkDir(rootPath, func(path string, dirEntry fs.DirEntry, err error) error {
			if err != nil {
				s.errLog.Printf("could not process entry '%s': %s\n", path, err)

				return err
			}

			if !dirEntry.IsDir() {
				return nil
			}

			if rootPath != path && !rootDir.Recursive {
				return fs.SkipDir
			}

			subDir := common.Directory{
				Path:      common.EnsureDirectoryPath(path),
				Recursive: rootDir.Recursive,
				Watched:   rootDir.Watched,
			}
			addDirErr := s.AddDirectory(subDir)
			if addDirErr != nil {
				s.errLog.Printf("could not add directory '%s': %s\n", path, addDirErr)
			} else {
				s.outLog.Printf("directory added %s\n", path)
			}

			return nil
		})

		if walkErr != nil {
			s.errLog.Printf("could not walk through the root directory '%s': %s\n", rootDir.Path, walkErr)
		}
	}
}

// AddDirectory reads media files of a single directory, watching it for changes when requested.
func (s *Server) AddDirectory(dir common.Directory) error {
	dir.Path = common.EnsureDirectoryPath(dir.Path)

	prevDir, err := s.statesRepository.Directories().ByPath(dir.Path)
	if err == nil && prevDir.Watched {
		err := s.fsWatcher.Remove(filepath.Clean(prevDir.Path))
		if err != nil {
			return err
		}
	}

	if dir.Watched {
		err := s.fsWatcher.Add(filepath.Clean(dir.Path))
		if err != nil {
			return err
		}
	}

	s.readDirectory(dir.Path)
	s.statesRepository.Directories().Add(dir)

	return nil
}

// TakeDirectory stops serving the directory and removes its media files from the library.
func (s *Server) TakeDirectory(path string) (common.Directory, error) {
	path = common.EnsureDirectoryPath(path)

	dir, err := s.statesRepository.Directories().ByPath(path)
	if err != nil {
		return common.Directory{}, common.StatusError{
			Err:    fmt.Errorf("could not remove directory '%s' - directory was not added", path),
			Status: 404,
		}
	}

	if dir.Watched {
		if err := s.fsWatcher.Remove(filepath.Clean(dir.Path)); err != nil {
			return common.Directory{}, fmt.Errorf("could not stop watching fs changes for a directory '%s': %w", path, err)
		}
	}

	dir, err = s.statesRepository.Directories().Take(path)
	if err != nil {
		return dir, fmt.Errorf("could not take directory '%s': %w", path, err)
	}

	filesToRemove := s.statesRepository.MediaFiles().PathsUnderParent(path)
	removedFiles, skippedFiles := s.statesRepository.MediaFiles().TakeMultiple(filesToRemove)
	if len(skippedFiles) != 0 {
		s.errLog.Printf("could not take following %d files: %s\n", len(skippedFiles), strings.Join(skippedFiles, ", "))
	}

	s.outLog.Printf("deleted directory '%s' and %d children media files\n", path, len(removedFiles))

	return dir, nil
}
