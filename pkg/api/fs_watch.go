package api

import (
	"github.com/fsnotify/fsnotify"
	"github.com/sarpt/mpv-repeat-player/pkg/state/pkg/media_files"
)

func (s *Server) handleFsEvent(event fsnotify.Event) error {
	if shouldRemoveMediaPath(event.Op) {
		if !s.statesRepository.MediaFiles().Exists(event.Name) {
			return nil
		}

		s.outLog.Printf("removing media file '%s'\n", event.Name)
		_, err := s.statesRepository.MediaFiles().Take(event.Name)

		return err
	}

	if shouldProbeMediaPath(event.Op) {
		s.probeFile(event.Name)
	}

	return nil
}

func (s *Server) probeFile(path string) {
	result := s.prober(path)
	if result.Err != nil {
		s.errLog.Printf("could not probe file '%s': %s\n", path, result.Err)

		return
	}

	if !result.IsMediaFile() {
		return
	}

	s.outLog.Printf("adding media file '%s'\n", path)
	s.statesRepository.MediaFiles().Add(media_files.MapProbeResultToMediaFile(result))
}

func (s *Server) watchForFsChanges() {
	go func() {
		for {
			select {
			case event, ok := <-s.fsWatcher.Events:
				if !ok {
					return
				}

				err := s.handleFsEvent(event)
				if err != nil {
					s.errLog.Printf("could not handle event '%s' due to an error: %s\n", event, err)
				}
			case err, ok := <-s.fsWatcher.Errors:
				if !ok {
					return
				}

				s.errLog.Printf("fs watcher returned an error: %s\n", err)
			}
		}
	}()
}

func shouldProbeMediaPath(op fsnotify.Op) bool {
	return op&(fsnotify.Create|fsnotify.Write) != 0
}

func shouldRemoveMediaPath(op fsnotify.Op) bool {
	return op&(fsnotify.Rename|fsnotify.Remove) != 0
}
