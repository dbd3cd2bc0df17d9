package logger

import (
	"bufio"
	"errors"
	"io"
	"sync"
)

// syncWriter fans each line out to every sink under one lock.
type syncWriter struct {
	mu    sync.Mutex
	sinks []*bufio.Writer
	err   error
}

func newSyncWriter(writers []io.Writer) *syncWriter {
	w := &syncWriter{}
	for _, out := range writers {
		if out != nil {
			w.sinks = append(w.sinks, bufio.NewWriterSize(out, 32*1024))
		}
	}
	return w
}

// Write appends p to all sinks and flushes them so lines are never torn.
func (w *syncWriter) Write(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	for _, s := range w.sinks {
		if _, err := s.Write(p); err != nil {
			w.err = err
			return err
		}
		if err := s.Flush(); err != nil {
			w.err = err
			return err
		}
	}
	return nil
}

// Flush pushes buffered content of all sinks.
func (w *syncWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	var errs []error
	for _, s := range w.sinks {
		if err := s.Flush(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
