// Package cardback manages the player's custom card-back image: choosing a
// file, previewing it, applying it and persisting it across runs.
package cardback

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

const (
	// DefaultKey is the preference key the active image is stored under.
	DefaultKey = "memory-game-card-back"

	// DefaultImage references the built-in card back.
	DefaultImage = "builtin:card-back"

	// DefaultMaxFileSize caps the size of a selected image file.
	DefaultMaxFileSize = 1 << 20

	dataURLPrefix = "data:image/"
)

// KV is the durable key/value store the active image is persisted to.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// ErrNotImage is returned when the selected file is not an image.
var ErrNotImage = errors.New("cardback: file is not an image")

// DecodeError is returned when a selected file cannot be read.
type DecodeError struct {
	Name string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cardback: cannot read %s: %v", e.Name, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// PersistenceError is returned when the store rejects a write.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("cardback: cannot save card back: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// KeyFor returns the preference key for a player. Local play uses the
// shared key.
func KeyFor(principal string) string {
	if principal == "" {
		return DefaultKey
	}
	return DefaultKey + ":" + principal
}

// Options configures a Store. Zero values select defaults.
type Options struct {
	Key         string
	Default     string
	MaxFileSize int64
	Logger      *log.Logger
}

// Store holds the active card back and an optional pending preview.
type Store struct {
	kv      KV
	key     string
	def     string
	maxSize int64
	logger  *log.Logger

	mu      sync.Mutex
	active  string
	preview string
	err     error
}

// New loads the persisted card back. Values that are not embedded images
// are discarded, and read failures fall back to the default.
func New(ctx context.Context, kv KV, opts Options) *Store {
	if opts.Key == "" {
		opts.Key = DefaultKey
	}
	if opts.Default == "" {
		opts.Default = DefaultImage
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = DefaultMaxFileSize
	}
	if opts.Logger == nil {
		opts.Logger = log.Default().WithPrefix("cardback")
	}

	s := &Store{
		kv:      kv,
		key:     opts.Key,
		def:     opts.Default,
		maxSize: opts.MaxFileSize,
		logger:  opts.Logger,
		active:  opts.Default,
	}

	value, ok, err := kv.Get(ctx, s.key)
	switch {
	case err != nil:
		s.logger.Warn("cannot load card back, using default", "key", s.key, "err", err)
	case !ok:
	case IsDataURL(value):
		s.active = value
	default:
		s.logger.Warn("discarding invalid card back", "key", s.key)
		if err := kv.Delete(ctx, s.key); err != nil {
			s.logger.Warn("cannot delete invalid card back", "key", s.key, "err", err)
		}
	}

	return s
}

// IsDataURL reports whether v is an embedded image reference.
func IsDataURL(v string) bool {
	return strings.HasPrefix(v, dataURLPrefix)
}

// SelectFile validates and reads f into the pending preview. A nil file
// clears the preview. Validation and read failures also clear it.
func (s *Store) SelectFile(ctx context.Context, f *File) error {
	if f == nil {
		s.setPreview("", nil)
		return nil
	}

	mime := baseMIME(f.MIMEType)
	if !strings.HasPrefix(mime, "image/") {
		err := fmt.Errorf("%w: %s (%s)", ErrNotImage, f.Name, f.MIMEType)
		s.setPreview("", err)
		return err
	}

	data, err := s.read(ctx, f)
	if err != nil {
		derr := &DecodeError{Name: f.Name, Err: err}
		s.setPreview("", derr)
		return derr
	}

	preview := "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
	s.setPreview(preview, nil)
	s.logger.Debug("preview ready", "file", f.Name, "mime", mime, "bytes", len(data))
	return nil
}

func (s *Store) read(ctx context.Context, f *File) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, s.maxSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > s.maxSize {
		return nil, fmt.Errorf("file larger than %d bytes", s.maxSize)
	}
	if len(data) == 0 {
		return nil, errors.New("file is empty")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return data, nil
}

func (s *Store) setPreview(preview string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.preview = preview
	s.err = err
}

// Apply promotes the preview to the active card back and persists it. The
// active image is unchanged if the write is rejected. Without a preview
// Apply does nothing.
func (s *Store) Apply(ctx context.Context) error {
	s.mu.Lock()
	preview := s.preview
	s.mu.Unlock()

	if preview == "" {
		return nil
	}

	if err := s.kv.Set(ctx, s.key, preview); err != nil {
		perr := &PersistenceError{Err: err}
		s.mu.Lock()
		s.err = perr
		s.mu.Unlock()
		s.logger.Warn("card back not saved", "key", s.key, "err", err)
		return perr
	}

	s.mu.Lock()
	s.active = preview
	s.preview = ""
	s.err = nil
	s.mu.Unlock()

	s.logger.Info("card back applied", "key", s.key, "bytes", len(preview))
	return nil
}

// ResetToDefault removes the persisted card back and reverts to the
// default image.
func (s *Store) ResetToDefault(ctx context.Context) error {
	s.mu.Lock()
	s.active = s.def
	s.preview = ""
	s.err = nil
	s.mu.Unlock()

	if err := s.kv.Delete(ctx, s.key); err != nil {
		perr := &PersistenceError{Err: err}
		s.mu.Lock()
		s.err = perr
		s.mu.Unlock()
		return perr
	}
	return nil
}

// Active returns the active card back.
func (s *Store) Active() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Preview returns the pending preview, or "" when none is selected.
func (s *Store) Preview() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.preview
}

// IsCustom reports whether a custom image is active.
func (s *Store) IsCustom() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active != s.def
}

// Err returns the last selection or persistence error.
func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// baseMIME strips parameters from a media type.
func baseMIME(mime string) string {
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	return strings.ToLower(strings.TrimSpace(mime))
}
