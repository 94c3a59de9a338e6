// Package storage lays out rendition and poster files on local disk under
// a per-title directory, and produces the public URLs the HTTP layer
// serves them from.
package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"kinora/internal/domain/media"
	"kinora/internal/shared/config"
	"kinora/internal/shared/logger"
)

// LocalStore manages the on-disk layout:
//
//	<root>/movies/<slug>/original-<ts>.<ext>   claimed upload, removed after processing
//	<root>/movies/<slug>/<tier>.mp4            encoded renditions, tier lowercased
//	<root>/movies/<slug>/poster.<ext>          poster image
type LocalStore struct {
	root         string
	publicPrefix string
	logger       logger.Interface
}

func NewLocalStore(cfg *config.MediaConfig, logger logger.Interface) *LocalStore {
	return &LocalStore{
		root:         cfg.UploadRoot,
		publicPrefix: strings.TrimSuffix(cfg.PublicPrefix, "/"),
		logger:       logger,
	}
}

// Root returns the filesystem directory the public prefix maps onto.
func (s *LocalStore) Root() string {
	return s.root
}

// PublicPrefix returns the URL prefix files are served under.
func (s *LocalStore) PublicPrefix() string {
	return s.publicPrefix
}

// TitleDir returns the working directory for one title, creating it if needed.
func (s *LocalStore) TitleDir(slug string) (string, error) {
	dir := filepath.Join(s.root, "movies", slug)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create title directory: %w", err)
	}
	return dir, nil
}

// ClaimSource streams the uploaded video into the title's working directory
// under a timestamped name so concurrent claims never collide on disk.
func (s *LocalStore) ClaimSource(slug string, file *multipart.FileHeader) (string, error) {
	dir, err := s.TitleDir(slug)
	if err != nil {
		return "", err
	}

	ext := filepath.Ext(file.Filename)
	if ext == "" {
		ext = ".mp4"
	}
	dst := filepath.Join(dir, fmt.Sprintf("original-%d%s", time.Now().UnixNano(), ext))

	if err := s.saveMultipart(file, dst); err != nil {
		return "", fmt.Errorf("failed to claim source upload: %w", err)
	}

	s.logger.Infow("source upload claimed", "slug", slug, "path", dst, "size", file.Size)
	return dst, nil
}

// SavePoster writes the poster image as poster.<ext> and returns its public URL.
func (s *LocalStore) SavePoster(slug string, file *multipart.FileHeader) (string, error) {
	dir, err := s.TitleDir(slug)
	if err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext == "" {
		ext = ".jpg"
	}
	name := "poster" + ext
	if err := s.saveMultipart(file, filepath.Join(dir, name)); err != nil {
		return "", fmt.Errorf("failed to save poster: %w", err)
	}

	return s.publicURL(slug, name), nil
}

// SaveRendition writes a pre-encoded upload straight into one tier's slot
// and returns its public URL. Used by the manual attach endpoint; the
// pipeline writes through RenditionPath instead.
func (s *LocalStore) SaveRendition(slug string, quality media.Quality, file *multipart.FileHeader) (string, error) {
	dst, err := s.RenditionPath(slug, quality)
	if err != nil {
		return "", err
	}
	if err := s.saveMultipart(file, dst); err != nil {
		return "", fmt.Errorf("failed to save rendition: %w", err)
	}

	s.logger.Infow("rendition attached", "slug", slug, "quality", quality.String(), "size", file.Size)
	return s.RenditionURL(slug, quality), nil
}

// RenditionPath returns the output path an encoder should write one tier to.
func (s *LocalStore) RenditionPath(slug string, quality media.Quality) (string, error) {
	dir, err := s.TitleDir(slug)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, renditionFileName(quality)), nil
}

// RenditionURL returns the public URL of one tier's rendition file.
func (s *LocalStore) RenditionURL(slug string, quality media.Quality) string {
	return s.publicURL(slug, renditionFileName(quality))
}

// FilePath resolves a public URL produced by this store back to its location
// on disk.
func (s *LocalStore) FilePath(publicURL string) string {
	rel := strings.TrimPrefix(publicURL, s.publicPrefix)
	return filepath.Join(s.root, filepath.FromSlash(rel))
}

// RemoveSource deletes a claimed source file. Missing files are not an error
// since cleanup must be safe to repeat.
func (s *LocalStore) RemoveSource(sourcePath string) error {
	if sourcePath == "" {
		return nil
	}
	if err := os.Remove(sourcePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove source file: %w", err)
	}
	return nil
}

// RemoveTitle deletes the whole per-title directory, renditions included.
func (s *LocalStore) RemoveTitle(slug string) error {
	if slug == "" {
		return nil
	}
	dir := filepath.Join(s.root, "movies", slug)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove title directory: %w", err)
	}
	s.logger.Infow("title directory removed", "slug", slug)
	return nil
}

// RemovePartial deletes a half-written rendition output after an encode
// failure so a broken file never sits under a servable path.
func (s *LocalStore) RemovePartial(outputPath string) {
	if err := os.Remove(outputPath); err != nil && !os.IsNotExist(err) {
		s.logger.Warnw("failed to remove partial output", "path", outputPath, "error", err)
	}
}

func (s *LocalStore) saveMultipart(file *multipart.FileHeader, dst string) error {
	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		os.Remove(dst)
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}
	return nil
}

func (s *LocalStore) publicURL(slug, name string) string {
	return s.publicPrefix + path.Join("/movies", slug, name)
}

func renditionFileName(quality media.Quality) string {
	return strings.ToLower(quality.String()) + ".mp4"
}
