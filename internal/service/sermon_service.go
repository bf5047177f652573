package service

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/google/uuid"

	"go-parish-platform/internal/content"
	"go-parish-platform/internal/data"
	"go-parish-platform/internal/storage"
)

// SermonRepository defines the database operations the sermon service needs.
type SermonRepository interface {
	CreateSermon(ctx context.Context, s *data.Sermon) error
	GetSermonByID(ctx context.Context, id string) (*data.Sermon, error)
	ListSermons(ctx context.Context, parishID string) ([]*data.Sermon, error)
	UpdateSermon(ctx context.Context, s *data.Sermon) error
	DeleteSermon(ctx context.Context, id string) error
}

// RenderedSermon pairs a sermon record with its notes rendered to safe
// HTML and, when audio was uploaded, the public URL to stream it from.
type RenderedSermon struct {
	*data.Sermon
	NotesHTML template.HTML
	AudioURL  string
}

// SermonService provides business logic for the sermon archive,
// including uploaded audio stored through the media store.
type SermonService struct {
	repo     SermonRepository
	media    *storage.MediaStore
	renderer *content.Renderer
}

// NewSermonService creates a new SermonService.
func NewSermonService(repo SermonRepository, media *storage.MediaStore) *SermonService {
	return &SermonService{
		repo:     repo,
		media:    media,
		renderer: content.NewRenderer(),
	}
}

// CreateSermon stores a new sermon. When audio is non-nil it is written
// to the media store and the sermon carries its storage path; audioExt
// is the file extension of the upload, such as ".mp3".
func (s *SermonService) CreateSermon(ctx context.Context, parishID, title, speaker, notes string, preachedOn time.Time, audio io.Reader, audioExt string) (*data.Sermon, error) {
	if title == "" {
		return nil, fmt.Errorf("sermon title is required")
	}
	sermon := &data.Sermon{
		ID:         uuid.NewString(),
		ParishID:   parishID,
		Title:      title,
		Speaker:    speaker,
		Notes:      notes,
		PreachedOn: preachedOn,
	}
	if audio != nil {
		path, err := s.media.Save(parishID, audioExt, audio)
		if err != nil {
			return nil, fmt.Errorf("storing sermon audio: %w", err)
		}
		sermon.AudioPath = path
	}
	if err := s.repo.CreateSermon(ctx, sermon); err != nil {
		return nil, err
	}
	return sermon, nil
}

// GetSermon retrieves a sermon by ID.
func (s *SermonService) GetSermon(ctx context.Context, id string) (*data.Sermon, error) {
	return s.repo.GetSermonByID(ctx, id)
}

// ListSermons retrieves a parish's sermons for the admin screens.
func (s *SermonService) ListSermons(ctx context.Context, parishID string) ([]*data.Sermon, error) {
	return s.repo.ListSermons(ctx, parishID)
}

// PublicSermons returns the sermon archive with notes rendered to
// sanitized HTML and audio paths resolved to public URLs.
func (s *SermonService) PublicSermons(ctx context.Context, parishID string) ([]RenderedSermon, error) {
	rows, err := s.repo.ListSermons(ctx, parishID)
	if err != nil {
		return nil, err
	}
	out := make([]RenderedSermon, 0, len(rows))
	for _, row := range rows {
		html, err := s.renderer.RenderMarkdown(row.Notes)
		if err != nil {
			return nil, fmt.Errorf("sermon %q: %w", row.ID, err)
		}
		rs := RenderedSermon{Sermon: row, NotesHTML: html}
		if row.AudioPath != "" {
			rs.AudioURL = s.media.PublicURL(row.AudioPath)
		}
		out = append(out, rs)
	}
	return out, nil
}

// UpdateSermon applies changes to an existing sermon. A non-nil audio
// reader replaces the stored recording; the old file is removed.
func (s *SermonService) UpdateSermon(ctx context.Context, id, title, speaker, notes string, preachedOn time.Time, audio io.Reader, audioExt string) (*data.Sermon, error) {
	if title == "" {
		return nil, fmt.Errorf("sermon title is required")
	}
	sermon, err := s.repo.GetSermonByID(ctx, id)
	if err != nil {
		return nil, err
	}
	sermon.Title = title
	sermon.Speaker = speaker
	sermon.Notes = notes
	sermon.PreachedOn = preachedOn
	if audio != nil {
		path, err := s.media.Save(sermon.ParishID, audioExt, audio)
		if err != nil {
			return nil, fmt.Errorf("storing sermon audio: %w", err)
		}
		if sermon.AudioPath != "" && sermon.AudioPath != path {
			if err := s.media.Remove(sermon.AudioPath); err != nil {
				return nil, fmt.Errorf("removing replaced audio: %w", err)
			}
		}
		sermon.AudioPath = path
	}
	if err := s.repo.UpdateSermon(ctx, sermon); err != nil {
		return nil, err
	}
	return sermon, nil
}

// DeleteSermon removes a sermon and its uploaded audio, if any.
func (s *SermonService) DeleteSermon(ctx context.Context, id string) error {
	sermon, err := s.repo.GetSermonByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteSermon(ctx, id); err != nil {
		return err
	}
	if sermon.AudioPath != "" {
		return s.media.Remove(sermon.AudioPath)
	}
	return nil
}
