package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/timlawrenz/fluffy-train-sub000/internal/domain"
	"github.com/timlawrenz/fluffy-train-sub000/internal/platform/logger"
)

// Publisher pushes a prepared post to the external network. The real
// implementation lives outside this engine; the contract is a provider post
// id on success or an error.
type Publisher interface {
	Publish(ctx context.Context, persona *domain.Persona, photo *domain.Photo, caption string) (string, error)
}

type logPublisher struct {
	log *logger.Logger
}

// NewLogPublisher is the stand-in publisher for development and dry runs:
// it "publishes" by logging and returns a synthetic provider id.
func NewLogPublisher(log *logger.Logger) Publisher {
	return &logPublisher{log: log.With("service", "LogPublisher")}
}

func (p *logPublisher) Publish(_ context.Context, persona *domain.Persona, photo *domain.Photo, caption string) (string, error) {
	id := "dry-run-" + uuid.NewString()
	p.log.Info("Publishing post (dry run)",
		"persona", persona.Name,
		"photo", photo.Filename,
		"caption_len", len(caption),
		"provider_post_id", id,
	)
	return id, nil
}
