package application

import (
	"errors"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/sirupsen/logrus"

	"github.com/nexshop/marketplace/internal/gateway"
	"github.com/nexshop/marketplace/internal/store"
	"github.com/nexshop/marketplace/pkg/helpers"
)

// Application rejections. These always propagate to the caller; only
// transport failures are eligible for the silent fallback path.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrNotFound           = errors.New("not found")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrInvalidRating      = errors.New("rating must be between 1 and 5")
)

// Service is the stable method surface both the UI and the agent's
// tool executor invoke. It composes the remote gateway with the local
// tables: with Remote set it mirrors every successful remote read and
// falls back to the tables on transport failures; with Remote nil it
// operates on the tables directly (the server runs it this way against
// the authoritative store).
type Service struct {
	Store  store.TableStore
	Remote *gateway.Client // nil means offline / authoritative mode
	Logger *logrus.Logger

	// Optional server-side infrastructure.
	Pub             *helpers.RabbitPublisher // verification email jobs
	MailSendEnabled bool
	VerifyEmailURL  string

	ES              *elasticsearch.Client // product search index
	ESProductsIndex string

	GCS       *storage.Client // product image uploads
	GCSBucket string
}

func NewService(st store.TableStore, remote *gateway.Client, logger *logrus.Logger) *Service {
	return &Service{Store: st, Remote: remote, Logger: logger}
}

// rejected collapses any remote application rejection into the given
// sentinel so callers match on errors.Is regardless of which side of
// the gateway produced the failure.
func rejected(err, sentinel error) error {
	var ae *gateway.AppError
	if errors.As(err, &ae) {
		return sentinel
	}
	return err
}

func (s *Service) warn(err error, msg string, fields logrus.Fields) {
	if s.Logger == nil || err == nil {
		return
	}
	if fields == nil {
		fields = logrus.Fields{}
	}
	s.Logger.WithError(err).WithFields(fields).Warn(msg)
}
