package editor

import (
	"context"
	"fmt"
	"log"
	"net/url"

	"github.com/google/uuid"
	"go.seanlatimer.dev/imgedit/internal/api"
	"go.seanlatimer.dev/imgedit/internal/presets"
)

// Backend is the server contract the controllers depend on. *api.Client
// implements it.
type Backend interface {
	Preset(ctx context.Context, kind presets.Kind, name string) (string, error)
	SavePreset(ctx context.Context, kind presets.Kind, name, text string) (string, error)
	DeletePreset(ctx context.Context, kind presets.Kind, name string) (string, error)
	DuplicatePrompt(ctx context.Context, name, text string) (string, error)
	Upload(ctx context.Context, path string) (string, error)
	ModelSizes(ctx context.Context, model string) (api.ModelSizes, error)
	Page(ctx context.Context, query url.Values) (api.Page, error)
	Submit(ctx context.Context, form url.Values) (api.Page, error)
}

// Prober checks whether an image reference loads.
type Prober interface {
	Probe(ctx context.Context, ref string) error
}

// Notifier receives user-visible messages.
type Notifier interface {
	Info(msg string)
	Error(msg string)
}

// Sequence numbers the requests issued for one field. Only a response
// carrying the latest number may touch the field.
type Sequence struct {
	n uint64
}

func (s *Sequence) Next() uint64 {
	s.n++
	return s.n
}

func (s *Sequence) Latest(n uint64) bool {
	return n == s.n
}

// call runs fn with a request-scoped context. A panic inside fn comes back as
// an error so the caller's busy state is still released.
func call(id string, fn func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("request %s panicked: %v", id, r)
		}
	}()
	return fn(api.WithRequestID(context.Background(), id))
}

func newRequestID() string {
	return uuid.NewString()
}

// logf writes a diagnostic record for failures the user is not told about.
func logf(id, format string, args ...any) {
	log.Printf("[%s] "+format, append([]any{id}, args...)...)
}
