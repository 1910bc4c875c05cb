package playground

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/starfederation/datastar-go/datastar"
)

// DataStar request markers.
const (
	DataStarAcceptHeader  = "text/event-stream"
	DataStarRequestHeader = "Datastar-Request"
	DataStarQueryParam    = "datastar"
)

// IsDataStar reports whether r was sent by the datastar client and expects
// an SSE response.
func IsDataStar(r *http.Request) bool {
	if r.Header.Get(DataStarRequestHeader) == "true" {
		return true
	}
	if strings.Contains(r.Header.Get("Accept"), DataStarAcceptHeader) {
		return true
	}
	return r.URL.Query().Has(DataStarQueryParam)
}

// stream patches fragments into the page over one SSE response.
type stream struct {
	sse *datastar.ServerSentEventGenerator
}

func newStream(w http.ResponseWriter, r *http.Request) *stream {
	return &stream{sse: datastar.NewSSE(w, r)}
}

// patch morphs each component into the element sharing its id.
func (s *stream) patch(components ...templ.Component) error {
	for _, c := range components {
		if err := s.sse.PatchElementTempl(c); err != nil {
			return errors.Join(ErrFailedToRender, err)
		}
	}
	return nil
}

// page renders a full document for plain HTTP requests.
func page(ctx context.Context, w http.ResponseWriter, c templ.Component) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(ctx, w); err != nil {
		return errors.Join(ErrFailedToRender, err)
	}
	return nil
}

// readSignal returns the value of one signal. Datastar requests carry
// signals as JSON; plain form posts carry them as form values.
func readSignal(r *http.Request, name string) (any, error) {
	if IsDataStar(r) {
		signals := make(map[string]any)
		if err := datastar.ReadSignals(r, &signals); err != nil {
			return nil, errors.Join(ErrInvalidSignals, err)
		}
		v, ok := signals[name]
		if !ok {
			return nil, errors.Join(ErrInvalidSignals, errors.New("missing signal "+name))
		}
		return v, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, errors.Join(ErrInvalidSignals, err)
	}
	if !r.PostForm.Has(name) {
		return nil, errors.Join(ErrInvalidSignals, errors.New("missing form value "+name))
	}
	return r.PostForm.Get(name), nil
}
