package outreach

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/athletereach/outreach/pkg/blob"
	"github.com/athletereach/outreach/svc/dispatch"
	outreachsvc "github.com/athletereach/outreach/svc/outreach"
)

// RouterOptions wires the services exposed by the outreach module.
// Service and Enqueuer are required; the rest are optional and their routes
// are only mounted when provided.
type RouterOptions struct {
	Service  *outreachsvc.Service
	Enqueuer *dispatch.Enqueuer
	Queue    dispatch.Repository

	// Worker enables POST /queue/drain for environments that drain the
	// queue on demand instead of running the background loop.
	Worker *dispatch.Worker

	// Attachments enables upload and delete of attachment blobs.
	Attachments blob.Storage

	Logger *slog.Logger
}

// Router creates the outreach module router.
//
// Example:
//
//	r := chi.NewRouter()
//	r.Mount("/outreach", outreach.Router(outreach.RouterOptions{
//	    Service:  svc,
//	    Enqueuer: enqueuer,
//	    Queue:    repo,
//	}))
func Router(opts RouterOptions) chi.Router {
	h := &handlers{
		svc:         opts.Service,
		enqueuer:    opts.Enqueuer,
		queue:       opts.Queue,
		worker:      opts.Worker,
		attachments: opts.Attachments,
		logger:      opts.Logger,
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(requireOwner)

	r.Route("/templates", func(r chi.Router) {
		r.Post("/", h.createTemplate)
		r.Get("/", h.listTemplates)
		r.Get("/{templateID}", h.getTemplate)
		r.Put("/{templateID}", h.updateTemplate)
		r.Delete("/{templateID}", h.deleteTemplate)
	})

	r.Post("/previews", h.preview)
	r.Post("/personalize", h.personalize)
	r.Post("/batches", h.enqueueBatch)
	r.Post("/send", h.sendNow)

	r.Route("/queue", func(r chi.Router) {
		r.Get("/", h.listQueue)
		r.Post("/{itemID}/requeue", h.requeue)
		if opts.Worker != nil {
			r.Post("/drain", h.drain)
		}
	})

	r.Get("/usage", h.usage)
	r.Get("/contacted", h.alreadyContacted)

	if opts.Attachments != nil {
		r.Post("/attachments", h.uploadAttachment)
		r.Delete("/attachments/*", h.deleteAttachment)
	}

	return r
}

// ownerIDHeader carries the authenticated user id, set by the edge proxy
// after session validation.
const ownerIDHeader = "X-User-ID"

type ctxKey int

const ownerKey ctxKey = iota

func requireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner, err := parseOwner(r.Header.Get(ownerIDHeader))
		if err != nil {
			respondError(w, http.StatusUnauthorized, "missing or invalid "+ownerIDHeader+" header")
			return
		}
		next.ServeHTTP(w, r.WithContext(withOwner(r.Context(), owner)))
	})
}
