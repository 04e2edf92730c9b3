package request

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"sales-dashboard/internal/service/dashboard"
	"sales-dashboard/internal/storage"
)

// Timeout for one dashboard pass. A cold cache pays for the extraction.
const Timeout = 30 * time.Second

var ErrBadRequest = errors.New("bad request")

// ParseQuery reads variant, from, to and the repeated salesperson, customer and
// category parameters.
func ParseQuery(r *http.Request) (dashboard.Query, error) {
	values := r.URL.Query()

	from, err := parseDate(values, "from")
	if err != nil {
		return dashboard.Query{}, err
	}
	to, err := parseDate(values, "to")
	if err != nil {
		return dashboard.Query{}, err
	}

	return dashboard.Query{
		Variant:     values.Get("variant"),
		From:        from,
		To:          to,
		Salespeople: nonEmpty(values["salesperson"]),
		Customers:   nonEmpty(values["customer"]),
		Categories:  nonEmpty(values["category"]),
	}, nil
}

func parseDate(values url.Values, name string) (*time.Time, error) {
	raw := values.Get(name)
	if raw == "" {
		return nil, nil
	}

	d, err := time.Parse(storage.DateLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid %s date %q, expected YYYY-MM-DD", ErrBadRequest, name, raw)
	}
	return &d, nil
}

func nonEmpty(in []string) []string {
	var out []string
	for _, s := range in {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// WriteError maps a pipeline error to a status. Only unexpected errors are
// logged as errors and their text never reaches the client.
func WriteError(w http.ResponseWriter, r *http.Request, log *slog.Logger, op string, err error) {
	log = log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, dashboard.ErrUnknownVariant):
		log.Warn("bad request", slog.String("error", err.Error()))
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, dashboard.ErrExportNotOffered):
		log.Warn("export not offered", slog.String("error", err.Error()))
		http.Error(w, "Export format is not offered by this dashboard variant", http.StatusNotFound)
	default:
		log.Error("failed to build dashboard", slog.String("error", err.Error()))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
