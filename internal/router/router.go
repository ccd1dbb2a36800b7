// Package router exposes the loan service over HTTP.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/patric-chuzhbe/libloans/internal/gzippedhttp"
	"github.com/patric-chuzhbe/libloans/internal/ipchecker"
	"github.com/patric-chuzhbe/libloans/internal/loan"
	"github.com/patric-chuzhbe/libloans/internal/logger"
	"github.com/patric-chuzhbe/libloans/internal/models"
	"github.com/patric-chuzhbe/libloans/internal/service"
)

type loanService interface {
	Issue(ctx context.Context, request loan.Request) (*loan.Loan, error)
	Lookup(ctx context.Context, id string) (*loan.Loan, error)
	Stats(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
}

// Router holds the HTTP handlers of the loan API.
type Router struct {
	svc       loanService
	ipChecker *ipchecker.IPChecker
	limiter   *rate.Limiter
}

type InitOption func(*initOptions)

type initOptions struct {
	rateLimitRPS   float64
	rateLimitBurst int
}

// WithRateLimit limits the whole API to rps requests per second with the given burst.
// A zero rps disables limiting.
func WithRateLimit(rps float64, burst int) InitOption {
	return func(options *initOptions) {
		options.rateLimitRPS = rps
		options.rateLimitBurst = burst
	}
}

// New builds the chi router serving the loan API.
func New(
	svc loanService,
	ipChecker *ipchecker.IPChecker,
	optionsProto ...InitOption,
) *chi.Mux {
	options := &initOptions{}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	myRouter := &Router{
		svc:       svc,
		ipChecker: ipChecker,
	}
	if options.rateLimitRPS > 0 {
		burst := options.rateLimitBurst
		if burst < 1 {
			burst = 1
		}
		myRouter.limiter = rate.NewLimiter(rate.Limit(options.rateLimitRPS), burst)
	}

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		logger.WithLoggingHTTPMiddleware,
		myRouter.withRateLimit,
		gzippedhttp.UngzipRequest,
		middleware.Compress(5, "application/json"),
	)

	router.Post(`/api/prestamo`, myRouter.PostApiprestamo)
	router.Get(`/api/prestamo/{id}`, myRouter.GetApiprestamo)
	router.Get(`/ping`, myRouter.GetPing)
	router.With(ipChecker.TrustedSubnetOnly).Get(`/api/internal/stats`, myRouter.GetApiinternalstats)

	return router
}

func (router *Router) withRateLimit(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if router.limiter != nil && !router.limiter.Allow() {
			writeJSON(w, http.StatusTooManyRequests, models.MessageResponse{Mensaje: models.MessageTooManyRequests})
			return
		}

		h.ServeHTTP(w, r)
	})
}

// PostApiprestamo issues a new loan.
func (router *Router) PostApiprestamo(res http.ResponseWriter, req *http.Request) {
	var request models.IssueLoanRequest
	if err := json.NewDecoder(req.Body).Decode(&request); err != nil {
		logger.Log.Debugln("malformed loan request", "err", err)
		writeJSON(res, http.StatusBadRequest, models.MessageResponse{Mensaje: models.MessageMalformedRequest})
		return
	}

	record, err := router.svc.Issue(req.Context(), loan.Request{
		ISBN:               request.Isbn,
		UserIdentification: request.IdentificacionUsuario,
		UserType:           loan.UserType(request.TipoUsuario),
	})

	switch {
	case err == nil:
		writeJSON(res, http.StatusOK, models.IssueLoanResponse{
			ID:                    record.ID,
			FechaMaximaDevolucion: record.DueDate,
		})

	case errors.Is(err, service.ErrUserAlreadyHasLoan):
		writeJSON(res, http.StatusOK, models.MessageResponse{
			Mensaje: models.MessageAlreadyHasLoan(request.IdentificacionUsuario),
		})

	case errors.Is(err, loan.ErrInvalidIdentification):
		writeJSON(res, http.StatusBadRequest, models.MessageResponse{
			Mensaje: models.MessageInvalidIdentification(request.IdentificacionUsuario),
		})

	case errors.Is(err, loan.ErrInvalidUserType):
		writeJSON(res, http.StatusBadRequest, models.MessageResponse{Mensaje: models.MessageInvalidUserType})

	default:
		logger.Log.Errorln("loan issuance failed", "err", err)
		writeJSON(res, http.StatusInternalServerError, models.MessageResponse{
			Mensaje: models.MessageInternalError(err),
		})
	}
}

// GetApiprestamo returns a stored loan by id. Ids that are not UUIDs get 400.
func (router *Router) GetApiprestamo(res http.ResponseWriter, req *http.Request) {
	parsedID, err := uuid.Parse(chi.URLParam(req, "id"))
	if err != nil {
		writeJSON(res, http.StatusBadRequest, models.MessageResponse{Mensaje: models.MessageInvalidLoanID})
		return
	}
	id := parsedID.String()

	record, err := router.svc.Lookup(req.Context(), id)

	switch {
	case err == nil:
		writeJSON(res, http.StatusOK, models.LoanResponse{
			ID:                    record.ID,
			Isbn:                  record.ISBN,
			IdentificacionUsuario: record.UserIdentification,
			TipoUsuario:           int(record.UserType),
			FechaMaximaDevolucion: record.DueDate,
		})

	case errors.Is(err, service.ErrLoanNotFound):
		writeJSON(res, http.StatusNotFound, models.MessageResponse{Mensaje: models.MessageLoanNotFound(id)})

	case errors.Is(err, service.ErrInvalidRecord):
		writeJSON(res, http.StatusBadRequest, models.MessageResponse{Mensaje: models.MessageInvalidRecord})

	default:
		logger.Log.Errorln("loan lookup failed", "id", id, "err", err)
		writeJSON(res, http.StatusInternalServerError, models.MessageResponse{
			Mensaje: models.MessageInternalError(err),
		})
	}
}

// GetPing reports whether the loan store is reachable.
func (router *Router) GetPing(res http.ResponseWriter, req *http.Request) {
	if err := router.svc.Ping(req.Context()); err != nil {
		logger.Log.Errorln("storage ping failed", "err", err)
		res.WriteHeader(http.StatusInternalServerError)
		return
	}

	res.WriteHeader(http.StatusOK)
}

// GetApiinternalstats returns the number of stored loans.
func (router *Router) GetApiinternalstats(res http.ResponseWriter, req *http.Request) {
	count, err := router.svc.Stats(req.Context())
	if err != nil {
		logger.Log.Errorln("stats failed", "err", err)
		writeJSON(res, http.StatusInternalServerError, models.MessageResponse{
			Mensaje: models.MessageInternalError(err),
		})
		return
	}

	writeJSON(res, http.StatusOK, models.StatsResponse{Prestamos: count})
}

func writeJSON(res http.ResponseWriter, status int, body any) {
	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(status)
	if err := json.NewEncoder(res).Encode(body); err != nil {
		logger.Log.Errorln("error while encoding the response body", "err", err)
	}
}
