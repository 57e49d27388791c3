package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"

	"portfoliotracker/src/model"
	"portfoliotracker/src/registry"
)

type portfolioCreator interface {
	CreatePortfolio(ctx context.Context, username, name string) (*model.Portfolio, error)
}

type portfolioLister interface {
	Portfolios(ctx context.Context, username string) ([]*model.Portfolio, error)
}

type profileLister interface {
	ListProfiles(ctx context.Context) ([]string, error)
}

type profileSummarizer interface {
	Summary(ctx context.Context, username string) (registry.Summary, error)
}

type stockAdder interface {
	QuickAddStock(ctx context.Context, username, portfolioName, symbol string, quantity int64) error
}

type transactionExecutor interface {
	ExecuteTransaction(ctx context.Context, username, portfolioName string, tx model.Transaction) error
}

type reportRenderer interface {
	Render(ctx context.Context, username, portfolioName string) (string, error)
}

type createPortfolioRequest struct {
	Name string `json:"name"`
}

type addPositionRequest struct {
	Symbol   string `json:"symbol"`
	Quantity int64  `json:"quantity"`
}

type transactionRequest struct {
	Symbol   string  `json:"symbol"`
	Action   string  `json:"action"`
	Quantity int64   `json:"quantity"`
	Price    float64 `json:"price"`
}

type portfolioResponse struct {
	Name       string  `json:"name"`
	Positions  int     `json:"positions"`
	TotalValue float64 `json:"total_value"`
}

// ListProfilesHandler returns all known usernames.
func ListProfilesHandler(reg profileLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profiles, err := reg.ListProfiles(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, profiles)
	}
}

// SummaryHandler returns the aggregate statistics for one profile.
func SummaryHandler(reg profileSummarizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := reg.Summary(r.Context(), chi.URLParam(r, "username"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}

// ListPortfoliosHandler returns the profile's portfolios with their totals.
func ListPortfoliosHandler(reg portfolioLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		portfolios, err := reg.Portfolios(r.Context(), chi.URLParam(r, "username"))
		if err != nil {
			writeDomainError(w, err)
			return
		}

		out := make([]portfolioResponse, 0, len(portfolios))
		for _, p := range portfolios {
			out = append(out, portfolioResponse{
				Name:       p.Name,
				Positions:  p.Len(),
				TotalValue: p.Value(),
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// CreatePortfolioHandler creates an empty portfolio for the profile.
func CreatePortfolioHandler(reg portfolioCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createPortfolioRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.Name == "" {
			http.Error(w, "name is required", http.StatusBadRequest)
			return
		}

		portfolio, err := reg.CreatePortfolio(r.Context(), chi.URLParam(r, "username"), req.Name)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, portfolioResponse{
			Name:       portfolio.Name,
			Positions:  portfolio.Len(),
			TotalValue: portfolio.Value(),
		})
	}
}

// AddPositionHandler quick-adds a stock at the current quoted price.
func AddPositionHandler(reg stockAdder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addPositionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.Symbol == "" {
			http.Error(w, "symbol is required", http.StatusBadRequest)
			return
		}
		if req.Quantity <= 0 {
			http.Error(w, "quantity must be positive", http.StatusBadRequest)
			return
		}

		err := reg.QuickAddStock(r.Context(),
			chi.URLParam(r, "username"),
			chi.URLParam(r, "name"),
			req.Symbol,
			req.Quantity,
		)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// ExecuteTransactionHandler applies a buy or sell to a portfolio.
func ExecuteTransactionHandler(reg transactionExecutor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req transactionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		tx := model.NewTransaction(req.Symbol, req.Action, req.Quantity, req.Price)
		if err := tx.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		err := reg.ExecuteTransaction(r.Context(),
			chi.URLParam(r, "username"),
			chi.URLParam(r, "name"),
			tx,
		)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// ReportHandler renders the plain-text portfolio report.
func ReportHandler(gen reportRenderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := gen.Render(r.Context(),
			chi.URLParam(r, "username"),
			chi.URLParam(r, "name"),
		)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if _, err := w.Write([]byte(out)); err != nil {
			logger.WithError(err).Error("failed to write report response")
		}
	}
}

// writeDomainError maps domain error kinds onto HTTP statuses. Unrecognized
// errors stay opaque to the client.
func writeDomainError(w http.ResponseWriter, err error) {
	var (
		notFound     *model.NotFoundError
		duplicate    *model.DuplicateNameError
		insufficient *model.InsufficientHoldingError
		quoteLookup  *model.QuoteLookupError
	)

	switch {
	case errors.As(err, &notFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &duplicate):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.As(err, &insufficient):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.As(err, &quoteLookup):
		http.Error(w, err.Error(), http.StatusBadGateway)
	default:
		logger.WithError(err).Error("unexpected error handling request")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.WithError(err).Error("failed to encode response")
	}
}
