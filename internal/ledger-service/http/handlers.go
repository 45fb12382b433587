package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/radieske/bettrack/internal/ledger"
	"github.com/radieske/bettrack/internal/ledger-service/dto"
	"github.com/radieske/bettrack/internal/ledger-service/export"
	"github.com/radieske/bettrack/internal/ledger-service/repo"
)

const maxBody = 1 << 20

func (a *API) createBet(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateBetRequest
	if !decode(w, r, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		a.writeError(w, err)
		return
	}
	b, err := a.ledger.Add(r.Context(), in)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.CreateBetResponse{ID: b.ID})
}

func (a *API) listBets(w http.ResponseWriter, r *http.Request) {
	order, ok := parseOrder(w, r)
	if !ok {
		return
	}
	bets, err := a.ledger.List(r.Context(), order)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.FromBets(bets))
}

func (a *API) getBet(w http.ResponseWriter, r *http.Request) {
	b, err := a.ledger.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.FromBet(b))
}

func (a *API) patchBet(w http.ResponseWriter, r *http.Request) {
	var req dto.PatchBetRequest
	if !decode(w, r, &req) {
		return
	}
	patch, err := req.ToPatch()
	if err != nil {
		a.writeError(w, err)
		return
	}
	b, err := a.ledger.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.FromBet(b))
}

func (a *API) deleteBet(w http.ResponseWriter, r *http.Request) {
	if err := a.ledger.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		a.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) settleBet(w http.ResponseWriter, r *http.Request) {
	var req dto.SettleRequest
	if !decode(w, r, &req) {
		return
	}
	b, err := a.ledger.Settle(r.Context(), chi.URLParam(r, "id"), req.Outcome)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.FromBet(b))
}

func (a *API) summary(w http.ResponseWriter, r *http.Request) {
	s, err := a.ledger.Summary(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (a *API) outcomes(w http.ResponseWriter, r *http.Request) {
	c, err := a.ledger.Outcomes(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (a *API) profit(w http.ResponseWriter, r *http.Request) {
	series, err := a.ledger.ProfitSeries(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, series)
}

// exportCSV exporta as linhas na mesma ordem da listagem
func (a *API) exportCSV(w http.ResponseWriter, r *http.Request) {
	order, ok := parseOrder(w, r)
	if !ok {
		return
	}
	bets, err := a.ledger.List(r.Context(), order)
	if err != nil {
		a.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="bets.csv"`)
	if err := export.WriteCSV(w, bets); err != nil {
		a.log.Warn("csv export failed", zap.Error(err))
	}
}

func parseOrder(w http.ResponseWriter, r *http.Request) (repo.Order, bool) {
	order, err := repo.ParseOrder(r.URL.Query().Get("order"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return "", false
	}
	return order, true
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "bad json"})
		return false
	}
	return true
}

// writeError traduz erros de domínio em status HTTP
func (a *API) writeError(w http.ResponseWriter, err error) {
	var verr *ledger.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid bet", Fields: verr.Fields})
	case errors.Is(err, ledger.ErrInvalidOutcome),
		errors.Is(err, ledger.ErrNotTerminal),
		errors.Is(err, ledger.ErrInvalidOdds),
		errors.Is(err, ledger.ErrInvalidAmount):
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, repo.ErrNotFound):
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "not found"})
	case errors.Is(err, repo.ErrAlreadySettled):
		writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: err.Error()})
	default:
		a.log.Error("request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
