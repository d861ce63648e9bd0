package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"subtracker/internal/core"
)

// maxImportSize bounds import uploads; a personal data set is far below this.
const maxImportSize = 10 << 20

// cachedAggregate serves an aggregate endpoint from the response cache, keyed
// by path and query.
func (s *Server) cachedAggregate(w http.ResponseWriter, r *http.Request, build func(subs []core.Subscription) (any, error)) {
	key := r.URL.Path + "?" + r.URL.RawQuery
	if body, ok := s.aggCache.Get(key); ok {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
		return
	}

	subs, err := s.service.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	result, err := build(subs)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	body, err := json.Marshal(result)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.aggCache.Set(key, body)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	s.cachedAggregate(w, r, func(subs []core.Subscription) (any, error) {
		return core.CalcSpendingSummary(subs), nil
	})
}

func (s *Server) handleActualSpending(w http.ResponseWriter, r *http.Request) {
	year, err := s.yearParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.cachedAggregate(w, r, func(subs []core.Subscription) (any, error) {
		return core.CalcYearlyActualSpending(subs, year), nil
	})
}

// handleBreakdown dispatches on period and grouping:
//
//	?period=monthly|yearly&by=category|item[&basis=projected|actual][&year=YYYY]
//
// Yearly category breakdowns default to realized spend (basis=actual);
// everything else projects the current recurring cost.
func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	period := core.Period(r.URL.Query().Get("period"))
	if period == "" {
		period = core.PeriodMonthly
	}
	if period != core.PeriodMonthly && period != core.PeriodYearly {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid period %q", period))
		return
	}

	by := r.URL.Query().Get("by")
	if by == "" {
		by = "category"
	}
	if by != "category" && by != "item" {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid grouping %q", by))
		return
	}

	basis := r.URL.Query().Get("basis")
	if basis == "" {
		if period == core.PeriodYearly {
			basis = "actual"
		} else {
			basis = "projected"
		}
	}
	if basis != "projected" && basis != "actual" {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid basis %q", basis))
		return
	}
	if basis == "actual" && period == core.PeriodMonthly {
		writeError(w, http.StatusBadRequest, "actual breakdowns are yearly")
		return
	}

	year, err := s.yearParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.cachedAggregate(w, r, func(subs []core.Subscription) (any, error) {
		if by == "item" {
			if basis == "actual" {
				return core.CalcYearlyItemBreakdown(subs, year), nil
			}
			return core.CalcItemBreakdown(subs, period), nil
		}

		cats, err := s.service.Categories(r.Context())
		if err != nil {
			return nil, err
		}
		if basis == "actual" {
			return core.CalcYearlyCategoryBreakdown(subs, cats, year), nil
		}
		return core.CalcCategoryBreakdown(subs, period, cats), nil
	})
}

func (s *Server) yearParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("year")
	if raw == "" {
		return s.now().Year(), nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year < 1970 || year > 9999 {
		return 0, fmt.Errorf("invalid year %q", raw)
	}
	return year, nil
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	doc, err := s.service.Export(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	filename := fmt.Sprintf("subtracker-export-%s.json", s.now().Format("2006-01-02"))
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxImportSize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read request body")
		return
	}

	n, err := s.service.Import(r.Context(), data)
	if err != nil {
		// Import rejections are structural problems in the document.
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"imported": n})
}
