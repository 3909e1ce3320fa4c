package api

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/babyscan/babyscan/internal/analytics"
	"github.com/babyscan/babyscan/internal/anthropometry"
	"github.com/babyscan/babyscan/internal/scan"
	"github.com/babyscan/babyscan/internal/types"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// babyView adds the current age to a stored baby.
type babyView struct {
	*types.Baby
	BirthDate string `json:"birth_date"`
	AgeMonths int    `json:"age_months"`
}

func (s *Server) viewBaby(b *types.Baby) babyView {
	return babyView{Baby: b, BirthDate: b.BirthDateString(), AgeMonths: b.AgeInMonths(s.now())}
}

// CreateBabyRequest is the body of POST /api/babies.
type CreateBabyRequest struct {
	Name       string `json:"name"`
	BirthDate  string `json:"birth_date"`
	Sex        string `json:"sex"`
	ParentName string `json:"parent_name"`
}

func (s *Server) handleListBabies(w http.ResponseWriter, r *http.Request) {
	babies, err := s.store.ListBabies(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]babyView, 0, len(babies))
	for _, b := range babies {
		out = append(out, s.viewBaby(b))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateBaby(w http.ResponseWriter, r *http.Request) {
	var req CreateBabyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	birth, err := anthropometry.ParseBirthDate(req.BirthDate)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sex, err := anthropometry.ParseSex(req.Sex)
	if err != nil {
		s.writeError(w, r, badRequest("%v", err))
		return
	}

	baby := &types.Baby{
		Name:       strings.TrimSpace(req.Name),
		BirthDate:  birth,
		Sex:        sex,
		ParentName: strings.TrimSpace(req.ParentName),
	}
	if err := baby.Validate(); err != nil {
		s.writeError(w, r, badRequest("%v", err))
		return
	}
	if err := s.store.CreateBaby(r.Context(), baby); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.viewBaby(baby))
}

func (s *Server) handleGetBaby(w http.ResponseWriter, r *http.Request) {
	baby, err := s.store.GetBaby(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.viewBaby(baby))
}

func (s *Server) handleUpdateBaby(w http.ResponseWriter, r *http.Request) {
	var updates map[string]interface{}
	if err := decodeJSON(w, r, &updates); err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := types.NormalizeBabyUpdates(updates); err != nil {
		if errors.Is(err, anthropometry.ErrInvalidDate) {
			s.writeError(w, r, err)
		} else {
			s.writeError(w, r, badRequest("%v", err))
		}
		return
	}

	id := r.PathValue("id")
	if err := s.store.UpdateBaby(r.Context(), id, updates); err != nil {
		s.writeError(w, r, err)
		return
	}
	baby, err := s.store.GetBaby(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.viewBaby(baby))
}

func (s *Server) handleDeleteBaby(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteBaby(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListMeasurements(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := s.store.GetBaby(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	ms, err := s.store.ListMeasurements(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if ms == nil {
		ms = []*types.Measurement{}
	}
	writeJSON(w, http.StatusOK, ms)
}

// handleScan accepts either a multipart form with an "image" file field or a
// raw image body. Scale and notes come from form fields or query parameters.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	m, err := s.scanFromRequest(w, r)
	category := ""
	if m != nil {
		category = m.HAZCategory
	}
	s.metrics.observeScan(time.Since(start).Seconds(), category, err)

	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) scanFromRequest(w http.ResponseWriter, r *http.Request) (*types.Measurement, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageBodySize)

	var (
		img   []byte
		scale string
		notes string
		name  string
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxImageBodySize); err != nil {
			return nil, badRequest("invalid multipart body: %v", err)
		}
		file, header, err := r.FormFile("image")
		if err != nil {
			return nil, badRequest("missing image field: %v", err)
		}
		defer file.Close()
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, file); err != nil {
			return nil, badRequest("failed to read image: %v", err)
		}
		img = buf.Bytes()
		name = header.Filename
		scale = r.FormValue("scale")
		notes = r.FormValue("notes")
	} else {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, badRequest("failed to read image: %v", err)
		}
		img = data
		scale = r.URL.Query().Get("scale")
		notes = r.URL.Query().Get("notes")
	}
	if len(img) == 0 {
		return nil, badRequest("image is empty")
	}

	var scaleCmPerPx float64
	if scale != "" {
		v, err := strconv.ParseFloat(scale, 64)
		if err != nil {
			return nil, badRequest("invalid scale %q", scale)
		}
		scaleCmPerPx = v
	}

	return s.scanner.Scan(r.Context(), scan.Request{
		BabyID:       r.PathValue("id"),
		Image:        img,
		ImagePath:    name,
		ScaleCmPerPx: scaleCmPerPx,
		Notes:        notes,
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	baby, err := s.store.GetBaby(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ms, err := s.store.ListMeasurements(r.Context(), baby.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analytics.Summarize(baby, ms))
}

func (s *Server) handleGetMeasurement(w http.ResponseWriter, r *http.Request) {
	m, err := s.store.GetMeasurement(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleUpdateMeasurement(w http.ResponseWriter, r *http.Request) {
	var updates map[string]interface{}
	if err := decodeJSON(w, r, &updates); err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := types.NormalizeMeasurementUpdates(updates); err != nil {
		s.writeError(w, r, badRequest("%v", err))
		return
	}

	id := r.PathValue("id")
	if err := s.store.UpdateMeasurement(r.Context(), id, updates); err != nil {
		s.writeError(w, r, err)
		return
	}
	m, err := s.store.GetMeasurement(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleDeleteMeasurement(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteMeasurement(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := analytics.Dashboard(r.Context(), s.store, s.now())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := analytics.ExportCSV(r.Context(), &buf, s.store); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="babyscan-export.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
