package service

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/rushteam/homerec/core"
	"github.com/rushteam/homerec/filter"
)

// Delisted 维护 Store 中的下架房源列表，filter.blacklist 在每个请求开始时读取它。
type Delisted struct {
	Store core.Store
	Key   string
}

type delistedRequest struct {
	IDs []string `json:"ids" validate:"dive,required"`
}

type delistedResponse struct {
	Success bool     `json:"success"`
	IDs     []string `json:"ids"`
}

func (s *Server) ListDelisted(w http.ResponseWriter, r *http.Request) {
	ids, err := filter.NewStoreAdapter(s.Delisted.Store).GetBlacklist(r.Context(), s.Delisted.Key)
	if err != nil {
		s.writeError(w, r, core.WrapDomainError(core.ModuleService, core.ErrorCodeUnavailable, "read delisted ids", err))
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, delistedResponse{Success: true, IDs: ids})
}

// ReplaceDelisted 用请求体中的 ids 整体替换下架列表。
func (s *Server) ReplaceDelisted(w http.ResponseWriter, r *http.Request) {
	var req delistedRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.writeError(w, r, core.WrapDomainError(core.ModuleService, core.ErrorCodeInvalidInput, "malformed request body", err))
		return
	}
	for i, id := range req.IDs {
		req.IDs[i] = strings.TrimSpace(id)
	}
	if err := validate.Struct(req); err != nil {
		s.writeError(w, r, core.WrapDomainError(core.ModuleService, core.ErrorCodeInvalidInput, "ids must not contain empty values", err))
		return
	}
	if req.IDs == nil {
		req.IDs = []string{}
	}

	data, err := json.Marshal(req.IDs)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.Delisted.Store.Set(r.Context(), s.Delisted.Key, data); err != nil {
		s.writeError(w, r, core.WrapDomainError(core.ModuleService, core.ErrorCodeUnavailable, "write delisted ids", err))
		return
	}
	writeJSON(w, http.StatusOK, delistedResponse{Success: true, IDs: req.IDs})
}
