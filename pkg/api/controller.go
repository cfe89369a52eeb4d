package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"sdn-controller/pkg/controller"
	"sdn-controller/pkg/model"
	"sdn-controller/pkg/store"
	"sdn-controller/pkg/switchcfg"
	"sdn-controller/pkg/topology"
)

// Options carries the collaborators the control routes need.
type Options struct {
	Journal store.EventStore
	Hub     *EventHub
	Auth    func(r *http.Request) bool
	Log     *zap.Logger

	// DefaultCapacity applies to links posted without a capacity; nil means
	// topology.DefaultCapacity. Zero is a valid setting.
	DefaultCapacity *int
}

// RegisterRoutes wires the control API handlers on the provided mux.
func RegisterRoutes(mux *http.ServeMux, ctrl *controller.Controller, opts Options) {
	auth := opts.Auth
	if auth == nil {
		auth = func(*http.Request) bool { return true }
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	capacity := topology.DefaultCapacity
	if opts.DefaultCapacity != nil {
		capacity = *opts.DefaultCapacity
	}

	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("sdn controller"))
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if p, ok := opts.Journal.(interface{ Ping() error }); ok {
			if err := p.Ping(); err != nil {
				http.Error(w, "journal unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/api/v1/nodes", func(w http.ResponseWriter, r *http.Request) {
		if !auth(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, ctrl.Topology().Nodes)
		case http.MethodPost:
			var req NodeRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
				http.Error(w, "invalid payload", http.StatusBadRequest)
				return
			}
			ctrl.AddNode(req.ID)
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "id": req.ID})
		case http.MethodDelete:
			id := r.URL.Query().Get("id")
			if id == "" {
				http.Error(w, "id is required", http.StatusBadRequest)
				return
			}
			if err := ctrl.RemoveNode(id); err != nil {
				writeError(w, log, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/api/v1/links", func(w http.ResponseWriter, r *http.Request) {
		if !auth(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, ctrl.Topology().Links)
		case http.MethodPost:
			var req LinkRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.U == "" || req.V == "" {
				http.Error(w, "invalid payload", http.StatusBadRequest)
				return
			}
			c := capacity
			if req.Capacity != nil {
				c = *req.Capacity
			}
			if err := ctrl.AddLink(req.U, req.V, c); err != nil {
				writeError(w, log, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok", "capacity": c})
		case http.MethodDelete:
			u, v := r.URL.Query().Get("u"), r.URL.Query().Get("v")
			if u == "" || v == "" {
				http.Error(w, "u and v are required", http.StatusBadRequest)
				return
			}
			if err := ctrl.RemoveLink(u, v); err != nil {
				writeError(w, log, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/api/v1/flows", func(w http.ResponseWriter, r *http.Request) {
		if !auth(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		switch r.Method {
		case http.MethodGet:
			if idStr := r.URL.Query().Get("id"); idStr != "" {
				id, err := strconv.ParseInt(idStr, 10, 64)
				if err != nil {
					http.Error(w, "invalid id", http.StatusBadRequest)
					return
				}
				f, err := ctrl.GetFlow(id)
				if err != nil {
					writeError(w, log, err)
					return
				}
				writeJSON(w, http.StatusOK, f)
				return
			}
			writeJSON(w, http.StatusOK, ctrl.ListFlows())
		case http.MethodPost:
			var req FlowRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Src == "" || req.Dst == "" {
				http.Error(w, "invalid payload", http.StatusBadRequest)
				return
			}
			priority := 1
			if req.Priority != nil {
				priority = *req.Priority
			}
			id, err := ctrl.InstallFlow(req.Src, req.Dst, priority, req.Critical)
			if err != nil {
				writeError(w, log, err)
				return
			}
			f, err := ctrl.GetFlow(id)
			if err != nil {
				writeError(w, log, err)
				return
			}
			writeJSON(w, http.StatusOK, FlowResponse{ID: id, Flow: f})
		case http.MethodDelete:
			id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
			if err != nil {
				http.Error(w, "invalid id", http.StatusBadRequest)
				return
			}
			if err := ctrl.RemoveFlow(id); err != nil {
				writeError(w, log, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/api/v1/flows/history", func(w http.ResponseWriter, r *http.Request) {
		if !auth(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if opts.Journal == nil {
			http.Error(w, "journal disabled", http.StatusNotFound)
			return
		}
		id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid id", http.StatusBadRequest)
			return
		}
		events, err := opts.Journal.FlowHistory(id, queryLimit(r, 50))
		if err != nil {
			http.Error(w, "failed to read journal", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, events)
	})

	mux.HandleFunc("/api/v1/utilization", getOnly(auth, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, ctrl.UtilizationReport())
	}))

	mux.HandleFunc("/api/v1/topology", getOnly(auth, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, ctrl.Topology())
	}))

	mux.HandleFunc("/api/v1/stats", getOnly(auth, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, ctrl.Stats())
	}))

	mux.HandleFunc("/api/v1/switches/rules", getOnly(auth, func(w http.ResponseWriter, r *http.Request) {
		sw := r.URL.Query().Get("switch")
		if sw == "" {
			writeJSON(w, http.StatusOK, allTables(ctrl.Rules()))
			return
		}
		rules, err := ctrl.SwitchRules(sw)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, SwitchRulesResponse{
			Switch: sw,
			Rules:  rules,
			Text:   switchcfg.RenderTable(sw, rules).Text,
		})
	}))

	mux.HandleFunc("/api/v1/events", getOnly(auth, func(w http.ResponseWriter, r *http.Request) {
		if opts.Journal == nil {
			http.Error(w, "journal disabled", http.StatusNotFound)
			return
		}
		events, err := opts.Journal.ListEvents(queryLimit(r, 100))
		if err != nil {
			http.Error(w, "failed to read journal", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, events)
	}))

	if opts.Hub != nil {
		mux.HandleFunc("/api/v1/events/ws", getOnly(auth, opts.Hub.HandleSubscribe))
	}
}

// allTables renders one table per switch that has rules, ordered by switch.
func allTables(rules []model.FlowRule) []SwitchRulesResponse {
	grouped := switchcfg.GroupBySwitch(rules)
	out := make([]SwitchRulesResponse, 0, len(grouped))
	for sw, rs := range grouped {
		out = append(out, SwitchRulesResponse{Switch: sw, Rules: rs, Text: switchcfg.RenderTable(sw, rs).Text})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Switch < out[j].Switch })
	return out
}

func getOnly(auth func(*http.Request) bool, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !auth(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	}
}

func queryLimit(r *http.Request, def int) int {
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 {
		return n
	}
	return def
}

// writeError maps controller errors to HTTP status codes.
func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, controller.ErrNodeNotFound),
		errors.Is(err, controller.ErrLinkNotFound),
		errors.Is(err, controller.ErrFlowNotFound):
		status = http.StatusNotFound
	case errors.Is(err, controller.ErrNoPathAvailable):
		status = http.StatusConflict
	case errors.Is(err, controller.ErrSelfLoop),
		errors.Is(err, controller.ErrInvalidCapacity):
		status = http.StatusBadRequest
	default:
		log.Error("control operation failed", zap.Error(err))
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("failed to write response", zap.Error(err))
	}
}
