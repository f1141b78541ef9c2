package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"mockinterview/ai/internal/llm"
	"mockinterview/ai/internal/prompts"
	"mockinterview/ai/internal/utils"
)

const (
	serviceName    = "ai"
	serviceVersion = "1.0.0"
	probeTimeout   = 2 * time.Second
)

type ReadinessCheck struct {
	Status  string `json:"status"` // "ok" | "failed"
	Message string `json:"message,omitempty"`
}

type ReadinessResponse struct {
	Status  string                    `json:"status"`  // "ready" | "not_ready"
	Service string                    `json:"service"` // Service name
	Tier    string                    `json:"tier,omitempty"`
	Checks  map[string]ReadinessCheck `json:"checks"` // Individual check results
}

// Probe reports whether a backing dependency answers.
type Probe func(ctx context.Context) error

type HealthHandler struct {
	provider      llm.Provider
	promptManager prompts.PromptProvider
	tier          string
	probes        map[string]Probe
}

func NewHealthHandler(provider llm.Provider, promptManager prompts.PromptProvider, tier string) *HealthHandler {
	return &HealthHandler{
		provider:      provider,
		promptManager: promptManager,
		tier:          tier,
		probes:        make(map[string]Probe),
	}
}

// AddProbe registers a dependency check such as "store" or "redis".
func (handler *HealthHandler) AddProbe(name string, probe Probe) {
	handler.probes[name] = probe
}

func (handler *HealthHandler) HealthzHandler(writer http.ResponseWriter, request *http.Request) {
	utils.JSON(writer, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": serviceName,
		"version": serviceVersion,
	})
}

func (handler *HealthHandler) ReadyzHandler(writer http.ResponseWriter, request *http.Request) {
	checks := make(map[string]ReadinessCheck)
	allChecksPass := true

	if handler.provider == nil {
		checks["provider"] = ReadinessCheck{
			Status:  "failed",
			Message: "AI provider not initialized",
		}
		allChecksPass = false
	} else {
		checks["provider"] = ReadinessCheck{
			Status:  "ok",
			Message: handler.provider.GetProviderName(),
		}
	}

	switch {
	case handler.promptManager == nil:
		checks["prompt_manager"] = ReadinessCheck{
			Status:  "failed",
			Message: "Prompt manager not initialized",
		}
		allChecksPass = false
	case len(handler.promptManager.GetTemplates()) == 0:
		checks["prompt_manager"] = ReadinessCheck{
			Status:  "failed",
			Message: "No prompt templates loaded",
		}
		allChecksPass = false
	default:
		checks["prompt_manager"] = ReadinessCheck{Status: "ok"}
	}

	names := make([]string, 0, len(handler.probes))
	for name := range handler.probes {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		ctx, cancel := context.WithTimeout(request.Context(), probeTimeout)
		err := handler.probes[name](ctx)
		cancel()
		if err != nil {
			checks[name] = ReadinessCheck{Status: "failed", Message: err.Error()}
			allChecksPass = false
			continue
		}
		checks[name] = ReadinessCheck{Status: "ok"}
	}

	response := ReadinessResponse{
		Service: serviceName,
		Tier:    handler.tier,
		Checks:  checks,
	}

	if allChecksPass {
		response.Status = "ready"
		utils.JSON(writer, http.StatusOK, response)
	} else {
		response.Status = "not_ready"
		utils.JSON(writer, http.StatusServiceUnavailable, response)
	}
}
