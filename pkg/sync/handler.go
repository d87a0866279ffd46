package sync

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/alarmo/alarmo/internal/rest"
	"github.com/alarmo/alarmo/pkg/calendar"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type RequestDTO struct {
	UserID        string     `json:"userId"`
	Provider      string     `json:"provider"`
	AccessToken   string     `json:"accessToken"`
	SyncFromDate  *time.Time `json:"syncFromDate,omitempty"`
	SyncToDate    *time.Time `json:"syncToDate,omitempty"`
	ForceFullSync bool       `json:"forceFullSync"`
}

type ProcessedEventDTO struct {
	ExternalID   string     `json:"externalId"`
	Title        string     `json:"title"`
	StartTime    time.Time  `json:"startTime"`
	EndTime      *time.Time `json:"endTime,omitempty"`
	Location     string     `json:"location"`
	AlarmCreated bool       `json:"alarmCreated"`
	Status       string     `json:"processingStatus"`
}

type OutcomeDTO struct {
	EventsProcessed   int                 `json:"eventsProcessed"`
	AlarmsCreated     int                 `json:"alarmsCreated"`
	AlarmsUpdated     int                 `json:"alarmsUpdated"`
	AlarmsSkipped     int                 `json:"alarmsSkipped"`
	SyncedAt          time.Time           `json:"syncedAt"`
	NextSyncSuggested *time.Time          `json:"nextSyncSuggested,omitempty"`
	Warnings          []string            `json:"warnings,omitempty"`
	ProcessedEvents   []ProcessedEventDTO `json:"processedEvents,omitempty"`
}

// TriggerSync runs an on-demand synchronization for the requested user
// and provider.
func (h *Handler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	var dto RequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error:   "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	userId, err := uuid.Parse(dto.UserID)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error:   "Invalid userId",
			Details: "'userId' must be a UUID",
		})
		return
	}

	outcome, err := h.service.Sync(r.Context(), Request{
		UserID:        userId,
		Provider:      dto.Provider,
		AccessToken:   dto.AccessToken,
		SyncFromDate:  dto.SyncFromDate,
		SyncToDate:    dto.SyncToDate,
		ForceFullSync: dto.ForceFullSync,
	})
	if err != nil {
		writeSyncError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(outcomeToDTO(outcome)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func writeSyncError(w http.ResponseWriter, err error) {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(rest.ErrorResponse{Error: validationErr.Message})
		return
	}

	status := http.StatusInternalServerError
	var fetchErr *calendar.FetchError
	var permErr *calendar.PermanentError
	if errors.As(err, &fetchErr) || errors.As(err, &permErr) {
		status = http.StatusBadGateway
		if code, _ := calendar.Classify(err); code == calendar.ErrCodeUnauthorized {
			status = http.StatusUnauthorized
		}
	}

	log.Errorf("sync request failed: %v", err)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Synchronization failed", Details: err.Error()})
}

func outcomeToDTO(outcome Outcome) OutcomeDTO {
	events := make([]ProcessedEventDTO, 0, len(outcome.ProcessedEvents))
	for _, e := range outcome.ProcessedEvents {
		events = append(events, ProcessedEventDTO{
			ExternalID:   e.ExternalID,
			Title:        e.Title,
			StartTime:    e.StartTime,
			EndTime:      e.EndTime,
			Location:     e.Location,
			AlarmCreated: e.AlarmCreated,
			Status:       string(e.Status),
		})
	}
	return OutcomeDTO{
		EventsProcessed:   outcome.EventsProcessed,
		AlarmsCreated:     outcome.AlarmsCreated,
		AlarmsUpdated:     outcome.AlarmsUpdated,
		AlarmsSkipped:     outcome.AlarmsSkipped,
		SyncedAt:          outcome.SyncedAt,
		NextSyncSuggested: outcome.NextSyncSuggested,
		Warnings:          outcome.Warnings,
		ProcessedEvents:   events,
	}
}
