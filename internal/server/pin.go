package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mediastats/internal/models"
	"github.com/desertthunder/mediastats/internal/shared"
)

// PinRequester issues pairing PINs.
type PinRequester interface {
	RequestPin(ctx context.Context, clientID string) (*models.Pin, error)
}

// PinHandler serves POST /auth/initiate, creating a PIN for clients that pair through the proxy.
//
// The client identifier comes from the X-Plex-Client-Identifier header and is generated
// when absent.
type PinHandler struct {
	pins   PinRequester
	logger *log.Logger
	newID  func() string
}

// NewPinHandler creates a [PinHandler].
func NewPinHandler(pins PinRequester, logger *log.Logger) *PinHandler {
	return &PinHandler{pins: pins, logger: logger, newID: shared.GenerateID}
}

// Routes returns the HTTP routes this handler serves.
func (h *PinHandler) Routes() []string {
	return []string{"/auth/initiate"}
}

// ServeHTTP handles the PIN request.
func (h *PinHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	AllowMethod(http.MethodPost, http.HandlerFunc(h.initiate)).ServeHTTP(w, r)
}

func (h *PinHandler) initiate(w http.ResponseWriter, r *http.Request) {
	clientID := strings.TrimSpace(r.Header.Get("X-Plex-Client-Identifier"))
	if clientID == "" {
		clientID = h.newID()
	}

	pin, err := h.pins.RequestPin(r.Context(), clientID)
	if err != nil {
		h.logger.Error("Plex auth error", "details", shared.ErrorDetails(err))
		WriteError(w, http.StatusInternalServerError, "Failed to initiate Plex authentication", shared.ErrorDetails(err))
		return
	}

	WriteJSON(w, http.StatusOK, pin)
}
