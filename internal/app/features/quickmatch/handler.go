// internal/app/features/quickmatch/handler.go
package quickmatch

import (
	"net/http"

	"github.com/dalemusser/quickmatch/internal/app/meetings"
	"github.com/dalemusser/quickmatch/internal/app/system/auth"
	"go.uber.org/zap"
)

// Handler is the dependency container for the quickmatch JSON API. Every
// route delegates to the meetings coordinator; this package only decodes
// requests, picks deadlines and maps results onto HTTP.
type Handler struct {
	Meetings *meetings.Coordinator
	Log      *zap.Logger
}

// NewHandler constructs a quickmatch Handler. It is called from the
// bootstrap BuildHandler function once the store and coordinator exist.
func NewHandler(coord *meetings.Coordinator, logger *zap.Logger) *Handler {
	return &Handler{
		Meetings: coord,
		Log:      logger,
	}
}

// identity converts the session user into the coordinator's caller. An
// anonymous request yields the zero Identity, which the coordinator rejects.
func identity(r *http.Request) meetings.Identity {
	u, ok := auth.CurrentUser(r)
	if !ok {
		return meetings.Identity{}
	}
	return meetings.Identity{UserID: u.ID, Name: u.Name}
}
