package handlers

import (
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/voxkit/voxconsole/internal/logquery"
	"github.com/voxkit/voxconsole/internal/ws"
	"github.com/voxkit/voxconsole/pkg/config"
)

type Handlers struct {
	db        *gorm.DB
	logClient *logquery.Client
	wsHub     *ws.Hub
	startedAt time.Time

	// user id -> *streamSession, one live log stream per console user
	logSessions sync.Map
}

func NewHandlers(db *gorm.DB, logClient *logquery.Client) *Handlers {
	if logClient == nil {
		cfg := config.GlobalConfig
		logClient = logquery.NewClient(cfg.LogAPIBaseURL, cfg.LogAPIToken, cfg.LogAPITimeout, cfg.LogQueryLimit)
		logClient.SetPageCacheTTL(cfg.LogDebounceWait)
	}
	return &Handlers{
		db:        db,
		logClient: logClient,
		wsHub:     ws.NewHub(),
		startedAt: time.Now(),
	}
}

// Hub exposes the live event stream hub, e.g. for ingest-side broadcasting.
func (h *Handlers) Hub() *ws.Hub {
	return h.wsHub
}

// Shutdown releases background resources.
func (h *Handlers) Shutdown() {
	h.logSessions.Range(func(key, value any) bool {
		value.(*streamSession).close(h.wsHub)
		h.logSessions.Delete(key)
		return true
	})
	h.wsHub.Shutdown()
}
