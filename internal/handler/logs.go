package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/voxkit/voxconsole/internal/logquery"
	"github.com/voxkit/voxconsole/internal/models"
	"github.com/voxkit/voxconsole/internal/ws"
	"github.com/voxkit/voxconsole/pkg/config"
	"github.com/voxkit/voxconsole/pkg/response"
)

// tenantSlugForQuery resolves and authorizes the tenant scoping a log query.
// An API key is scoped to exactly its own tenant; super users may omit the
// tenant and query across all of them.
func (h *Handlers) tenantSlugForQuery(c *gin.Context) (string, bool) {
	slug := c.Query("tenant")
	if apiTenant := models.CurrentAPITenant(c); apiTenant != nil {
		if slug == "" || slug == apiTenant.Slug {
			return apiTenant.Slug, true
		}
		response.FailWithStatus(c, http.StatusForbidden, "no access to tenant", nil)
		return "", false
	}
	user := models.CurrentUser(c)
	if slug == "" {
		if user != nil && user.IsSuperUser {
			return "", true
		}
		response.Fail(c, "tenant is required", nil)
		return "", false
	}
	tenant, err := models.GetTenantBySlug(h.db, slug)
	if err != nil {
		response.FailWithStatus(c, http.StatusNotFound, "tenant not found", nil)
		return "", false
	}
	if user == nil || !models.CanAccessTenant(h.db, user, tenant.ID) {
		response.FailWithStatus(c, http.StatusForbidden, "no access to tenant", nil)
		return "", false
	}
	return slug, true
}

// streamKey identifies the live-stream owner. API-key streams are keyed by
// tenant: their synthetic user carries no ID to key by.
func (h *Handlers) streamKey(c *gin.Context) any {
	if apiTenant := models.CurrentAPITenant(c); apiTenant != nil {
		return "tenant:" + apiTenant.Slug
	}
	return models.CurrentUser(c).ID
}

func callFilterFromQuery(c *gin.Context, tenant string) logquery.CallFilter {
	limit, _ := strconv.Atoi(c.Query("limit"))
	return logquery.CallFilter{
		Tenant:        tenant,
		TimeFrom:      c.Query("timeFrom"),
		TimeTo:        c.Query("timeTo"),
		From:          c.Query("from"),
		To:            c.Query("to"),
		AppType:       c.Query("appType"),
		AppIdentifier: c.Query("appIdentifier"),
		BundleID:      c.Query("bundleId"),
		Limit:         limit,
		Order:         logquery.Order(c.Query("order")),
	}
}

func eventFilterFromQuery(c *gin.Context, tenant string) logquery.EventFilter {
	limit, _ := strconv.Atoi(c.Query("limit"))
	return logquery.EventFilter{
		Tenant:    tenant,
		TimeFrom:  c.Query("timeFrom"),
		TimeTo:    c.Query("timeTo"),
		EventType: c.Query("eventType"),
		SessionID: c.Query("sessionId"),
		HandleID:  c.Query("handleId"),
		CallID:    c.Query("callId"),
		Limit:     limit,
		Order:     logquery.Order(c.Query("order")),
	}
}

func (h *Handlers) handleQueryCalls(c *gin.Context) {
	tenant, ok := h.tenantSlugForQuery(c)
	if !ok {
		return
	}
	calls, err := h.logClient.QueryCalls(c.Request.Context(), callFilterFromQuery(c, tenant))
	if err != nil {
		logrus.WithError(err).Error("call log query failed")
		response.FailWithStatus(c, http.StatusBadGateway, "log backend unavailable", nil)
		return
	}
	response.Success(c, "ok", calls)
}

func (h *Handlers) handleQueryEvents(c *gin.Context) {
	tenant, ok := h.tenantSlugForQuery(c)
	if !ok {
		return
	}
	events, err := h.logClient.QueryEvents(c.Request.Context(), eventFilterFromQuery(c, tenant))
	if err != nil {
		logrus.WithError(err).Error("event log query failed")
		response.FailWithStatus(c, http.StatusBadGateway, "log backend unavailable", nil)
		return
	}
	response.Success(c, "ok", events)
}

// Live log stream: each console user gets one debounced query session whose
// results are pushed over the websocket. The session carries the facade's
// contract end to end: rapid filter edits settle into one backend request,
// stale responses are dropped, and after a failure nothing refetches until
// the user retries.

type streamSession struct {
	session *logquery.Session
	client  *ws.Client
	tenant  string
}

// streamFilterMessage is what the console sends over the socket on filter edits.
type streamFilterMessage struct {
	Type          string `json:"type"` // "calls" or "events"
	TimeFrom      string `json:"timeFrom"`
	TimeTo        string `json:"timeTo"`
	From          string `json:"from"`
	To            string `json:"to"`
	AppType       string `json:"appType"`
	AppIdentifier string `json:"appIdentifier"`
	BundleID      string `json:"bundleId"`
	EventType     string `json:"eventType"`
	SessionID     string `json:"sessionId"`
	HandleID      string `json:"handleId"`
	CallID        string `json:"callId"`
	Limit         int    `json:"limit"`
	Order         string `json:"order"`
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func (h *Handlers) handleEventStream(c *gin.Context) {
	tenant, ok := h.tenantSlugForQuery(c)
	if !ok {
		return
	}
	key := h.streamKey(c)

	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Warn("websocket upgrade failed")
		return
	}
	client := ws.NewClient(conn)

	onResult := func(result logquery.Result) {
		payload, err := json.Marshal(gin.H{
			"type":   string(result.Type),
			"calls":  result.Calls,
			"events": result.Events,
		})
		if err != nil {
			return
		}
		h.wsHub.Broadcast(tenant, payload)
	}
	onError := func(err error) {
		payload, _ := json.Marshal(gin.H{"type": "error", "message": err.Error()})
		_ = client.Send(payload)
	}

	session := logquery.NewSession(h.logClient, config.GlobalConfig.LogDebounceWait, onResult, onError)
	stream := &streamSession{session: session, client: client, tenant: tenant}
	if prev, loaded := h.logSessions.Swap(key, stream); loaded {
		prev.(*streamSession).close(h.wsHub)
	}
	h.wsHub.Register(tenant, client)

	defer func() {
		h.logSessions.CompareAndDelete(key, stream)
		stream.close(h.wsHub)
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg streamFilterMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logrus.WithError(err).Debug("bad stream filter message")
			continue
		}
		switch msg.Type {
		case "events":
			session.SetEventFilter(logquery.EventFilter{
				Tenant:    tenant,
				TimeFrom:  msg.TimeFrom,
				TimeTo:    msg.TimeTo,
				EventType: msg.EventType,
				SessionID: msg.SessionID,
				HandleID:  msg.HandleID,
				CallID:    msg.CallID,
				Limit:     msg.Limit,
				Order:     logquery.Order(msg.Order),
			})
		case "calls":
			session.SetCallFilter(logquery.CallFilter{
				Tenant:        tenant,
				TimeFrom:      msg.TimeFrom,
				TimeTo:        msg.TimeTo,
				From:          msg.From,
				To:            msg.To,
				AppType:       msg.AppType,
				AppIdentifier: msg.AppIdentifier,
				BundleID:      msg.BundleID,
				Limit:         msg.Limit,
				Order:         logquery.Order(msg.Order),
			})
		case "retry":
			session.Retry()
		}
	}
}

func (s *streamSession) close(hub *ws.Hub) {
	s.session.Close()
	hub.Unregister(s.tenant, s.client)
	s.client.Close()
}

// handleRetry clears the caller's stream error state and re-issues the last
// query immediately.
func (h *Handlers) handleRetry(c *gin.Context) {
	value, ok := h.logSessions.Load(h.streamKey(c))
	if !ok {
		response.Fail(c, "no active log stream", nil)
		return
	}
	value.(*streamSession).session.Retry()
	response.Success(c, "ok", nil)
}

// dropLogSession tears down the user's live stream, e.g. on logout.
func (h *Handlers) dropLogSession(c *gin.Context) {
	user := models.CurrentUser(c)
	if user == nil {
		return
	}
	if value, ok := h.logSessions.LoadAndDelete(user.ID); ok {
		value.(*streamSession).close(h.wsHub)
	}
}
