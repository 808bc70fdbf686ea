package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/voxkit/voxconsole/internal/callflow"
	"github.com/voxkit/voxconsole/internal/logquery"
	"github.com/voxkit/voxconsole/pkg/response"
)

// fetchCallEvents loads every event correlated with one call, oldest first.
func (h *Handlers) fetchCallEvents(c *gin.Context, tenant, callID string) ([]logquery.EventLogRecord, bool) {
	events, err := h.logClient.QueryEvents(c.Request.Context(), logquery.EventFilter{
		Tenant: tenant,
		CallID: callID,
		Order:  logquery.OrderAsc,
	})
	if err != nil {
		logrus.WithError(err).Error("event log query failed")
		response.FailWithStatus(c, http.StatusBadGateway, "log backend unavailable", nil)
		return nil, false
	}
	return events, true
}

func (h *Handlers) handleCallFlow(c *gin.Context) {
	tenant, ok := h.tenantSlugForQuery(c)
	if !ok {
		return
	}
	callID := c.Param("callId")
	events, ok := h.fetchCallEvents(c, tenant, callID)
	if !ok {
		return
	}

	geo := callflow.BuildDiagram(events, callID)
	response.Success(c, "ok", geo)
}

func (h *Handlers) handleCallFlowSVG(c *gin.Context) {
	tenant, ok := h.tenantSlugForQuery(c)
	if !ok {
		return
	}
	callID := c.Param("callId")
	events, ok := h.fetchCallEvents(c, tenant, callID)
	if !ok {
		return
	}

	geo := callflow.BuildDiagram(events, callID)
	c.Data(http.StatusOK, "image/svg+xml", []byte(callflow.RenderSVG(geo)))
}

func (h *Handlers) handleCallDetails(c *gin.Context) {
	tenant, ok := h.tenantSlugForQuery(c)
	if !ok {
		return
	}
	callID := c.Param("callId")
	events, ok := h.fetchCallEvents(c, tenant, callID)
	if !ok {
		return
	}

	state := callflow.PanelState{
		Expanded:    map[int64]bool{},
		RawExpanded: map[int64]bool{},
	}
	for _, id := range c.QueryArray("expanded") {
		if n, err := strconv.ParseInt(id, 10, 64); err == nil {
			state.Expanded[n] = true
		}
	}
	for _, id := range c.QueryArray("raw") {
		if n, err := strconv.ParseInt(id, 10, 64); err == nil {
			state.RawExpanded[n] = true
		}
	}
	if selected := c.Query("selected"); selected != "" {
		if n, err := strconv.ParseInt(selected, 10, 64); err == nil {
			state.SelectedID = n
			state.HasSelected = true
		}
	}

	cards := callflow.BuildDetailCards(events, state)
	response.Success(c, "ok", cards)
}
